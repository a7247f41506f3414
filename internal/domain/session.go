package domain

// User is the authenticated account on the co-signer server.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}
