package domain

import "time"

// Balance is the native-token balance of one address on one chain.
type Balance struct {
	Chain    Chain   `json:"chain"`
	Address  string  `json:"address"`
	Amount   string  `json:"amount"` // display units
	USDValue float64 `json:"usdValue"`
}

// Price is a spot price quote for a token symbol.
type Price struct {
	Symbol    string    `json:"symbol"`
	USD       float64   `json:"usd"`
	UpdatedAt time.Time `json:"updatedAt"`
}
