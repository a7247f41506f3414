package chains

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// ErrInvalidAmount is returned for amounts that are not plain non-negative
// decimal strings.
var ErrInvalidAmount = errors.New("invalid amount")

// ToBaseUnit converts a decimal display amount ("1.5") to the chain's
// smallest-unit integer string ("1500000000000000000" for 18 decimals).
// Fractional digits beyond the chain's precision are truncated, matching
// what the signer accepts.
func ToBaseUnit(amount string, decimals int) (string, error) {
	whole, frac, err := splitDecimal(amount)
	if err != nil {
		return "", err
	}

	if len(frac) > decimals {
		frac = frac[:decimals]
	}
	frac += strings.Repeat("0", decimals-len(frac))

	n, ok := new(big.Int).SetString(whole+frac, 10)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidAmount, amount)
	}
	return n.String(), nil
}

// FromBaseUnit converts a smallest-unit integer string back to a decimal
// display amount with trailing zeros trimmed ("1500000000000000000" -> "1.5").
func FromBaseUnit(amount string, decimals int) (string, error) {
	n, ok := new(big.Int).SetString(amount, 10)
	if !ok || n.Sign() < 0 {
		return "", fmt.Errorf("%w: %q", ErrInvalidAmount, amount)
	}

	divisor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	whole, rem := new(big.Int).QuoRem(n, divisor, new(big.Int))

	padded := rem.String()
	if len(padded) < decimals {
		padded = strings.Repeat("0", decimals-len(padded)) + padded
	}
	frac := strings.TrimRight(padded, "0")
	if frac == "" {
		return whole.String(), nil
	}
	return whole.String() + "." + frac, nil
}

// splitDecimal validates a non-negative decimal string and returns its whole
// and fractional digit runs.
func splitDecimal(amount string) (whole, frac string, err error) {
	if amount == "" {
		return "", "", ErrInvalidAmount
	}

	parts := strings.SplitN(amount, ".", 2)
	whole = parts[0]
	if len(parts) == 2 {
		frac = parts[1]
	}
	if whole == "" && frac == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidAmount, amount)
	}
	if whole == "" {
		whole = "0"
	}

	for _, r := range whole + frac {
		if r < '0' || r > '9' {
			return "", "", fmt.Errorf("%w: %q", ErrInvalidAmount, amount)
		}
	}
	return whole, frac, nil
}
