package chains

import (
	"strings"

	"filippo.io/edwards25519"
	"github.com/ethereum/go-ethereum/common"
	"github.com/mr-tron/base58"

	"panoplia-wallet/internal/domain"
)

// ValidAddress reports whether addr is plausibly well-formed for the chain.
// This is a shape check done before a transfer request is issued; the
// co-signer server performs the authoritative validation.
func ValidAddress(chain domain.Chain, addr string) bool {
	info, ok := Get(chain)
	if !ok || addr == "" {
		return false
	}

	switch info.Family {
	case FamilyEVM:
		return common.IsHexAddress(addr)
	case FamilySolana:
		return validSolanaAddress(addr)
	case FamilyBitcoin:
		return validBitcoinAddress(addr)
	default:
		// THORChain/Cosmos bech32 shapes vary per prefix; accept non-empty
		// and let the server reject.
		return true
	}
}

// ChecksumAddress returns the EIP-55 checksummed form of an EVM address,
// or the input unchanged for non-EVM chains.
func ChecksumAddress(chain domain.Chain, addr string) string {
	if info, ok := Get(chain); ok && info.Family == FamilyEVM && common.IsHexAddress(addr) {
		return common.HexToAddress(addr).Hex()
	}
	return addr
}

func validSolanaAddress(addr string) bool {
	raw, err := base58.Decode(addr)
	if err != nil || len(raw) != 32 {
		return false
	}
	// Vault-derived Solana addresses are ed25519 public keys.
	_, err = new(edwards25519.Point).SetBytes(raw)
	return err == nil
}

func validBitcoinAddress(addr string) bool {
	switch {
	case strings.HasPrefix(addr, "bc1"):
		return len(addr) >= 14 && len(addr) <= 74
	case strings.HasPrefix(addr, "1"), strings.HasPrefix(addr, "3"):
		if len(addr) < 26 || len(addr) > 35 {
			return false
		}
		_, err := base58.Decode(addr)
		return err == nil
	default:
		return false
	}
}

// ShortenAddress renders "0x742d...a23F" style previews for display.
func ShortenAddress(addr string, chars int) string {
	if len(addr) <= chars*2+2 {
		return addr
	}
	return addr[:chars+2] + "..." + addr[len(addr)-chars:]
}
