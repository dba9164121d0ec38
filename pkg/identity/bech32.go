package identity

import (
	"strings"

	"github.com/btcsuite/btcd/btcutil/bech32"
)

// Bech32 accepts bech32 addresses with the configured human readable part.
// Payloads of 20 bytes (accounts) and 32 bytes (contracts) are allowed.
type Bech32 struct {
	Prefix string
}

// Validate implements Validator.
func (b Bech32) Validate(address string) (string, error) {
	hrp, data, err := bech32.Decode(address)
	if err != nil {
		return "", invalid(address, "is not bech32: "+err.Error())
	}
	if hrp != b.Prefix {
		return "", invalid(address, "has prefix "+hrp+", want "+b.Prefix)
	}
	payload, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return "", invalid(address, "has a malformed payload")
	}
	if len(payload) != 20 && len(payload) != 32 {
		return "", invalid(address, "has an unexpected payload length")
	}
	return strings.ToLower(address), nil
}
