package identity

import (
	"encoding/hex"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// EVM accepts 0x-prefixed 20-byte hex addresses and canonicalizes them to EIP-55 checksum form.
type EVM struct{}

// Validate implements Validator.
func (EVM) Validate(address string) (string, error) {
	if !IsEVMAddress(address) {
		return "", invalid(address, "is not a 0x-prefixed 20-byte hex address")
	}
	return NormalizeEVMAddress(address), nil
}

// IsEVMAddress checks if a string is a valid EVM address
func IsEVMAddress(address string) bool {
	if !strings.HasPrefix(address, "0x") || len(address) != 2+2*common.AddressLength {
		return false
	}
	_, err := hex.DecodeString(address[2:])
	return err == nil
}

// NormalizeEVMAddress returns a checksummed EVM address
func NormalizeEVMAddress(address string) string {
	return common.HexToAddress(address).Hex()
}
