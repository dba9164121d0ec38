// Package identity validates and canonicalizes account and token identities.
package identity

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// Schemes
const (
	SchemeBasic  = "basic"
	SchemeEVM    = "evm"
	SchemeBech32 = "bech32"
)

// maxIdentityLength caps basic identities.
const maxIdentityLength = 128

// ErrInvalidIdentity is returned for strings that are not valid identities under the active scheme.
var ErrInvalidIdentity = errors.New("invalid identity")

// Validator checks that a string is a well-formed identity and returns its canonical form.
type Validator interface {
	Validate(address string) (string, error)
}

// New returns the validator for scheme.
func New(scheme, bech32Prefix string) (Validator, error) {
	switch scheme {
	case "", SchemeBasic:
		return Basic{}, nil
	case SchemeEVM:
		return EVM{}, nil
	case SchemeBech32:
		if bech32Prefix == "" {
			return nil, fmt.Errorf("bech32 scheme requires a prefix")
		}
		return Bech32{Prefix: bech32Prefix}, nil
	default:
		return nil, fmt.Errorf("unknown identity scheme %q", scheme)
	}
}

func invalid(address, reason string) error {
	return fmt.Errorf("%w: %q %s", ErrInvalidIdentity, address, reason)
}

// Basic accepts any non-empty printable string without whitespace.
type Basic struct{}

// Validate implements Validator.
func (Basic) Validate(address string) (string, error) {
	if address == "" {
		return "", invalid(address, "is empty")
	}
	if len(address) > maxIdentityLength {
		return "", invalid(address, "is too long")
	}
	if strings.IndexFunc(address, func(r rune) bool {
		return unicode.IsSpace(r) || !unicode.IsPrint(r)
	}) >= 0 {
		return "", invalid(address, "contains whitespace or control characters")
	}
	return address, nil
}
