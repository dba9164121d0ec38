package custody

import (
	"fmt"
	"slices"
	"strings"
)

// TokenClass is the deposit path of a token kind. The values double as the
// token_type tag written to records and events.
type TokenClass string

// Token classes
const (
	TokenClassUnspecified TokenClass = ""
	TokenClassNative      TokenClass = "native"
	TokenClassContract    TokenClass = "cw20"
)

// ParseTokenClass parses an explicit class from a request. "contract" is accepted
// as an alias of "cw20" and the empty string leaves the class unspecified.
func ParseTokenClass(s string) (TokenClass, error) {
	switch strings.ToLower(s) {
	case "":
		return TokenClassUnspecified, nil
	case "native":
		return TokenClassNative, nil
	case "cw20", "contract":
		return TokenClassContract, nil
	default:
		return TokenClassUnspecified, fmt.Errorf("unknown token class %q", s)
	}
}

// Classifier decides whether a token kind is a native denomination.
type Classifier struct {
	prefixes   []string
	namespaces []string
	denoms     []string
}

// NewClassifier returns a classifier treating token kinds as native when they
// equal one of denoms, start with one of prefixes or contain one of namespaces.
func NewClassifier(prefixes, namespaces, denoms []string) *Classifier {
	return &Classifier{
		prefixes:   slices.Clone(prefixes),
		namespaces: slices.Clone(namespaces),
		denoms:     slices.Clone(denoms),
	}
}

// DefaultClassifier matches micro-denominations ("u" prefix) and IBC vouchers ("ibc/").
func DefaultClassifier() *Classifier {
	return NewClassifier([]string{"u"}, []string{"ibc/"}, nil)
}

// Classify applies the heuristic to tokenKind.
func (c *Classifier) Classify(tokenKind string) TokenClass {
	if slices.Contains(c.denoms, tokenKind) {
		return TokenClassNative
	}
	for _, p := range c.prefixes {
		if strings.HasPrefix(tokenKind, p) {
			return TokenClassNative
		}
	}
	for _, ns := range c.namespaces {
		if strings.Contains(tokenKind, ns) {
			return TokenClassNative
		}
	}
	return TokenClassContract
}

// Resolve returns explicit when set, the heuristic otherwise.
func (c *Classifier) Resolve(tokenKind string, explicit TokenClass) TokenClass {
	if explicit != TokenClassUnspecified {
		return explicit
	}
	return c.Classify(tokenKind)
}
