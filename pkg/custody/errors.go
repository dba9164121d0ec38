package custody

import (
	"errors"

	"github.com/chainsafe/custody-gateway/pkg/identity"
)

var (
	ErrUninitialized      = errors.New("gateway not initialized")
	ErrAlreadyInitialized = errors.New("gateway already initialized")
	ErrInvalidIdentity    = identity.ErrInvalidIdentity
	ErrUnauthorized       = errors.New("unauthorized")
	ErrNotWhitelisted     = errors.New("token not whitelisted")
	ErrNoFundsSent        = errors.New("no funds sent")
	ErrFundMismatch       = errors.New("sent funds do not match the requested amount")
	ErrInvalidAmount      = errors.New("invalid amount")
)
