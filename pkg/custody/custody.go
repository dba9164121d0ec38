// Package custody implements the custody gateway state machine: an owner-gated
// whitelist of contract-mediated token kinds and a deposit router that forwards
// native or delegated transfers to a single admin destination.
//
// The package is pure with respect to its capabilities. Persistence goes through
// ConfigStore, identities through identity.Validator, and every outbound effect
// is returned to the host as an Instruction or Event.
package custody

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Contract identity persisted with every config.
const (
	ContractName    = "custody-gateway"
	ContractVersion = "0.1.0"
)

// Config is the singleton gateway state of one instance.
type Config struct {
	Owner            string    `json:"owner"`
	AdminDestination string    `json:"admin_destination"`
	Whitelist        []string  `json:"whitelist"`
	ContractName     string    `json:"contract_name,omitempty"`
	ContractVersion  string    `json:"contract_version,omitempty"`
	CreatedAt        time.Time `json:"created_at,omitzero"`
	UpdatedAt        time.Time `json:"updated_at,omitzero"`
}

// IsWhitelisted reports whether tokenKind is on the whitelist.
func (c *Config) IsWhitelisted(tokenKind string) bool {
	return slices.Contains(c.Whitelist, tokenKind)
}

// Clone returns a deep copy of the config.
func (c *Config) Clone() *Config {
	out := *c
	out.Whitelist = slices.Clone(c.Whitelist)
	return &out
}

func (c *Config) addToken(tokenKind string) {
	if !c.IsWhitelisted(tokenKind) {
		c.Whitelist = append(c.Whitelist, tokenKind)
	}
}

func (c *Config) removeToken(tokenKind string) {
	c.Whitelist = slices.DeleteFunc(c.Whitelist, func(t string) bool { return t == tokenKind })
}

// ConfigStore persists the Config of one gateway instance.
type ConfigStore interface {
	// Create persists a new config, ErrAlreadyInitialized if one exists.
	Create(ctx context.Context, cfg *Config) error
	// Load returns the config, ErrUninitialized if none exists.
	Load(ctx context.Context) (*Config, error)
	// Save overwrites the config including its whitelist.
	Save(ctx context.Context, cfg *Config) error
}

// Coin is an amount of a native denomination.
type Coin struct {
	Denom  string          `json:"denom"`
	Amount decimal.Decimal `json:"amount"`
}

// Coins is the attached-funds evidence of one call.
type Coins []Coin

// AmountOf returns the amount of the first entry for denom, zero when absent.
func (cs Coins) AmountOf(denom string) decimal.Decimal {
	for _, c := range cs {
		if c.Denom == denom {
			return c.Amount
		}
	}
	return decimal.Zero
}

// MessageInfo describes the caller of an operation.
type MessageInfo struct {
	Sender string
	Funds  Coins
}

// Env carries host-provided context of an operation.
type Env struct {
	Time time.Time
}

// DepositRequest is the payload of DepositToken.
type DepositRequest struct {
	TokenKind string
	// Class overrides the classification heuristic when set.
	Class  TokenClass
	Amount decimal.Decimal
}

// InstructionType names an outbound transfer.
type InstructionType string

// Instruction types
const (
	InstructionNativeTransfer    InstructionType = "native_transfer"
	InstructionDelegatedTransfer InstructionType = "delegated_transfer"
)

// Instruction is an outbound transfer the host executes atomically with the call.
// Token is the denomination for native transfers and the token contract for
// delegated ones. From is only set for delegated transfers.
type Instruction struct {
	Type   InstructionType `json:"type"`
	Token  string          `json:"token"`
	From   string          `json:"from,omitempty"`
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}

// NativeTransfer moves amount of denom from the gateway to `to`.
func NativeTransfer(to, denom string, amount decimal.Decimal) Instruction {
	return Instruction{Type: InstructionNativeTransfer, Token: denom, To: to, Amount: amount}
}

// DelegatedTransfer moves amount of token from `from` to `to` under an allowance granted to the gateway.
func DelegatedTransfer(token, from, to string, amount decimal.Decimal) Instruction {
	return Instruction{Type: InstructionDelegatedTransfer, Token: token, From: from, To: to, Amount: amount}
}

// DepositRecord is the audit entry of an accepted deposit.
type DepositRecord struct {
	ID          uuid.UUID       `json:"id"`
	InstanceID  string          `json:"instance_id,omitempty"`
	Sender      string          `json:"sender"`
	Amount      decimal.Decimal `json:"amount"`
	TokenKind   string          `json:"token_kind"`
	Class       TokenClass      `json:"token_type"`
	Timestamp   int64           `json:"timestamp"`
	Destination string          `json:"destination"`
	FundsRef    string          `json:"funds_ref,omitempty"`
}

// Response is the outcome of a successful operation.
type Response struct {
	// Config is the state after the operation, nil for deposits.
	Config       *Config
	Instructions []Instruction
	Events       []Event
	Record       *DepositRecord
}
