package ledger

import (
	"time"

	"github.com/uptrace/bun"
)

// BalanceDao maps to the 'ledger_balances' table.
type BalanceDao struct {
	bun.BaseModel `bun:"table:ledger_balances,alias:lb"`
	Account       string    `bun:"account,pk,type:varchar(255)"`
	Asset         string    `bun:"asset,pk,type:varchar(255)"`
	Amount        string    `bun:"amount,notnull,type:numeric(78,0)"`
	UpdatedAt     time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// AllowanceDao maps to the 'ledger_allowances' table.
type AllowanceDao struct {
	bun.BaseModel `bun:"table:ledger_allowances,alias:la"`
	Asset         string    `bun:"asset,pk,type:varchar(255)"`
	Owner         string    `bun:"owner,pk,type:varchar(255)"`
	Spender       string    `bun:"spender,pk,type:varchar(255)"`
	Amount        string    `bun:"amount,notnull,type:numeric(78,0)"`
	UpdatedAt     time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}
