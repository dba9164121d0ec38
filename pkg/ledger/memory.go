package ledger

import (
	"context"
	"maps"
	"sort"

	"github.com/shopspring/decimal"
)

type balanceKey struct{ account, asset string }

type allowanceKey struct{ asset, owner, spender string }

// MemoryState holds ledger data for the in-memory store. It has no locking of
// its own; callers serialize access.
type MemoryState struct {
	balances   map[balanceKey]decimal.Decimal
	allowances map[allowanceKey]decimal.Decimal
}

// NewMemoryState returns an empty ledger.
func NewMemoryState() *MemoryState {
	return &MemoryState{
		balances:   make(map[balanceKey]decimal.Decimal),
		allowances: make(map[allowanceKey]decimal.Decimal),
	}
}

// Clone returns an independent copy of the state.
func (m *MemoryState) Clone() *MemoryState {
	return &MemoryState{
		balances:   maps.Clone(m.balances),
		allowances: maps.Clone(m.allowances),
	}
}

type memStore struct {
	state *MemoryState
}

// NewMemoryStore returns a Store over state.
func NewMemoryStore(state *MemoryState) Store {
	return &memStore{state: state}
}

func (s *memStore) Balance(_ context.Context, account, asset string) (decimal.Decimal, error) {
	return s.state.balances[balanceKey{account, asset}], nil
}

func (s *memStore) Balances(_ context.Context, account string) ([]Balance, error) {
	var out []Balance
	for k, v := range s.state.balances {
		if k.account == account {
			out = append(out, Balance{Account: account, Asset: k.asset, Amount: v})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Asset < out[j].Asset })
	return out, nil
}

func (s *memStore) Credit(_ context.Context, account, asset string, amount decimal.Decimal) error {
	k := balanceKey{account, asset}
	s.state.balances[k] = s.state.balances[k].Add(amount)
	return nil
}

func (s *memStore) Debit(_ context.Context, account, asset string, amount decimal.Decimal) error {
	k := balanceKey{account, asset}
	current := s.state.balances[k]
	if current.LessThan(amount) {
		return ErrInsufficientBalance
	}
	s.state.balances[k] = current.Sub(amount)
	return nil
}

func (s *memStore) Allowance(_ context.Context, asset, owner, spender string) (decimal.Decimal, error) {
	return s.state.allowances[allowanceKey{asset, owner, spender}], nil
}

func (s *memStore) SetAllowance(_ context.Context, asset, owner, spender string, amount decimal.Decimal) error {
	s.state.allowances[allowanceKey{asset, owner, spender}] = amount
	return nil
}

func (s *memStore) SpendAllowance(_ context.Context, asset, owner, spender string, amount decimal.Decimal) error {
	k := allowanceKey{asset, owner, spender}
	current := s.state.allowances[k]
	if current.LessThan(amount) {
		return ErrInsufficientAllowance
	}
	s.state.allowances[k] = current.Sub(amount)
	return nil
}
