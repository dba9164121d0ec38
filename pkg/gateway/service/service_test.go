package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "github.com/chainsafe/custody-gateway/pkg/app/errors"
	"github.com/chainsafe/custody-gateway/pkg/custody"
	"github.com/chainsafe/custody-gateway/pkg/custodystore"
	"github.com/chainsafe/custody-gateway/pkg/ethereum"
	"github.com/chainsafe/custody-gateway/pkg/gateway"
	"github.com/chainsafe/custody-gateway/pkg/identity"
	"github.com/chainsafe/custody-gateway/pkg/ledger"
)

const (
	owner  = "owner"
	admin  = "admin-wallet"
	alice  = "alice"
	escrow = "gateway-escrow"
	token  = "cw20-token"
)

var fixedNow = time.Unix(1_700_000_000, 0)

func amt(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

type fixture struct {
	tx      *custodystore.MemoryTransactor
	svc     Service
	sandbox Sandbox
}

func newFixture(t *testing.T, backend Backend) *fixture {
	t.Helper()
	tx := custodystore.NewMemoryTransactor("test")
	if backend == nil {
		backend = NewLedgerBackend(escrow)
	}
	svc := NewService(tx, backend, identity.Basic{}, custody.DefaultClassifier(), "test", owner, zap.NewNop())
	svc.(*gatewayService).now = func() time.Time { return fixedNow }

	return &fixture{
		tx:      tx,
		svc:     NewLog(svc, zap.NewNop()),
		sandbox: NewSandbox(tx, escrow, identity.Basic{}, zap.NewNop()),
	}
}

func (f *fixture) instantiate(t *testing.T, tokens ...string) {
	t.Helper()
	ctx := context.Background()
	_, err := f.svc.CreateConfig(ctx, owner, &gateway.InstantiateRequest{AdminDestination: admin})
	require.NoError(t, err)
	for _, tok := range tokens {
		_, err := f.svc.AddWhitelistedToken(ctx, owner, &gateway.WhitelistRequest{TokenKind: tok})
		require.NoError(t, err)
	}
}

func (f *fixture) fund(t *testing.T, account, asset string, amount int64) {
	t.Helper()
	_, err := f.sandbox.Fund(context.Background(), &gateway.FundRequest{Account: account, Asset: asset, Amount: amt(amount)})
	require.NoError(t, err)
}

func (f *fixture) balance(t *testing.T, account, asset string) decimal.Decimal {
	t.Helper()
	var out decimal.Decimal
	err := f.tx.View(context.Background(), func(ctx context.Context, repos *custodystore.Repositories) error {
		var err error
		out, err = repos.Ledger.Balance(ctx, account, asset)
		return err
	})
	require.NoError(t, err)
	return out
}

func (f *fixture) deposits(t *testing.T) []*custody.DepositRecord {
	t.Helper()
	out, err := f.svc.ListDeposits(context.Background(), custodystore.DepositFilter{})
	require.NoError(t, err)
	return out
}

func (f *fixture) events(t *testing.T) []custody.Event {
	t.Helper()
	var out []custody.Event
	err := f.tx.View(context.Background(), func(ctx context.Context, repos *custodystore.Repositories) error {
		var err error
		out, err = repos.Records.ListEvents(ctx, 0)
		return err
	})
	require.NoError(t, err)
	return out
}

func TestCreateConfig(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	resp, err := f.svc.CreateConfig(ctx, owner, &gateway.InstantiateRequest{AdminDestination: admin})
	require.NoError(t, err)
	assert.Equal(t, owner, resp.Config.Owner)
	require.Len(t, resp.Events, 1)
	assert.Equal(t, custody.EventInstantiate, resp.Events[0].Type)

	_, err = f.svc.CreateConfig(ctx, owner, &gateway.InstantiateRequest{AdminDestination: "elsewhere"})
	require.ErrorIs(t, err, custody.ErrAlreadyInitialized)
	assert.True(t, apperrors.Is(err, apperrors.CategoryDataConflict))

	cfg, err := f.svc.GetConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, owner, cfg.Owner)
	assert.Equal(t, custody.ContractVersion, cfg.ContractVersion)
	assert.Len(t, f.events(t), 1)
}

func TestCreateConfig_OnlyDeployer(t *testing.T) {
	ctx := context.Background()

	t.Run("other caller cannot claim ownership", func(t *testing.T) {
		f := newFixture(t, nil)

		_, err := f.svc.CreateConfig(ctx, alice, &gateway.InstantiateRequest{AdminDestination: alice})
		require.ErrorIs(t, err, custody.ErrUnauthorized)
		assert.True(t, apperrors.Is(err, apperrors.CategoryForbidden))

		_, err = f.svc.GetConfig(ctx)
		require.ErrorIs(t, err, custody.ErrUninitialized)
		assert.Empty(t, f.events(t))

		f.instantiate(t)
		cfg, err := f.svc.GetConfig(ctx)
		require.NoError(t, err)
		assert.Equal(t, owner, cfg.Owner)
	})

	t.Run("no deployer configured", func(t *testing.T) {
		tx := custodystore.NewMemoryTransactor("test")
		svc := NewService(tx, NewLedgerBackend(escrow), identity.Basic{}, nil, "test", "", zap.NewNop())

		_, err := svc.CreateConfig(ctx, owner, &gateway.InstantiateRequest{AdminDestination: admin})
		require.ErrorIs(t, err, custody.ErrUnauthorized)
	})

	t.Run("deployer is canonicalized", func(t *testing.T) {
		tx := custodystore.NewMemoryTransactor("test")
		deployer := "0x52908400098527886e0f7030069857d2e4169ee7"
		svc := NewService(tx, NewLedgerBackend(escrow), identity.EVM{}, nil, "test", deployer, zap.NewNop())

		resp, err := svc.CreateConfig(ctx, common.HexToAddress(deployer).Hex(), &gateway.InstantiateRequest{
			AdminDestination: "0x8617E340B3D01FA5F11F306F4090FD50E238070D",
		})
		require.NoError(t, err)
		assert.Equal(t, common.HexToAddress(deployer).Hex(), resp.Config.Owner)
	})
}

type brokenTransactor struct{ err error }

func (b brokenTransactor) RunInTx(context.Context, custodystore.TxFunc) error { return b.err }
func (b brokenTransactor) View(context.Context, custodystore.TxFunc) error { return b.err }

func TestWrites_UncategorizedFailuresAreGeneralErrors(t *testing.T) {
	dbDown := errors.New("connection refused")
	svc := NewService(brokenTransactor{err: dbDown}, NewLedgerBackend(escrow), identity.Basic{}, nil, "test", owner, zap.NewNop())
	ctx := context.Background()

	_, err := svc.CreateConfig(ctx, owner, &gateway.InstantiateRequest{AdminDestination: admin})
	require.ErrorIs(t, err, dbDown)
	assert.True(t, apperrors.Is(err, apperrors.CategoryGeneralError))

	_, err = svc.DepositToken(ctx, alice, &gateway.DepositRequest{TokenKind: token, Amount: amt(1)})
	require.ErrorIs(t, err, dbDown)
	assert.True(t, apperrors.IsInternalError(err))

	var svcErr *apperrors.ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, http.StatusInternalServerError, svcErr.StatusCode())
	assert.Equal(t, "Internal Server Error", svcErr.Message)
}

func TestGetConfig_Uninitialized(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.svc.GetConfig(context.Background())
	require.ErrorIs(t, err, custody.ErrUninitialized)
	assert.True(t, apperrors.Is(err, apperrors.CategoryResourceNotFound))
}

func TestWhitelist_PersistsEvents(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.instantiate(t, token, token)

	cfg, err := f.svc.GetConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{token}, cfg.Whitelist)

	_, err = f.svc.RemoveWhitelistedToken(ctx, owner, &gateway.WhitelistRequest{TokenKind: token})
	require.NoError(t, err)
	_, err = f.svc.AddWhitelistedToken(ctx, alice, &gateway.WhitelistRequest{TokenKind: "other"})
	require.ErrorIs(t, err, custody.ErrUnauthorized)

	events := f.events(t)
	require.Len(t, events, 4)
	assert.Equal(t, custody.EventRemoveWhitelistedToken, events[0].Type, "newest first")
}

func TestUpdateAdminDestination_RedirectsDeposits(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.instantiate(t)
	f.fund(t, alice, "uatom", 10)

	_, err := f.svc.UpdateAdminDestination(ctx, owner, &gateway.UpdateAdminRequest{NewAdminDestination: "new-admin"})
	require.NoError(t, err)

	resp, err := f.svc.DepositToken(ctx, alice, &gateway.DepositRequest{
		TokenKind: "uatom",
		Amount:    amt(10),
		Funds:     custody.Coins{{Denom: "uatom", Amount: amt(10)}},
	})
	require.NoError(t, err)
	assert.Equal(t, "new-admin", resp.Record.Destination)
	assert.True(t, f.balance(t, "new-admin", "uatom").Equal(amt(10)))
	assert.True(t, f.balance(t, admin, "uatom").IsZero())
}

func TestDeposit_Native(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.instantiate(t)
	f.fund(t, alice, "uatom", 100)

	resp, err := f.svc.DepositToken(ctx, alice, &gateway.DepositRequest{
		TokenKind: "uatom",
		Amount:    amt(100),
		Funds:     custody.Coins{{Denom: "uatom", Amount: amt(100)}},
	})
	require.NoError(t, err)

	require.Len(t, resp.Instructions, 1)
	assert.Equal(t, custody.NativeTransfer(admin, "uatom", amt(100)), resp.Instructions[0])
	require.NotNil(t, resp.Record)
	assert.NotEqual(t, uuid.Nil, resp.Record.ID)
	assert.Equal(t, custody.TokenClassNative, resp.Record.Class)
	assert.Equal(t, fixedNow.Unix(), resp.Record.Timestamp)

	assert.True(t, f.balance(t, alice, "uatom").IsZero())
	assert.True(t, f.balance(t, escrow, "uatom").IsZero())
	assert.True(t, f.balance(t, admin, "uatom").Equal(amt(100)))

	stored, err := f.svc.GetDeposit(ctx, resp.Record.ID)
	require.NoError(t, err)
	assert.Equal(t, "test", stored.InstanceID)
	assert.Equal(t, alice, stored.Sender)
}

func TestDeposit_Contract(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.instantiate(t, token)
	f.fund(t, alice, token, 500)
	require.NoError(t, f.sandbox.Approve(ctx, alice, &gateway.ApproveRequest{Asset: token, Amount: amt(300)}))

	resp, err := f.svc.DepositToken(ctx, alice, &gateway.DepositRequest{TokenKind: token, Amount: amt(200)})
	require.NoError(t, err)
	assert.Equal(t, custody.DelegatedTransfer(token, alice, admin, amt(200)), resp.Instructions[0])
	assert.Equal(t, custody.TokenClassContract, resp.Record.Class)

	assert.True(t, f.balance(t, alice, token).Equal(amt(300)))
	assert.True(t, f.balance(t, admin, token).Equal(amt(200)))

	// Second deposit exceeds the remaining allowance of 100.
	_, err = f.svc.DepositToken(ctx, alice, &gateway.DepositRequest{TokenKind: token, Amount: amt(150)})
	require.ErrorIs(t, err, ledger.ErrInsufficientAllowance)
	assert.True(t, apperrors.Is(err, apperrors.CategoryDataError))
}

func TestDeposit_RollbackOnBackendFailure(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.instantiate(t, token)
	f.fund(t, alice, token, 50)
	f.fund(t, alice, "uatom", 10)

	eventsBefore := len(f.events(t))

	// No allowance granted: the record and event must not survive.
	_, err := f.svc.DepositToken(ctx, alice, &gateway.DepositRequest{TokenKind: token, Amount: amt(50)})
	require.ErrorIs(t, err, ledger.ErrInsufficientAllowance)

	// Attached native funds are returned when validation fails after escrow.
	_, err = f.svc.DepositToken(ctx, alice, &gateway.DepositRequest{
		TokenKind: "uatom",
		Amount:    amt(5),
		Funds:     custody.Coins{{Denom: "uatom", Amount: amt(10)}},
	})
	require.ErrorIs(t, err, custody.ErrFundMismatch)

	assert.Empty(t, f.deposits(t))
	assert.Len(t, f.events(t), eventsBefore)
	assert.True(t, f.balance(t, alice, token).Equal(amt(50)))
	assert.True(t, f.balance(t, alice, "uatom").Equal(amt(10)))
	assert.True(t, f.balance(t, escrow, "uatom").IsZero())
}

func TestDeposit_InsufficientBalance(t *testing.T) {
	f := newFixture(t, nil)
	f.instantiate(t)

	_, err := f.svc.DepositToken(context.Background(), alice, &gateway.DepositRequest{
		TokenKind: "uatom",
		Amount:    amt(5),
		Funds:     custody.Coins{{Denom: "uatom", Amount: amt(5)}},
	})
	require.ErrorIs(t, err, ledger.ErrInsufficientBalance)
	assert.True(t, apperrors.Is(err, apperrors.CategoryDataError))
}

func TestDeposit_RequestValidation(t *testing.T) {
	f := newFixture(t, nil)
	f.instantiate(t, token)
	ctx := context.Background()

	tests := []struct {
		name string
		req  *gateway.DepositRequest
		want error
	}{
		{
			name: "unknown kind",
			req:  &gateway.DepositRequest{TokenKind: token, Kind: "erc721", Amount: amt(1)},
		},
		{
			name: "duplicate denoms",
			req: &gateway.DepositRequest{TokenKind: "uatom", Amount: amt(1), Funds: custody.Coins{
				{Denom: "uatom", Amount: amt(1)}, {Denom: "uatom", Amount: amt(1)},
			}},
		},
		{
			name: "negative funds",
			req:  &gateway.DepositRequest{TokenKind: "uatom", Amount: amt(1), Funds: custody.Coins{{Denom: "uatom", Amount: amt(-1)}}},
		},
		{
			name: "funds_tx on ledger backend",
			req:  &gateway.DepositRequest{TokenKind: "uatom", Amount: amt(1), FundsTx: "0xabc"},
		},
		{
			name: "no funds sent",
			req:  &gateway.DepositRequest{TokenKind: "uatom", Amount: amt(0)},
			want: custody.ErrNoFundsSent,
		},
		{
			name: "not whitelisted",
			req:  &gateway.DepositRequest{TokenKind: "other-token", Amount: amt(1)},
			want: custody.ErrNotWhitelisted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.DepositToken(ctx, alice, tt.req)
			require.Error(t, err)
			if tt.want != nil {
				require.ErrorIs(t, err, tt.want)
			}
			assert.False(t, apperrors.IsInternalError(err), "got %v", err)
		})
	}
	assert.Empty(t, f.deposits(t))
}

func TestDeposit_ExplicitKindOverridesHeuristic(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.instantiate(t, "ushare")
	f.fund(t, alice, "ushare", 10)
	require.NoError(t, f.sandbox.Approve(ctx, alice, &gateway.ApproveRequest{Asset: "ushare", Amount: amt(10)}))

	resp, err := f.svc.DepositToken(ctx, alice, &gateway.DepositRequest{TokenKind: "ushare", Kind: "contract", Amount: amt(10)})
	require.NoError(t, err)
	assert.Equal(t, custody.InstructionDelegatedTransfer, resp.Instructions[0].Type)
	assert.True(t, f.balance(t, admin, "ushare").Equal(amt(10)))
}

func TestListDeposits_Filter(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.instantiate(t)
	f.fund(t, alice, "uatom", 10)
	f.fund(t, "bob", "uosmo", 10)

	for _, d := range []struct{ sender, denom string }{{alice, "uatom"}, {"bob", "uosmo"}, {alice, "uatom"}} {
		_, err := f.svc.DepositToken(ctx, d.sender, &gateway.DepositRequest{
			TokenKind: d.denom,
			Amount:    amt(2),
			Funds:     custody.Coins{{Denom: d.denom, Amount: amt(2)}},
		})
		require.NoError(t, err)
	}

	all := f.deposits(t)
	assert.Len(t, all, 3)

	bySender, err := f.svc.ListDeposits(ctx, custodystore.DepositFilter{Sender: alice})
	require.NoError(t, err)
	assert.Len(t, bySender, 2)

	byToken, err := f.svc.ListDeposits(ctx, custodystore.DepositFilter{TokenKind: "uosmo", Limit: 1})
	require.NoError(t, err)
	require.Len(t, byToken, 1)
	assert.Equal(t, "bob", byToken[0].Sender)

	_, err = f.svc.GetDeposit(ctx, uuid.New())
	require.ErrorIs(t, err, custodystore.ErrDepositNotFound)
	assert.True(t, apperrors.Is(err, apperrors.CategoryResourceNotFound))
}

type fakeChain struct {
	funds    map[string]custody.Coins
	executed []custody.Instruction
	execErr  error
}

func (c *fakeChain) VerifyFunding(_ context.Context, sender, fundsTx string) (custody.Coins, error) {
	coins, ok := c.funds[sender+"|"+fundsTx]
	if !ok {
		return nil, errors.Join(ethereum.ErrFundsEvidence, errors.New("unknown funding tx"))
	}
	return coins, nil
}

func (c *fakeChain) Execute(_ context.Context, ins custody.Instruction) (common.Hash, error) {
	if c.execErr != nil {
		return common.Hash{}, c.execErr
	}
	c.executed = append(c.executed, ins)
	return common.BigToHash(common.Big1), nil
}

func TestEVMBackend_Deposit(t *testing.T) {
	const fundsTx = "0xAA00000000000000000000000000000000000000000000000000000000000001"
	chain := &fakeChain{funds: map[string]custody.Coins{
		alice + "|" + fundsTx: {{Denom: "wei", Amount: amt(1000)}},
	}}
	f := newFixture(t, NewEVMBackend(chain))
	ctx := context.Background()
	f.instantiate(t)

	req := &gateway.DepositRequest{TokenKind: "wei", Kind: "native", Amount: amt(1000), FundsTx: fundsTx}
	resp, err := f.svc.DepositToken(ctx, alice, req)
	require.NoError(t, err)
	assert.Equal(t, []string{common.BigToHash(common.Big1).Hex()}, resp.Settlements)
	assert.Equal(t, "0xaa00000000000000000000000000000000000000000000000000000000000001", resp.Record.FundsRef)
	require.Len(t, chain.executed, 1)
	assert.Equal(t, custody.NativeTransfer(admin, "wei", amt(1000)), chain.executed[0])

	// The same funding transaction cannot back a second deposit.
	_, err = f.svc.DepositToken(ctx, alice, req)
	require.ErrorIs(t, err, custodystore.ErrFundsRefUsed)
	assert.True(t, apperrors.Is(err, apperrors.CategoryDataConflict))

	// Someone else's funding transaction is not evidence for alice.
	_, err = f.svc.DepositToken(ctx, "mallory", &gateway.DepositRequest{
		TokenKind: "wei", Kind: "native", Amount: amt(1000),
		FundsTx: "0xbb00000000000000000000000000000000000000000000000000000000000002",
	})
	require.ErrorIs(t, err, ethereum.ErrFundsEvidence)
	assert.True(t, apperrors.Is(err, apperrors.CategoryDataError))

	assert.Len(t, f.deposits(t), 1)
}

func TestEVMBackend_FundsTxRejectedForContractDeposits(t *testing.T) {
	const fundsTx = "0xcc00000000000000000000000000000000000000000000000000000000000003"
	chain := &fakeChain{funds: map[string]custody.Coins{
		alice + "|" + fundsTx: {{Denom: "wei", Amount: amt(10)}},
	}}
	f := newFixture(t, NewEVMBackend(chain))
	ctx := context.Background()
	f.instantiate(t, token)

	for _, req := range []*gateway.DepositRequest{
		{TokenKind: token, Amount: amt(10), FundsTx: fundsTx},
		{TokenKind: "wei", Kind: "cw20", Amount: amt(10), FundsTx: fundsTx},
	} {
		_, err := f.svc.DepositToken(ctx, alice, req)
		require.ErrorIs(t, err, ErrFundsTxNotNative)
		assert.True(t, apperrors.Is(err, apperrors.CategoryDataError))
	}
	assert.Empty(t, f.deposits(t))
	assert.Empty(t, chain.executed)

	// The funding transaction can still back a native deposit.
	resp, err := f.svc.DepositToken(ctx, alice, &gateway.DepositRequest{
		TokenKind: "wei", Kind: "native", Amount: amt(10), FundsTx: fundsTx,
	})
	require.NoError(t, err)
	assert.Equal(t, fundsTx, resp.Record.FundsRef)
}

func TestEVMBackend_SettlementFailureRollsBack(t *testing.T) {
	chain := &fakeChain{execErr: errors.New("nonce too low")}
	f := newFixture(t, NewEVMBackend(chain))
	f.instantiate(t, token)

	_, err := f.svc.DepositToken(context.Background(), alice, &gateway.DepositRequest{TokenKind: token, Amount: amt(5)})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CategoryDependencyFailure))
	assert.Empty(t, f.deposits(t))
}

func TestEVMBackend_RejectsInlineFunds(t *testing.T) {
	f := newFixture(t, NewEVMBackend(&fakeChain{}))
	f.instantiate(t)

	_, err := f.svc.DepositToken(context.Background(), alice, &gateway.DepositRequest{
		TokenKind: "wei", Kind: "native", Amount: amt(1),
		Funds: custody.Coins{{Denom: "wei", Amount: amt(1)}},
	})
	assert.True(t, apperrors.Is(err, apperrors.CategoryDataError))
}
