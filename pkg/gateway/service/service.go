// Package service runs the custody contract inside a storage transaction and
// settles the instructions it issues through a transfer backend.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chainsafe/custody-gateway/internal/metrics"
	apperrors "github.com/chainsafe/custody-gateway/pkg/app/errors"
	"github.com/chainsafe/custody-gateway/pkg/custody"
	"github.com/chainsafe/custody-gateway/pkg/custodystore"
	"github.com/chainsafe/custody-gateway/pkg/gateway"
	"github.com/chainsafe/custody-gateway/pkg/identity"
)

// Service defines the custody gateway operations. caller is the authenticated
// identity of the requester.
//
//go:generate mockery --name Service --output mocks --outpkg mocks --filename mock_service.go --with-expecter
type Service interface {
	CreateConfig(ctx context.Context, caller string, req *gateway.InstantiateRequest) (*gateway.Response, error)
	AddWhitelistedToken(ctx context.Context, caller string, req *gateway.WhitelistRequest) (*gateway.Response, error)
	RemoveWhitelistedToken(ctx context.Context, caller string, req *gateway.WhitelistRequest) (*gateway.Response, error)
	UpdateAdminDestination(ctx context.Context, caller string, req *gateway.UpdateAdminRequest) (*gateway.Response, error)
	DepositToken(ctx context.Context, caller string, req *gateway.DepositRequest) (*gateway.Response, error)
	GetConfig(ctx context.Context) (*custody.Config, error)
	ListDeposits(ctx context.Context, filter custodystore.DepositFilter) ([]*custody.DepositRecord, error)
	GetDeposit(ctx context.Context, id uuid.UUID) (*custody.DepositRecord, error)
}

// ErrFundsTxNotNative is returned when a funding transaction is attached to a
// contract-mediated deposit, which moves tokens by allowance instead.
var ErrFundsTxNotNative = errors.New("funds_tx is only accepted for native deposits")

type gatewayService struct {
	tx         custodystore.Transactor
	backend    Backend
	validator  identity.Validator
	classifier *custody.Classifier
	instanceID string
	deployer   string
	now        func() time.Time
	logger     *zap.Logger
}

// NewService creates the gateway service for one instance. deployer is the
// only caller allowed to instantiate it and becomes the owner.
func NewService(
	tx custodystore.Transactor,
	backend Backend,
	validator identity.Validator,
	classifier *custody.Classifier,
	instanceID string,
	deployer string,
	logger *zap.Logger,
) Service {
	if classifier == nil {
		classifier = custody.DefaultClassifier()
	}
	if canonical, err := validator.Validate(deployer); err == nil {
		deployer = canonical
	}
	return &gatewayService{
		tx:         tx,
		backend:    backend,
		validator:  validator,
		classifier: classifier,
		instanceID: instanceID,
		deployer:   deployer,
		now:        time.Now,
		logger:     logger,
	}
}

func (s *gatewayService) contract(repos *custodystore.Repositories) *custody.Contract {
	return custody.NewContract(repos.Config, s.validator, s.classifier)
}

// CreateConfig instantiates the gateway with the deployer as owner.
func (s *gatewayService) CreateConfig(
	ctx context.Context,
	caller string,
	req *gateway.InstantiateRequest,
) (resp *gateway.Response, err error) {
	defer observe("CreateConfig", time.Now(), &err)

	if s.deployer == "" || caller != s.deployer {
		return nil, apperrors.ForbiddenError(custody.ErrUnauthorized, "Unauthorized")
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context, repos *custodystore.Repositories) error {
		out, err := s.contract(repos).Instantiate(ctx, s.info(caller), req.AdminDestination)
		if err != nil {
			return err
		}
		resp, err = s.commit(ctx, repos, out)
		return err
	})
	return resp, err
}

// AddWhitelistedToken adds a contract-mediated token kind. Owner only.
func (s *gatewayService) AddWhitelistedToken(
	ctx context.Context,
	caller string,
	req *gateway.WhitelistRequest,
) (resp *gateway.Response, err error) {
	defer observe("AddWhitelistedToken", time.Now(), &err)

	err = s.tx.RunInTx(ctx, func(ctx context.Context, repos *custodystore.Repositories) error {
		out, err := s.contract(repos).AddWhitelistedToken(ctx, s.info(caller), req.TokenKind)
		if err != nil {
			return err
		}
		resp, err = s.commit(ctx, repos, out)
		return err
	})
	return resp, err
}

// RemoveWhitelistedToken removes a token kind. Removing an absent kind succeeds. Owner only.
func (s *gatewayService) RemoveWhitelistedToken(
	ctx context.Context,
	caller string,
	req *gateway.WhitelistRequest,
) (resp *gateway.Response, err error) {
	defer observe("RemoveWhitelistedToken", time.Now(), &err)

	err = s.tx.RunInTx(ctx, func(ctx context.Context, repos *custodystore.Repositories) error {
		out, err := s.contract(repos).RemoveWhitelistedToken(ctx, s.info(caller), req.TokenKind)
		if err != nil {
			return err
		}
		resp, err = s.commit(ctx, repos, out)
		return err
	})
	return resp, err
}

// UpdateAdminDestination changes where future deposits go. Owner only.
func (s *gatewayService) UpdateAdminDestination(
	ctx context.Context,
	caller string,
	req *gateway.UpdateAdminRequest,
) (resp *gateway.Response, err error) {
	defer observe("UpdateAdminDestination", time.Now(), &err)

	err = s.tx.RunInTx(ctx, func(ctx context.Context, repos *custodystore.Repositories) error {
		out, err := s.contract(repos).UpdateAdminDestination(ctx, s.info(caller), req.NewAdminDestination)
		if err != nil {
			return err
		}
		resp, err = s.commit(ctx, repos, out)
		return err
	})
	return resp, err
}

// DepositToken routes a deposit by the caller to the admin destination.
//
// Attached funds are taken into custody, the contract validates the deposit
// against them, the record and events are stored and finally the resulting
// instruction is settled. A failure at any step rolls back the whole deposit.
func (s *gatewayService) DepositToken(
	ctx context.Context,
	caller string,
	req *gateway.DepositRequest,
) (resp *gateway.Response, err error) {
	defer observe("DepositToken", time.Now(), &err)

	class, err := custody.ParseTokenClass(req.Kind)
	if err != nil {
		return nil, apperrors.BadRequestError(err, err.Error())
	}
	label := s.classifier.Resolve(req.TokenKind, class)
	if label == custody.TokenClassContract && req.FundsTx != "" {
		return nil, apperrors.BadRequestError(ErrFundsTxNotNative, ErrFundsTxNotNative.Error())
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context, repos *custodystore.Repositories) error {
		funds, ref, err := s.backend.AttachFunds(ctx, repos, caller, req)
		if err != nil {
			return err
		}

		info := custody.MessageInfo{Sender: caller, Funds: funds}
		out, err := s.contract(repos).DepositToken(ctx, custody.Env{Time: s.now()}, info, custody.DepositRequest{
			TokenKind: req.TokenKind,
			Class:     class,
			Amount:    req.Amount,
		})
		if err != nil {
			return err
		}

		out.Record.ID = uuid.New()
		out.Record.InstanceID = s.instanceID
		out.Record.FundsRef = ref
		if err := repos.Records.InsertDeposit(ctx, out.Record); err != nil {
			if errors.Is(err, custodystore.ErrFundsRefUsed) {
				return apperrors.ConflictError(err, "funds transaction already used")
			}
			return fmt.Errorf("failed to store deposit: %w", err)
		}

		resp, err = s.commit(ctx, repos, out)
		return err
	})

	if err != nil {
		metrics.DepositsTotal.WithLabelValues(string(label), metrics.StatusFailure).Inc()
		return nil, err
	}
	metrics.DepositsTotal.WithLabelValues(string(label), metrics.StatusSuccess).Inc()
	metrics.DepositAmount.WithLabelValues(string(label)).Observe(resp.Record.Amount.InexactFloat64())
	return resp, nil
}

// GetConfig returns the current config.
func (s *gatewayService) GetConfig(ctx context.Context) (cfg *custody.Config, err error) {
	err = s.tx.View(ctx, func(ctx context.Context, repos *custodystore.Repositories) error {
		cfg, err = s.contract(repos).GetConfig(ctx)
		return err
	})
	return cfg, err
}

// ListDeposits returns recorded deposits, newest first.
func (s *gatewayService) ListDeposits(
	ctx context.Context,
	filter custodystore.DepositFilter,
) (deposits []*custody.DepositRecord, err error) {
	err = s.tx.View(ctx, func(ctx context.Context, repos *custodystore.Repositories) error {
		deposits, err = repos.Records.ListDeposits(ctx, filter)
		if err != nil {
			return fmt.Errorf("failed to list deposits: %w", err)
		}
		return nil
	})
	return deposits, err
}

// GetDeposit returns one recorded deposit.
func (s *gatewayService) GetDeposit(ctx context.Context, id uuid.UUID) (rec *custody.DepositRecord, err error) {
	err = s.tx.View(ctx, func(ctx context.Context, repos *custodystore.Repositories) error {
		rec, err = repos.Records.GetDeposit(ctx, id)
		if errors.Is(err, custodystore.ErrDepositNotFound) {
			return apperrors.ResourceNotFoundError(err, "deposit not found")
		}
		if err != nil {
			return fmt.Errorf("failed to get deposit: %w", err)
		}
		return nil
	})
	return rec, err
}

func (s *gatewayService) info(caller string) custody.MessageInfo {
	return custody.MessageInfo{Sender: caller}
}

// commit persists the events of out and settles its instructions. Settlement
// runs last so nothing but the commit itself can fail after value has moved.
func (s *gatewayService) commit(
	ctx context.Context,
	repos *custodystore.Repositories,
	out *custody.Response,
) (*gateway.Response, error) {
	if err := repos.Records.AppendEvents(ctx, out.Events); err != nil {
		return nil, fmt.Errorf("failed to store events: %w", err)
	}

	resp := &gateway.Response{
		Config:       out.Config,
		Events:       out.Events,
		Instructions: out.Instructions,
		Record:       out.Record,
	}
	for _, ins := range out.Instructions {
		ref, err := s.backend.Execute(ctx, repos, ins)
		if err != nil {
			metrics.TransactionsSent.WithLabelValues(string(ins.Type), metrics.StatusFailure).Inc()
			return nil, err
		}
		metrics.TransactionsSent.WithLabelValues(string(ins.Type), metrics.StatusSuccess).Inc()
		if ref != "" {
			resp.Settlements = append(resp.Settlements, ref)
		}
	}
	return resp, nil
}

// observe records the outcome of operation and turns uncategorized failures
// into general errors, so callers only ever see a ServiceError.
func observe(operation string, start time.Time, err *error) {
	metrics.ObserveOperation(operation, start, *err)
	if *err == nil {
		return
	}
	var svcErr *apperrors.ServiceError
	if !errors.As(*err, &svcErr) {
		*err = apperrors.GeneralError(*err)
	}
	metrics.ErrorsTotal.WithLabelValues(operation, apperrors.CategoryOf(*err).String()).Inc()
}
