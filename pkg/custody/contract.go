package custody

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	apperrors "github.com/chainsafe/custody-gateway/pkg/app/errors"
	"github.com/chainsafe/custody-gateway/pkg/identity"
)

// Contract executes gateway operations against one ConfigStore.
// It is not safe for concurrent use on its own; the host serializes calls
// per instance by running each one inside a store transaction.
type Contract struct {
	store      ConfigStore
	validator  identity.Validator
	classifier *Classifier
}

// NewContract returns a contract bound to store.
func NewContract(store ConfigStore, validator identity.Validator, classifier *Classifier) *Contract {
	if classifier == nil {
		classifier = DefaultClassifier()
	}
	return &Contract{store: store, validator: validator, classifier: classifier}
}

// Instantiate creates the config with the caller as owner.
func (c *Contract) Instantiate(ctx context.Context, info MessageInfo, adminDestination string) (*Response, error) {
	admin, err := c.validator.Validate(adminDestination)
	if err != nil {
		return nil, apperrors.BadRequestError(err, "invalid admin destination")
	}

	cfg := &Config{
		Owner:            info.Sender,
		AdminDestination: admin,
		Whitelist:        []string{},
		ContractName:     ContractName,
		ContractVersion:  ContractVersion,
	}
	if err := c.store.Create(ctx, cfg); err != nil {
		if errors.Is(err, ErrAlreadyInitialized) {
			return nil, apperrors.ConflictError(err, "gateway already initialized")
		}
		return nil, fmt.Errorf("failed to create config: %w", err)
	}

	return &Response{
		Config: cfg,
		Events: []Event{
			NewEvent(EventInstantiate).
				With("owner", cfg.Owner).
				With("admin_wallet", cfg.AdminDestination),
		},
	}, nil
}

// AddWhitelistedToken adds tokenKind to the whitelist. Adding a present entry succeeds.
func (c *Contract) AddWhitelistedToken(ctx context.Context, info MessageInfo, tokenKind string) (*Response, error) {
	cfg, err := c.loadAsOwner(ctx, info)
	if err != nil {
		return nil, err
	}

	token, err := c.validator.Validate(tokenKind)
	if err != nil {
		return nil, apperrors.BadRequestError(err, "invalid token identity")
	}

	cfg.addToken(token)
	if err := c.store.Save(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to save config: %w", err)
	}

	return &Response{
		Config: cfg,
		Events: []Event{NewEvent(EventAddWhitelistedToken).With("token_address", token)},
	}, nil
}

// RemoveWhitelistedToken removes tokenKind from the whitelist. Removing an absent entry succeeds.
func (c *Contract) RemoveWhitelistedToken(ctx context.Context, info MessageInfo, tokenKind string) (*Response, error) {
	cfg, err := c.loadAsOwner(ctx, info)
	if err != nil {
		return nil, err
	}

	token, err := c.validator.Validate(tokenKind)
	if err != nil {
		return nil, apperrors.BadRequestError(err, "invalid token identity")
	}

	cfg.removeToken(token)
	if err := c.store.Save(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to save config: %w", err)
	}

	return &Response{
		Config: cfg,
		Events: []Event{NewEvent(EventRemoveWhitelistedToken).With("token_address", token)},
	}, nil
}

// UpdateAdminDestination replaces the admin destination. The owner never changes.
func (c *Contract) UpdateAdminDestination(ctx context.Context, info MessageInfo, newDestination string) (*Response, error) {
	cfg, err := c.loadAsOwner(ctx, info)
	if err != nil {
		return nil, err
	}

	admin, err := c.validator.Validate(newDestination)
	if err != nil {
		return nil, apperrors.BadRequestError(err, "invalid admin destination")
	}

	old := cfg.AdminDestination
	cfg.AdminDestination = admin
	if err := c.store.Save(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to save config: %w", err)
	}

	return &Response{
		Config: cfg,
		Events: []Event{
			NewEvent(EventUpdateConfig).
				With("old_admin_wallet", old).
				With("new_admin_wallet", admin),
		},
	}, nil
}

// DepositToken routes a deposit to the admin destination.
//
// Native deposits must be backed by attached funds of exactly the requested
// amount. Contract-mediated deposits must name a whitelisted token and are
// pulled from the sender under the allowance it granted the gateway.
func (c *Contract) DepositToken(ctx context.Context, env Env, info MessageInfo, req DepositRequest) (*Response, error) {
	if err := ValidateAmount(req.Amount); err != nil {
		return nil, apperrors.BadRequestError(err, err.Error())
	}

	cfg, err := c.load(ctx)
	if err != nil {
		return nil, err
	}

	var (
		class       = c.classifier.Resolve(req.TokenKind, req.Class)
		token       = req.TokenKind
		instruction Instruction
	)
	switch class {
	case TokenClassNative:
		sent := info.Funds.AmountOf(token)
		if !sent.Equal(req.Amount) {
			return nil, apperrors.BadRequestError(
				fmt.Errorf("%w: sent %s, requested %s", ErrFundMismatch, sent, req.Amount),
				ErrFundMismatch.Error())
		}
		if sent.IsZero() {
			return nil, apperrors.BadRequestError(ErrNoFundsSent, ErrNoFundsSent.Error())
		}
		instruction = NativeTransfer(cfg.AdminDestination, token, req.Amount)

	case TokenClassContract:
		token, err = c.validator.Validate(req.TokenKind)
		if err != nil {
			return nil, apperrors.BadRequestError(err, "invalid token identity")
		}
		if !cfg.IsWhitelisted(token) {
			return nil, apperrors.ForbiddenError(
				fmt.Errorf("%w: %s", ErrNotWhitelisted, token),
				"Token not whitelisted")
		}
		instruction = DelegatedTransfer(token, info.Sender, cfg.AdminDestination, req.Amount)

	default:
		return nil, apperrors.BadRequestError(nil, fmt.Sprintf("unsupported token class %q", class))
	}

	timestamp := env.Time.Unix()
	record := &DepositRecord{
		Sender:      info.Sender,
		Amount:      req.Amount,
		TokenKind:   token,
		Class:       class,
		Timestamp:   timestamp,
		Destination: cfg.AdminDestination,
	}

	return &Response{
		Instructions: []Instruction{instruction},
		Events: []Event{
			NewEvent(EventDepositToken).
				With("user", info.Sender).
				With("amount", req.Amount.String()).
				With("token_address", token).
				With("token_type", string(class)).
				With("timestamp", strconv.FormatInt(timestamp, 10)),
		},
		Record: record,
	}, nil
}

// GetConfig returns the current config.
func (c *Contract) GetConfig(ctx context.Context) (*Config, error) {
	return c.load(ctx)
}

func (c *Contract) load(ctx context.Context) (*Config, error) {
	cfg, err := c.store.Load(ctx)
	if err != nil {
		if errors.Is(err, ErrUninitialized) {
			return nil, apperrors.ResourceNotFoundError(err, "gateway not initialized")
		}
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func (c *Contract) loadAsOwner(ctx context.Context, info MessageInfo) (*Config, error) {
	cfg, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	if info.Sender != cfg.Owner {
		return nil, apperrors.ForbiddenError(ErrUnauthorized, "Unauthorized")
	}
	return cfg, nil
}
