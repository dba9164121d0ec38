package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chainsafe/custody-gateway/pkg/custody"
	"github.com/chainsafe/custody-gateway/pkg/custodystore"
	"github.com/chainsafe/custody-gateway/pkg/gateway"
)

const serviceName = "GatewayService"

// logService wraps Service with automatic logging of all method calls
type logService struct {
	svc    Service
	logger *zap.Logger
}

// NewLog creates a logging decorator for the gateway Service.
// It logs method entry/exit, duration, errors and the request fields of each call.
func NewLog(svc Service, logger *zap.Logger) Service {
	return &logService{
		svc:    svc,
		logger: logger,
	}
}

func (ls *logService) done(method string, start time.Time, err error, fields ...zap.Field) {
	fields = append(fields,
		zap.String("service", serviceName),
		zap.String("method", method),
		zap.Duration("duration", time.Since(start)),
	)
	if err != nil {
		ls.logger.Error(method+" failed", append(fields, zap.Error(err))...)
		return
	}
	ls.logger.Info(method+" completed", fields...)
}

// CreateConfig wraps the service method with logging
func (ls *logService) CreateConfig(
	ctx context.Context,
	caller string,
	req *gateway.InstantiateRequest,
) (resp *gateway.Response, err error) {
	start := time.Now()
	ls.logger.Info("CreateConfig started",
		zap.String("service", serviceName),
		zap.String("method", "CreateConfig"),
		zap.String("caller", caller),
		zap.String("admin_destination", req.AdminDestination),
	)
	defer func() { ls.done("CreateConfig", start, err, zap.String("caller", caller)) }()

	return ls.svc.CreateConfig(ctx, caller, req)
}

// AddWhitelistedToken wraps the service method with logging
func (ls *logService) AddWhitelistedToken(
	ctx context.Context,
	caller string,
	req *gateway.WhitelistRequest,
) (resp *gateway.Response, err error) {
	start := time.Now()
	ls.logger.Info("AddWhitelistedToken started",
		zap.String("service", serviceName),
		zap.String("method", "AddWhitelistedToken"),
		zap.String("caller", caller),
		zap.String("token_kind", req.TokenKind),
	)
	defer func() {
		ls.done("AddWhitelistedToken", start, err,
			zap.String("caller", caller),
			zap.String("token_kind", req.TokenKind))
	}()

	return ls.svc.AddWhitelistedToken(ctx, caller, req)
}

// RemoveWhitelistedToken wraps the service method with logging
func (ls *logService) RemoveWhitelistedToken(
	ctx context.Context,
	caller string,
	req *gateway.WhitelistRequest,
) (resp *gateway.Response, err error) {
	start := time.Now()
	ls.logger.Info("RemoveWhitelistedToken started",
		zap.String("service", serviceName),
		zap.String("method", "RemoveWhitelistedToken"),
		zap.String("caller", caller),
		zap.String("token_kind", req.TokenKind),
	)
	defer func() {
		ls.done("RemoveWhitelistedToken", start, err,
			zap.String("caller", caller),
			zap.String("token_kind", req.TokenKind))
	}()

	return ls.svc.RemoveWhitelistedToken(ctx, caller, req)
}

// UpdateAdminDestination wraps the service method with logging
func (ls *logService) UpdateAdminDestination(
	ctx context.Context,
	caller string,
	req *gateway.UpdateAdminRequest,
) (resp *gateway.Response, err error) {
	start := time.Now()
	ls.logger.Info("UpdateAdminDestination started",
		zap.String("service", serviceName),
		zap.String("method", "UpdateAdminDestination"),
		zap.String("caller", caller),
		zap.String("new_admin_destination", req.NewAdminDestination),
	)
	defer func() { ls.done("UpdateAdminDestination", start, err, zap.String("caller", caller)) }()

	return ls.svc.UpdateAdminDestination(ctx, caller, req)
}

// DepositToken wraps the service method with logging
func (ls *logService) DepositToken(
	ctx context.Context,
	caller string,
	req *gateway.DepositRequest,
) (resp *gateway.Response, err error) {
	start := time.Now()
	ls.logger.Info("DepositToken started",
		zap.String("service", serviceName),
		zap.String("method", "DepositToken"),
		zap.String("caller", caller),
		zap.String("token_kind", req.TokenKind),
		zap.String("kind", req.Kind),
		zap.String("amount", req.Amount.String()),
		zap.Int("funds", len(req.Funds)),
		zap.String("funds_tx", req.FundsTx),
	)
	defer func() {
		fields := []zap.Field{zap.String("caller", caller), zap.String("token_kind", req.TokenKind)}
		if err == nil && resp.Record != nil {
			fields = append(fields,
				zap.String("deposit_id", resp.Record.ID.String()),
				zap.String("token_type", string(resp.Record.Class)),
				zap.String("destination", resp.Record.Destination),
				zap.Strings("settlements", resp.Settlements))
		}
		ls.done("DepositToken", start, err, fields...)
	}()

	return ls.svc.DepositToken(ctx, caller, req)
}

// GetConfig wraps the service method with logging
func (ls *logService) GetConfig(ctx context.Context) (cfg *custody.Config, err error) {
	start := time.Now()
	defer func() {
		if err != nil {
			ls.done("GetConfig", start, err)
			return
		}
		ls.logger.Debug("GetConfig completed",
			zap.String("service", serviceName),
			zap.Int("whitelist_size", len(cfg.Whitelist)),
			zap.Duration("duration", time.Since(start)))
	}()

	return ls.svc.GetConfig(ctx)
}

// ListDeposits wraps the service method with logging
func (ls *logService) ListDeposits(
	ctx context.Context,
	filter custodystore.DepositFilter,
) (deposits []*custody.DepositRecord, err error) {
	start := time.Now()
	defer func() {
		if err != nil {
			ls.done("ListDeposits", start, err)
			return
		}
		ls.logger.Debug("ListDeposits completed",
			zap.String("service", serviceName),
			zap.String("sender", filter.Sender),
			zap.String("token_kind", filter.TokenKind),
			zap.Int("count", len(deposits)),
			zap.Duration("duration", time.Since(start)))
	}()

	return ls.svc.ListDeposits(ctx, filter)
}

// GetDeposit wraps the service method with logging
func (ls *logService) GetDeposit(ctx context.Context, id uuid.UUID) (rec *custody.DepositRecord, err error) {
	start := time.Now()
	defer func() {
		if err != nil {
			ls.done("GetDeposit", start, err, zap.String("deposit_id", id.String()))
		}
	}()

	return ls.svc.GetDeposit(ctx, id)
}
