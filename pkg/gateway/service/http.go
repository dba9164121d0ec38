package service

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/chainsafe/custody-gateway/pkg/app/errors"
	apphttp "github.com/chainsafe/custody-gateway/pkg/app/http"
	"github.com/chainsafe/custody-gateway/pkg/auth"
	"github.com/chainsafe/custody-gateway/pkg/custodystore"
	"github.com/chainsafe/custody-gateway/pkg/gateway"
)

// HTTP wraps the Service to provide HTTP endpoints
type HTTP struct {
	service Service
	logger  *zap.Logger
}

// RegisterRoutes registers the gateway endpoints on r. writeMiddleware is
// applied to the state-changing endpoints only.
func RegisterRoutes(r chi.Router, service Service, logger *zap.Logger, writeMiddleware ...func(http.Handler) http.Handler) {
	h := &HTTP{
		service: service,
		logger:  logger,
	}

	r.Get("/config", apphttp.HandleError(h.getConfig))
	r.Get("/deposits", apphttp.HandleError(h.listDeposits))
	r.Get("/deposits/{id}", apphttp.HandleError(h.getDeposit))

	r.Group(func(r chi.Router) {
		r.Use(writeMiddleware...)
		r.Post("/instantiate", apphttp.HandleError(h.instantiate))
		r.Post("/whitelist/add", apphttp.HandleError(h.addWhitelistedToken))
		r.Post("/whitelist/remove", apphttp.HandleError(h.removeWhitelistedToken))
		r.Put("/config/admin-destination", apphttp.HandleError(h.updateAdminDestination))
		r.Post("/deposits", apphttp.HandleError(h.deposit))
	})
}

func (h *HTTP) instantiate(w http.ResponseWriter, r *http.Request) error {
	caller, err := auth.RequireCaller(r)
	if err != nil {
		return err
	}
	var req gateway.InstantiateRequest
	if err := apphttp.DecodeJSON(r, &req); err != nil {
		return err
	}

	resp, err := h.service.CreateConfig(r.Context(), caller, &req)
	if err != nil {
		return err
	}
	apphttp.WriteJSON(w, http.StatusCreated, resp)
	return nil
}

func (h *HTTP) addWhitelistedToken(w http.ResponseWriter, r *http.Request) error {
	caller, err := auth.RequireCaller(r)
	if err != nil {
		return err
	}
	var req gateway.WhitelistRequest
	if err := apphttp.DecodeJSON(r, &req); err != nil {
		return err
	}

	resp, err := h.service.AddWhitelistedToken(r.Context(), caller, &req)
	if err != nil {
		return err
	}
	apphttp.WriteJSON(w, http.StatusOK, resp)
	return nil
}

func (h *HTTP) removeWhitelistedToken(w http.ResponseWriter, r *http.Request) error {
	caller, err := auth.RequireCaller(r)
	if err != nil {
		return err
	}
	var req gateway.WhitelistRequest
	if err := apphttp.DecodeJSON(r, &req); err != nil {
		return err
	}

	resp, err := h.service.RemoveWhitelistedToken(r.Context(), caller, &req)
	if err != nil {
		return err
	}
	apphttp.WriteJSON(w, http.StatusOK, resp)
	return nil
}

func (h *HTTP) updateAdminDestination(w http.ResponseWriter, r *http.Request) error {
	caller, err := auth.RequireCaller(r)
	if err != nil {
		return err
	}
	var req gateway.UpdateAdminRequest
	if err := apphttp.DecodeJSON(r, &req); err != nil {
		return err
	}

	resp, err := h.service.UpdateAdminDestination(r.Context(), caller, &req)
	if err != nil {
		return err
	}
	apphttp.WriteJSON(w, http.StatusOK, resp)
	return nil
}

func (h *HTTP) deposit(w http.ResponseWriter, r *http.Request) error {
	caller, err := auth.RequireCaller(r)
	if err != nil {
		return err
	}
	var req gateway.DepositRequest
	if err := apphttp.DecodeJSON(r, &req); err != nil {
		return err
	}

	resp, err := h.service.DepositToken(r.Context(), caller, &req)
	if err != nil {
		return err
	}
	apphttp.WriteJSON(w, http.StatusOK, resp)
	return nil
}

func (h *HTTP) getConfig(w http.ResponseWriter, r *http.Request) error {
	cfg, err := h.service.GetConfig(r.Context())
	if err != nil {
		return err
	}
	apphttp.WriteJSON(w, http.StatusOK, cfg)
	return nil
}

func (h *HTTP) listDeposits(w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()
	filter := custodystore.DepositFilter{
		Sender:    q.Get("sender"),
		TokenKind: q.Get("token_kind"),
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			return apperrors.BadRequestError(err, "invalid limit")
		}
		filter.Limit = limit
	}

	deposits, err := h.service.ListDeposits(r.Context(), filter)
	if err != nil {
		return err
	}
	apphttp.WriteJSON(w, http.StatusOK, &gateway.DepositList{Deposits: deposits})
	return nil
}

func (h *HTTP) getDeposit(w http.ResponseWriter, r *http.Request) error {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return apperrors.BadRequestError(err, "invalid deposit id")
	}

	rec, err := h.service.GetDeposit(r.Context(), id)
	if err != nil {
		return err
	}
	apphttp.WriteJSON(w, http.StatusOK, rec)
	return nil
}

// RegisterSandboxRoutes registers the sandbox ledger endpoints on r.
func RegisterSandboxRoutes(r chi.Router, sandbox Sandbox) {
	r.Post("/fund", apphttp.HandleError(func(w http.ResponseWriter, r *http.Request) error {
		var req gateway.FundRequest
		if err := apphttp.DecodeJSON(r, &req); err != nil {
			return err
		}
		resp, err := sandbox.Fund(r.Context(), &req)
		if err != nil {
			return err
		}
		apphttp.WriteJSON(w, http.StatusOK, resp)
		return nil
	}))

	r.Post("/approve", apphttp.HandleError(func(w http.ResponseWriter, r *http.Request) error {
		caller, err := auth.RequireCaller(r)
		if err != nil {
			return err
		}
		var req gateway.ApproveRequest
		if err := apphttp.DecodeJSON(r, &req); err != nil {
			return err
		}
		if err := sandbox.Approve(r.Context(), caller, &req); err != nil {
			return err
		}
		w.WriteHeader(http.StatusNoContent)
		return nil
	}))

	r.Get("/balances/{account}", apphttp.HandleError(func(w http.ResponseWriter, r *http.Request) error {
		resp, err := sandbox.Balances(r.Context(), chi.URLParam(r, "account"))
		if err != nil {
			return err
		}
		apphttp.WriteJSON(w, http.StatusOK, resp)
		return nil
	}))
}
