package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "github.com/chainsafe/custody-gateway/pkg/app/errors"
	"github.com/chainsafe/custody-gateway/pkg/auth"
	"github.com/chainsafe/custody-gateway/pkg/custody"
	"github.com/chainsafe/custody-gateway/pkg/custodystore"
	"github.com/chainsafe/custody-gateway/pkg/gateway"
	"github.com/chainsafe/custody-gateway/pkg/gateway/service/mocks"
)

const testCallerHeader = "X-Test-Caller"

// newTestServer authenticates requests from the X-Test-Caller header.
func newTestServer(svc Service) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if caller := r.Header.Get(testCallerHeader); caller != "" {
				r = r.WithContext(auth.WithCaller(r.Context(), caller, auth.MethodJWT))
			}
			next.ServeHTTP(w, r)
		})
	})
	RegisterRoutes(r, svc, zap.NewNop())
	return r
}

type errorBody struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

func do(t *testing.T, h http.Handler, method, path, caller, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if caller != "" {
		req.Header.Set(testCallerHeader, caller)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var got errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	return got
}

func TestHTTP_WritesRequireAuthentication(t *testing.T) {
	handler := newTestServer(mocks.NewService(t))

	for _, route := range []struct{ method, path string }{
		{http.MethodPost, "/instantiate"},
		{http.MethodPost, "/whitelist/add"},
		{http.MethodPost, "/whitelist/remove"},
		{http.MethodPut, "/config/admin-destination"},
		{http.MethodPost, "/deposits"},
	} {
		t.Run(route.path, func(t *testing.T) {
			rec := do(t, handler, route.method, route.path, "", `{}`)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, errorBody{Error: "authentication required", Code: http.StatusUnauthorized}, decodeError(t, rec))
		})
	}
}

func TestHTTP_InvalidJSON_ReturnsBadRequest(t *testing.T) {
	handler := newTestServer(mocks.NewService(t))

	rec := do(t, handler, http.MethodPost, "/deposits", alice, "{invalid")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid JSON", decodeError(t, rec).Error)

	rec = do(t, handler, http.MethodPost, "/whitelist/add", owner, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHTTP_Deposit(t *testing.T) {
	svc := mocks.NewService(t)
	record := &custody.DepositRecord{
		ID:        uuid.New(),
		Sender:    alice,
		Amount:    decimal.NewFromInt(100),
		TokenKind: "uatom",
		Class:     custody.TokenClassNative,
	}
	svc.EXPECT().
		DepositToken(mock.Anything, alice, mock.MatchedBy(func(req *gateway.DepositRequest) bool {
			return req.TokenKind == "uatom" && req.Amount.Equal(decimal.NewFromInt(100)) && len(req.Funds) == 1
		})).
		Return(&gateway.Response{Record: record}, nil)
	handler := newTestServer(svc)

	rec := do(t, handler, http.MethodPost, "/deposits", alice,
		`{"token_kind":"uatom","amount":"100","funds":[{"denom":"uatom","amount":"100"}]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got gateway.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.NotNil(t, got.Record)
	assert.Equal(t, record.ID, got.Record.ID)
	assert.Equal(t, custody.TokenClassNative, got.Record.Class)
}

func TestHTTP_ServiceErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{
			name:     "not whitelisted",
			err:      apperrors.ForbiddenError(custody.ErrNotWhitelisted, "Token not whitelisted"),
			wantCode: http.StatusForbidden,
			wantMsg:  "Token not whitelisted",
		},
		{
			name:     "fund mismatch",
			err:      apperrors.BadRequestError(custody.ErrFundMismatch, custody.ErrFundMismatch.Error()),
			wantCode: http.StatusBadRequest,
			wantMsg:  custody.ErrFundMismatch.Error(),
		},
		{
			name:     "uninitialized",
			err:      apperrors.ResourceNotFoundError(custody.ErrUninitialized, "gateway not initialized"),
			wantCode: http.StatusNotFound,
			wantMsg:  "gateway not initialized",
		},
		{
			name:     "unexpected",
			err:      fmt.Errorf("boom"),
			wantCode: http.StatusInternalServerError,
			wantMsg:  "Unexpected Service Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := mocks.NewService(t)
			svc.EXPECT().DepositToken(mock.Anything, alice, mock.Anything).Return(nil, tt.err)
			handler := newTestServer(svc)

			rec := do(t, handler, http.MethodPost, "/deposits", alice, `{"token_kind":"cw20-token","amount":"1"}`)
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, errorBody{Error: tt.wantMsg, Code: tt.wantCode}, decodeError(t, rec))
		})
	}
}

func TestHTTP_OwnerOperations(t *testing.T) {
	svc := mocks.NewService(t)
	svc.EXPECT().
		CreateConfig(mock.Anything, owner, &gateway.InstantiateRequest{AdminDestination: admin}).
		Return(&gateway.Response{Config: &custody.Config{Owner: owner, AdminDestination: admin}}, nil)
	svc.EXPECT().
		AddWhitelistedToken(mock.Anything, owner, &gateway.WhitelistRequest{TokenKind: token}).
		Return(&gateway.Response{}, nil)
	svc.EXPECT().
		RemoveWhitelistedToken(mock.Anything, alice, &gateway.WhitelistRequest{TokenKind: token}).
		Return(nil, apperrors.ForbiddenError(custody.ErrUnauthorized, "Unauthorized"))
	svc.EXPECT().
		UpdateAdminDestination(mock.Anything, owner, &gateway.UpdateAdminRequest{NewAdminDestination: "new-admin"}).
		Return(&gateway.Response{}, nil)
	handler := newTestServer(svc)

	rec := do(t, handler, http.MethodPost, "/instantiate", owner, `{"admin_destination":"admin-wallet"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, handler, http.MethodPost, "/whitelist/add", owner, `{"token_kind":"cw20-token"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, handler, http.MethodPost, "/whitelist/remove", alice, `{"token_kind":"cw20-token"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Unauthorized", decodeError(t, rec).Error)

	rec = do(t, handler, http.MethodPut, "/config/admin-destination", owner, `{"new_admin_destination":"new-admin"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHTTP_Queries(t *testing.T) {
	svc := mocks.NewService(t)
	id := uuid.New()
	svc.EXPECT().GetConfig(mock.Anything).Return(&custody.Config{Owner: owner, Whitelist: []string{token}}, nil)
	svc.EXPECT().
		ListDeposits(mock.Anything, custodystore.DepositFilter{Sender: alice, TokenKind: token, Limit: 5}).
		Return([]*custody.DepositRecord{{ID: id, Sender: alice}}, nil)
	svc.EXPECT().GetDeposit(mock.Anything, id).Return(&custody.DepositRecord{ID: id}, nil)
	handler := newTestServer(svc)

	rec := do(t, handler, http.MethodGet, "/config", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var cfg custody.Config
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cfg))
	assert.Equal(t, []string{token}, cfg.Whitelist)

	rec = do(t, handler, http.MethodGet, "/deposits?sender=alice&token_kind=cw20-token&limit=5", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list gateway.DepositList
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Deposits, 1)
	assert.Equal(t, id, list.Deposits[0].ID)

	rec = do(t, handler, http.MethodGet, "/deposits/"+id.String(), "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, handler, http.MethodGet, "/deposits?limit=many", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, handler, http.MethodGet, "/deposits/not-a-uuid", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid deposit id", decodeError(t, rec).Error)
}

func TestHTTP_Sandbox(t *testing.T) {
	f := newFixture(t, nil)
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if caller := r.Header.Get(testCallerHeader); caller != "" {
				r = r.WithContext(auth.WithCaller(r.Context(), caller, auth.MethodSignature))
			}
			next.ServeHTTP(w, r)
		})
	})
	RegisterSandboxRoutes(r, f.sandbox)

	rec := do(t, r, http.MethodPost, "/fund", "", `{"account":"alice","asset":"uatom","amount":"42"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, r, http.MethodPost, "/approve", "", `{"asset":"cw20-token","amount":"5"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, r, http.MethodPost, "/approve", alice, `{"asset":"cw20-token","amount":"5"}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, r, http.MethodGet, "/balances/alice", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got gateway.BalancesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.Balances, 1)
	assert.Equal(t, "uatom", got.Balances[0].Asset)
	assert.True(t, got.Balances[0].Amount.Equal(decimal.NewFromInt(42)))
}
