package auth

import (
	"context"
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chainsafe/custody-gateway/pkg/config"
)

func signMessage(t *testing.T, message string) (string, string) {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	sig, err := crypto.Sign(personalHash(message), key)
	require.NoError(t, err)
	sig[crypto.RecoveryIDOffset] += 27
	return hexutil.Encode(sig), crypto.PubkeyToAddress(key.PublicKey).Hex()
}

func TestVerifyEIP191Signature(t *testing.T) {
	sig, addr := signMessage(t, "deposit:1700000000")

	recovered, err := VerifyEIP191Signature("deposit:1700000000", sig)
	require.NoError(t, err)
	assert.Equal(t, addr, recovered.Hex())

	other, err := VerifyEIP191Signature("deposit:1700000001", sig)
	require.NoError(t, err)
	assert.NotEqual(t, addr, other.Hex())

	_, err = VerifyEIP191Signature("m", "0x1234")
	require.Error(t, err)
	_, err = VerifyEIP191Signature("m", "not-hex")
	require.Error(t, err)
}

type jwksServer struct {
	*httptest.Server
	key *rsa.PrivateKey
}

func newJWKSServer(t *testing.T) *jwksServer {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(JWKS{Keys: []JWK{{
			Kid: "test-key",
			Kty: "RSA",
			Alg: "RS256",
			Use: "sig",
			N:   base64.RawURLEncoding.EncodeToString(key.N.Bytes()),
			E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.E)).Bytes()),
		}}})
	}))
	t.Cleanup(srv.Close)
	return &jwksServer{Server: srv, key: key}
}

func (s *jwksServer) token(t *testing.T, claims jwt.RegisteredClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = "test-key"
	signed, err := token.SignedString(s.key)
	require.NoError(t, err)
	return signed
}

func TestJWTValidator_Subject(t *testing.T) {
	srv := newJWKSServer(t)
	v := NewJWTValidator(srv.URL, "https://issuer.example")
	ctx := context.Background()
	exp := jwt.NewNumericDate(time.Now().Add(time.Hour))

	sub, err := v.Subject(ctx, srv.token(t, jwt.RegisteredClaims{
		Subject: "owner-1", Issuer: "https://issuer.example", ExpiresAt: exp,
	}))
	require.NoError(t, err)
	assert.Equal(t, "owner-1", sub)

	_, err = v.Subject(ctx, srv.token(t, jwt.RegisteredClaims{
		Subject: "owner-1", Issuer: "https://other.example", ExpiresAt: exp,
	}))
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = v.Subject(ctx, srv.token(t, jwt.RegisteredClaims{
		Subject: "owner-1", Issuer: "https://issuer.example",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}))
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = v.Subject(ctx, srv.token(t, jwt.RegisteredClaims{
		Issuer: "https://issuer.example", ExpiresAt: exp,
	}))
	require.ErrorIs(t, err, ErrInvalidToken)
}

func callerEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller, err := RequireCaller(r)
		if err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		body, _ := io.ReadAll(r.Body)
		_, _ = fmt.Fprintf(w, "%s|%s|%s", caller, MethodFromContext(r.Context()), body)
	})
}

type signedRequest struct {
	method string
	target string
	body   string
	nonce  string
	ts     int64
}

// sign returns the signature headers of req signed by key.
func sign(t *testing.T, key *ecdsa.PrivateKey, req signedRequest) map[string]string {
	t.Helper()
	msg := SigningMessage(req.method, req.target, []byte(req.body), req.nonce, req.ts)
	sig, err := crypto.Sign(personalHash(msg), key)
	require.NoError(t, err)
	sig[crypto.RecoveryIDOffset] += 27
	return map[string]string{
		HeaderAddress:   crypto.PubkeyToAddress(key.PublicKey).Hex(),
		HeaderSignature: hexutil.Encode(sig),
		HeaderTimestamp: strconv.FormatInt(req.ts, 10),
		HeaderNonce:     req.nonce,
	}
}

func serve(handler http.Handler, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestMiddleware(t *testing.T) {
	srv := newJWKSServer(t)
	now := time.Unix(1_700_000_000, 0)

	a := NewAuthenticator(&config.AuthConfig{
		JWKSURL:            srv.URL,
		AllowSignatureAuth: true,
		SignatureMaxAge:    5 * time.Minute,
	}, zap.NewNop())
	a.now = func() time.Time { return now }
	handler := a.Middleware(callerEcho())

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	signer := crypto.PubkeyToAddress(key.PublicKey).Hex()

	body := `{"token_kind":"uatom","amount":"5"}`
	fresh := signedRequest{method: http.MethodPost, target: "/v1/deposits", body: body, nonce: "n-1", ts: now.Unix()}
	stale := fresh
	stale.nonce, stale.ts = "n-2", now.Add(-time.Hour).Unix()
	noNonce := fresh
	noNonce.nonce = ""

	bearer := srv.token(t, jwt.RegisteredClaims{
		Subject:   "owner-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})

	tests := []struct {
		name     string
		headers  map[string]string
		wantCode int
		wantBody string
	}{
		{name: "anonymous", wantCode: http.StatusUnauthorized},
		{
			name:     "bearer token",
			headers:  map[string]string{"Authorization": "Bearer " + bearer},
			wantCode: http.StatusOK,
			wantBody: "owner-1|jwt|" + body,
		},
		{
			name:     "bad bearer token",
			headers:  map[string]string{"Authorization": "Bearer nope"},
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "signed request",
			headers:  sign(t, key, fresh),
			wantCode: http.StatusOK,
			wantBody: signer + "|eip191|" + body,
		},
		{
			name:     "stale signature",
			headers:  sign(t, key, stale),
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "missing nonce",
			headers:  sign(t, key, noNonce),
			wantCode: http.StatusUnauthorized,
		},
		{
			name: "malformed timestamp",
			headers: map[string]string{
				HeaderAddress:   signer,
				HeaderSignature: sign(t, key, fresh)[HeaderSignature],
				HeaderTimestamp: "yesterday",
				HeaderNonce:     "n-3",
			},
			wantCode: http.StatusUnauthorized,
		},
		{
			name: "signature of another address",
			headers: func() map[string]string {
				h := sign(t, key, signedRequest{method: http.MethodPost, target: "/v1/deposits", body: body, nonce: "n-5", ts: now.Unix()})
				h[HeaderAddress] = "0x00000000000000000000000000000000000000aa"
				return h
			}(),
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "timestamp without signature",
			headers:  map[string]string{HeaderTimestamp: strconv.FormatInt(now.Unix(), 10), HeaderNonce: "n-4"},
			wantCode: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(handler, http.MethodPost, "/v1/deposits", body, tt.headers)

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestMiddleware_SignatureBoundToRequest(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	a := NewAuthenticator(&config.AuthConfig{AllowSignatureAuth: true}, zap.NewNop())
	a.now = func() time.Time { return now }
	handler := a.Middleware(callerEcho())

	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	instantiate := signedRequest{
		method: http.MethodPost,
		target: "/v1/instantiate",
		body:   `{"admin_destination":"W"}`,
		nonce:  "login-1",
		ts:     now.Unix(),
	}
	headers := sign(t, key, instantiate)

	rec := serve(handler, instantiate.method, instantiate.target, instantiate.body, headers)
	require.Equal(t, http.StatusOK, rec.Code)

	tests := []struct {
		name   string
		method string
		target string
		body   string
	}{
		{"same request again", instantiate.method, instantiate.target, instantiate.body},
		{"other path and body", http.MethodPut, "/v1/config/admin-destination", `{"new_admin_destination":"attacker"}`},
		{"same path other body", instantiate.method, instantiate.target, `{"admin_destination":"attacker"}`},
		{"other query", instantiate.method, instantiate.target + "?x=1", instantiate.body},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(handler, tt.method, tt.target, tt.body, headers)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}

	t.Run("fresh nonce for a new request", func(t *testing.T) {
		update := signedRequest{
			method: http.MethodPut,
			target: "/v1/config/admin-destination",
			body:   `{"new_admin_destination":"W2"}`,
			nonce:  "login-2",
			ts:     now.Unix(),
		}
		rec := serve(handler, update.method, update.target, update.body, sign(t, key, update))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("nonces are per signer", func(t *testing.T) {
		other, err := crypto.GenerateKey()
		require.NoError(t, err)
		rec := serve(handler, instantiate.method, instantiate.target, instantiate.body, sign(t, other, instantiate))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestMiddleware_SignatureDisabled(t *testing.T) {
	a := NewAuthenticator(&config.AuthConfig{AllowSignatureAuth: false}, zap.NewNop())
	handler := a.Middleware(callerEcho())

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	headers := sign(t, key, signedRequest{method: http.MethodGet, target: "/", nonce: "n", ts: time.Now().Unix()})

	rec := serve(handler, http.MethodGet, "/", "", headers)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
