package auth

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"

	apperrors "github.com/chainsafe/custody-gateway/pkg/app/errors"
	apphttp "github.com/chainsafe/custody-gateway/pkg/app/http"
	"github.com/chainsafe/custody-gateway/pkg/config"
)

// Request headers of an EIP-191 signed request. The signed message is rebuilt
// by the server from the request itself, see SigningMessage.
const (
	HeaderAddress   = "X-Address"
	HeaderSignature = "X-Signature"
	HeaderTimestamp = "X-Timestamp"
	HeaderNonce     = "X-Nonce"
)

const (
	defaultSignatureMaxAge = 5 * time.Minute
	maxSignedBodyBytes     = 1 << 20
	maxNonceLength         = 128
	seenNonceEntries       = 100_000
)

var (
	ErrStaleMessage      = errors.New("signed message expired")
	ErrMessageTimestamp  = errors.New("X-Timestamp must be unix seconds")
	ErrInvalidNonce      = errors.New("X-Nonce must be 1 to 128 characters")
	ErrReplayedSignature = errors.New("nonce already used")
	ErrBodyTooLarge      = errors.New("signed request body too large")
	ErrSignerMismatch    = errors.New("signature does not match X-Address")
)

// SigningMessage returns the text a client signs for a request. It commits to
// the method, the request URI, the SHA-256 of the body, a nonce and the time.
func SigningMessage(method, requestURI string, body []byte, nonce string, timestamp int64) string {
	sum := sha256.Sum256(body)
	return fmt.Sprintf(
		"custody-gateway request\nmethod: %s\npath: %s\nbody-sha256: %s\nnonce: %s\ntimestamp: %d",
		strings.ToUpper(method), requestURI, hex.EncodeToString(sum[:]), nonce, timestamp,
	)
}

// Authenticator establishes the caller of an HTTP request. Requests without
// credentials pass through anonymous; handlers that need a caller reject them.
type Authenticator struct {
	jwt            *JWTValidator
	allowSignature bool
	maxAge         time.Duration
	now            func() time.Time
	logger         *zap.Logger

	// signer and nonce pairs accepted within the freshness window
	seenMu sync.Mutex
	seen   *expirable.LRU[string, struct{}]
}

// NewAuthenticator creates an Authenticator from configuration.
func NewAuthenticator(cfg *config.AuthConfig, logger *zap.Logger) *Authenticator {
	var validator *JWTValidator
	if cfg.JWKSURL != "" {
		validator = NewJWTValidator(cfg.JWKSURL, cfg.Issuer)
	}
	maxAge := cfg.SignatureMaxAge
	if maxAge <= 0 {
		maxAge = defaultSignatureMaxAge
	}
	return &Authenticator{
		jwt:            validator,
		allowSignature: cfg.AllowSignatureAuth,
		maxAge:         maxAge,
		now:            time.Now,
		logger:         logger,
		// a nonce must outlive every timestamp that can still pass the freshness check
		seen: expirable.NewLRU[string, struct{}](seenNonceEntries, nil, 2*maxAge),
	}
}

// Middleware attaches the authenticated caller to the request context.
// Invalid credentials are rejected with 401.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller, method, err := a.authenticate(r)
		if err != nil {
			a.logger.Warn("Authentication failed",
				zap.String("path", r.URL.Path),
				zap.Error(err))
			apphttp.DefaultErrorHandler(w, apperrors.UnAuthorizedError(err, "authentication failed"))
			return
		}
		if caller != "" {
			r = r.WithContext(WithCaller(r.Context(), caller, method))
		}
		next.ServeHTTP(w, r)
	})
}

func (a *Authenticator) authenticate(r *http.Request) (caller, method string, err error) {
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		if !a.jwt.IsConfigured() {
			return "", "", errors.New("bearer authentication is not configured")
		}
		subject, err := a.jwt.Subject(r.Context(), strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			return "", "", err
		}
		return subject, MethodJWT, nil
	}

	address := r.Header.Get(HeaderAddress)
	signature := r.Header.Get(HeaderSignature)
	timestamp := r.Header.Get(HeaderTimestamp)
	nonce := r.Header.Get(HeaderNonce)
	if address == "" && signature == "" && timestamp == "" && nonce == "" {
		return "", "", nil
	}
	if !a.allowSignature {
		return "", "", errors.New("signature authentication is disabled")
	}
	if signature == "" || !common.IsHexAddress(address) {
		return "", "", errors.New("signature and signer address required")
	}
	if nonce == "" || len(nonce) > maxNonceLength {
		return "", "", ErrInvalidNonce
	}
	ts, err := a.checkFreshness(timestamp)
	if err != nil {
		return "", "", err
	}
	body, err := readBody(r)
	if err != nil {
		return "", "", err
	}

	message := SigningMessage(r.Method, r.URL.RequestURI(), body, nonce, ts)
	addr, err := VerifyEIP191Signature(message, signature)
	if err != nil {
		return "", "", err
	}
	if addr != common.HexToAddress(address) {
		return "", "", ErrSignerMismatch
	}
	if err := a.consumeNonce(addr.Hex(), nonce); err != nil {
		return "", "", err
	}
	return addr.Hex(), MethodSignature, nil
}

func (a *Authenticator) checkFreshness(timestamp string) (int64, error) {
	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return 0, ErrMessageTimestamp
	}
	age := a.now().Sub(time.Unix(ts, 0))
	if age < 0 {
		age = -age
	}
	if age > a.maxAge {
		return 0, fmt.Errorf("%w: signed %s ago", ErrStaleMessage, age.Truncate(time.Second))
	}
	return ts, nil
}

func (a *Authenticator) consumeNonce(signer, nonce string) error {
	key := signer + "|" + nonce
	a.seenMu.Lock()
	defer a.seenMu.Unlock()
	if a.seen.Contains(key) {
		return ErrReplayedSignature
	}
	a.seen.Add(key, struct{}{})
	return nil
}

// readBody buffers the request body for hashing and puts it back for the handler.
func readBody(r *http.Request) ([]byte, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, nil
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxSignedBodyBytes+1))
	_ = r.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	if len(body) > maxSignedBodyBytes {
		return nil, ErrBodyTooLarge
	}
	r.Body = io.NopCloser(bytes.NewReader(body))
	return body, nil
}

// RequireCaller returns the authenticated caller or an Unauthorized error.
func RequireCaller(r *http.Request) (string, error) {
	caller, ok := CallerFromContext(r.Context())
	if !ok {
		return "", apperrors.UnAuthorizedError(nil, "authentication required")
	}
	return caller, nil
}
