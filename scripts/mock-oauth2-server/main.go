// mock-oauth2-server issues RS256 bearer tokens for local gateway testing and
// publishes the signing key as a JWKS document.
//
// Usage:
//
//	go run ./scripts/mock-oauth2-server
//
// Then point the gateway at it:
//
//	auth:
//	  jwks_url: http://localhost:8088/.well-known/jwks.json
//	  issuer: http://localhost:8088
package main

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/chainsafe/custody-gateway/pkg/auth"
)

const (
	keyID    = "local-dev"
	tokenTTL = 24 * time.Hour
)

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type issuer struct {
	key *rsa.PrivateKey
	url string
}

func main() {
	port := flag.Int("port", 8088, "Listen port")
	flag.Parse()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		log.Fatalf("failed to generate signing key: %v", err)
	}
	iss := &issuer{key: key, url: fmt.Sprintf("http://localhost:%d", *port)}

	http.HandleFunc("/oauth/token", iss.handleToken)
	http.HandleFunc("/.well-known/jwks.json", iss.handleJWKS)
	http.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("OK"))
	})

	addr := fmt.Sprintf(":%d", *port)
	log.Printf("Mock OAuth2 server starting on %s", iss.url)
	log.Printf("POST /oauth/token            - Returns an RS256 JWT, sub = client_id")
	log.Printf("GET  /.well-known/jwks.json  - Signing key set")
	log.Fatal(http.ListenAndServe(addr, nil))
}

func (i *issuer) handleJWKS(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(auth.JWKS{Keys: []auth.JWK{{
		Kid: keyID,
		Kty: "RSA",
		Alg: "RS256",
		Use: "sig",
		N:   base64.RawURLEncoding.EncodeToString(i.key.N.Bytes()),
		E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(i.key.E)).Bytes()),
	}}})
}

func (i *issuer) handleToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var clientID string
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "Failed to parse JSON body", http.StatusBadRequest)
			return
		}
		clientID = body["client_id"]
	} else {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Failed to parse form", http.StatusBadRequest)
			return
		}
		clientID = r.FormValue("client_id")
	}
	if clientID == "" {
		clientID = "local-user"
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.RegisteredClaims{
		Issuer:    i.url,
		Subject:   clientID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
	})
	token.Header["kid"] = keyID
	signed, err := token.SignedString(i.key)
	if err != nil {
		http.Error(w, "Failed to sign token", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(tokenResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   int(tokenTTL.Seconds()),
	})
	log.Printf("Issued token for sub=%s", clientID)
}
