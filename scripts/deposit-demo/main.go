// deposit-demo walks a gateway running the sandbox ledger backend through a
// full cycle: instantiate, whitelist a token, fund a user, grant an allowance
// and make one native and one contract-mediated deposit.
//
// Callers authenticate with EIP-191 signed requests, so the gateway needs
// auth.allow_signature_auth and backend.ledger.sandbox enabled. The owner key
// must belong to the address configured as gateway.owner; the admin and user
// keys are throwaway.
//
// Usage:
//
//	go run ./scripts/deposit-demo -url http://localhost:8080 -owner-key <hex>
package main

import (
	"bytes"
	"crypto/ecdsa"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"

	"github.com/chainsafe/custody-gateway/pkg/auth"
)

type wallet struct {
	key     *ecdsa.PrivateKey
	address string
}

func newWallet() *wallet {
	key, err := crypto.GenerateKey()
	if err != nil {
		log.Fatalf("failed to generate key: %v", err)
	}
	return &wallet{key: key, address: crypto.PubkeyToAddress(key.PublicKey).Hex()}
}

func loadWallet(hexKey string) *wallet {
	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		log.Fatalf("invalid owner key: %v", err)
	}
	return &wallet{key: key, address: crypto.PubkeyToAddress(key.PublicKey).Hex()}
}

// sign sets the signature headers of req for the given body.
func (w *wallet) sign(req *http.Request, body []byte) {
	nonce := uuid.NewString()
	ts := time.Now().Unix()
	message := auth.SigningMessage(req.Method, req.URL.RequestURI(), body, nonce, ts)
	sig, err := crypto.Sign(accounts.TextHash([]byte(message)), w.key)
	if err != nil {
		log.Fatalf("failed to sign: %v", err)
	}
	sig[crypto.RecoveryIDOffset] += 27

	req.Header.Set(auth.HeaderAddress, w.address)
	req.Header.Set(auth.HeaderSignature, hexutil.Encode(sig))
	req.Header.Set(auth.HeaderTimestamp, fmt.Sprint(ts))
	req.Header.Set(auth.HeaderNonce, nonce)
}

type client struct {
	baseURL string
	http    *http.Client
}

func (c *client) call(method, path string, caller *wallet, body any) (int, []byte) {
	var (
		payload io.Reader
		raw     []byte
	)
	if body != nil {
		var err error
		raw, err = json.Marshal(body)
		if err != nil {
			log.Fatalf("failed to encode body: %v", err)
		}
		payload = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, c.baseURL+path, payload)
	if err != nil {
		log.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if caller != nil {
		caller.sign(req, raw)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		log.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)

	log.Printf("%s %s -> %d %s", method, path, resp.StatusCode, bytes.TrimSpace(out))
	return resp.StatusCode, out
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "Gateway base URL")
	denom := flag.String("denom", "uatom", "Native denomination to deposit")
	token := flag.String("token", "demo-token", "Contract-mediated token kind")
	ownerKey := flag.String("owner-key", "", "Hex private key of the configured gateway.owner")
	flag.Parse()

	if *ownerKey == "" {
		log.Fatalf("-owner-key is required")
	}
	c := &client{baseURL: *baseURL + "/v1", http: &http.Client{Timeout: 10 * time.Second}}
	owner, admin, user := loadWallet(*ownerKey), newWallet(), newWallet()

	log.Printf("owner=%s admin=%s user=%s", owner.address, admin.address, user.address)

	if code, _ := c.call(http.MethodPost, "/instantiate", owner, map[string]string{
		"admin_destination": admin.address,
	}); code == http.StatusConflict {
		log.Printf("gateway already instantiated, continuing")
	}
	c.call(http.MethodPost, "/whitelist/add", owner, map[string]string{"token_kind": *token})

	c.call(http.MethodPost, "/ledger/fund", nil, map[string]string{"account": user.address, "asset": *denom, "amount": "1000"})
	c.call(http.MethodPost, "/ledger/fund", nil, map[string]string{"account": user.address, "asset": *token, "amount": "500"})
	c.call(http.MethodPost, "/ledger/approve", user, map[string]string{"asset": *token, "amount": "500"})

	c.call(http.MethodPost, "/deposits", user, map[string]any{
		"token_kind": *denom,
		"amount":     "250",
		"funds":      []map[string]string{{"denom": *denom, "amount": "250"}},
	})
	c.call(http.MethodPost, "/deposits", user, map[string]any{
		"token_kind": *token,
		"kind":       "contract",
		"amount":     "200",
	})

	c.call(http.MethodGet, "/ledger/balances/"+admin.address, nil, nil)
	c.call(http.MethodGet, "/deposits?sender="+url.QueryEscape(user.address), nil, nil)
}
