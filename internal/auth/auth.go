// Package auth verifies wallet identity headers set by the authenticating
// gateway in front of the API. The gateway signs the caller's wallet address
// with a shared HMAC secret; the service only has to check the signature.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

const (
	HeaderWallet    = "X-Wallet-Address"
	HeaderSignature = "X-Auth-Signature"
)

var (
	ErrMissingHeaders = errors.New("missing wallet auth headers")
	ErrBadAddress     = errors.New("malformed wallet address")
	ErrBadSignature   = errors.New("wallet signature mismatch")
)

// Verifier authenticates a request and returns the caller's wallet address
// in lowercase hex form.
type Verifier interface {
	Verify(r *http.Request) (string, error)
}

// GatewayVerifier checks the gateway's HMAC-SHA256 signature over the
// lowercase wallet address.
type GatewayVerifier struct {
	secret []byte
}

func NewGatewayVerifier(secret string) *GatewayVerifier {
	return &GatewayVerifier{secret: []byte(secret)}
}

func (v *GatewayVerifier) Verify(r *http.Request) (string, error) {
	wallet := strings.ToLower(strings.TrimSpace(r.Header.Get(HeaderWallet)))
	sig := strings.TrimSpace(r.Header.Get(HeaderSignature))
	if wallet == "" || sig == "" {
		return "", ErrMissingHeaders
	}
	if !common.IsHexAddress(wallet) {
		return "", ErrBadAddress
	}

	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(wallet))
	want := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(want), []byte(strings.ToLower(sig))) {
		return "", ErrBadSignature
	}
	return wallet, nil
}

// Sign produces the signature the gateway would attach for a wallet. Used
// by tests and local tooling.
func Sign(secret, wallet string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strings.ToLower(wallet)))
	return hex.EncodeToString(mac.Sum(nil))
}
