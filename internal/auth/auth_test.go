package auth

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
)

const (
	testSecret = "test-gateway-secret"
	testWallet = "0x00aabbccddeeff00aabbccddeeff00aabbccddee"
)

func TestVerifyValidSignature(t *testing.T) {
	v := NewGatewayVerifier(testSecret)
	r := httptest.NewRequest("POST", "/api/duels", nil)
	r.Header.Set(HeaderWallet, testWallet)
	r.Header.Set(HeaderSignature, Sign(testSecret, testWallet))

	wallet, err := v.Verify(r)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if wallet != testWallet {
		t.Fatalf("wallet = %q, want %q", wallet, testWallet)
	}
}

func TestVerifyNormalizesCase(t *testing.T) {
	v := NewGatewayVerifier(testSecret)
	r := httptest.NewRequest("POST", "/api/duels", nil)
	r.Header.Set(HeaderWallet, "0x"+strings.ToUpper(testWallet[2:]))
	r.Header.Set(HeaderSignature, Sign(testSecret, testWallet))

	wallet, err := v.Verify(r)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if wallet != testWallet {
		t.Fatalf("wallet = %q, want lowercase %q", wallet, testWallet)
	}
}

func TestVerifyRejections(t *testing.T) {
	v := NewGatewayVerifier(testSecret)
	cases := []struct {
		name   string
		wallet string
		sig    string
		want   error
	}{
		{"missing headers", "", "", ErrMissingHeaders},
		{"missing signature", testWallet, "", ErrMissingHeaders},
		{"bad address", "not-an-address", Sign(testSecret, "not-an-address"), ErrBadAddress},
		{"wrong secret", testWallet, Sign("other-secret", testWallet), ErrBadSignature},
		{"signature for another wallet", testWallet, Sign(testSecret, "0x2222222222222222222222222222222222222222"), ErrBadSignature},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/api/duels", nil)
			if tc.wallet != "" {
				r.Header.Set(HeaderWallet, tc.wallet)
			}
			if tc.sig != "" {
				r.Header.Set(HeaderSignature, tc.sig)
			}
			if _, err := v.Verify(r); !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
}
