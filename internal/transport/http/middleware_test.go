package httptransport

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bentodar-netizen/honeycomb-duels/internal/auth"
	"github.com/bentodar-netizen/honeycomb-duels/internal/duel"
	"github.com/bentodar-netizen/honeycomb-duels/internal/escrow"
	"github.com/bentodar-netizen/honeycomb-duels/internal/oracle"
	"github.com/bentodar-netizen/honeycomb-duels/internal/store"
)

func TestCheckAdminAuth(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/bot/config", nil)
	if CheckAdminAuth(r, "secret") {
		t.Fatal("no credentials must not pass")
	}
	r.Header.Set("X-Admin-Key", "secret")
	if !CheckAdminAuth(r, "secret") {
		t.Fatal("X-Admin-Key must pass")
	}
	r.Header.Del("X-Admin-Key")
	r.Header.Set("Authorization", "Bearer secret")
	if !CheckAdminAuth(r, "secret") {
		t.Fatal("bearer token must pass")
	}
	r.Header.Set("Authorization", "Bearer wrong")
	if CheckAdminAuth(r, "secret") {
		t.Fatal("wrong bearer token must not pass")
	}
}

func TestParsePagination(t *testing.T) {
	cases := []struct {
		query       string
		limit, offs int
	}{
		{"", 50, 0},
		{"?limit=10&offset=20", 10, 20},
		{"?limit=0", 1, 0},
		{"?limit=9999", 500, 0},
		{"?offset=-5", 50, 0},
		{"?limit=abc", 50, 0},
	}
	for _, tc := range cases {
		r := httptest.NewRequest("GET", "/api/public/duels"+tc.query, nil)
		limit, offset := ParsePagination(r)
		if limit != tc.limit || offset != tc.offs {
			t.Fatalf("ParsePagination(%q) = (%d, %d), want (%d, %d)", tc.query, limit, offset, tc.limit, tc.offs)
		}
	}
}

func TestSettleAuthAcceptsKeeperKeyOrWallet(t *testing.T) {
	const secret = "gateway-secret"
	const wallet = "0x00aabbccddeeff00aabbccddeeff00aabbccddee"
	mw := SettleAuthMiddleware(auth.NewGatewayVerifier(secret), "keeper-key")
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })

	run := func(set func(*http.Request)) int {
		r := httptest.NewRequest("POST", "/api/duels/d1/settle", nil)
		set(r)
		rec := httptest.NewRecorder()
		mw(next).ServeHTTP(rec, r)
		return rec.Code
	}

	if code := run(func(r *http.Request) { r.Header.Set("Authorization", "Bearer keeper-key") }); code != http.StatusNoContent {
		t.Fatalf("keeper key got %d, want 204", code)
	}
	if code := run(func(r *http.Request) {
		r.Header.Set(auth.HeaderWallet, wallet)
		r.Header.Set(auth.HeaderSignature, auth.Sign(secret, wallet))
	}); code != http.StatusNoContent {
		t.Fatalf("wallet auth got %d, want 204", code)
	}
	if code := run(func(*http.Request) {}); code != http.StatusUnauthorized {
		t.Fatalf("anonymous got %d, want 401", code)
	}
	if code := run(func(r *http.Request) { r.Header.Set("Authorization", "Bearer wrong") }); code != http.StatusUnauthorized {
		t.Fatalf("wrong key got %d, want 401", code)
	}
}

func TestWriteDuelErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{duel.ErrNotFound, http.StatusNotFound},
		{duel.ErrNotCreator, http.StatusForbidden},
		{duel.ErrStakeOutOfBounds, http.StatusBadRequest},
		{duel.ErrInvalidDirection, http.StatusBadRequest},
		{duel.ErrSelfJoin, http.StatusConflict},
		{duel.ErrWrongStatus, http.StatusConflict},
		{duel.ErrJoinWindowClosed, http.StatusConflict},
		{duel.ErrNotExpired, http.StatusConflict},
		{duel.ErrAlreadyReclaimed, http.StatusConflict},
		{store.ErrStaleStatus, http.StatusConflict},
		{oracle.ErrPriceUnavailable, http.StatusServiceUnavailable},
		{escrow.ErrRejected, http.StatusConflict},
		{escrow.ErrUnconfirmed, http.StatusBadGateway},
		{fmt.Errorf("wrapped: %w", escrow.ErrRejected), http.StatusConflict},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		writeDuelError(rec, tc.err)
		if rec.Code != tc.status {
			t.Fatalf("writeDuelError(%v) = %d, want %d", tc.err, rec.Code, tc.status)
		}
	}
}
