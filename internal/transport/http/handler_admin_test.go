package httptransport

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bentodar-netizen/honeycomb-duels/internal/store"
	"github.com/bentodar-netizen/honeycomb-duels/internal/testutil"
)

func TestBotConfigRoundTrip(t *testing.T) {
	st, cleanup := testutil.OpenTestStore(t)
	defer cleanup()

	seed := &store.HouseBotConfig{
		Enabled:         false,
		MaxStakeWei:     big.NewInt(1_000_000),
		DailyLossCapWei: big.NewInt(10_000_000),
		MaxConcurrent:   2,
		AllowedAssets:   []string{"BNB"},
		AllowedTypes:    []string{"price-direction"},
	}
	if err := st.EnsureHouseBotConfig(context.Background(), seed); err != nil {
		t.Fatalf("seed bot config: %v", err)
	}

	h := NewAdminHandlers(st, nil, nil, nil)

	rec := httptest.NewRecorder()
	h.BotConfig()(rec, httptest.NewRequest(http.MethodGet, "/admin/bot/config", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	var got botConfigView
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Enabled || got.MaxStakeWei != "1000000" || got.MaxConcurrent != 2 {
		t.Fatalf("unexpected config %+v", got)
	}

	body := `{"enabled":true,"wallet_address":"0x00aabbccddeeff00aabbccddeeff00aabbccddee","max_stake_wei":"5000000","daily_loss_cap_wei":"20000000","max_concurrent":4,"allowed_assets":["BNB","ETH"],"allowed_types":["price-direction","random"]}`
	rec = httptest.NewRecorder()
	h.UpdateBotConfig()(rec, httptest.NewRequest(http.MethodPost, "/admin/bot/config", strings.NewReader(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", rec.Code, rec.Body.String())
	}
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !got.Enabled || got.MaxStakeWei != "5000000" || got.MaxConcurrent != 4 {
		t.Fatalf("unexpected updated config %+v", got)
	}
	if len(got.AllowedTypes) != 2 {
		t.Fatalf("allowed types = %v", got.AllowedTypes)
	}
}

func TestUpdateBotConfigRejectsBadWei(t *testing.T) {
	st, cleanup := testutil.OpenTestStore(t)
	defer cleanup()

	h := NewAdminHandlers(st, nil, nil, nil)
	body := `{"enabled":true,"max_stake_wei":"twelve","daily_loss_cap_wei":"0"}`
	rec := httptest.NewRecorder()
	h.UpdateBotConfig()(rec, httptest.NewRequest(http.MethodPost, "/admin/bot/config", strings.NewReader(body)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
