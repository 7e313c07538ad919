package httptransport

import (
	"encoding/json"
	"math/big"
	"net/http"

	apppublic "github.com/bentodar-netizen/honeycomb-duels/internal/app/public"
	"github.com/bentodar-netizen/honeycomb-duels/internal/duel"
	"github.com/bentodar-netizen/honeycomb-duels/internal/keeper"
	"github.com/bentodar-netizen/honeycomb-duels/internal/matchmaking"
	"github.com/bentodar-netizen/honeycomb-duels/internal/store"
)

type AdminHandlers struct {
	store    *store.Store
	sweeper  *keeper.Sweeper
	matchSvc *matchmaking.Service
	engine   *duel.Engine
}

func NewAdminHandlers(st *store.Store, sweeper *keeper.Sweeper, matchSvc *matchmaking.Service, engine *duel.Engine) *AdminHandlers {
	return &AdminHandlers{store: st, sweeper: sweeper, matchSvc: matchSvc, engine: engine}
}

func (h *AdminHandlers) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.store.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "db": "down"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "db": "up"})
	}
}

type botConfigView struct {
	Enabled         bool     `json:"enabled"`
	WalletAddress   string   `json:"wallet_address"`
	MaxStakeWei     string   `json:"max_stake_wei"`
	DailyLossCapWei string   `json:"daily_loss_cap_wei"`
	DailyLossWei    string   `json:"daily_loss_wei"`
	MaxConcurrent   int      `json:"max_concurrent"`
	AllowedAssets   []string `json:"allowed_assets"`
	AllowedTypes    []string `json:"allowed_types"`
}

func viewBotConfig(cfg *store.HouseBotConfig) botConfigView {
	v := botConfigView{
		Enabled:       cfg.Enabled,
		WalletAddress: cfg.WalletAddress,
		MaxConcurrent: cfg.MaxConcurrent,
		AllowedAssets: cfg.AllowedAssets,
		AllowedTypes:  cfg.AllowedTypes,
	}
	if cfg.MaxStakeWei != nil {
		v.MaxStakeWei = cfg.MaxStakeWei.String()
	}
	if cfg.DailyLossCapWei != nil {
		v.DailyLossCapWei = cfg.DailyLossCapWei.String()
	}
	if cfg.DailyLossWei != nil {
		v.DailyLossWei = cfg.DailyLossWei.String()
	}
	return v
}

func (h *AdminHandlers) BotConfig() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg, err := h.store.GetHouseBotConfig(r.Context())
		if err != nil {
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		_ = json.NewEncoder(w).Encode(viewBotConfig(cfg))
	}
}

func (h *AdminHandlers) UpdateBotConfig() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Enabled         bool     `json:"enabled"`
			WalletAddress   string   `json:"wallet_address"`
			MaxStakeWei     string   `json:"max_stake_wei"`
			DailyLossCapWei string   `json:"daily_loss_cap_wei"`
			MaxConcurrent   int      `json:"max_concurrent"`
			AllowedAssets   []string `json:"allowed_assets"`
			AllowedTypes    []string `json:"allowed_types"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		maxStake, ok := new(big.Int).SetString(body.MaxStakeWei, 10)
		if !ok || maxStake.Sign() < 0 {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		lossCap, ok := new(big.Int).SetString(body.DailyLossCapWei, 10)
		if !ok || lossCap.Sign() < 0 {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		if body.MaxConcurrent < 0 {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}

		cfg := &store.HouseBotConfig{
			Enabled:         body.Enabled,
			WalletAddress:   body.WalletAddress,
			MaxStakeWei:     maxStake,
			DailyLossCapWei: lossCap,
			MaxConcurrent:   body.MaxConcurrent,
			AllowedAssets:   body.AllowedAssets,
			AllowedTypes:    body.AllowedTypes,
		}
		if err := h.store.UpsertHouseBotConfig(r.Context(), cfg); err != nil {
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		fresh, err := h.store.GetHouseBotConfig(r.Context())
		if err != nil {
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		_ = json.NewEncoder(w).Encode(viewBotConfig(fresh))
	}
}

// RecoverDuel re-records a duel whose escrow transaction confirmed but whose
// repository write was lost. The request carries the details the failed
// create logged; the chain verifies them before anything is written.
func (h *AdminHandlers) RecoverDuel() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			OnChainID   uint64 `json:"on_chain_id"`
			TxHash      string `json:"tx_hash"`
			Creator     string `json:"creator"`
			Asset       string `json:"asset"`
			DuelType    string `json:"duel_type"`
			Direction   string `json:"direction"`
			StakeWei    string `json:"stake_wei"`
			DurationSec int64  `json:"duration_sec"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		stake, ok := new(big.Int).SetString(body.StakeWei, 10)
		if !ok {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}

		d, err := h.engine.Recover(r.Context(), duel.CreateRequest{
			Creator:     body.Creator,
			Asset:       body.Asset,
			DuelType:    store.DuelType(body.DuelType),
			Direction:   store.Direction(body.Direction),
			StakeWei:    stake,
			DurationSec: body.DurationSec,
		}, body.OnChainID, body.TxHash)
		if err != nil {
			writeDuelError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(apppublic.View(d))
	}
}

// Sweep triggers one settle pass and one match queue expiry pass without
// waiting for the scheduler.
func (h *AdminHandlers) Sweep() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		settled, err := h.sweeper.SweepOnce(r.Context())
		if err != nil {
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		expired, err := h.matchSvc.SweepExpired(r.Context())
		if err != nil {
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"settled": settled, "expired_matches": expired})
	}
}
