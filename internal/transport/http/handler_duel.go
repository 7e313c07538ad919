package httptransport

import (
	"encoding/json"
	"errors"
	"math/big"
	"net/http"

	"github.com/go-chi/chi/v5"

	apppublic "github.com/bentodar-netizen/honeycomb-duels/internal/app/public"
	"github.com/bentodar-netizen/honeycomb-duels/internal/duel"
	"github.com/bentodar-netizen/honeycomb-duels/internal/escrow"
	"github.com/bentodar-netizen/honeycomb-duels/internal/matchmaking"
	"github.com/bentodar-netizen/honeycomb-duels/internal/oracle"
	"github.com/bentodar-netizen/honeycomb-duels/internal/store"
)

type DuelHandlers struct {
	engine   *duel.Engine
	matchSvc *matchmaking.Service
}

func NewDuelHandlers(engine *duel.Engine, matchSvc *matchmaking.Service) *DuelHandlers {
	return &DuelHandlers{engine: engine, matchSvc: matchSvc}
}

// writeDuelError maps lifecycle errors onto HTTP statuses. Conflicts with
// the chain or another request race map to 409; infrastructure faults keep
// their own statuses so callers can tell a retryable failure apart.
func writeDuelError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, duel.ErrNotFound):
		WriteHTTPError(w, http.StatusNotFound, "not_found")
	case errors.Is(err, duel.ErrNotCreator) || errors.Is(err, duel.ErrNotParticipant):
		WriteHTTPError(w, http.StatusForbidden, "forbidden")
	case duel.IsValidation(err):
		WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
	case errors.Is(err, duel.ErrSelfJoin):
		WriteHTTPError(w, http.StatusConflict, "self_join")
	case errors.Is(err, duel.ErrWrongStatus):
		WriteHTTPError(w, http.StatusConflict, "wrong_status")
	case errors.Is(err, duel.ErrJoinWindowClosed):
		WriteHTTPError(w, http.StatusConflict, "join_window_closed")
	case errors.Is(err, duel.ErrJoinWindowOpen):
		WriteHTTPError(w, http.StatusConflict, "join_window_open")
	case errors.Is(err, duel.ErrNotExpired):
		WriteHTTPError(w, http.StatusConflict, "not_expired")
	case errors.Is(err, duel.ErrAlreadyReclaimed):
		WriteHTTPError(w, http.StatusConflict, "already_reclaimed")
	case errors.Is(err, duel.ErrChainMismatch):
		WriteHTTPError(w, http.StatusConflict, "chain_mismatch")
	case errors.Is(err, store.ErrStaleStatus):
		WriteHTTPError(w, http.StatusConflict, "stale_status")
	case errors.Is(err, oracle.ErrPriceUnavailable):
		WriteHTTPError(w, http.StatusServiceUnavailable, "price_unavailable")
	case errors.Is(err, escrow.ErrRejected):
		WriteHTTPError(w, http.StatusConflict, "chain_rejected")
	case errors.Is(err, escrow.ErrUnconfirmed):
		WriteHTTPError(w, http.StatusBadGateway, "chain_unconfirmed")
	default:
		WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
	}
}

func (h *DuelHandlers) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wallet, ok := WalletFromContext(r.Context())
		if !ok {
			WriteHTTPError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		var body struct {
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

		metricDuelCreateTotal.Add(1)
		d, err := h.engine.Create(r.Context(), duel.CreateRequest{
			Creator:     wallet,
			Asset:       body.Asset,
			DuelType:    store.DuelType(body.DuelType),
			Direction:   store.Direction(body.Direction),
			StakeWei:    stake,
			DurationSec: body.DurationSec,
		})
		if err != nil {
			metricDuelCreateErrors.Add(1)
			writeDuelError(w, err)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(apppublic.View(d))
	}
}

func (h *DuelHandlers) Join() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wallet, ok := WalletFromContext(r.Context())
		if !ok {
			WriteHTTPError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		metricDuelJoinTotal.Add(1)
		d, err := h.engine.Join(r.Context(), chi.URLParam(r, "duel_id"), wallet)
		if err != nil {
			metricDuelJoinErrors.Add(1)
			writeDuelError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(apppublic.View(d))
	}
}

func (h *DuelHandlers) Settle() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metricDuelSettleTotal.Add(1)
		d, err := h.engine.Settle(r.Context(), chi.URLParam(r, "duel_id"))
		if err != nil {
			metricDuelSettleErrors.Add(1)
			writeDuelError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(apppublic.View(d))
	}
}

func (h *DuelHandlers) Cancel() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wallet, ok := WalletFromContext(r.Context())
		if !ok {
			WriteHTTPError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		metricDuelCancelTotal.Add(1)
		d, err := h.engine.Cancel(r.Context(), chi.URLParam(r, "duel_id"), wallet)
		if err != nil {
			writeDuelError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(apppublic.View(d))
	}
}

func (h *DuelHandlers) Reclaim() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wallet, ok := WalletFromContext(r.Context())
		if !ok {
			WriteHTTPError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		metricDuelReclaimTotal.Add(1)
		d, err := h.engine.Reclaim(r.Context(), chi.URLParam(r, "duel_id"), wallet)
		if err != nil {
			writeDuelError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(apppublic.View(d))
	}
}

func (h *DuelHandlers) Match() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wallet, ok := WalletFromContext(r.Context())
		if !ok {
			WriteHTTPError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		metricMatchPostTotal.Add(1)
		res, err := h.matchSvc.Post(r.Context(), chi.URLParam(r, "duel_id"), wallet)
		if err != nil {
			writeDuelError(w, err)
			return
		}
		resp := map[string]any{"matched": res.Matched, "queue_status": res.Entry.Status}
		if res.Matched {
			metricMatchMatchedTotal.Add(1)
			resp["counterpart_duel_id"] = res.CounterpartDuelID
			if res.Duel != nil {
				resp["duel"] = apppublic.View(res.Duel)
			}
		} else {
			resp["expires_at"] = res.Entry.ExpiresAt
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func (h *DuelHandlers) MatchStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, err := h.matchSvc.Status(r.Context(), chi.URLParam(r, "duel_id"))
		if err != nil {
			writeDuelError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"queue_status": e.Status,
			"expires_at":   e.ExpiresAt,
		})
	}
}
