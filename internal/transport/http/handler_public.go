package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	apppublic "github.com/bentodar-netizen/honeycomb-duels/internal/app/public"
)

type PublicHandlers struct {
	publicSvc *apppublic.Service
}

func NewPublicHandlers(publicSvc *apppublic.Service) *PublicHandlers {
	return &PublicHandlers{publicSvc: publicSvc}
}

func (h *PublicHandlers) Duels() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := ParsePagination(r)
		items, err := h.publicSvc.Duels(r.Context(), r.URL.Query().Get("status"), limit, offset)
		if err != nil {
			if errors.Is(err, apppublic.ErrBadStatus) {
				WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
				return
			}
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"items": items, "limit": limit, "offset": offset})
	}
}

func (h *PublicHandlers) Duel() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := h.publicSvc.Duel(r.Context(), chi.URLParam(r, "duel_id"))
		if err != nil {
			if errors.Is(err, apppublic.ErrNotFound) {
				WriteHTTPError(w, http.StatusNotFound, "not_found")
				return
			}
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func (h *PublicHandlers) Leaderboard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := ParsePagination(r)
		items, err := h.publicSvc.Leaderboard(r.Context(), r.URL.Query().Get("window"), limit, offset)
		if err != nil {
			if errors.Is(err, apppublic.ErrBadWindow) {
				WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
				return
			}
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"items": items, "limit": limit, "offset": offset})
	}
}
