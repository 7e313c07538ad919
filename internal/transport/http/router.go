package httptransport

import (
	"expvar"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	apppublic "github.com/bentodar-netizen/honeycomb-duels/internal/app/public"
	"github.com/bentodar-netizen/honeycomb-duels/internal/auth"
	"github.com/bentodar-netizen/honeycomb-duels/internal/config"
	"github.com/bentodar-netizen/honeycomb-duels/internal/duel"
	"github.com/bentodar-netizen/honeycomb-duels/internal/keeper"
	"github.com/bentodar-netizen/honeycomb-duels/internal/matchmaking"
	"github.com/bentodar-netizen/honeycomb-duels/internal/store"
)

// Deps are the wired services the router exposes.
type Deps struct {
	Store    *store.Store
	Config   config.ServerConfig
	Engine   *duel.Engine
	MatchSvc *matchmaking.Service
	Sweeper  *keeper.Sweeper
	Verifier auth.Verifier
}

func NewRouter(d Deps) *chi.Mux {
	publicSvc := apppublic.NewService(d.Store, d.Engine)

	publicHandlers := NewPublicHandlers(publicSvc)
	duelHandlers := NewDuelHandlers(d.Engine, d.MatchSvc)
	adminHandlers := NewAdminHandlers(d.Store, d.Sweeper, d.MatchSvc, d.Engine)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	r.With(APILogMiddleware()).Get("/healthz", adminHandlers.Health())

	r.Route("/api", func(r chi.Router) {
		r.Use(APILogMiddleware())
		r.Get("/public/duels", publicHandlers.Duels())
		r.Get("/public/duels/{duel_id}", publicHandlers.Duel())
		r.Get("/public/leaderboard", publicHandlers.Leaderboard())
		r.Get("/public/duels/{duel_id}/match", duelHandlers.MatchStatus())

		r.Group(func(r chi.Router) {
			r.Use(WalletAuthMiddleware(d.Verifier))
			r.Post("/duels", duelHandlers.Create())
			r.Post("/duels/{duel_id}/join", duelHandlers.Join())
			r.Post("/duels/{duel_id}/cancel", duelHandlers.Cancel())
			r.Post("/duels/{duel_id}/reclaim", duelHandlers.Reclaim())
			r.Post("/duels/{duel_id}/match", duelHandlers.Match())
		})

		r.Group(func(r chi.Router) {
			r.Use(SettleAuthMiddleware(d.Verifier, d.Config.KeeperAPIKey))
			r.Post("/duels/{duel_id}/settle", duelHandlers.Settle())
		})

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(d.Config.AdminAPIKey))
			r.Get("/bot/config", adminHandlers.BotConfig())
			r.Post("/bot/config", adminHandlers.UpdateBotConfig())
			r.Post("/duels/recover", adminHandlers.RecoverDuel())
			r.Post("/sweep", adminHandlers.Sweep())
			r.Get("/debug/vars", expvar.Handler().ServeHTTP)
		})
	})

	return r
}

func LogRoutes(r chi.Router) {
	type routeDef struct {
		Method string
		Path   string
	}
	routes := make([]routeDef, 0, 32)
	err := chi.Walk(r, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, routeDef{Method: method, Path: route})
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("walk routes failed")
		return
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path == routes[j].Path {
			return routes[i].Method < routes[j].Method
		}
		return routes[i].Path < routes[j].Path
	})
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Registered routes (%d):\n", len(routes)))
	for _, rt := range routes {
		b.WriteString(fmt.Sprintf("  %-6s %s\n", rt.Method, rt.Path))
	}
	fmt.Print(b.String())
}
