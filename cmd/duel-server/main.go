package main

import (
	"context"
	"math/big"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/bentodar-netizen/honeycomb-duels/internal/auth"
	"github.com/bentodar-netizen/honeycomb-duels/internal/config"
	"github.com/bentodar-netizen/honeycomb-duels/internal/duel"
	"github.com/bentodar-netizen/honeycomb-duels/internal/escrow"
	"github.com/bentodar-netizen/honeycomb-duels/internal/housebot"
	"github.com/bentodar-netizen/honeycomb-duels/internal/keeper"
	"github.com/bentodar-netizen/honeycomb-duels/internal/logging"
	"github.com/bentodar-netizen/honeycomb-duels/internal/matchmaking"
	"github.com/bentodar-netizen/honeycomb-duels/internal/oracle"
	"github.com/bentodar-netizen/honeycomb-duels/internal/store"
	httptransport "github.com/bentodar-netizen/honeycomb-duels/internal/transport/http"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.LoadApp()
	if err != nil {
		panic(err)
	}
	logging.Init(cfg.Log)

	st, err := store.New(cfg.Server.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("store init failed")
	}
	if err := st.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("db ping failed")
	}
	if err := st.EnsureHouseBotConfig(context.Background(), seedBotConfig(cfg.Bot)); err != nil {
		log.Fatal().Err(err).Msg("seed house bot config failed")
	}

	esc, err := escrow.New(cfg.Chain)
	if err != nil {
		log.Fatal().Err(err).Msg("escrow client init failed")
	}
	prices := oracle.NewClient(cfg.Oracle)

	engine := duel.NewEngine(esc, prices, st, engineLimits(cfg.Server))
	matchSvc := matchmaking.NewService(st, engine, time.Duration(cfg.Server.MatchWindowMins)*time.Minute)
	bot := housebot.New(st, engine)
	engine.OnSettled(bot.HandleSettlement)

	sweeper := keeper.NewSweeper(st, engine)
	cronRunner, err := sweeper.Start(time.Duration(cfg.Server.SweepIntervalSecs)*time.Second, keeper.Jobs{
		ExpireMatches: matchSvc.SweepExpired,
		BotScan:       bot.RunOnce,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("keeper schedule failed")
	}
	defer cronRunner.Stop()

	r := httptransport.NewRouter(httptransport.Deps{
		Store:    st,
		Config:   cfg.Server,
		Engine:   engine,
		MatchSvc: matchSvc,
		Sweeper:  sweeper,
		Verifier: auth.NewGatewayVerifier(cfg.Server.AuthGatewaySecret),
	})
	httptransport.LogRoutes(r)

	server := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	log.Info().Str("addr", cfg.Server.HTTPAddr).Msg("http listening")
	log.Fatal().Err(server.ListenAndServe()).Msg("server stopped")
}

func engineLimits(cfg config.ServerConfig) duel.Limits {
	return duel.Limits{
		MinStakeWei: mustWei(cfg.MinStakeWei, "MIN_STAKE_WEI"),
		MaxStakeWei: mustWei(cfg.MaxStakeWei, "MAX_STAKE_WEI"),
		Assets:      cfg.AllowedAssets,
		JoinWindow:  time.Duration(cfg.JoinWindowMins) * time.Minute,
	}
}

func seedBotConfig(cfg config.BotConfig) *store.HouseBotConfig {
	return &store.HouseBotConfig{
		Enabled:         cfg.Enabled,
		WalletAddress:   cfg.WalletAddress,
		MaxStakeWei:     mustWei(cfg.MaxStakeWei, "HOUSE_BOT_MAX_STAKE_WEI"),
		DailyLossCapWei: mustWei(cfg.DailyLossCapWei, "HOUSE_BOT_DAILY_LOSS_CAP_WEI"),
		MaxConcurrent:   cfg.MaxConcurrent,
		AllowedAssets:   cfg.AllowedAssets,
		AllowedTypes:    cfg.AllowedTypes,
	}
}

func mustWei(s, name string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() < 0 {
		log.Fatal().Str("var", name).Str("value", s).Msg("invalid wei amount")
	}
	return v
}
