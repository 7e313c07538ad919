package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/bentodar-netizen/honeycomb-duels/internal/config"
	"github.com/bentodar-netizen/honeycomb-duels/internal/logging"
)

// The keeper drives settlement from outside the server process: it polls the
// public duel listing and posts a settle for every live duel past its end
// time. The server reruns its own checks, so a duplicate or early request is
// rejected there, never here.

type duelItem struct {
	ID     string     `json:"id"`
	EndsAt *time.Time `json:"ends_at"`
}

type listResponse struct {
	Items []duelItem `json:"items"`
}

func main() {
	_ = godotenv.Load()

	logCfg, err := config.LoadLog()
	if err != nil {
		panic(err)
	}
	logging.Init(logCfg)

	cfg, err := config.LoadKeeper()
	if err != nil {
		log.Fatal().Err(err).Msg("load keeper config failed")
	}

	client := &http.Client{Timeout: 30 * time.Second}
	interval := time.Duration(cfg.IntervalSecs) * time.Second
	log.Info().Str("server", cfg.ServerURL).Dur("interval", interval).Msg("keeper started")

	for {
		if err := sweep(client, cfg); err != nil {
			log.Error().Err(err).Msg("sweep failed")
		}
		time.Sleep(interval)
	}
}

func sweep(client *http.Client, cfg config.KeeperConfig) error {
	duels, err := listLive(client, cfg)
	if err != nil {
		return err
	}
	now := time.Now()
	for _, d := range duels {
		if d.EndsAt == nil || d.EndsAt.After(now) {
			continue
		}
		if err := settle(client, cfg, d.ID); err != nil {
			log.Warn().Err(err).Str("duel_id", d.ID).Msg("settle request failed")
			continue
		}
		log.Info().Str("duel_id", d.ID).Msg("duel settled")
	}
	return nil
}

func listLive(client *http.Client, cfg config.KeeperConfig) ([]duelItem, error) {
	url := fmt.Sprintf("%s/api/public/duels?status=live&limit=500", cfg.ServerURL)
	resp, err := client.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list live duels: status %d", resp.StatusCode)
	}
	var body listResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	return body.Items, nil
}

func settle(client *http.Client, cfg config.KeeperConfig, id string) error {
	url := fmt.Sprintf("%s/api/duels/%s/settle", cfg.ServerURL, id)
	req, err := http.NewRequest(http.MethodPost, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+cfg.APIKey)
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusConflict {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}
