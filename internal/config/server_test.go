package config

import "testing"

func TestLoadServerDefaults(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "postgres://localhost:5432/duels?sslmode=disable")
	t.Setenv("AUTH_GATEWAY_SECRET", "secret")

	cfg, err := LoadServer()
	if err != nil {
		t.Fatalf("LoadServer() error = %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("HTTPAddr = %q, want :8080", cfg.HTTPAddr)
	}
	if cfg.JoinWindowMins != 1440 {
		t.Fatalf("JoinWindowMins = %d, want 1440", cfg.JoinWindowMins)
	}
	if cfg.SweepIntervalSecs != 30 {
		t.Fatalf("SweepIntervalSecs = %d, want 30", cfg.SweepIntervalSecs)
	}
}

func TestLoadServerRequiresPostgresDSN(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "")
	t.Setenv("AUTH_GATEWAY_SECRET", "secret")

	_, err := LoadServer()
	if err == nil {
		t.Fatal("LoadServer() expected error, got nil")
	}
}

func TestLoadServerParseTypes(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "postgres://localhost:5432/duels?sslmode=disable")
	t.Setenv("AUTH_GATEWAY_SECRET", "secret")
	t.Setenv("ALLOWED_ASSETS", "BNB,SOL")
	t.Setenv("MATCH_WINDOW_MINUTES", "10")
	t.Setenv("MIN_STAKE_WEI", "42")

	cfg, err := LoadServer()
	if err != nil {
		t.Fatalf("LoadServer() error = %v", err)
	}
	if len(cfg.AllowedAssets) != 2 || cfg.AllowedAssets[1] != "SOL" {
		t.Fatalf("AllowedAssets = %v, want [BNB SOL]", cfg.AllowedAssets)
	}
	if cfg.MatchWindowMins != 10 {
		t.Fatalf("MatchWindowMins = %d, want 10", cfg.MatchWindowMins)
	}
	if cfg.MinStakeWei != "42" {
		t.Fatalf("MinStakeWei = %q, want 42", cfg.MinStakeWei)
	}
}
