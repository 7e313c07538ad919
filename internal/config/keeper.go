package config

import "github.com/caarlos0/env/v11"

// KeeperConfig configures the standalone keeper binary, which drives
// settlement over the public HTTP API rather than in-process.
type KeeperConfig struct {
	ServerURL    string `env:"DUEL_SERVER_URL" envDefault:"http://localhost:8080"`
	APIKey       string `env:"KEEPER_API_KEY,required,notEmpty"`
	IntervalSecs int    `env:"KEEPER_INTERVAL_SECONDS" envDefault:"30"`
}

func LoadKeeper() (KeeperConfig, error) {
	var cfg KeeperConfig
	err := env.Parse(&cfg)
	return cfg, err
}
