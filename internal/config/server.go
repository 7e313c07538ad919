package config

import "github.com/caarlos0/env/v11"

type ServerConfig struct {
	PostgresDSN string `env:"POSTGRES_DSN,required,notEmpty"`
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8080"`

	AdminAPIKey       string `env:"ADMIN_API_KEY"`
	AuthGatewaySecret string `env:"AUTH_GATEWAY_SECRET,required,notEmpty"`
	KeeperAPIKey      string `env:"KEEPER_API_KEY"`

	MinStakeWei   string   `env:"MIN_STAKE_WEI" envDefault:"1000000000000000"`
	MaxStakeWei   string   `env:"MAX_STAKE_WEI" envDefault:"1000000000000000000000"`
	AllowedAssets []string `env:"ALLOWED_ASSETS" envDefault:"BNB,BTC,ETH"`

	JoinWindowMins    int `env:"JOIN_WINDOW_MINUTES" envDefault:"1440"`
	MatchWindowMins   int `env:"MATCH_WINDOW_MINUTES" envDefault:"5"`
	SweepIntervalSecs int `env:"SWEEP_INTERVAL_SECONDS" envDefault:"30"`
}

func LoadServer() (ServerConfig, error) {
	var cfg ServerConfig
	err := env.Parse(&cfg)
	return cfg, err
}
