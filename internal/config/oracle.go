package config

import "github.com/caarlos0/env/v11"

type OracleConfig struct {
	BaseURL      string `env:"ORACLE_BASE_URL" envDefault:"https://api.binance.com"`
	QuoteSymbol  string `env:"ORACLE_QUOTE_SYMBOL" envDefault:"USDT"`
	CacheTTLSecs int    `env:"ORACLE_CACHE_TTL_SECONDS" envDefault:"3"`
}

func LoadOracle() (OracleConfig, error) {
	var cfg OracleConfig
	err := env.Parse(&cfg)
	return cfg, err
}
