package config

import "github.com/caarlos0/env/v11"

// BotConfig seeds the house bot's repository record on first boot. After
// that, the repository row is authoritative and is edited via the admin API.
type BotConfig struct {
	Enabled         bool     `env:"HOUSE_BOT_ENABLED" envDefault:"false"`
	WalletAddress   string   `env:"HOUSE_BOT_WALLET"`
	MaxStakeWei     string   `env:"HOUSE_BOT_MAX_STAKE_WEI" envDefault:"100000000000000000"`
	DailyLossCapWei string   `env:"HOUSE_BOT_DAILY_LOSS_CAP_WEI" envDefault:"1000000000000000000"`
	MaxConcurrent   int      `env:"HOUSE_BOT_MAX_CONCURRENT" envDefault:"3"`
	AllowedAssets   []string `env:"HOUSE_BOT_ASSETS" envDefault:"BNB,BTC,ETH"`
	AllowedTypes    []string `env:"HOUSE_BOT_TYPES" envDefault:"price-direction"`
}

func LoadBot() (BotConfig, error) {
	var cfg BotConfig
	err := env.Parse(&cfg)
	return cfg, err
}
