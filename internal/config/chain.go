package config

import "github.com/caarlos0/env/v11"

type ChainConfig struct {
	RPCURL        string `env:"CHAIN_RPC_URL,required,notEmpty"`
	EscrowAddress string `env:"ESCROW_CONTRACT_ADDRESS,required,notEmpty"`
	PrivateKey    string `env:"CHAIN_PRIVATE_KEY,required,notEmpty"`
	ChainID       int64  `env:"CHAIN_ID" envDefault:"56"`

	Confirmations      uint64 `env:"CHAIN_CONFIRMATIONS" envDefault:"3"`
	ConfirmTimeoutSecs int    `env:"CHAIN_CONFIRM_TIMEOUT_SECONDS" envDefault:"120"`
	GasLimit           uint64 `env:"CHAIN_GAS_LIMIT" envDefault:"300000"`
}

func LoadChain() (ChainConfig, error) {
	var cfg ChainConfig
	err := env.Parse(&cfg)
	return cfg, err
}
