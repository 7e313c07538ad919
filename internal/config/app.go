package config

type AppConfig struct {
	Server ServerConfig
	Chain  ChainConfig
	Oracle OracleConfig
	Bot    BotConfig
	Log    LogConfig
}

func LoadApp() (AppConfig, error) {
	logCfg, err := LoadLog()
	if err != nil {
		return AppConfig{}, err
	}
	serverCfg, err := LoadServer()
	if err != nil {
		return AppConfig{}, err
	}
	chainCfg, err := LoadChain()
	if err != nil {
		return AppConfig{}, err
	}
	oracleCfg, err := LoadOracle()
	if err != nil {
		return AppConfig{}, err
	}
	botCfg, err := LoadBot()
	if err != nil {
		return AppConfig{}, err
	}
	return AppConfig{
		Server: serverCfg,
		Chain:  chainCfg,
		Oracle: oracleCfg,
		Bot:    botCfg,
		Log:    logCfg,
	}, nil
}
