package config

type Config interface {
	EnvConfig
	GatewayConfig
	HeadersConfig
	StorageConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
	GetDataFolder() string
}

type mainConfig struct {
	EnvVars
	Gateway
	Headers
	Storage
}

func New() Config {
	return mainConfig{}
}
