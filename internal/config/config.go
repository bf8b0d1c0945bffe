package config

type Config interface {
	EnvConfig
}

type EnvConfig interface {
	GetAppName() string
	GetBaseURL() string
	GetTokenFile() string
	GetEnv() string
	IsProduction() bool
}

type mainConfig struct {
	EnvVars
}

func New() Config {
	return mainConfig{}
}
