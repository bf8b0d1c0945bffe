package config

import (
	"os"
	"path/filepath"
)

const (
	appNameVar   = "APP_NAME"
	baseURLVar   = "LMS_API_URL"
	tokenFileVar = "LMS_TOKEN_FILE"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "LMS Client")
}

// GetBaseURL returns the base URL of the backend REST API.
func (EnvVars) GetBaseURL() string {
	return GetEnv(baseURLVar, "http://localhost:8000/api")
}

// GetTokenFile returns the path where the token pair is persisted.
func (EnvVars) GetTokenFile() string {
	if path := os.Getenv(tokenFileVar); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".lms", "tokens.json")
	}
	return filepath.Join(home, ".lms", "tokens.json")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

// IsProduction reports whether tokens should carry hardened transmission
// attributes.
func (e EnvVars) IsProduction() bool {
	return e.GetEnv() == "PROD"
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
