package config

import (
	"time"

	"github.com/joho/godotenv"
)

type Config interface {
	EnvConfig
	CorsConfig
	APIConfig
	SecurityConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	IsDev() bool
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type APIConfig interface {
	GetAPIBaseURL() string
	GetAPITimeout() time.Duration
	GetGeocoderURL() string
	GetGeocoderUserAgent() string
	GetDisplayTimezone() *time.Location
}

type mainConfig struct {
	EnvVars
	Cors
	API
	Security
}

// New loads an optional .env file from the working directory and returns a
// Config that reads every value from the environment on demand.
func New() Config {
	_ = godotenv.Load()
	return mainConfig{}
}
