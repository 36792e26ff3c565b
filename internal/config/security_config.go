package config

import "time"

type SecurityConfig interface {
	GetMaxSessionAge() time.Duration
	GetEnableRateLimiting() bool
	GetLoginRatePerMinute() int
	GetLoginRateBurst() int
	GetEnforceTokenExpiry() bool
	GetTrustProxyHeaders() bool
}

type Security struct{}

var _ SecurityConfig = Security{}

func (Security) GetMaxSessionAge() time.Duration {
	return GetEnvDuration("SESSION_MAX_AGE", 12*time.Hour)
}

func (Security) GetEnableRateLimiting() bool {
	return GetEnvBool("LOGIN_RATE_LIMIT_ENABLED", true)
}

func (Security) GetLoginRatePerMinute() int {
	return GetEnvInt("LOGIN_RATE_PER_MINUTE", 10)
}

func (Security) GetLoginRateBurst() int {
	return GetEnvInt("LOGIN_RATE_BURST", 5)
}

// GetEnforceTokenExpiry turns on the access token exp check in the session gate.
func (Security) GetEnforceTokenExpiry() bool {
	return GetEnvBool("ENFORCE_TOKEN_EXPIRY", false)
}

// GetTrustProxyHeaders lets the login limiter key on X-Forwarded-For. Enable it
// only behind a reverse proxy that overwrites the header.
func (Security) GetTrustProxyHeaders() bool {
	return GetEnvBool("TRUST_PROXY_HEADERS", false)
}
