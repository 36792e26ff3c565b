package config

import (
	"time"
)

const (
	apiBaseURLEnvVar        = "API_BASE_URL"
	apiTimeoutEnvVar        = "API_TIMEOUT"
	geocoderURLEnvVar       = "GEOCODER_URL"
	geocoderUserAgentEnvVar = "GEOCODER_USER_AGENT"
	displayTimezoneEnvVar   = "DISPLAY_TIMEZONE"
)

type API struct{}

var _ APIConfig = API{}

// GetAPIBaseURL is the root of the attendance backend, e.g. "http://localhost:8000".
func (API) GetAPIBaseURL() string {
	return GetEnv(apiBaseURLEnvVar, "http://localhost:8000")
}

func (API) GetAPITimeout() time.Duration {
	return GetEnvDuration(apiTimeoutEnvVar, 10*time.Second)
}

func (API) GetGeocoderURL() string {
	return GetEnv(geocoderURLEnvVar, "https://nominatim.openstreetmap.org")
}

func (API) GetGeocoderUserAgent() string {
	return GetEnv(geocoderUserAgentEnvVar, "attendance-portal/1.0")
}

// GetDisplayTimezone falls back to the server's local zone when
// DISPLAY_TIMEZONE is unset or not a valid IANA name.
func (API) GetDisplayTimezone() *time.Location {
	name := GetEnv(displayTimezoneEnvVar, "")
	if name == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.Local
	}
	return loc
}
