package config

import (
	"strings"
	"time"
)

const (
	baseURLVar        = "EVENTS_API_BASE_URL"
	requestTimeoutVar = "EVENTS_REQUEST_TIMEOUT"
	refreshTimeoutVar = "EVENTS_REFRESH_TIMEOUT"

	DefaultRequestTimeout = 8 * time.Second
)

type GatewayConfig interface {
	GetBaseURL() string
	GetRequestTimeout() time.Duration
	GetRefreshTimeout() time.Duration
}

type Gateway struct{}

var _ GatewayConfig = Gateway{}

// GetBaseURL returns the API origin without a trailing slash. An empty value is
// allowed here; the gateway refuses to issue requests until one is set.
func (Gateway) GetBaseURL() string {
	return strings.TrimRight(strings.TrimSpace(GetEnv(baseURLVar, "")), "/")
}

func (Gateway) GetRequestTimeout() time.Duration {
	return GetDurationEnv(requestTimeoutVar, DefaultRequestTimeout)
}

func (Gateway) GetRefreshTimeout() time.Duration {
	return GetDurationEnv(refreshTimeoutVar, DefaultRequestTimeout)
}
