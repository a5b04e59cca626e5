package config

import (
	"strconv"
	"time"
)

const (
	refreshMarginVar = "ESTATE_REFRESH_MARGIN"
	httpTimeoutVar   = "ESTATE_HTTP_TIMEOUT"
	rememberMeVar    = "ESTATE_REMEMBER_ME"
)

const (
	// DefaultRefreshMargin is how long before expiry the access token is renewed.
	DefaultRefreshMargin = 5 * time.Minute
	DefaultHTTPTimeout   = 30 * time.Second
)

type SessionConfig interface {
	GetRefreshMargin() time.Duration
	GetHTTPTimeout() time.Duration
	GetRememberMe() bool
}

type Session struct {
	src source
}

var _ SessionConfig = Session{}

func (s Session) GetRefreshMargin() time.Duration {
	return s.duration(refreshMarginVar, DefaultRefreshMargin)
}

func (s Session) GetHTTPTimeout() time.Duration {
	return s.duration(httpTimeoutVar, DefaultHTTPTimeout)
}

func (s Session) GetRememberMe() bool {
	v, err := strconv.ParseBool(s.src.get(rememberMeVar, "false"))
	return err == nil && v
}

func (s Session) duration(envVar string, defaultValue time.Duration) time.Duration {
	raw := s.src.get(envVar, "")
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		return defaultValue
	}
	return d
}
