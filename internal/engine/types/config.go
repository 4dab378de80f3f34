package types

import (
	"time"
)

const (
	// DefaultEndpoint serves one random question per request.
	DefaultEndpoint = "https://db.chgk.info/xml/random"

	DefaultConnectTimeout = 3000 * time.Millisecond
	DefaultReadTimeout    = 3000 * time.Millisecond
)

// Size constants
const (
	KB = 1024
	MB = 1024 * KB

	// SniffLen is how many leading body bytes are inspected for binary formats.
	SniffLen = 262
)

// HTTP Client Tuning
const (
	DefaultMaxIdleConns    = 4
	DefaultIdleConnTimeout = 30 * time.Second
	KeepAliveDuration      = 30 * time.Second
)

// Channel buffer sizes
const (
	ProgressChannelBuffer = 100
)

// RuntimeConfig holds dynamic settings that can override defaults
type RuntimeConfig struct {
	URL            string
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
}

// GetURL returns the configured endpoint or the default
func (r *RuntimeConfig) GetURL() string {
	if r == nil || r.URL == "" {
		return DefaultEndpoint
	}
	return r.URL
}

// GetConnectTimeout returns configured value or default
func (r *RuntimeConfig) GetConnectTimeout() time.Duration {
	if r == nil || r.ConnectTimeout <= 0 {
		return DefaultConnectTimeout
	}
	return r.ConnectTimeout
}

// GetReadTimeout returns configured value or default
func (r *RuntimeConfig) GetReadTimeout() time.Duration {
	if r == nil || r.ReadTimeout <= 0 {
		return DefaultReadTimeout
	}
	return r.ReadTimeout
}

// Clone returns a copy safe to hand to another goroutine.
func (r *RuntimeConfig) Clone() *RuntimeConfig {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}
