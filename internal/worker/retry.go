package worker

import (
	"math"
	"time"

	"hotelbook/internal/config"
)

const (
	defaultMaxRetries    = 5
	defaultInitialDelay  = 500 * time.Millisecond
	defaultMaxDelay      = 30 * time.Second
	defaultBackoffFactor = 2.0
)

// RetryPolicy is exponential backoff for event delivery. Zero fields take defaults.
type RetryPolicy struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

func PolicyFromConfig(cfg config.WorkerConfig) RetryPolicy {
	return RetryPolicy{
		MaxRetries:    cfg.MaxRetries,
		InitialDelay:  cfg.InitialDelay,
		MaxDelay:      cfg.MaxDelay,
		BackoffFactor: cfg.BackoffFactor,
	}
}

func (r RetryPolicy) withDefaults() RetryPolicy {
	if r.MaxRetries <= 0 {
		r.MaxRetries = defaultMaxRetries
	}
	if r.InitialDelay <= 0 {
		r.InitialDelay = defaultInitialDelay
	}
	if r.MaxDelay <= 0 {
		r.MaxDelay = defaultMaxDelay
	}
	if r.BackoffFactor < 1 {
		r.BackoffFactor = defaultBackoffFactor
	}
	return r
}

// Exhausted reports whether attempt was the last one allowed.
func (r RetryPolicy) Exhausted(attempt int) bool {
	return attempt >= r.withDefaults().MaxRetries
}

// NextDelay is the pause after failed attempt n (1-based): InitialDelay * BackoffFactor^(n-1), capped at MaxDelay.
func (r RetryPolicy) NextDelay(attempt int) time.Duration {
	p := r.withDefaults()
	if attempt < 1 {
		attempt = 1
	}

	scaled := float64(p.InitialDelay) * math.Pow(p.BackoffFactor, float64(attempt-1))
	if scaled >= float64(p.MaxDelay) {
		return p.MaxDelay
	}
	return time.Duration(scaled)
}
