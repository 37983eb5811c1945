package config

import (
	"github.com/paddleworks/slalomboard/internal/scoreboard"
	"github.com/paddleworks/slalomboard/internal/transport"
)

// Backoff maps the transport section onto the adapter reconnect policy.
func (c TransportConfig) Backoff() transport.BackoffConfig {
	return transport.BackoffConfig{
		InitialDelay: c.BackoffFloor,
		Multiplier:   c.BackoffMultiplier,
		MaxDelay:     c.BackoffCap,
	}
}

// Limits maps the transport section onto the framer limits.
func (c TransportConfig) Limits() transport.Limits {
	return transport.Limits{MaxPayloadBytes: c.MaxPayloadBytes}
}

// Options maps the scoreboard section onto the engine options. The
// clock stays the engine default.
func (c ScoreboardConfig) Options() scoreboard.Options {
	return scoreboard.Options{
		HighlightWindow: c.HighlightWindow,
		DepartWindow:    c.DepartWindow,
	}
}
