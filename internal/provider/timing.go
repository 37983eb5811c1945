package provider

import (
	"io"
	"time"

	"github.com/paddleworks/slalomboard/internal/discovery"
	"github.com/paddleworks/slalomboard/internal/feed"
	"github.com/paddleworks/slalomboard/internal/protocol/canoexml"
	"github.com/paddleworks/slalomboard/internal/transport"
)

// TimingConfig selects the timing-system endpoint. Address wins when
// both Address and Probe are set.
type TimingConfig struct {
	Address     string
	Probe       discovery.ProbeFunc
	DialTimeout time.Duration
	Backoff     transport.BackoffConfig
	Limits      transport.Limits
	// Bus receives the decoded events. A fresh bus is created when nil.
	Bus *feed.Bus
}

// Timing consumes the timing system's native stream: XML documents
// separated by '|' over TCP.
type Timing struct {
	*adapterProvider
}

func NewTiming(cfg TimingConfig) (*Timing, error) {
	limits := limitsOr(cfg.Limits)
	framer := func(r io.Reader) transport.Framer {
		return transport.NewPipeFramer(r, limits)
	}
	inner, err := newAdapterProvider(SourceTiming, framer, canoexml.Decode,
		cfg.Address, cfg.Probe, cfg.DialTimeout, cfg.Backoff, cfg.Bus)
	if err != nil {
		return nil, err
	}
	return &Timing{adapterProvider: inner}, nil
}
