package provider

import (
	"io"
	"time"

	"github.com/paddleworks/slalomboard/internal/discovery"
	"github.com/paddleworks/slalomboard/internal/feed"
	"github.com/paddleworks/slalomboard/internal/protocol/gatejson"
	"github.com/paddleworks/slalomboard/internal/transport"
)

// GatewayConfig selects the relay endpoint.
type GatewayConfig struct {
	Address     string
	Probe       discovery.ProbeFunc
	DialTimeout time.Duration
	Backoff     transport.BackoffConfig
	Limits      transport.Limits
	Bus         *feed.Bus
}

// Gateway consumes relay envelopes: one JSON document per line over
// TCP. A relay-reported upstream loss arrives as a connection-coded
// error event, distinct from this link's own status.
type Gateway struct {
	*adapterProvider
}

func NewGateway(cfg GatewayConfig) (*Gateway, error) {
	limits := limitsOr(cfg.Limits)
	framer := func(r io.Reader) transport.Framer {
		return transport.NewLineFramer(r, limits)
	}
	inner, err := newAdapterProvider(SourceGateway, framer, gatejson.Decode,
		cfg.Address, cfg.Probe, cfg.DialTimeout, cfg.Backoff, cfg.Bus)
	if err != nil {
		return nil, err
	}
	return &Gateway{adapterProvider: inner}, nil
}
