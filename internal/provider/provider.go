package provider

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/paddleworks/slalomboard/internal/discovery"
	"github.com/paddleworks/slalomboard/internal/feed"
	"github.com/paddleworks/slalomboard/internal/recording"
	"github.com/paddleworks/slalomboard/internal/transport"
)

var (
	ErrAddressRequired   = errors.New("provider: address or probe required")
	ErrRecordingRequired = errors.New("provider: recording source required")
)

// Source labels for logs, metrics and captures.
const (
	SourceTiming  = recording.SrcTiming
	SourceGateway = recording.SrcGateway
	SourceReplay  = "replay"
)

// Provider is one upstream event source. Connect is a no-op while the
// provider is anything but disconnected; Disconnect is idempotent and
// synchronous: after it returns, no further event reaches the bus.
type Provider interface {
	Connect(ctx context.Context) error
	Disconnect()
	Connected() bool
	State() transport.State
	Bus() *feed.Bus
}

// dialerFor builds the dialer for a live provider. A fixed address is
// validated up front; otherwise the probe runs on every dial so a
// moved server is found again on reconnect.
func dialerFor(address string, probe discovery.ProbeFunc, timeout time.Duration) (transport.Dialer, error) {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if strings.TrimSpace(address) != "" {
		addr, err := discovery.Normalize(address)
		if err != nil {
			return nil, err
		}
		return transport.TCPDialer(addr, timeout), nil
	}
	if probe == nil {
		return nil, ErrAddressRequired
	}
	return transport.DialerFunc(func(ctx context.Context) (net.Conn, error) {
		addr, err := probe(ctx)
		if err != nil {
			return nil, err
		}
		d := net.Dialer{Timeout: timeout}
		return d.DialContext(ctx, "tcp", addr)
	}), nil
}

func limitsOr(l transport.Limits) transport.Limits {
	if l.MaxPayloadBytes == 0 {
		return transport.DefaultLimits()
	}
	return l
}

// adapterProvider wraps a transport adapter as a Provider.
type adapterProvider struct {
	bus     *feed.Bus
	adapter *transport.Adapter
}

func (p *adapterProvider) Connect(ctx context.Context) error { return p.adapter.Connect(ctx) }
func (p *adapterProvider) Disconnect()                       { p.adapter.Disconnect() }
func (p *adapterProvider) Connected() bool                   { return p.adapter.Connected() }
func (p *adapterProvider) State() transport.State            { return p.adapter.State() }
func (p *adapterProvider) Bus() *feed.Bus                    { return p.bus }

func newAdapterProvider(source string, framer transport.FramerFunc, decode transport.DecodeFunc,
	address string, probe discovery.ProbeFunc, dialTimeout time.Duration,
	backoff transport.BackoffConfig, bus *feed.Bus) (*adapterProvider, error) {

	if bus == nil {
		bus = feed.NewBus()
	}
	dialer, err := dialerFor(address, probe, dialTimeout)
	if err != nil {
		return nil, err
	}
	adapter, err := transport.NewAdapter(transport.AdapterConfig{
		Source:  source,
		Dialer:  dialer,
		Framer:  framer,
		Decode:  decode,
		Backoff: backoff,
		Bus:     bus,
	})
	if err != nil {
		return nil, err
	}
	return &adapterProvider{bus: bus, adapter: adapter}, nil
}
