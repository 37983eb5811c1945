package transport

import (
	"context"
	"errors"
	"io"
	"math/rand"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/paddleworks/slalomboard/internal/feed"
	"github.com/paddleworks/slalomboard/internal/observability"
)

// DecodeFunc converts one framed payload into normalized events.
type DecodeFunc func(raw []byte) ([]feed.Event, error)

// AdapterConfig wires one adapter to its source and sinks.
type AdapterConfig struct {
	// Source labels the link in logs, metrics and recordings
	// ("tcp", "ws").
	Source  string
	Dialer  Dialer
	Framer  FramerFunc
	Decode  DecodeFunc
	Backoff BackoffConfig
	Bus     *feed.Bus
}

func (c AdapterConfig) validate() error {
	if c.Dialer == nil {
		return ErrDialerRequired
	}
	if c.Framer == nil {
		return ErrFramerRequired
	}
	if c.Decode == nil {
		return ErrDecoderRequired
	}
	if c.Bus == nil {
		return ErrBusRequired
	}
	return nil
}

// Adapter supervises one stream: dial, frame, decode, publish,
// reconnect. At most one physical connection attempt is in flight at
// any time; the loop retries forever until Disconnect.
type Adapter struct {
	cfg AdapterConfig
	rng *rand.Rand

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
	done   chan struct{}
}

// NewAdapter builds an idle adapter. A zero backoff falls back to
// DefaultBackoff, an empty source label to "tcp".
func NewAdapter(cfg AdapterConfig) (*Adapter, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Backoff.InitialDelay <= 0 {
		cfg.Backoff = DefaultBackoff()
	}
	if cfg.Source == "" {
		cfg.Source = "tcp"
	}
	return &Adapter{
		cfg: cfg,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// State returns the current connection state.
func (a *Adapter) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Connected reports whether the link is established.
func (a *Adapter) Connected() bool { return a.State() == StateConnected }

// Connect starts the supervision loop. Calls while the adapter is
// already connecting, connected or retrying are no-ops: progress is
// reported through ConnectionStatus events, not the return value.
func (a *Adapter) Connect(ctx context.Context) error {
	a.mu.Lock()
	if a.state != StateDisconnected {
		a.mu.Unlock()
		return nil
	}
	runCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.done = make(chan struct{})
	a.state = StateConnecting
	done := a.done
	a.mu.Unlock()

	a.publishStatus(StateConnecting, "")
	go a.run(runCtx, done)
	return nil
}

// Disconnect stops the loop from any state and waits for it to wind
// down. After Disconnect returns no further event reaches the bus.
// Safe to call repeatedly.
func (a *Adapter) Disconnect() {
	a.mu.Lock()
	cancel := a.cancel
	done := a.done
	a.cancel = nil
	a.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (a *Adapter) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	defer a.setState(StateDisconnected, "")

	attempt := 0
	for {
		conn, err := a.cfg.Dialer.Dial(ctx)
		if ctx.Err() != nil {
			if err == nil && conn != nil {
				_ = conn.Close()
			}
			return
		}
		if err != nil {
			attempt++
			a.setState(StateReconnecting, err.Error())
			observability.RecordReconnect(a.cfg.Source)
			if !a.sleepBackoff(ctx, attempt) {
				return
			}
			a.setState(StateConnecting, "")
			continue
		}

		// Successful dial resets the backoff to its floor.
		attempt = 0
		a.setState(StateConnected, "")
		reason := a.readLoop(ctx, conn)
		if ctx.Err() != nil {
			return
		}
		attempt++
		a.setState(StateReconnecting, reason)
		observability.RecordReconnect(a.cfg.Source)
		if !a.sleepBackoff(ctx, attempt) {
			return
		}
		a.setState(StateConnecting, "")
	}
}

// readLoop pumps one connection until it drops, returning the drop
// reason. Decode failures surface as error events and never end the
// loop.
func (a *Adapter) readLoop(ctx context.Context, conn net.Conn) string {
	connCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-connCtx.Done()
		_ = conn.Close()
	}()

	framer := a.cfg.Framer(conn)
	for {
		payload, err := framer.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return "stream closed"
			}
			return err.Error()
		}
		events, err := a.cfg.Decode(payload)
		if err != nil {
			log.Warn().Str("source", a.cfg.Source).Err(err).Msg("decode failed")
			observability.RecordDecodeError(a.cfg.Source)
			a.cfg.Bus.Publish(&feed.ErrorEvent{Code: feed.CodeFor(err), Message: err.Error()})
			continue
		}
		for _, ev := range events {
			observability.RecordEventDecoded(a.cfg.Source, string(ev.Kind()))
			a.cfg.Bus.Publish(ev)
		}
	}
}

func (a *Adapter) setState(s State, detail string) {
	a.mu.Lock()
	if a.state == s {
		a.mu.Unlock()
		return
	}
	a.state = s
	a.mu.Unlock()
	a.publishStatus(s, detail)
}

func (a *Adapter) publishStatus(s State, detail string) {
	log.Info().
		Str("source", a.cfg.Source).
		Str("state", s.String()).
		Str("detail", detail).
		Msg("connection state")
	observability.SetConnectionState(a.cfg.Source, int(s))
	a.cfg.Bus.Publish(&feed.ConnectionStatus{State: s.String(), Detail: detail})
}

func (a *Adapter) sleepBackoff(ctx context.Context, attempt int) bool {
	delay := NextDelay(a.cfg.Backoff, attempt, a.rng)
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
