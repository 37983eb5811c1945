package provider

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/paddleworks/slalomboard/internal/feed"
	"github.com/paddleworks/slalomboard/internal/observability"
	"github.com/paddleworks/slalomboard/internal/protocol/gatejson"
	"github.com/paddleworks/slalomboard/internal/recording"
	"github.com/paddleworks/slalomboard/internal/transport"
)

// ReplayConfig selects a capture and its playback clock.
type ReplayConfig struct {
	// Path names a capture file. Source takes precedence when set.
	Path   string
	Source io.Reader
	// Speed is the playback rate; 1.0 replays in real time, 2.0 twice
	// as fast. Zero falls back to 1.0.
	Speed float64
	// Loop restarts playback when the capture ends, with a
	// reconnecting transition between passes.
	Loop bool
	Bus  *feed.Bus
}

// Replay feeds a captured session through the bus on a virtual clock.
// It mirrors the live providers' status transitions so the rest of the
// system cannot tell a capture from a live link.
type Replay struct {
	cfg ReplayConfig
	bus *feed.Bus

	mu     sync.Mutex
	state  transport.State
	cancel context.CancelFunc
	done   chan struct{}
}

func NewReplay(cfg ReplayConfig) (*Replay, error) {
	if cfg.Path == "" && cfg.Source == nil {
		return nil, ErrRecordingRequired
	}
	if cfg.Speed <= 0 {
		cfg.Speed = 1.0
	}
	bus := cfg.Bus
	if bus == nil {
		bus = feed.NewBus()
	}
	cfg.Bus = bus
	return &Replay{cfg: cfg, bus: bus, state: transport.StateDisconnected}, nil
}

func (p *Replay) Bus() *feed.Bus { return p.bus }

func (p *Replay) State() transport.State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Replay) Connected() bool { return p.State() == transport.StateConnected }

// Connect loads the capture and starts playback. A no-op while
// playback runs. Load failures surface here, before any status event.
func (p *Replay) Connect(ctx context.Context) error {
	p.mu.Lock()
	if p.state != transport.StateDisconnected {
		p.mu.Unlock()
		return nil
	}
	rec, err := p.load()
	if err != nil {
		p.mu.Unlock()
		return err
	}
	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.state = transport.StateConnecting
	done := p.done
	p.mu.Unlock()

	p.publishStatus(transport.StateConnecting, "")
	go p.run(runCtx, rec, done)
	return nil
}

// Disconnect stops playback and waits for it to wind down. After
// Disconnect returns no further event reaches the bus. Idempotent.
func (p *Replay) Disconnect() {
	p.mu.Lock()
	cancel := p.cancel
	done := p.done
	p.cancel = nil
	p.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (p *Replay) load() (*recording.Recording, error) {
	if p.cfg.Source != nil {
		return recording.Load(p.cfg.Source)
	}
	return recording.LoadFile(p.cfg.Path)
}

func (p *Replay) run(ctx context.Context, rec *recording.Recording, done chan struct{}) {
	defer close(done)
	defer p.setState(transport.StateDisconnected, "")

	detail := rec.Meta.ID
	if detail == "" {
		detail = p.cfg.Path
	}
	p.setState(transport.StateConnected, detail)
	log.Info().
		Str("capture", detail).
		Int("entries", len(rec.Entries)).
		Float64("speed", p.cfg.Speed).
		Msg("replay started")

	for {
		start := time.Now()
		for i := range rec.Entries {
			e := &rec.Entries[i]
			due := start.Add(time.Duration(float64(e.TS) / p.cfg.Speed * float64(time.Millisecond)))
			if !sleepUntil(ctx, due) {
				return
			}
			p.deliver(e)
			observability.SetReplayPosition(float64(e.TS) / 1000)
		}
		if !p.cfg.Loop || ctx.Err() != nil {
			return
		}
		// Loop seam: a reconnect transition resets downstream state the
		// same way a dropped live link would.
		p.setState(transport.StateReconnecting, "capture restarting")
		p.setState(transport.StateConnected, detail)
	}
}

func (p *Replay) deliver(e *recording.Entry) {
	ev, err := gatejson.DecodeMessage(e.Type, e.Data)
	if err != nil {
		log.Warn().Str("type", e.Type).Err(err).Msg("replay decode failed")
		observability.RecordDecodeError(SourceReplay)
		p.bus.Publish(&feed.ErrorEvent{Code: feed.CodeFor(err), Message: err.Error()})
		return
	}
	if ev == nil {
		return
	}
	observability.RecordEventDecoded(SourceReplay, string(ev.Kind()))
	p.bus.Publish(ev)
}

func (p *Replay) setState(s transport.State, detail string) {
	p.mu.Lock()
	if p.state == s {
		p.mu.Unlock()
		return
	}
	p.state = s
	p.mu.Unlock()
	p.publishStatus(s, detail)
}

func (p *Replay) publishStatus(s transport.State, detail string) {
	log.Info().
		Str("source", SourceReplay).
		Str("state", s.String()).
		Str("detail", detail).
		Msg("connection state")
	observability.SetConnectionState(SourceReplay, int(s))
	p.bus.Publish(&feed.ConnectionStatus{State: s.String(), Detail: detail})
}

func sleepUntil(ctx context.Context, due time.Time) bool {
	wait := time.Until(due)
	if wait <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
