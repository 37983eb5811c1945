package results

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/paddleworks/slalomboard/internal/feed"
	"github.com/paddleworks/slalomboard/internal/observability"
)

// Lookup fetches the first-run standings for one class.
type Lookup interface {
	FirstRun(ctx context.Context, classID string) ([]feed.ResultRow, error)
}

// Upgrader receives merged standings; the scoreboard engine satisfies
// it. The return value reports whether the board still showed the race.
type Upgrader interface {
	UpgradeResults(raceID string, rows []feed.ResultRow) bool
}

// ResolverConfig wires a resolver to its collaborators.
type ResolverConfig struct {
	Lookup Lookup
	Board  Upgrader
	// Timeout bounds one lookup round trip. Zero falls back to 5s.
	Timeout time.Duration
}

// mergeState tracks best-of-two reconciliation for one class. One
// lookup per class: a failure degrades that class to second-run-only
// display until the record is discarded.
type mergeState struct {
	raceID   string
	rows     []feed.ResultRow
	firstRun map[string]RunFigures
	pending  bool
	resolved bool
	failed   bool
}

// Resolver watches second-run standings and upgrades the board with
// best-of-two figures once the companion first run resolves. The
// second-run-only view always lands first; the upgrade replaces it in
// place.
type Resolver struct {
	lookup  Lookup
	board   Upgrader
	timeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	bus     *feed.Bus
	sub     *feed.Subscription
	classes map[string]*mergeState
}

func NewResolver(cfg ResolverConfig) (*Resolver, error) {
	if cfg.Lookup == nil {
		return nil, ErrLookupRequired
	}
	if cfg.Board == nil {
		return nil, ErrBoardRequired
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Resolver{
		lookup:  cfg.Lookup,
		board:   cfg.Board,
		timeout: cfg.Timeout,
		ctx:     ctx,
		cancel:  cancel,
		classes: make(map[string]*mergeState),
	}, nil
}

// Attach subscribes to results events on bus. Attach after the engine:
// the resolver assumes the second-run-only view is already applied when
// it reacts to the same event.
func (r *Resolver) Attach(bus *feed.Bus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sub != nil {
		return
	}
	r.bus = bus
	r.sub = bus.Subscribe(feed.KindResults, func(ev feed.Event) {
		if v, ok := ev.(*feed.Results); ok {
			r.onResults(v)
		}
	})
}

// Close detaches from the bus, cancels in-flight lookups and waits
// them out. Idempotent.
func (r *Resolver) Close() {
	r.mu.Lock()
	sub := r.sub
	r.sub = nil
	r.mu.Unlock()
	if sub != nil {
		sub.Cancel()
	}
	r.cancel()
	r.wg.Wait()
}

func (r *Resolver) onResults(ev *feed.Results) {
	classID, run, ok := SplitRun(ev.RaceID)
	if !ok || run != 2 {
		return
	}
	if !raceActive(ev.Status) {
		r.mu.Lock()
		if _, ok := r.classes[classID]; ok {
			delete(r.classes, classID)
			log.Debug().Str("class_id", classID).Str("status", ev.Status).Msg("results: merge record discarded")
		}
		r.mu.Unlock()
		return
	}

	r.mu.Lock()
	rec := r.classes[classID]
	if rec == nil {
		rec = &mergeState{}
		r.classes[classID] = rec
	}
	rec.raceID = ev.RaceID
	rec.rows = ev.Rows
	switch {
	case rec.resolved:
		raceID, rows, idx := rec.raceID, rec.rows, rec.firstRun
		r.mu.Unlock()
		r.upgrade(raceID, rows, idx)
	case rec.pending || rec.failed:
		r.mu.Unlock()
	default:
		rec.pending = true
		r.mu.Unlock()
		r.wg.Add(1)
		go r.resolve(classID)
	}
}

// resolve runs off the event path. Late results are harmless: the
// board's race-id guard refuses an upgrade for a race no longer shown.
func (r *Resolver) resolve(classID string) {
	defer r.wg.Done()
	ctx, cancel := context.WithTimeout(r.ctx, r.timeout)
	defer cancel()

	start := time.Now()
	rows, err := r.lookup.FirstRun(ctx, classID)
	if err != nil {
		observability.RecordLookup("error", time.Since(start))
		r.mu.Lock()
		if rec := r.classes[classID]; rec != nil {
			rec.pending = false
			rec.failed = true
		}
		bus := r.bus
		r.mu.Unlock()
		log.Warn().Err(err).Str("class_id", classID).Msg("results: first run lookup failed")
		if bus != nil {
			bus.Publish(&feed.ErrorEvent{
				Code:    feed.CodeLookup,
				Message: fmt.Sprintf("first run lookup for %s: %v", classID, err),
			})
		}
		return
	}
	observability.RecordLookup("ok", time.Since(start))

	idx := FirstRunIndex(rows)
	r.mu.Lock()
	rec := r.classes[classID]
	if rec == nil {
		// Discarded while the lookup was in flight.
		r.mu.Unlock()
		return
	}
	rec.pending = false
	rec.resolved = true
	rec.firstRun = idx
	raceID, latest := rec.raceID, rec.rows
	r.mu.Unlock()
	r.upgrade(raceID, latest, idx)
}

func (r *Resolver) upgrade(raceID string, rows []feed.ResultRow, idx map[string]RunFigures) {
	if len(idx) == 0 {
		// Nothing to merge against; leave the upstream ordering alone.
		return
	}
	if !r.board.UpgradeResults(raceID, Merge(rows, idx)) {
		log.Debug().Str("race_id", raceID).Msg("results: board moved on before merge landed")
	}
}

// raceActive reports whether status names a race still in progress.
// Empty status counts as in progress.
func raceActive(status string) bool {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "", "running", "current":
		return true
	default:
		return false
	}
}
