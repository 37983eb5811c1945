package scoreboard

import (
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/paddleworks/slalomboard/internal/feed"
	"github.com/paddleworks/slalomboard/internal/observability"
)

// Options tune the transient display windows.
type Options struct {
	// HighlightWindow bounds how long a fresh result stays called out.
	HighlightWindow time.Duration
	// DepartWindow bounds how long a competitor who lost current
	// status stays visible without a result.
	DepartWindow time.Duration
	// Now is the clock used for window arithmetic. Tests inject one.
	Now func() time.Time
}

// DefaultOptions returns the production windows.
func DefaultOptions() Options {
	return Options{
		HighlightWindow: 3 * time.Second,
		DepartWindow:    3 * time.Second,
		Now:             time.Now,
	}
}

// Engine folds the event stream into the authoritative snapshot.
// Apply is the single writer; View hands out copies.
type Engine struct {
	opts Options

	mu   sync.RWMutex
	snap Snapshot
	subs []*feed.Subscription
}

// NewEngine builds an engine with empty state. Zero options fall back
// to DefaultOptions field by field.
func NewEngine(opts Options) *Engine {
	def := DefaultOptions()
	if opts.HighlightWindow <= 0 {
		opts.HighlightWindow = def.HighlightWindow
	}
	if opts.DepartWindow <= 0 {
		opts.DepartWindow = def.DepartWindow
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Engine{
		opts: opts,
		snap: Snapshot{Connection: feed.ConnDisconnected},
	}
}

// Attach subscribes the engine to every event category on bus. Attach
// the engine before any consumer that reads the snapshot in reaction
// to the same events, so those consumers observe post-apply state.
func (e *Engine) Attach(bus *feed.Bus) {
	kinds := []feed.Kind{
		feed.KindResults, feed.KindOnCourse, feed.KindEventInfo,
		feed.KindConfig, feed.KindVisibility, feed.KindConnection,
		feed.KindError,
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, k := range kinds {
		e.subs = append(e.subs, bus.Subscribe(k, e.Apply))
	}
}

// Detach cancels the bus subscriptions. Idempotent.
func (e *Engine) Detach() {
	e.mu.Lock()
	subs := e.subs
	e.subs = nil
	e.mu.Unlock()
	for _, s := range subs {
		s.Cancel()
	}
}

// Apply folds one event into the snapshot.
func (e *Engine) Apply(ev feed.Event) {
	if ev == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.opts.Now()
	if e.snap.Departing != nil && now.Sub(e.snap.Departing.Since) >= e.opts.DepartWindow {
		e.snap.Departing = nil
	}

	switch v := ev.(type) {
	case *feed.Results:
		e.applyResults(v, now)
	case *feed.OnCourse:
		e.applyOnCourse(v, now)
	case *feed.EventInfo:
		e.applyEventInfo(v)
	case *feed.Config:
		e.snap.Course = *v
	case *feed.Visibility:
		e.snap.Visibility = *v
	case *feed.ConnectionStatus:
		e.applyConnection(v)
	case *feed.ErrorEvent:
		ee := *v
		e.snap.LastError = &ee
		log.Warn().Str("code", string(v.Code)).Str("message", v.Message).Msg("scoreboard: feed error")
	default:
		return
	}
	e.snap.UpdatedAt = now
	observability.RecordSnapshotApply(string(ev.Kind()))
}

// View returns a deep copy of the snapshot with expired transient
// state already dropped. Expiry never depends on another event
// arriving in time.
func (e *Engine) View() Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	now := e.opts.Now()
	out := e.snap.clone()
	if out.Highlight != nil && now.Sub(out.Highlight.Since) >= e.opts.HighlightWindow {
		out.Highlight = nil
	}
	if out.Departing != nil && now.Sub(out.Departing.Since) >= e.opts.DepartWindow {
		out.Departing = nil
	}
	return out
}

// UpgradeResults swaps in merged standings for raceID. The swap is
// refused when the board has moved on to a different race, so a slow
// companion-run lookup can never clobber newer data.
func (e *Engine) UpgradeResults(raceID string, rows []feed.ResultRow) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if raceID == "" || e.snap.RaceID != raceID {
		return false
	}
	e.snap.Results = sortRows(copyRows(rows))
	e.snap.UpdatedAt = e.opts.Now()
	observability.RecordSnapshotApply("results_upgrade")
	return true
}

func (e *Engine) applyResults(v *feed.Results, now time.Time) {
	e.snap.Results = sortRows(copyRows(v.Rows))
	e.snap.RaceID = v.RaceID
	e.snap.RaceName = v.Title
	e.snap.RaceStatus = v.Status
	e.snap.InitialDataReceived = true
	e.activateHighlight(v.HighlightBib, now)
}

// activateHighlight enforces the highlight rules: a bib still racing is
// never highlighted, and re-announcing the active bib does not restart
// its window. An activated highlight absorbs a departure for the same
// bib.
func (e *Engine) activateHighlight(bib string, now time.Time) {
	if bib == "" || e.racing(bib) {
		return
	}
	if e.snap.Highlight == nil || e.snap.Highlight.Bib != bib {
		e.snap.Highlight = &Highlight{Bib: bib, Since: now}
	}
	if e.snap.Departing != nil && e.snap.Departing.Competitor.Bib == bib {
		e.snap.Departing = nil
	}
}

func (e *Engine) applyOnCourse(v *feed.OnCourse, now time.Time) {
	prev := e.snap.Current
	next := currentOf(v.Competitors)
	if prev != nil && (next == nil || next.Bib != prev.Bib) {
		highlighted := e.snap.Highlight != nil && e.snap.Highlight.Bib == prev.Bib
		if !highlighted {
			e.snap.Departing = &Departure{Competitor: copyCompetitor(*prev), Since: now}
		}
	}
	e.snap.OnCourse = copyCompetitors(v.Competitors)
	if next != nil {
		cur := copyCompetitor(*next)
		e.snap.Current = &cur
	} else {
		e.snap.Current = nil
	}
	// A bib back between the gates cannot stay highlighted.
	if e.snap.Highlight != nil && e.racing(e.snap.Highlight.Bib) {
		e.snap.Highlight = nil
	}
	e.snap.InitialDataReceived = true
}

// applyEventInfo merges field by field: the wire sends partial
// updates, so an empty field means "no news", never "clear".
func (e *Engine) applyEventInfo(v *feed.EventInfo) {
	if v.Title != "" {
		e.snap.Title = v.Title
	}
	if v.InfoText != "" {
		e.snap.InfoText = v.InfoText
	}
	if v.DayTime != "" {
		e.snap.DayTime = v.DayTime
	}
}

func (e *Engine) applyConnection(v *feed.ConnectionStatus) {
	e.snap.Connection = v.State
	switch v.State {
	case feed.ConnReconnecting:
		// Never leave a stale board on display while the link is down.
		e.resetRaceState()
		e.snap.LastError = nil
		log.Info().Str("detail", v.Detail).Msg("scoreboard: race state reset on reconnect")
	case feed.ConnConnected:
		e.snap.LastError = nil
	}
}

func (e *Engine) resetRaceState() {
	e.snap.RaceID = ""
	e.snap.RaceName = ""
	e.snap.RaceStatus = ""
	e.snap.Results = nil
	e.snap.OnCourse = nil
	e.snap.Current = nil
	e.snap.Departing = nil
	e.snap.Highlight = nil
	e.snap.InitialDataReceived = false
}

// racing reports whether bib is on course and not yet finished.
func (e *Engine) racing(bib string) bool {
	for i := range e.snap.OnCourse {
		c := &e.snap.OnCourse[i]
		if c.Bib == bib && !c.Finished() {
			return true
		}
	}
	return false
}

// currentOf returns the primary competitor: the most recent starter
// still between start and finish. The wire lists competitors in start
// order, so that is the last entry without a finish clock.
func currentOf(list []feed.OnCourseCompetitor) *feed.OnCourseCompetitor {
	for i := len(list) - 1; i >= 0; i-- {
		if !list[i].Finished() {
			return &list[i]
		}
	}
	return nil
}

func sortRows(rows []feed.ResultRow) []feed.ResultRow {
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Rank < rows[j].Rank })
	return rows
}
