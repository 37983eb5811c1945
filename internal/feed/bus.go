package feed

import "sync"

// Handler consumes one event. Handlers run synchronously on the
// publisher's goroutine and must not block.
type Handler func(Event)

// Subscription is the cancel handle returned by every subscribe call.
type Subscription struct {
	once   sync.Once
	cancel func()
}

// Cancel detaches the subscriber. Safe to call any number of times;
// calls after the first are no-ops and never disturb other subscribers.
func (s *Subscription) Cancel() {
	s.once.Do(s.cancel)
}

type busEntry struct {
	id uint64
	fn Handler
}

// Bus fans events out to category subscribers. Dispatch preserves
// publish order per subscriber; subscribers of one category never see
// another category's events.
type Bus struct {
	mu   sync.Mutex
	next uint64
	subs map[Kind][]busEntry
	all  []busEntry
}

func NewBus() *Bus {
	return &Bus{subs: make(map[Kind][]busEntry)}
}

// Publish delivers ev to every subscriber of its kind, then to every
// all-events subscriber, in subscription order.
func (b *Bus) Publish(ev Event) {
	if ev == nil {
		return
	}
	b.mu.Lock()
	kindSubs := append([]busEntry(nil), b.subs[ev.Kind()]...)
	allSubs := append([]busEntry(nil), b.all...)
	b.mu.Unlock()

	// Handlers run outside the lock so a subscriber may cancel or
	// subscribe from inside its own callback.
	for _, e := range kindSubs {
		e.fn(ev)
	}
	for _, e := range allSubs {
		e.fn(ev)
	}
}

// Subscribe attaches fn to one event category.
func (b *Bus) Subscribe(k Kind, fn Handler) *Subscription {
	b.mu.Lock()
	b.next++
	id := b.next
	b.subs[k] = append(b.subs[k], busEntry{id: id, fn: fn})
	b.mu.Unlock()
	return &Subscription{cancel: func() { b.remove(k, id) }}
}

// SubscribeAll attaches fn to every category. Used by capture and
// relay fan-out paths that must preserve the full stream.
func (b *Bus) SubscribeAll(fn Handler) *Subscription {
	b.mu.Lock()
	b.next++
	id := b.next
	b.all = append(b.all, busEntry{id: id, fn: fn})
	b.mu.Unlock()
	return &Subscription{cancel: func() { b.removeAll(id) }}
}

func (b *Bus) remove(k Kind, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	cur := b.subs[k]
	for i, e := range cur {
		if e.id == id {
			b.subs[k] = append(cur[:i:i], cur[i+1:]...)
			return
		}
	}
}

func (b *Bus) removeAll(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, e := range b.all {
		if e.id == id {
			b.all = append(b.all[:i:i], b.all[i+1:]...)
			return
		}
	}
}

// Subscribers reports the number of active subscriptions across all
// categories.
func (b *Bus) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := len(b.all)
	for _, entries := range b.subs {
		n += len(entries)
	}
	return n
}

// Typed subscribe helpers, one per category. These are the provider
// contract's subscription surface.

func (b *Bus) OnResults(fn func(*Results)) *Subscription {
	return b.Subscribe(KindResults, func(ev Event) { fn(ev.(*Results)) })
}

func (b *Bus) OnOnCourse(fn func(*OnCourse)) *Subscription {
	return b.Subscribe(KindOnCourse, func(ev Event) { fn(ev.(*OnCourse)) })
}

func (b *Bus) OnEventInfo(fn func(*EventInfo)) *Subscription {
	return b.Subscribe(KindEventInfo, func(ev Event) { fn(ev.(*EventInfo)) })
}

func (b *Bus) OnConfig(fn func(*Config)) *Subscription {
	return b.Subscribe(KindConfig, func(ev Event) { fn(ev.(*Config)) })
}

func (b *Bus) OnVisibility(fn func(*Visibility)) *Subscription {
	return b.Subscribe(KindVisibility, func(ev Event) { fn(ev.(*Visibility)) })
}

func (b *Bus) OnConnectionStatus(fn func(*ConnectionStatus)) *Subscription {
	return b.Subscribe(KindConnection, func(ev Event) { fn(ev.(*ConnectionStatus)) })
}

func (b *Bus) OnError(fn func(*ErrorEvent)) *Subscription {
	return b.Subscribe(KindError, func(ev Event) { fn(ev.(*ErrorEvent)) })
}
