package gatejson

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/paddleworks/slalomboard/internal/feed"
)

var ErrUnsupportedEvent = errors.New("gatejson: unsupported event")

// TypeUpstreamStatus is the out-of-band envelope type the relay emits
// about its own upstream link. It never maps onto a feed kind.
const TypeUpstreamStatus = "upstream_status"

// Envelope is the relay wire frame. Timestamp is ISO-8601; receivers
// treat it as advisory metadata and never gate decoding on it.
type Envelope struct {
	Type      string          `json:"type"`
	Timestamp string          `json:"timestamp,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

func (e Envelope) Validate() error {
	if strings.TrimSpace(e.Type) == "" {
		return fmt.Errorf("%w: missing type", feed.ErrValidation)
	}
	return nil
}

// UpstreamStatus is the payload of a TypeUpstreamStatus envelope.
type UpstreamStatus struct {
	Connected bool   `json:"connected"`
	Detail    string `json:"detail,omitempty"`
}

// Marshal wraps ev into an envelope stamped at. Only wire-carried
// kinds are accepted; connection and error events have their own
// out-of-band envelope (see MarshalUpstream).
func Marshal(ev feed.Event, at time.Time) ([]byte, error) {
	switch ev.Kind() {
	case feed.KindResults, feed.KindOnCourse, feed.KindEventInfo,
		feed.KindConfig, feed.KindVisibility:
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedEvent, ev.Kind())
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("gatejson: marshal data: %w", err)
	}
	return sealEnvelope(Envelope{Type: string(ev.Kind()), Timestamp: stamp(at), Data: data})
}

// MarshalUpstream builds the upstream_status envelope.
func MarshalUpstream(connected bool, detail string, at time.Time) ([]byte, error) {
	data, err := json.Marshal(UpstreamStatus{Connected: connected, Detail: detail})
	if err != nil {
		return nil, fmt.Errorf("gatejson: marshal upstream: %w", err)
	}
	return sealEnvelope(Envelope{Type: TypeUpstreamStatus, Timestamp: stamp(at), Data: data})
}

func sealEnvelope(env Envelope) ([]byte, error) {
	blob, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("gatejson: marshal envelope: %w", err)
	}
	return blob, nil
}

func stamp(at time.Time) string {
	return at.UTC().Format(time.RFC3339Nano)
}
