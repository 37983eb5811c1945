package recording

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/paddleworks/slalomboard/internal/feed"
	"github.com/paddleworks/slalomboard/internal/protocol/gatejson"
)

// Writer appends capture entries as messages pass through. Safe for
// concurrent use; offsets are measured from construction.
type Writer struct {
	mu    sync.Mutex
	out   *bufio.Writer
	file  io.Closer
	start time.Time
	now   func() time.Time
}

// NewWriter stamps the meta line onto w and returns a running writer.
// A missing meta id is generated.
func NewWriter(w io.Writer, meta Meta) (*Writer, error) {
	if meta.ID == "" {
		id, err := gonanoid.New()
		if err != nil {
			return nil, fmt.Errorf("recording: meta id: %w", err)
		}
		meta.ID = id
	}
	if meta.CreatedAt == "" {
		meta.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	out := bufio.NewWriter(w)
	blob, err := json.Marshal(metaLine{Meta: &meta})
	if err != nil {
		return nil, fmt.Errorf("recording: marshal meta: %w", err)
	}
	if _, err := out.Write(append(blob, '\n')); err != nil {
		return nil, fmt.Errorf("recording: write meta: %w", err)
	}
	return &Writer{out: out, start: time.Now(), now: time.Now}, nil
}

// Create opens (or truncates) path and starts a capture in it.
func Create(path string, meta Meta) (*Writer, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("recording: create dir %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("recording: create %s: %w", path, err)
	}
	w, err := NewWriter(f, meta)
	if err != nil {
		f.Close()
		return nil, err
	}
	w.file = f
	return w, nil
}

// WriteEvent captures one wire-carried event under src. Kinds the
// relay never forwards are refused the same way the envelope codec
// refuses them.
func (w *Writer) WriteEvent(src string, ev feed.Event) error {
	switch ev.Kind() {
	case feed.KindResults, feed.KindOnCourse, feed.KindEventInfo,
		feed.KindConfig, feed.KindVisibility:
	default:
		return fmt.Errorf("%w: %s", gatejson.ErrUnsupportedEvent, ev.Kind())
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("recording: marshal %s: %w", ev.Kind(), err)
	}
	return w.writeEntry(Entry{Src: src, Type: string(ev.Kind()), Data: data})
}

// WriteUpstream captures an upstream link transition.
func (w *Writer) WriteUpstream(src string, connected bool, detail string) error {
	data, err := json.Marshal(gatejson.UpstreamStatus{Connected: connected, Detail: detail})
	if err != nil {
		return fmt.Errorf("recording: marshal upstream: %w", err)
	}
	return w.writeEntry(Entry{Src: src, Type: gatejson.TypeUpstreamStatus, Data: data})
}

func (w *Writer) writeEntry(e Entry) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	e.TS = w.now().Sub(w.start).Milliseconds()
	blob, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("recording: marshal entry: %w", err)
	}
	if _, err := w.out.Write(append(blob, '\n')); err != nil {
		return fmt.Errorf("recording: write entry: %w", err)
	}
	return nil
}

// Close flushes buffered entries and closes the file when the writer
// owns one. Safe to call once.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	err := w.out.Flush()
	if w.file != nil {
		if cerr := w.file.Close(); err == nil {
			err = cerr
		}
		w.file = nil
	}
	return err
}
