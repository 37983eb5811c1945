package recording

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/paddleworks/slalomboard/internal/feed"
)

// Source labels for captured entries.
const (
	SrcTiming  = "tcp"
	SrcGateway = "ws"
)

// maxLineBytes mirrors the transport payload ceiling.
const maxLineBytes = 8 << 20

var ErrEmptyRecording = errors.New("recording: no entries")

// Meta is the optional first line of a capture.
type Meta struct {
	ID        string `json:"id,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
	Source    string `json:"source,omitempty"`
	Note      string `json:"note,omitempty"`
}

type metaLine struct {
	Meta *Meta `json:"_meta"`
}

// Entry is one captured message. TS is milliseconds from capture
// start; Type and Data reuse the relay envelope shapes.
type Entry struct {
	TS   int64           `json:"ts"`
	Src  string          `json:"src,omitempty"`
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

func (e Entry) validate(line int) error {
	if e.Type == "" {
		return fmt.Errorf("%w: line %d missing type", feed.ErrValidation, line)
	}
	if e.TS < 0 {
		return fmt.Errorf("%w: line %d negative offset", feed.ErrValidation, line)
	}
	return nil
}

// Recording is a fully loaded capture with entries in time order.
type Recording struct {
	Meta    Meta
	Entries []Entry
}

// Duration returns the offset of the last entry.
func (r *Recording) Duration() int64 {
	if len(r.Entries) == 0 {
		return 0
	}
	return r.Entries[len(r.Entries)-1].TS
}

// Load reads a capture. Entries are sorted by offset here; writers are
// not trusted to order them.
func Load(r io.Reader) (*Recording, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	rec := &Recording{}
	line := 0
	for sc.Scan() {
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			continue
		}
		line++
		if line == 1 && bytes.Contains(raw, []byte(`"_meta"`)) {
			var m metaLine
			if err := json.Unmarshal(raw, &m); err == nil && m.Meta != nil {
				rec.Meta = *m.Meta
				continue
			}
		}
		var e Entry
		if err := json.Unmarshal(raw, &e); err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", feed.ErrParse, line, err)
		}
		if err := e.validate(line); err != nil {
			return nil, err
		}
		rec.Entries = append(rec.Entries, e)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("recording: read: %w", err)
	}
	if len(rec.Entries) == 0 {
		return nil, ErrEmptyRecording
	}
	sort.SliceStable(rec.Entries, func(i, j int) bool { return rec.Entries[i].TS < rec.Entries[j].TS })
	return rec, nil
}

// LoadFile loads a capture from disk.
func LoadFile(path string) (*Recording, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("recording: open %s: %w", path, err)
	}
	defer f.Close()
	rec, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("recording: %s: %w", path, err)
	}
	return rec, nil
}
