package recording

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/paddleworks/slalomboard/internal/feed"
	"github.com/paddleworks/slalomboard/internal/protocol/gatejson"
	"github.com/paddleworks/slalomboard/internal/testutil/testlog"
)

func TestWriterLoadRoundTrip(t *testing.T) {
	testlog.Start(t)
	var buf bytes.Buffer
	w, err := NewWriter(&buf, Meta{Source: "relayctl", Note: "worlds finals"})
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	if err := w.WriteEvent(SrcTiming, &feed.Config{GateCount: 24, PenaltyTouch: 2, PenaltyMiss: 50}); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if err := w.WriteEvent(SrcTiming, &feed.Results{
		RaceID: "K1M_BR1",
		Rows:   []feed.ResultRow{{Rank: 1, Bib: "23", Total: "95.00"}},
	}); err != nil {
		t.Fatalf("write results: %v", err)
	}
	if err := w.WriteUpstream(SrcTiming, false, "link lost"); err != nil {
		t.Fatalf("write upstream: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	rec, err := Load(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if rec.Meta.ID == "" || rec.Meta.CreatedAt == "" || rec.Meta.Source != "relayctl" {
		t.Fatalf("meta not preserved: %+v", rec.Meta)
	}
	if len(rec.Entries) != 3 {
		t.Fatalf("entry count: %d", len(rec.Entries))
	}
	if rec.Entries[0].Type != string(feed.KindConfig) || rec.Entries[0].Src != SrcTiming {
		t.Fatalf("first entry wrong: %+v", rec.Entries[0])
	}

	// Entries decode through the same mapping as live envelopes.
	ev, err := gatejson.DecodeMessage(rec.Entries[1].Type, rec.Entries[1].Data)
	if err != nil {
		t.Fatalf("decode entry: %v", err)
	}
	results, ok := ev.(*feed.Results)
	if !ok || results.RaceID != "K1M_BR1" || results.Rows[0].Bib != "23" {
		t.Fatalf("entry round trip lost data: %+v", ev)
	}
	ev, err = gatejson.DecodeMessage(rec.Entries[2].Type, rec.Entries[2].Data)
	if err != nil {
		t.Fatalf("decode upstream entry: %v", err)
	}
	if ee, ok := ev.(*feed.ErrorEvent); !ok || ee.Code != feed.CodeConnection {
		t.Fatalf("upstream entry must decode to a connection error: %+v", ev)
	}
}

func TestWriterRefusesLocalKinds(t *testing.T) {
	testlog.Start(t)
	var buf bytes.Buffer
	w, err := NewWriter(&buf, Meta{})
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	if err := w.WriteEvent(SrcTiming, &feed.ConnectionStatus{State: feed.ConnConnected}); !errors.Is(err, gatejson.ErrUnsupportedEvent) {
		t.Fatalf("connection status must not record, got %v", err)
	}
}

func TestLoadSortsByOffset(t *testing.T) {
	testlog.Start(t)
	capture := strings.Join([]string{
		`{"_meta":{"id":"abc123","source":"relayctl"}}`,
		`{"ts":2000,"src":"tcp","type":"event_info","data":{"day_time":"10:00:02"}}`,
		`{"ts":0,"src":"tcp","type":"config","data":{"gate_count":18}}`,
		`{"ts":1000,"src":"tcp","type":"event_info","data":{"day_time":"10:00:01"}}`,
		``,
	}, "\n")
	rec, err := Load(strings.NewReader(capture))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if rec.Meta.ID != "abc123" {
		t.Fatalf("meta missed: %+v", rec.Meta)
	}
	want := []int64{0, 1000, 2000}
	for i, ts := range want {
		if rec.Entries[i].TS != ts {
			t.Fatalf("entry %d offset %d, want %d", i, rec.Entries[i].TS, ts)
		}
	}
	if rec.Duration() != 2000 {
		t.Fatalf("duration: %d", rec.Duration())
	}
}

func TestLoadRejectsBadEntries(t *testing.T) {
	testlog.Start(t)
	if _, err := Load(strings.NewReader(`{"ts":5,"type":"config","data":`)); !errors.Is(err, feed.ErrParse) {
		t.Fatalf("expected parse error, got %v", err)
	}
	if _, err := Load(strings.NewReader(`{"ts":5,"data":{}}`)); !errors.Is(err, feed.ErrValidation) {
		t.Fatalf("expected validation error for missing type, got %v", err)
	}
	if _, err := Load(strings.NewReader(`{"ts":-1,"type":"config","data":{}}`)); !errors.Is(err, feed.ErrValidation) {
		t.Fatalf("expected validation error for negative offset, got %v", err)
	}
	if _, err := Load(strings.NewReader("\n\n")); !errors.Is(err, ErrEmptyRecording) {
		t.Fatalf("expected empty recording error, got %v", err)
	}
}

func TestCreateWritesFile(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "captures", "session.ndjson")
	w, err := Create(path, Meta{Source: "relayctl"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := w.WriteEvent(SrcTiming, &feed.Visibility{Results: true}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	rec, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load file: %v", err)
	}
	if len(rec.Entries) != 1 || rec.Entries[0].Type != string(feed.KindVisibility) {
		t.Fatalf("unexpected entries: %+v", rec.Entries)
	}
}
