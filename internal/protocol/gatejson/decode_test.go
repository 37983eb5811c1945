package gatejson

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/paddleworks/slalomboard/internal/feed"
	"github.com/paddleworks/slalomboard/internal/testutil/testlog"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	testlog.Start(t)
	src := &feed.Results{
		RaceID: "C1W_BR1",
		Title:  "C1 Women 1st Run",
		Status: "running",
		Rows: []feed.ResultRow{
			{Rank: 1, Bib: "23", Name: "Fox", Nation: "AUS", Total: "101.20", Penalty: 0},
			{Rank: 2, Bib: "8", Name: "Prindis", Nation: "CZE", Total: "103.77", Penalty: 2, Behind: "+2.57"},
		},
	}
	at := time.Date(2026, 8, 25, 10, 15, 0, 0, time.UTC)
	blob, err := Marshal(src, at)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var env Envelope
	if err := json.Unmarshal(blob, &env); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if _, err := time.Parse(time.RFC3339Nano, env.Timestamp); err != nil {
		t.Fatalf("timestamp %q is not ISO-8601: %v", env.Timestamp, err)
	}
	events, err := Decode(blob)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("unexpected event count=%d", len(events))
	}
	got := events[0].(*feed.Results)
	if got.RaceID != src.RaceID || len(got.Rows) != 2 {
		t.Fatalf("round trip lost data: %+v", got)
	}
	for i := range src.Rows {
		if got.Rows[i] != src.Rows[i] {
			t.Fatalf("row %d mismatch: got=%+v want=%+v", i, got.Rows[i], src.Rows[i])
		}
	}
}

func TestDecodeUnknownTypeIgnored(t *testing.T) {
	testlog.Start(t)
	events, err := Decode([]byte(`{"type":"pit_lane","timestamp":"2026-08-25T10:15:00Z","data":{}}`))
	if err != nil {
		t.Fatalf("unknown type must not error: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("unknown type produced events: %v", events)
	}
}

func TestDecodeMalformed(t *testing.T) {
	testlog.Start(t)
	if _, err := Decode([]byte(`{"type":"results","timestamp":`)); !errors.Is(err, feed.ErrParse) {
		t.Fatalf("expected parse error, got %v", err)
	}
	if _, err := Decode([]byte(`{"timestamp":"2026-08-25T10:15:00Z","data":{}}`)); !errors.Is(err, feed.ErrValidation) {
		t.Fatalf("expected validation error for missing type, got %v", err)
	}
	if _, err := Decode([]byte(`{"type":"results","timestamp":"2026-08-25T10:15:00Z"}`)); !errors.Is(err, feed.ErrValidation) {
		t.Fatalf("expected validation error for missing data, got %v", err)
	}
}

func TestDecodeMissingTimestampTolerated(t *testing.T) {
	testlog.Start(t)
	events, err := Decode([]byte(`{"type":"visibility","data":{"results":true,"oncourse":true,"header":true,"ticker":false}}`))
	if err != nil {
		t.Fatalf("decode without timestamp: %v", err)
	}
	if len(events) != 1 || events[0].Kind() != feed.KindVisibility {
		t.Fatalf("unexpected events: %v", events)
	}
}

func TestDecodeUpstreamStatus(t *testing.T) {
	testlog.Start(t)
	events, err := Decode([]byte(`{"type":"upstream_status","timestamp":"2026-08-25T10:15:00Z","data":{"connected":false,"detail":"timing system gone"}}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("unexpected event count=%d", len(events))
	}
	ev := events[0].(*feed.ErrorEvent)
	if ev.Code != feed.CodeConnection || ev.Message != "timing system gone" {
		t.Fatalf("unexpected error event: %+v", ev)
	}

	events, err = Decode([]byte(`{"type":"upstream_status","timestamp":"2026-08-25T10:15:01Z","data":{"connected":true}}`))
	if err != nil {
		t.Fatalf("decode connected: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("connected upstream produced events: %v", events)
	}
}

func TestDecodeFinishNormalization(t *testing.T) {
	testlog.Start(t)
	blob := []byte(`{"type":"oncourse","timestamp":"2026-08-25T10:15:00Z","data":{"competitors":[` +
		`{"bib":"42","name":"Ried","dt_finish":""},` +
		`{"bib":"17","name":"Novak","dt_finish":"10:01:30.500"}]}}`)
	events, err := Decode(blob)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	oc := events[0].(*feed.OnCourse)
	if oc.Competitors[0].DTFinish != nil {
		t.Fatalf("empty dt_finish must decode to nil")
	}
	if oc.Competitors[1].DTFinish == nil || *oc.Competitors[1].DTFinish != "10:01:30.500" {
		t.Fatalf("dt_finish must pass through literally, got %v", oc.Competitors[1].DTFinish)
	}
}

func TestMarshalRejectsLocalKinds(t *testing.T) {
	testlog.Start(t)
	if _, err := Marshal(&feed.ConnectionStatus{State: feed.ConnConnected}, time.Now()); !errors.Is(err, ErrUnsupportedEvent) {
		t.Fatalf("connection status must not marshal, got %v", err)
	}
	if _, err := Marshal(&feed.ErrorEvent{Code: feed.CodeParse}, time.Now()); !errors.Is(err, ErrUnsupportedEvent) {
		t.Fatalf("error event must not marshal, got %v", err)
	}
}

func TestMarshalUpstream(t *testing.T) {
	testlog.Start(t)
	blob, err := MarshalUpstream(false, "lost tcp", time.Now())
	if err != nil {
		t.Fatalf("marshal upstream: %v", err)
	}
	events, err := Decode(blob)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(events) != 1 || events[0].Kind() != feed.KindError {
		t.Fatalf("unexpected events: %v", events)
	}
}
