package main

import (
	"bufio"
	"bytes"
	"net"
	"testing"
	"time"

	"github.com/paddleworks/slalomboard/internal/feed"
	"github.com/paddleworks/slalomboard/internal/protocol/gatejson"
	"github.com/paddleworks/slalomboard/internal/recording"
	"github.com/paddleworks/slalomboard/internal/testutil/testlog"
)

func pumpLines(conn net.Conn, out chan<- []byte) {
	sc := bufio.NewScanner(conn)
	for sc.Scan() {
		out <- append([]byte{}, sc.Bytes()...)
	}
}

func recvLine(t *testing.T, ch <-chan []byte) []byte {
	t.Helper()
	select {
	case line := <-ch:
		return line
	case <-time.After(2 * time.Second):
		t.Fatalf("no line within deadline")
		return nil
	}
}

func TestHubBroadcastsAndPrunes(t *testing.T) {
	testlog.Start(t)
	h := newHub()

	srv1, cli1 := net.Pipe()
	srv2, cli2 := net.Pipe()
	h.add(srv1)
	h.add(srv2)

	lines1 := make(chan []byte, 4)
	lines2 := make(chan []byte, 4)
	go pumpLines(cli1, lines1)
	go pumpLines(cli2, lines2)

	h.broadcast([]byte(`{"type":"visibility"}`))
	if got := string(recvLine(t, lines1)); got != `{"type":"visibility"}` {
		t.Fatalf("client 1 got %q", got)
	}
	recvLine(t, lines2)

	// A closed client is pruned on the next broadcast.
	cli2.Close()
	h.broadcast([]byte(`{"type":"config"}`))
	recvLine(t, lines1)
	if h.count() != 1 {
		t.Fatalf("dead client not pruned, count=%d", h.count())
	}

	h.closeAll()
	if h.count() != 0 {
		t.Fatalf("closeAll left %d clients", h.count())
	}
}

func TestRelayHandlerTranslatesEvents(t *testing.T) {
	testlog.Start(t)
	h := newHub()
	srv, cli := net.Pipe()
	h.add(srv)
	lines := make(chan []byte, 8)
	go pumpLines(cli, lines)

	var buf bytes.Buffer
	capture, err := recording.NewWriter(&buf, recording.Meta{Source: "relayctl"})
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	handle := relayHandler(h, capture)

	handle(&feed.Results{
		RaceID: "K1M_BR1",
		Rows:   []feed.ResultRow{{Rank: 1, Bib: "23", Total: "95.00"}},
	})
	events, err := gatejson.Decode(recvLine(t, lines))
	if err != nil || len(events) != 1 {
		t.Fatalf("results line does not decode: %v", err)
	}
	res, ok := events[0].(*feed.Results)
	if !ok || res.RaceID != "K1M_BR1" || len(res.Rows) != 1 {
		t.Fatalf("results round trip: %#v", events[0])
	}

	// Upstream loss becomes an upstream_status envelope, which decodes
	// downstream as a connection-coded error.
	handle(&feed.ConnectionStatus{State: feed.ConnReconnecting, Detail: "read: reset"})
	events, err = gatejson.Decode(recvLine(t, lines))
	if err != nil || len(events) != 1 {
		t.Fatalf("upstream line does not decode: %v", err)
	}
	errEv, ok := events[0].(*feed.ErrorEvent)
	if !ok || errEv.Code != feed.CodeConnection {
		t.Fatalf("upstream translation: %#v", events[0])
	}

	// Local plumbing stays local.
	handle(&feed.ConnectionStatus{State: feed.ConnConnecting})
	handle(&feed.ErrorEvent{Code: feed.CodeParse, Message: "short frame"})
	handle(&feed.Config{GateCount: 24})
	cfgLine := recvLine(t, lines)
	events, err = gatejson.Decode(cfgLine)
	if err != nil || len(events) != 1 || events[0].Kind() != feed.KindConfig {
		t.Fatalf("expected the config line next, got %s", cfgLine)
	}

	if err := capture.Close(); err != nil {
		t.Fatalf("close capture: %v", err)
	}
	rec, err := recording.Load(&buf)
	if err != nil {
		t.Fatalf("load capture: %v", err)
	}
	if rec.Meta.Source != "relayctl" {
		t.Fatalf("capture meta: %+v", rec.Meta)
	}
	var types []string
	for _, e := range rec.Entries {
		types = append(types, e.Type)
	}
	want := []string{"results", gatejson.TypeUpstreamStatus, "config"}
	if len(types) != len(want) {
		t.Fatalf("capture entries: %v", types)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Fatalf("capture entry %d: got %s want %s", i, types[i], want[i])
		}
	}
}
