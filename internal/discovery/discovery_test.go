package discovery

import (
	"context"
	"errors"
	"testing"

	"github.com/paddleworks/slalomboard/internal/testutil/testlog"
)

func TestNormalize(t *testing.T) {
	testlog.Start(t)
	cases := []struct {
		in   string
		want string
	}{
		{"127.0.0.1:8128", "127.0.0.1:8128"},
		{"localhost:8128", "127.0.0.1:8128"},
		{":8128", "127.0.0.1:8128"},
		{" timing.local:8128 ", "timing.local:8128"},
		{"[::1]:8128", "[::1]:8128"},
	}
	for _, tc := range cases {
		got, err := Normalize(tc.in)
		if err != nil || got != tc.want {
			t.Fatalf("Normalize(%q) = (%q, %v), want %q", tc.in, got, err, tc.want)
		}
	}

	for _, bad := range []string{"", "8128", "host:", "  "} {
		if _, err := Normalize(bad); !errors.Is(err, ErrBadAddress) {
			t.Fatalf("Normalize(%q) must fail, got %v", bad, err)
		}
	}
}

func TestStaticProbe(t *testing.T) {
	testlog.Start(t)
	probe, err := Static("localhost:8128")
	if err != nil {
		t.Fatalf("static: %v", err)
	}
	addr, err := probe(context.Background())
	if err != nil || addr != "127.0.0.1:8128" {
		t.Fatalf("probe: (%q, %v)", addr, err)
	}
	if _, err := Static("nonsense"); !errors.Is(err, ErrBadAddress) {
		t.Fatalf("static must validate, got %v", err)
	}
}

func TestFirstProbe(t *testing.T) {
	testlog.Start(t)
	failing := func(context.Context) (string, error) { return "", ErrNoServer }
	fixed, _ := Static("127.0.0.1:9000")

	addr, err := First(failing, fixed)(context.Background())
	if err != nil || addr != "127.0.0.1:9000" {
		t.Fatalf("first: (%q, %v)", addr, err)
	}
	if _, err := First(failing)(context.Background()); !errors.Is(err, ErrNoServer) {
		t.Fatalf("all-failing must surface the error, got %v", err)
	}
	if _, err := First()(context.Background()); !errors.Is(err, ErrNoServer) {
		t.Fatalf("empty probe list must fail, got %v", err)
	}
}
