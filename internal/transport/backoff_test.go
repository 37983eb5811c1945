package transport

import (
	"math/rand"
	"testing"
	"time"

	"github.com/paddleworks/slalomboard/internal/testutil/testlog"
)

func TestNextDelayDoublesToCap(t *testing.T) {
	testlog.Start(t)
	cfg := DefaultBackoff()
	if got := NextDelay(cfg, 1, nil); got != time.Second {
		t.Fatalf("attempt1 got=%v", got)
	}
	if got := NextDelay(cfg, 2, nil); got != 2*time.Second {
		t.Fatalf("attempt2 got=%v", got)
	}
	if got := NextDelay(cfg, 3, nil); got != 4*time.Second {
		t.Fatalf("attempt3 got=%v", got)
	}
	if got := NextDelay(cfg, 6, nil); got != 30*time.Second {
		t.Fatalf("attempt6 must hit the cap, got=%v", got)
	}
	if got := NextDelay(cfg, 40, nil); got != 30*time.Second {
		t.Fatalf("attempt40 must stay at the cap, got=%v", got)
	}
}

func TestNextDelayJitterStaysBounded(t *testing.T) {
	testlog.Start(t)
	cfg := BackoffConfig{
		InitialDelay: time.Second,
		Multiplier:   2.0,
		MaxDelay:     30 * time.Second,
		Jitter:       true,
	}
	rng := rand.New(rand.NewSource(7))
	for attempt := 2; attempt < 8; attempt++ {
		base := NextDelay(BackoffConfig{
			InitialDelay: cfg.InitialDelay,
			Multiplier:   cfg.Multiplier,
			MaxDelay:     cfg.MaxDelay,
		}, attempt, nil)
		got := NextDelay(cfg, attempt, rng)
		if got < base/2 || got > base+base/2 {
			t.Fatalf("attempt%d jittered delay %v outside [%v, %v]", attempt, got, base/2, base+base/2)
		}
	}
}
