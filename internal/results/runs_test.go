package results

import (
	"testing"

	"github.com/paddleworks/slalomboard/internal/testutil/testlog"
)

func TestSplitRun(t *testing.T) {
	testlog.Start(t)
	cases := []struct {
		raceID  string
		classID string
		run     int
		ok      bool
	}{
		{"K1M_BR2", "K1M", 2, true},
		{"K1M_BR1", "K1M", 1, true},
		{"C1W-BR2", "C1W", 2, true},
		{"K1MBR2", "K1M", 2, true},
		{"k1m_br2", "k1m", 2, true},
		{" K1M_BR2 ", "K1M", 2, true},
		{"K1M_FINAL", "", 0, false},
		{"BR2", "", 0, false},
		{"", "", 0, false},
		{"K1M_BR3", "", 0, false},
	}
	for _, tc := range cases {
		classID, run, ok := SplitRun(tc.raceID)
		if ok != tc.ok || classID != tc.classID || run != tc.run {
			t.Fatalf("SplitRun(%q) = (%q, %d, %v), want (%q, %d, %v)",
				tc.raceID, classID, run, ok, tc.classID, tc.run, tc.ok)
		}
	}
}

func TestIsSecondRun(t *testing.T) {
	testlog.Start(t)
	if !IsSecondRun("K1M_BR2") {
		t.Fatalf("K1M_BR2 must be a second run")
	}
	if IsSecondRun("K1M_BR1") || IsSecondRun("K1M") {
		t.Fatalf("first run or unqualified id must not match")
	}
}
