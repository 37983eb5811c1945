package feed

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseCentiseconds converts a formatted run time ("92.45", "1:32.45",
// "1:02:03.4") into centiseconds. Both spellings of the same duration
// parse to the same value.
func ParseCentiseconds(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty value", ErrBadClock)
	}
	whole := s
	var cs int64
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole = s[:i]
		frac := s[i+1:]
		if len(frac) < 1 || len(frac) > 2 {
			return 0, fmt.Errorf("%w: %q", ErrBadClock, s)
		}
		d, err := strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrBadClock, s)
		}
		cs = d
		if len(frac) == 1 {
			cs *= 10
		}
	}
	parts := strings.Split(whole, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("%w: %q", ErrBadClock, s)
	}
	var secs int64
	for _, p := range parts {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("%w: %q", ErrBadClock, s)
		}
		secs = secs*60 + n
	}
	return secs*100 + cs, nil
}

// FormatCentiseconds renders centiseconds the way the timing system
// formats totals: two decimals, minute and hour prefixes only when the
// value needs them.
func FormatCentiseconds(cs int64) string {
	if cs < 0 {
		cs = 0
	}
	secs := cs / 100
	frac := cs % 100
	min := secs / 60
	sec := secs % 60
	switch {
	case min == 0:
		return fmt.Sprintf("%d.%02d", sec, frac)
	case min < 60:
		return fmt.Sprintf("%d:%02d.%02d", min, sec, frac)
	default:
		return fmt.Sprintf("%d:%02d:%02d.%02d", min/60, min%60, sec, frac)
	}
}
