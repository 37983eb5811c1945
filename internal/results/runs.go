package results

import (
	"regexp"
	"strings"
)

// Two-run race ids carry a trailing run qualifier the way the timing
// system names them: "K1M_BR2", "C1W-BR1", "K1MBR2".
var runQualifier = regexp.MustCompile(`(?i)^(.+?)[_-]?BR([12])$`)

// SplitRun splits a race id into class id and run number. ok is false
// when the id carries no run qualifier.
func SplitRun(raceID string) (classID string, run int, ok bool) {
	m := runQualifier.FindStringSubmatch(strings.TrimSpace(raceID))
	if m == nil {
		return "", 0, false
	}
	run = 1
	if m[2] == "2" {
		run = 2
	}
	return m[1], run, true
}

// IsSecondRun reports whether raceID names the second run of a two-run
// race.
func IsSecondRun(raceID string) bool {
	_, run, ok := SplitRun(raceID)
	return ok && run == 2
}
