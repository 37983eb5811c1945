package main

import (
	"github.com/paddleworks/slalomboard/internal/feed"
	"github.com/paddleworks/slalomboard/internal/protocol/canoexml"
)

const scriptRaceID = "K1M_BR2"

// raceScript renders a deterministic second run: standings land, bib 42
// chases while 99 starts behind, 42 finishes into second place, 99
// closes out the race. Every display behavior the board implements
// shows up at least once.
func raceScript(title string) ([][]byte, error) {
	standings := []feed.ResultRow{
		{Rank: 1, Bib: "23", Name: "Jiri Vavra", Nation: "CZE", Total: "95.00"},
		{Rank: 2, Bib: "7", Name: "Marek Bartos", Nation: "SVK", Total: "96.40", Penalty: 2, Behind: "+1.40"},
		{Rank: 3, Bib: "8", Name: "Tomas Kolar", Nation: "CZE", Total: "99.10", Penalty: 2, Behind: "+4.10"},
	}
	with42 := []feed.ResultRow{
		standings[0],
		{Rank: 2, Bib: "42", Name: "Lukas Cerny", Nation: "CZE", Total: "95.80", Penalty: 2, Behind: "+0.80"},
		{Rank: 3, Bib: "7", Name: "Marek Bartos", Nation: "SVK", Total: "96.40", Penalty: 2, Behind: "+1.40"},
		{Rank: 4, Bib: "8", Name: "Tomas Kolar", Nation: "CZE", Total: "99.10", Penalty: 2, Behind: "+4.10"},
	}
	final := []feed.ResultRow{
		with42[0],
		with42[1],
		{Rank: 3, Bib: "99", Name: "Anton Weiss", Nation: "GER", Total: "96.20", Penalty: 0, Behind: "+1.20"},
		{Rank: 4, Bib: "7", Name: "Marek Bartos", Nation: "SVK", Total: "96.40", Penalty: 2, Behind: "+1.40"},
		{Rank: 5, Bib: "8", Name: "Tomas Kolar", Nation: "CZE", Total: "99.10", Penalty: 2, Behind: "+4.10"},
	}

	racing42 := feed.OnCourseCompetitor{
		Bib: "42", Name: "Lukas Cerny", Nation: "CZE",
		Running: "31.20", Gates: []int{0, 0, 2}, DTStart: "10:30:57.00",
	}
	racing42Late := racing42
	racing42Late.Running = "58.72"
	finished42 := racing42
	finished42.Running = ""
	finished42.Total = "95.80"
	finished42.Penalty = 2
	finished42.DTFinish = strPtr("10:32:32.80")
	finished42.Rank = 2
	finished42.Behind = "+0.80"

	racing99 := feed.OnCourseCompetitor{
		Bib: "99", Name: "Anton Weiss", Nation: "GER",
		Running: "12.40", DTStart: "10:31:40.00",
	}
	racing99Late := racing99
	racing99Late.Running = "48.10"
	racing99Late.Gates = []int{0, 2}

	script := [][]feed.Event{
		{
			&feed.Config{GateCount: 24, PenaltyTouch: 2, PenaltyMiss: 50, Title: title},
			&feed.EventInfo{DayTime: "10:30:00"},
		},
		{
			&feed.Results{RaceID: scriptRaceID, Title: "K1 Men 2nd Run", Status: "running", Rows: standings},
		},
		{
			&feed.OnCourse{Competitors: []feed.OnCourseCompetitor{racing42}},
		},
		{
			&feed.EventInfo{DayTime: "10:31:45"},
			&feed.OnCourse{Competitors: []feed.OnCourseCompetitor{racing42Late, racing99}},
		},
		{
			&feed.OnCourse{Competitors: []feed.OnCourseCompetitor{finished42, racing99Late}},
		},
		{
			&feed.EventInfo{DayTime: "10:32:35"},
			&feed.Results{RaceID: scriptRaceID, Title: "K1 Men 2nd Run", Status: "running", HighlightBib: "42", Rows: with42},
		},
		{
			&feed.OnCourse{Competitors: []feed.OnCourseCompetitor{racing99Late}},
		},
		{
			// Course clears before the final standings so the closing
			// highlight lands on a bib no longer racing.
			&feed.EventInfo{DayTime: "10:33:10"},
			&feed.OnCourse{},
			&feed.Results{RaceID: scriptRaceID, Title: "K1 Men 2nd Run", Status: "running", HighlightBib: "99", Rows: final},
		},
	}

	docs := make([][]byte, 0, len(script))
	for _, events := range script {
		doc, err := canoexml.Encode(events...)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func strPtr(s string) *string { return &s }
