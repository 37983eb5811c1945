package scoreboard

import (
	"time"

	"github.com/paddleworks/slalomboard/internal/feed"
)

// Highlight marks the bib whose fresh result is being called out.
type Highlight struct {
	Bib   string    `json:"bib"`
	Since time.Time `json:"since"`
}

// Departure keeps the competitor who just lost current status visible
// until their result arrives or the window closes.
type Departure struct {
	Competitor feed.OnCourseCompetitor `json:"competitor"`
	Since      time.Time               `json:"since"`
}

// Snapshot is the reconciled race state. The engine owns the one
// mutable instance; everything handed out is a deep copy.
type Snapshot struct {
	RaceID     string           `json:"race_id,omitempty"`
	RaceName   string           `json:"race_name,omitempty"`
	RaceStatus string           `json:"race_status,omitempty"`
	Results    []feed.ResultRow `json:"results,omitempty"`

	OnCourse  []feed.OnCourseCompetitor `json:"oncourse,omitempty"`
	Current   *feed.OnCourseCompetitor  `json:"current,omitempty"`
	Departing *Departure                `json:"departing,omitempty"`
	Highlight *Highlight                `json:"highlight,omitempty"`

	Course     feed.Config     `json:"course"`
	Visibility feed.Visibility `json:"visibility"`

	Title    string `json:"title,omitempty"`
	InfoText string `json:"info_text,omitempty"`
	DayTime  string `json:"day_time,omitempty"`

	Connection          string           `json:"connection"`
	InitialDataReceived bool             `json:"initial_data_received"`
	LastError           *feed.ErrorEvent `json:"last_error,omitempty"`
	UpdatedAt           time.Time        `json:"updated_at"`
}

func (s Snapshot) clone() Snapshot {
	out := s
	out.Results = copyRows(s.Results)
	out.OnCourse = copyCompetitors(s.OnCourse)
	if s.Current != nil {
		cp := copyCompetitor(*s.Current)
		out.Current = &cp
	}
	if s.Departing != nil {
		dep := *s.Departing
		dep.Competitor = copyCompetitor(s.Departing.Competitor)
		out.Departing = &dep
	}
	if s.Highlight != nil {
		hl := *s.Highlight
		out.Highlight = &hl
	}
	if s.LastError != nil {
		ee := *s.LastError
		out.LastError = &ee
	}
	return out
}

func copyRows(rows []feed.ResultRow) []feed.ResultRow {
	if rows == nil {
		return nil
	}
	out := make([]feed.ResultRow, len(rows))
	copy(out, rows)
	for i := range out {
		if out[i].Best != nil {
			best := *out[i].Best
			out[i].Best = &best
		}
	}
	return out
}

func copyCompetitors(list []feed.OnCourseCompetitor) []feed.OnCourseCompetitor {
	if list == nil {
		return nil
	}
	out := make([]feed.OnCourseCompetitor, len(list))
	for i := range list {
		out[i] = copyCompetitor(list[i])
	}
	return out
}

func copyCompetitor(c feed.OnCourseCompetitor) feed.OnCourseCompetitor {
	out := c
	if c.Gates != nil {
		out.Gates = append([]int(nil), c.Gates...)
	}
	if c.DTFinish != nil {
		finish := *c.DTFinish
		out.DTFinish = &finish
	}
	return out
}
