package feed

// ResultRow is one standings line. Rank is unique and ≥ 1 within a
// Results event; Bib is unique across rows of one event.
type ResultRow struct {
	Rank    int    `json:"rank"`
	Bib     string `json:"bib"`
	Name    string `json:"name"`
	Club    string `json:"club,omitempty"`
	Nation  string `json:"nation,omitempty"`
	Total   string `json:"total"`
	Penalty int    `json:"penalty"`
	Behind  string `json:"behind,omitempty"`
	Status  string `json:"status,omitempty"`

	// Best is set only on rows upgraded by the two-run merge.
	Best *BestOfTwo `json:"best,omitempty"`
}

// Row status markers as emitted by the timing system. An empty status
// means a regular ranked finish.
const (
	StatusDNS = "DNS"
	StatusDNF = "DNF"
	StatusDSQ = "DSQ"
)

// BestOfTwo carries the merged view of a two-run race for one
// competitor. Raw components of both runs stay available so the board
// can show the run that did not count.
type BestOfTwo struct {
	Total       string `json:"total"`
	BestRun     int    `json:"best_run"`
	Run1Time    string `json:"run1_time"`
	Run1Penalty int    `json:"run1_penalty"`
	Run2Time    string `json:"run2_time"`
	Run2Penalty int    `json:"run2_penalty"`
}

// OnCourseCompetitor is one competitor between start and finish.
// DTFinish is nil while the run is still in progress; the nil to
// non-nil transition is the finish signal.
type OnCourseCompetitor struct {
	Bib      string  `json:"bib"`
	Name     string  `json:"name"`
	Club     string  `json:"club,omitempty"`
	Nation   string  `json:"nation,omitempty"`
	Running  string  `json:"running,omitempty"`
	Total    string  `json:"total,omitempty"`
	Penalty  int     `json:"penalty"`
	Gates    []int   `json:"gates,omitempty"`
	DTStart  string  `json:"dt_start,omitempty"`
	DTFinish *string `json:"dt_finish,omitempty"`
	Rank     int     `json:"rank,omitempty"`
	Behind   string  `json:"behind,omitempty"`
}

// Finished reports whether the competitor has crossed the finish line.
func (c *OnCourseCompetitor) Finished() bool { return c.DTFinish != nil }
