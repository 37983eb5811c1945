package feed

// Kind identifies an event category. The values double as the wire and
// recording type labels.
type Kind string

const (
	KindResults    Kind = "results"
	KindOnCourse   Kind = "oncourse"
	KindEventInfo  Kind = "event_info"
	KindConfig     Kind = "config"
	KindVisibility Kind = "visibility"
	KindConnection Kind = "connection_status"
	KindError      Kind = "error"
)

// Event is the closed union of everything a provider can emit.
type Event interface {
	Kind() Kind
}

// Results is a full standings update for one race. Rows replace any
// previously shown standings wholesale.
type Results struct {
	RaceID       string      `json:"race_id"`
	Title        string      `json:"title"`
	Status       string      `json:"status"`
	HighlightBib string      `json:"highlight_bib,omitempty"`
	Rows         []ResultRow `json:"rows"`
}

func (*Results) Kind() Kind { return KindResults }

// OnCourse carries the competitors currently between start and finish,
// listed in start order (most recent starter last).
type OnCourse struct {
	Competitors []OnCourseCompetitor `json:"competitors"`
}

func (*OnCourse) Kind() Kind { return KindOnCourse }

// EventInfo updates header text and the venue clock. Empty fields mean
// "no update" and must not overwrite previous values.
type EventInfo struct {
	Title    string `json:"title,omitempty"`
	InfoText string `json:"info_text,omitempty"`
	DayTime  string `json:"day_time,omitempty"`
}

func (*EventInfo) Kind() Kind { return KindEventInfo }

// Config describes the course as announced by the timing system.
type Config struct {
	GateCount    int    `json:"gate_count"`
	PenaltyTouch int    `json:"penalty_touch"`
	PenaltyMiss  int    `json:"penalty_miss"`
	Title        string `json:"title,omitempty"`
}

func (*Config) Kind() Kind { return KindConfig }

// Visibility toggles scoreboard panes.
type Visibility struct {
	Results  bool `json:"results"`
	OnCourse bool `json:"oncourse"`
	Header   bool `json:"header"`
	Ticker   bool `json:"ticker"`
}

func (*Visibility) Kind() Kind { return KindVisibility }

// Connection state labels carried by ConnectionStatus events.
const (
	ConnDisconnected = "disconnected"
	ConnConnecting   = "connecting"
	ConnConnected    = "connected"
	ConnReconnecting = "reconnecting"
)

// ConnectionStatus reports a transport state transition. State values
// mirror transport state names (disconnected, connecting, connected,
// reconnecting).
type ConnectionStatus struct {
	State  string `json:"state"`
	Detail string `json:"detail,omitempty"`
}

func (*ConnectionStatus) Kind() Kind { return KindConnection }

// ErrorEvent surfaces a non-fatal failure. The stream continues after
// every ErrorEvent.
type ErrorEvent struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (*ErrorEvent) Kind() Kind { return KindError }
