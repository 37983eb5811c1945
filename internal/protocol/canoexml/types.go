package canoexml

import "encoding/xml"

// RootTag is the required document root.
const RootTag = "TimingData"

// UpstreamOnline is the Upstream state that means "no news".
const UpstreamOnline = "online"

type raceResultsXML struct {
	XMLName      xml.Name `xml:"RaceResults"`
	RaceID       string   `xml:"RaceID,attr"`
	Name         string   `xml:"Name,attr"`
	Status       string   `xml:"Status,attr"`
	HighlightBib string   `xml:"HighlightBib,attr"`
	Rows         []rowXML `xml:"Row"`
}

type rowXML struct {
	Number string `xml:"Number,attr"`
	Bib    string `xml:"Bib,attr"`
	Name   string `xml:"Name,attr"`
	Club   string `xml:"Club,attr"`
	Nat    string `xml:"Nat,attr"`
	Total  string `xml:"Total,attr"`
	Pen    string `xml:"Pen,attr"`
	Behind string `xml:"Behind,attr"`
	Status string `xml:"Status,attr"`
}

type onCourseXML struct {
	XMLName     xml.Name        `xml:"OnCourse"`
	Competitors []competitorXML `xml:"Competitor"`
}

type competitorXML struct {
	Bib      string `xml:"Bib,attr"`
	Name     string `xml:"Name,attr"`
	Club     string `xml:"Club,attr"`
	Nat      string `xml:"Nat,attr"`
	Time     string `xml:"Time,attr"`
	Total    string `xml:"Total,attr"`
	Pen      string `xml:"Pen,attr"`
	Gates    string `xml:"Gates,attr"`
	DTStart  string `xml:"dtStart,attr"`
	DTFinish string `xml:"dtFinish,attr"`
	Rank     string `xml:"Rank,attr"`
	Behind   string `xml:"Behind,attr"`
}

type configXML struct {
	XMLName      xml.Name `xml:"Config"`
	Gates        string   `xml:"Gates,attr"`
	PenaltyTouch string   `xml:"PenaltyTouch,attr"`
	PenaltyMiss  string   `xml:"PenaltyMiss,attr"`
	Title        string   `xml:"Title,attr"`
}

type dayTimeXML struct {
	XMLName xml.Name `xml:"DayTime"`
	Time    string   `xml:"Time,attr"`
}

type upstreamXML struct {
	XMLName xml.Name `xml:"Upstream"`
	State   string   `xml:"State,attr"`
}
