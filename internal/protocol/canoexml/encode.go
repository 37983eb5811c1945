package canoexml

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/paddleworks/slalomboard/internal/feed"
)

var ErrUnsupportedEvent = errors.New("canoexml: unsupported event")

// Encode renders events into one TimingData document. Only the event
// kinds the wire format can carry are accepted: results, oncourse,
// config and a day-time info update.
func Encode(events ...feed.Event) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("<" + RootTag + ">")
	for _, ev := range events {
		node, err := nodeFor(ev)
		if err != nil {
			return nil, err
		}
		blob, err := xml.Marshal(node)
		if err != nil {
			return nil, fmt.Errorf("canoexml: marshal: %w", err)
		}
		buf.Write(blob)
	}
	buf.WriteString("</" + RootTag + ">")
	return buf.Bytes(), nil
}

// UpstreamDocument renders the out-of-band upstream status element the
// relay injects when its own upstream drops.
func UpstreamDocument(state string) []byte {
	return []byte("<" + RootTag + `><Upstream State="` + state + `"></Upstream></` + RootTag + ">")
}

func nodeFor(ev feed.Event) (any, error) {
	switch e := ev.(type) {
	case *feed.Results:
		return resultsNode(e), nil
	case *feed.OnCourse:
		return onCourseNode(e), nil
	case *feed.Config:
		return configXML{
			Gates:        strconv.Itoa(e.GateCount),
			PenaltyTouch: strconv.Itoa(e.PenaltyTouch),
			PenaltyMiss:  strconv.Itoa(e.PenaltyMiss),
			Title:        e.Title,
		}, nil
	case *feed.EventInfo:
		if e.DayTime == "" {
			return nil, fmt.Errorf("%w: event_info without day_time", ErrUnsupportedEvent)
		}
		return dayTimeXML{Time: e.DayTime}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedEvent, ev.Kind())
	}
}

func resultsNode(e *feed.Results) raceResultsXML {
	node := raceResultsXML{
		RaceID:       e.RaceID,
		Name:         e.Title,
		Status:       e.Status,
		HighlightBib: e.HighlightBib,
		Rows:         make([]rowXML, 0, len(e.Rows)),
	}
	for _, r := range e.Rows {
		node.Rows = append(node.Rows, rowXML{
			Number: strconv.Itoa(r.Rank),
			Bib:    r.Bib,
			Name:   r.Name,
			Club:   r.Club,
			Nat:    r.Nation,
			Total:  r.Total,
			Pen:    strconv.Itoa(r.Penalty),
			Behind: r.Behind,
			Status: r.Status,
		})
	}
	return node
}

func onCourseNode(e *feed.OnCourse) onCourseXML {
	node := onCourseXML{Competitors: make([]competitorXML, 0, len(e.Competitors))}
	for _, c := range e.Competitors {
		raw := competitorXML{
			Bib:     c.Bib,
			Name:    c.Name,
			Club:    c.Club,
			Nat:     c.Nation,
			Time:    c.Running,
			Total:   c.Total,
			Pen:     strconv.Itoa(c.Penalty),
			Gates:   joinGates(c.Gates),
			DTStart: c.DTStart,
			Behind:  c.Behind,
		}
		if c.Rank > 0 {
			raw.Rank = strconv.Itoa(c.Rank)
		}
		if c.DTFinish != nil {
			raw.DTFinish = *c.DTFinish
		}
		node.Competitors = append(node.Competitors, raw)
	}
	return node
}

func joinGates(gates []int) string {
	if len(gates) == 0 {
		return ""
	}
	parts := make([]string, len(gates))
	for i, g := range gates {
		parts[i] = strconv.Itoa(g)
	}
	return strings.Join(parts, ",")
}
