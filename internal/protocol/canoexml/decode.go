package canoexml

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/paddleworks/slalomboard/internal/feed"
)

// Decode converts one TimingData document into normalized events,
// preserving child order. Unknown children are skipped without error.
func Decode(raw []byte) ([]feed.Event, error) {
	dec := xml.NewDecoder(bytes.NewReader(raw))
	root, err := nextStart(dec)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", feed.ErrParse, err)
	}
	if root.Name.Local != RootTag {
		return nil, fmt.Errorf("%w: unexpected root %q", feed.ErrValidation, root.Name.Local)
	}

	var events []feed.Event
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", feed.ErrParse, err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		ev, err := decodeChild(dec, start)
		if err != nil {
			return nil, err
		}
		if ev != nil {
			events = append(events, ev)
		}
	}
	return events, nil
}

func nextStart(dec *xml.Decoder) (xml.StartElement, error) {
	for {
		tok, err := dec.Token()
		if err != nil {
			return xml.StartElement{}, err
		}
		if start, ok := tok.(xml.StartElement); ok {
			return start, nil
		}
	}
}

func decodeChild(dec *xml.Decoder, start xml.StartElement) (feed.Event, error) {
	switch start.Name.Local {
	case "RaceResults":
		var raw raceResultsXML
		if err := decodeElement(dec, &raw, &start); err != nil {
			return nil, err
		}
		return convertResults(raw)
	case "OnCourse":
		var raw onCourseXML
		if err := decodeElement(dec, &raw, &start); err != nil {
			return nil, err
		}
		return convertOnCourse(raw)
	case "Config":
		var raw configXML
		if err := decodeElement(dec, &raw, &start); err != nil {
			return nil, err
		}
		return convertConfig(raw)
	case "DayTime":
		var raw dayTimeXML
		if err := decodeElement(dec, &raw, &start); err != nil {
			return nil, err
		}
		if strings.TrimSpace(raw.Time) == "" {
			return nil, fmt.Errorf("%w: DayTime missing Time", feed.ErrValidation)
		}
		return &feed.EventInfo{DayTime: raw.Time}, nil
	case "Upstream":
		var raw upstreamXML
		if err := decodeElement(dec, &raw, &start); err != nil {
			return nil, err
		}
		if raw.State == "" || raw.State == UpstreamOnline {
			return nil, nil
		}
		return &feed.ErrorEvent{
			Code:    feed.CodeConnection,
			Message: "upstream " + raw.State,
		}, nil
	default:
		if err := dec.Skip(); err != nil {
			return nil, fmt.Errorf("%w: %v", feed.ErrParse, err)
		}
		return nil, nil
	}
}

func decodeElement(dec *xml.Decoder, v any, start *xml.StartElement) error {
	if err := dec.DecodeElement(v, start); err != nil {
		var syntax *xml.SyntaxError
		if errors.As(err, &syntax) {
			return fmt.Errorf("%w: %v", feed.ErrParse, err)
		}
		return fmt.Errorf("%w: %v", feed.ErrValidation, err)
	}
	return nil
}

func convertResults(raw raceResultsXML) (feed.Event, error) {
	out := &feed.Results{
		RaceID:       raw.RaceID,
		Title:        raw.Name,
		Status:       raw.Status,
		HighlightBib: raw.HighlightBib,
		Rows:         make([]feed.ResultRow, 0, len(raw.Rows)),
	}
	for _, r := range raw.Rows {
		rank, err := attrInt("Row.Number", r.Number)
		if err != nil {
			return nil, err
		}
		pen, err := attrInt("Row.Pen", r.Pen)
		if err != nil {
			return nil, err
		}
		out.Rows = append(out.Rows, feed.ResultRow{
			Rank:    rank,
			Bib:     r.Bib,
			Name:    r.Name,
			Club:    r.Club,
			Nation:  r.Nat,
			Total:   r.Total,
			Penalty: pen,
			Behind:  r.Behind,
			Status:  r.Status,
		})
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

func convertOnCourse(raw onCourseXML) (feed.Event, error) {
	out := &feed.OnCourse{
		Competitors: make([]feed.OnCourseCompetitor, 0, len(raw.Competitors)),
	}
	for _, c := range raw.Competitors {
		pen, err := attrInt("Competitor.Pen", c.Pen)
		if err != nil {
			return nil, err
		}
		rank, err := attrInt("Competitor.Rank", c.Rank)
		if err != nil {
			return nil, err
		}
		gates, err := parseGates(c.Gates)
		if err != nil {
			return nil, err
		}
		comp := feed.OnCourseCompetitor{
			Bib:     c.Bib,
			Name:    c.Name,
			Club:    c.Club,
			Nation:  c.Nat,
			Running: c.Time,
			Total:   c.Total,
			Penalty: pen,
			Gates:   gates,
			DTStart: c.DTStart,
			Rank:    rank,
			Behind:  c.Behind,
		}
		// An empty dtFinish attribute means "still racing" and maps
		// to absent, never to an empty string.
		if c.DTFinish != "" {
			finish := c.DTFinish
			comp.DTFinish = &finish
		}
		out.Competitors = append(out.Competitors, comp)
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

func convertConfig(raw configXML) (feed.Event, error) {
	gates, err := attrInt("Config.Gates", raw.Gates)
	if err != nil {
		return nil, err
	}
	touch, err := attrInt("Config.PenaltyTouch", raw.PenaltyTouch)
	if err != nil {
		return nil, err
	}
	miss, err := attrInt("Config.PenaltyMiss", raw.PenaltyMiss)
	if err != nil {
		return nil, err
	}
	return &feed.Config{
		GateCount:    gates,
		PenaltyTouch: touch,
		PenaltyMiss:  miss,
		Title:        raw.Title,
	}, nil
}

func attrInt(field, v string) (int, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: bad %s %q", feed.ErrValidation, field, v)
	}
	return n, nil
}

func parseGates(v string) ([]int, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	parts := strings.Split(v, ",")
	gates := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: bad Gates %q", feed.ErrValidation, v)
		}
		gates = append(gates, n)
	}
	return gates, nil
}
