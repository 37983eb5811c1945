package gatejson

import (
	"encoding/json"
	"fmt"

	"github.com/paddleworks/slalomboard/internal/feed"
)

// Decode converts one envelope into zero or one normalized events.
// Unknown envelope types return no event and no error.
func Decode(raw []byte) ([]feed.Event, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", feed.ErrParse, err)
	}
	if err := env.Validate(); err != nil {
		return nil, err
	}
	ev, err := DecodeMessage(env.Type, env.Data)
	if err != nil {
		return nil, err
	}
	if ev == nil {
		return nil, nil
	}
	return []feed.Event{ev}, nil
}

// DecodeMessage maps one typed payload onto a normalized event.
// Recording entries share this mapping with live envelopes. Unknown
// types return (nil, nil).
func DecodeMessage(typ string, data json.RawMessage) (feed.Event, error) {
	env := Envelope{Type: typ, Data: data}
	switch env.Type {
	case string(feed.KindResults):
		var out feed.Results
		if err := unmarshalData(env, &out); err != nil {
			return nil, err
		}
		if err := out.Validate(); err != nil {
			return nil, err
		}
		return &out, nil
	case string(feed.KindOnCourse):
		var out feed.OnCourse
		if err := unmarshalData(env, &out); err != nil {
			return nil, err
		}
		normalizeFinish(&out)
		if err := out.Validate(); err != nil {
			return nil, err
		}
		return &out, nil
	case string(feed.KindEventInfo):
		var out feed.EventInfo
		if err := unmarshalData(env, &out); err != nil {
			return nil, err
		}
		return &out, nil
	case string(feed.KindConfig):
		var out feed.Config
		if err := unmarshalData(env, &out); err != nil {
			return nil, err
		}
		return &out, nil
	case string(feed.KindVisibility):
		var out feed.Visibility
		if err := unmarshalData(env, &out); err != nil {
			return nil, err
		}
		return &out, nil
	case TypeUpstreamStatus:
		var st UpstreamStatus
		if err := unmarshalData(env, &st); err != nil {
			return nil, err
		}
		if st.Connected {
			return nil, nil
		}
		detail := st.Detail
		if detail == "" {
			detail = "upstream offline"
		}
		return &feed.ErrorEvent{Code: feed.CodeConnection, Message: detail}, nil
	default:
		return nil, nil
	}
}

func unmarshalData(env Envelope, v any) error {
	if len(env.Data) == 0 {
		return fmt.Errorf("%w: %s missing data", feed.ErrValidation, env.Type)
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		return fmt.Errorf("%w: %s data: %v", feed.ErrParse, env.Type, err)
	}
	return nil
}

// normalizeFinish maps empty-string finish clocks onto absent, keeping
// the single "still racing" representation.
func normalizeFinish(out *feed.OnCourse) {
	for i := range out.Competitors {
		c := &out.Competitors[i]
		if c.DTFinish != nil && *c.DTFinish == "" {
			c.DTFinish = nil
		}
	}
}
