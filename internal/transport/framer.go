package transport

import (
	"bufio"
	"bytes"
	"io"
)

// PipeDelim separates XML documents on the timing-system stream.
const PipeDelim byte = '|'

// Framer extracts one complete payload per call, buffering partial
// data across reads. Implementations return io.EOF (or the stream
// error) once the underlying stream ends.
type Framer interface {
	Next() ([]byte, error)
}

// FramerFunc builds a fresh framer for one connection lifetime.
type FramerFunc func(r io.Reader) Framer

// Limits constrains framer memory use.
type Limits struct {
	MaxPayloadBytes uint64
}

func DefaultLimits() Limits {
	return Limits{MaxPayloadBytes: 8 * 1024 * 1024}
}

type delimFramer struct {
	r      *bufio.Reader
	delim  byte
	limits Limits
	crlf   bool
}

// NewDelimFramer frames payloads separated by a single delimiter byte.
// Empty payloads (consecutive delimiters) are skipped.
func NewDelimFramer(r io.Reader, delim byte, limits Limits) Framer {
	return &delimFramer{r: bufio.NewReader(r), delim: delim, limits: limits}
}

// NewPipeFramer frames the timing-system XML stream.
func NewPipeFramer(r io.Reader, limits Limits) Framer {
	return NewDelimFramer(r, PipeDelim, limits)
}

// NewLineFramer frames newline-delimited payloads, tolerating CRLF.
func NewLineFramer(r io.Reader, limits Limits) Framer {
	return &delimFramer{r: bufio.NewReader(r), delim: '\n', limits: limits, crlf: true}
}

func (f *delimFramer) Next() ([]byte, error) {
	var buf []byte
	for {
		chunk, err := f.r.ReadSlice(f.delim)
		buf = append(buf, chunk...)
		switch err {
		case nil:
			payload := buf[:len(buf)-1]
			if uint64(len(payload)) > f.limits.MaxPayloadBytes {
				return nil, ErrPayloadTooLarge
			}
			if f.crlf {
				payload = bytes.TrimSuffix(payload, []byte{'\r'})
			}
			if len(payload) == 0 {
				buf = buf[:0]
				continue
			}
			return payload, nil
		case bufio.ErrBufferFull:
			if uint64(len(buf)) > f.limits.MaxPayloadBytes {
				return nil, ErrPayloadTooLarge
			}
			continue
		default:
			// Partial payload at stream end is dropped; the next
			// connection starts from a clean document boundary.
			return nil, err
		}
	}
}
