package transport

import "errors"

var (
	ErrPayloadTooLarge = errors.New("transport: payload too large")
	ErrDialerRequired  = errors.New("transport: dialer required")
	ErrFramerRequired  = errors.New("transport: framer required")
	ErrDecoderRequired = errors.New("transport: decoder required")
	ErrBusRequired     = errors.New("transport: bus required")
)
