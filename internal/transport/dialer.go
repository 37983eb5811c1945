package transport

import (
	"context"
	"net"
	"time"
)

// Dialer opens one stream to a timing source.
type Dialer interface {
	Dial(ctx context.Context) (net.Conn, error)
}

// DialerFunc adapts a function to the Dialer interface.
type DialerFunc func(ctx context.Context) (net.Conn, error)

func (f DialerFunc) Dial(ctx context.Context) (net.Conn, error) { return f(ctx) }

// TCPDialer dials addr over TCP with a connect timeout.
func TCPDialer(addr string, timeout time.Duration) Dialer {
	return DialerFunc(func(ctx context.Context) (net.Conn, error) {
		d := net.Dialer{Timeout: timeout}
		return d.DialContext(ctx, "tcp", addr)
	})
}
