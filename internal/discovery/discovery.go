// Package discovery locates the timing server on the venue network.
// The core only consumes the probe contract; how a probe finds the
// server (broadcast scan, mDNS, a fixed address) stays behind it.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

var (
	ErrBadAddress = errors.New("discovery: bad address")
	ErrNoServer   = errors.New("discovery: no server found")
)

// ProbeFunc resolves the timing server address. Implementations return
// a dial-ready host:port or an error; they must honor ctx.
type ProbeFunc func(ctx context.Context) (string, error)

// Static wraps a fixed address in the probe contract. The address is
// validated once, up front.
func Static(addr string) (ProbeFunc, error) {
	resolved, err := Normalize(addr)
	if err != nil {
		return nil, err
	}
	return func(context.Context) (string, error) { return resolved, nil }, nil
}

// First tries probes in order and returns the first address found.
func First(probes ...ProbeFunc) ProbeFunc {
	return func(ctx context.Context) (string, error) {
		var lastErr error
		for _, probe := range probes {
			if probe == nil {
				continue
			}
			addr, err := probe(ctx)
			if err == nil {
				return addr, nil
			}
			lastErr = err
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
		}
		if lastErr != nil {
			return "", lastErr
		}
		return "", ErrNoServer
	}
}

// Normalize validates host:port and pins localhost spellings to a
// dial-ready form. Hostnames pass through for the dialer to resolve.
func Normalize(raw string) (string, error) {
	addr := strings.TrimSpace(raw)
	if addr == "" {
		return "", fmt.Errorf("%w: empty address", ErrBadAddress)
	}
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrBadAddress, raw)
	}
	host = strings.TrimSpace(host)
	port = strings.TrimSpace(port)
	if port == "" {
		return "", fmt.Errorf("%w: %q missing port", ErrBadAddress, raw)
	}
	if host == "" || strings.EqualFold(host, "localhost") {
		host = "127.0.0.1"
	}
	if ip := net.ParseIP(host); ip != nil {
		host = ip.String()
	}
	return net.JoinHostPort(host, port), nil
}
