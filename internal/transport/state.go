package transport

import "github.com/paddleworks/slalomboard/internal/feed"

// State is the adapter's connection state.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateReconnecting
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return feed.ConnDisconnected
	case StateConnecting:
		return feed.ConnConnecting
	case StateConnected:
		return feed.ConnConnected
	case StateReconnecting:
		return feed.ConnReconnecting
	default:
		return "unknown"
	}
}
