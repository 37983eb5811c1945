package main

import (
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const writeTimeout = 5 * time.Second

// hub fans envelope lines out to downstream clients. A client that
// cannot take a line within the write timeout is dropped; a slow
// scoreboard must never stall the relay.
type hub struct {
	mu    sync.Mutex
	conns map[net.Conn]struct{}
}

func newHub() *hub {
	return &hub{conns: make(map[net.Conn]struct{})}
}

func (h *hub) add(conn net.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn] = struct{}{}
}

func (h *hub) remove(conn net.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.conns[conn]; ok {
		delete(h.conns, conn)
		conn.Close()
	}
}

func (h *hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// broadcast writes one line to every client, pruning the dead ones.
func (h *hub) broadcast(line []byte) {
	framed := append(line, '\n')
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if _, err := conn.Write(framed); err != nil {
			log.Debug().Str("remote", conn.RemoteAddr().String()).Err(err).Msg("downstream client dropped")
			conn.Close()
			delete(h.conns, conn)
		}
	}
}

func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		conn.Close()
	}
	h.conns = make(map[net.Conn]struct{})
}
