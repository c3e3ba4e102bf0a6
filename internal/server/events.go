package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/dgnsrekt/readaloud/internal/playback"
)

const clientBuffer = 256

// hub fans controller events out to websocket clients. A client that
// falls behind loses events rather than stalling playback.
type hub struct {
	mu      sync.Mutex
	clients map[chan playback.Event]struct{}
}

func newHub() *hub {
	return &hub{clients: make(map[chan playback.Event]struct{})}
}

// OnEvent implements playback.Observer.
func (h *hub) OnEvent(e playback.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c <- e:
		default:
		}
	}
}

func (h *hub) add() chan playback.Event {
	c := make(chan playback.Event, clientBuffer)
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	return c
}

func (h *hub) remove(c chan playback.Event) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}

func (h *hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	// Register before the handshake completes so the client sees every
	// event raised after Dial returns.
	events := s.hub.add()
	defer s.hub.remove(events)

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close() //nolint:errcheck

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for {
			select {
			case <-ctx.Done():
				return
			case e := <-events:
				_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
				if err := conn.WriteJSON(e); err != nil {
					s.logger.Debug("event write", "err", err)
					cancel()
					return
				}
			}
		}
	}()

	// Clients only listen; reading detects the close.
	conn.SetReadLimit(4096)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	cancel()
	<-writerDone
}
