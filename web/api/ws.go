package api

import (
	"net/http"

	"go.uber.org/zap"
)

// wsHandler streams pipeline events over a WebSocket connection.
// Events are the same payloads the SSE endpoint serves; the socket
// exists for clients that cannot hold an EventSource open.
func (s *Server) wsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(w, r, nil)
		if err != nil {
			s.log.Error("websocket upgrade failed", zap.Error(err))
			return
		}

		client := s.sseHub.Subscribe()

		// Drain reads so close frames are processed
		go func() {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					s.sseHub.Unsubscribe(client)
					conn.Close()
					return
				}
			}
		}()

		go func() {
			for event := range client {
				if err := conn.WriteJSON(event); err != nil {
					s.sseHub.Unsubscribe(client)
					conn.Close()
					return
				}
			}
			conn.Close()
		}()
	}
}
