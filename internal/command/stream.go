package command

import (
	"net/http"
	"time"

	ws "github.com/gorilla/websocket"
)

const writeWait = 2 * time.Second

// TelemetryHandler upgrades to a WebSocket and pushes the latest snapshot
// every interval until the client goes away. Snapshots that have not changed
// since the last push are skipped.
func (s *Server) TelemetryHandler(interval time.Duration) http.Handler {
	upgrader := ws.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			s.log.Debug().Err(err).Msg("telemetry upgrade failed")
			return
		}
		defer c.Close()

		// reads only detect the close frame
		gone := make(chan struct{})
		go func() {
			defer close(gone)
			for {
				if _, _, err := c.ReadMessage(); err != nil {
					return
				}
			}
		}()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		var last *Snapshot
		for {
			select {
			case <-gone:
				return
			case <-r.Context().Done():
				return
			case <-ticker.C:
				sn := s.Latest()
				if sn == nil || sn == last {
					continue
				}
				if err := c.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
					return
				}
				if err := c.WriteJSON(sn); err != nil {
					s.log.Debug().Err(err).Msg("telemetry write failed")
					return
				}
				last = sn
			}
		}
	})
}
