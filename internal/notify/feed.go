package notify

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	ws "github.com/coder/websocket"
)

const (
	feedBufferSize = 16
	pingInterval   = 30 * time.Second
)

// HandleFeed upgrades the request to a WebSocket and streams every published
// event to it as a JSON text message until either side goes away.
func HandleFeed(hub *Hub, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := ws.Accept(w, r, &ws.AcceptOptions{
			InsecureSkipVerify: true, // feed is bound to localhost by default
		})
		if err != nil {
			logger.Warn("feed accept", "error", err)
			return
		}
		defer conn.CloseNow()

		sub := hub.Subscribe(feedBufferSize)
		defer hub.Unsubscribe(sub)

		ctx := conn.CloseRead(r.Context())
		if err := pump(ctx, conn, sub); err != nil {
			logger.Debug("feed closed", "error", err)
			return
		}
		conn.Close(ws.StatusNormalClosure, "")
	}
}

// pump writes queued events and keeps the connection alive with pings.
func pump(ctx context.Context, conn *ws.Conn, sub *Subscriber) error {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-sub.C:
			if !ok {
				return nil
			}
			if err := conn.Write(ctx, ws.MessageText, msg); err != nil {
				return err
			}
		case <-ticker.C:
			if err := conn.Ping(ctx); err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
