// Package changefeed pushes storage-change notifications to connected
// pages over WebSocket.
package changefeed

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ziadkadry99/labelkit/internal/kvstore"
	"github.com/ziadkadry99/labelkit/internal/logging"
)

const writeTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Event is one message sent to subscribers.
type Event struct {
	Type string   `json:"type"`
	Keys []string `json:"keys"`
}

// EventStorageChanged is the Type of a storage change notification.
const EventStorageChanged = "storage_changed"

// Feed relays kvstore changes to WebSocket clients.
type Feed struct {
	kv  kvstore.Store
	log *zap.Logger
}

// New creates a feed over kv.
func New(kv kvstore.Store, log *zap.Logger) *Feed {
	return &Feed{kv: kv, log: logging.OrNop(log)}
}

// RegisterRoutes mounts the change feed on the given router.
func RegisterRoutes(r chi.Router, f *Feed) {
	r.Get("/ws/changes", f.ServeHTTP)
}

// ServeHTTP upgrades the connection and writes one Event per storage
// change until the client goes away.
func (f *Feed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.log.Error("websocket upgrade", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changes := f.kv.Subscribe(ctx)

	// Incoming messages are ignored; reading detects the client closing.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					f.log.Warn("websocket read", zap.Error(err))
				}
				return
			}
		}
	}()

	f.log.Debug("change feed client connected", zap.String("remote", r.RemoteAddr))
	for {
		select {
		case <-ctx.Done():
			return
		case change, ok := <-changes:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(Event{Type: EventStorageChanged, Keys: change.Keys}); err != nil {
				f.log.Warn("websocket write", zap.Error(err))
				return
			}
		}
	}
}
