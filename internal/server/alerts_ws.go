// Package server provides the HTTP server and routing for Stresswatch.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"nhooyr.io/websocket"

	"github.com/aristath/stresswatch/internal/events"
)

// AlertsFeedHandler pushes alert events to websocket clients as they are
// raised during scoring runs.
type AlertsFeedHandler struct {
	bus *events.Bus
	log zerolog.Logger
}

// NewAlertsFeedHandler creates a new alerts feed handler.
func NewAlertsFeedHandler(bus *events.Bus, log zerolog.Logger) *AlertsFeedHandler {
	return &AlertsFeedHandler{
		bus: bus,
		log: log.With().Str("component", "alerts_ws").Logger(),
	}
}

// ServeHTTP handles GET /api/alerts/ws - upgrades to a websocket and streams
// alert_raised events until the client disconnects.
func (h *AlertsFeedHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		h.log.Warn().Err(err).Msg("Websocket accept failed")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "stream closed")

	id, ch := h.bus.Subscribe()
	defer h.bus.Unsubscribe(id)

	h.log.Info().Int("subscriber_id", id).Msg("Client connected to alert feed")

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return

		case evt, open := <-ch:
			if !open {
				conn.Close(websocket.StatusNormalClosure, "")
				return
			}
			if evt.Type != events.AlertRaised {
				continue
			}

			payload, err := json.Marshal(evt)
			if err != nil {
				h.log.Error().Err(err).Msg("Failed to marshal alert event")
				continue
			}

			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err = conn.Write(writeCtx, websocket.MessageText, payload)
			cancel()
			if err != nil {
				closeStatus := websocket.CloseStatus(err)
				if closeStatus != websocket.StatusNormalClosure && closeStatus != websocket.StatusGoingAway {
					h.log.Debug().Err(err).Msg("Websocket write failed")
				}
				return
			}
		}
	}
}
