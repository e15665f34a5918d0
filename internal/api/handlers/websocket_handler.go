package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/postboard/postboard-be/internal/errs"
	ws "github.com/postboard/postboard-be/internal/websocket"
	"github.com/rs/zerolog/log"
)

// WebSocketHandler upgrades HTTP connections to change feed subscriptions.
type WebSocketHandler struct {
	hub    *ws.Hub
	topics map[string]bool
}

// NewWebSocketHandler creates a new WebSocketHandler accepting the given
// topics in addition to the global one.
func NewWebSocketHandler(hub *ws.Hub, topics ...string) *WebSocketHandler {
	allowed := map[string]bool{ws.GlobalTopic: true}
	for _, t := range topics {
		allowed[t] = true
	}
	return &WebSocketHandler{hub: hub, topics: allowed}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS middleware already restricts browser origins.
		return true
	},
}

// Serve handles /ws (global feed) and /ws/{topic}.
func (h *WebSocketHandler) Serve(w http.ResponseWriter, r *http.Request) {
	topic := chi.URLParam(r, "topic")
	if topic == "" {
		topic = ws.GlobalTopic
	}
	if !h.topics[topic] {
		writeError(w, errs.NewNotFoundError("Unknown topic: "+topic))
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade websocket connection")
		return
	}

	client := ws.NewClient(h.hub, conn, topic)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump(h.handleIncomingWSMessage)
}

// handleIncomingWSMessage processes messages received from a websocket client.
func (h *WebSocketHandler) handleIncomingWSMessage(client *ws.Client, message []byte) {
	var msg ws.Message
	if err := json.Unmarshal(message, &msg); err != nil {
		log.Warn().Err(err).Bytes("message", message).Msg("Error decoding websocket message")
		h.hub.SendTo(client, ws.NewErrorMessage("Invalid message"))
		return
	}

	switch msg.Action {
	case "ping":
		h.hub.SendTo(client, ws.NewPongMessage())
	default:
		log.Warn().Str("action", msg.Action).Msg("Unknown websocket action received")
		h.hub.SendTo(client, ws.NewErrorMessage("Unknown action: "+msg.Action))
	}
}
