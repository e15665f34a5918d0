package services

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/postboard/postboard-be/internal/models"
	"github.com/postboard/postboard-be/internal/websocket"
	"github.com/rs/zerolog/log"
)

// EventServiceProvider defines the interface for event services.
type EventServiceProvider interface {
	Publish(topic, eventType, resourceID string, payload interface{})
}

// Broadcaster delivers an encoded message to the subscribers of a topic.
type Broadcaster interface {
	Publish(topic string, message []byte)
}

// EventService turns record changes into change feed messages.
type EventService struct {
	hub Broadcaster
}

// NewEventService creates a new EventService.
func NewEventService(hub Broadcaster) *EventService {
	return &EventService{hub: hub}
}

// Publish builds an event and hands it to the hub. Delivery is best effort.
func (s *EventService) Publish(topic, eventType, resourceID string, payload interface{}) {
	event := models.Event{
		ID:         uuid.New().String(),
		Type:       eventType,
		Resource:   topic,
		ResourceID: resourceID,
		Payload:    payload,
		CreatedAt:  time.Now().UTC(),
	}

	msg, err := json.Marshal(websocket.Message{Action: "event", Payload: event})
	if err != nil {
		log.Error().Err(err).Str("event_type", eventType).Msg("Failed to encode change event")
		return
	}
	s.hub.Publish(topic, msg)
}
