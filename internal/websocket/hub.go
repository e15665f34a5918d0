package websocket

import "github.com/rs/zerolog/log"

// GlobalTopic receives every published message regardless of its topic.
const GlobalTopic = "global"

type envelope struct {
	topic   string
	client  *Client // set for replies to a single client
	message []byte
}

// Hub maintains the set of active clients and routes published messages to
// the subscribers of each topic. All map access happens on the Run goroutine.
type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	// A map of topics to the set of clients subscribed to it.
	subscriptions map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	publish    chan envelope
	done       chan struct{}
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		clients:       make(map[*Client]bool),
		subscriptions: make(map[string]map[*Client]bool),
		register:      make(chan *Client),
		unregister:    make(chan *Client),
		publish:       make(chan envelope, 64),
		done:          make(chan struct{}),
	}
}

// Run starts the Hub's message processing loop. It returns after Stop.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			for client := range h.clients {
				h.drop(client)
			}
			return
		case client := <-h.register:
			h.clients[client] = true
			h.addSubscription(client, client.Topic)
			log.Info().Int("total_clients", len(h.clients)).Str("topic", client.Topic).Msg("Client connected")
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
				log.Info().Int("total_clients", len(h.clients)).Msg("Client disconnected")
			}
		case env := <-h.publish:
			if env.client != nil {
				if h.clients[env.client] {
					h.sendTo(env.client, env.message)
				}
				continue
			}
			h.deliver(env.topic, env.message)
			if env.topic != GlobalTopic {
				h.deliver(GlobalTopic, env.message)
			}
		}
	}
}

// Stop halts the hub and disconnects every client.
func (h *Hub) Stop() {
	close(h.done)
}

// Register adds a client to the hub.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

// Unregister removes a client from the hub and closes its send channel.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Publish queues message for every client subscribed to topic and for
// global subscribers.
func (h *Hub) Publish(topic string, message []byte) {
	select {
	case h.publish <- envelope{topic: topic, message: message}:
	case <-h.done:
	}
}

// SendTo queues message for a single registered client.
func (h *Hub) SendTo(client *Client, message []byte) {
	select {
	case h.publish <- envelope{client: client, message: message}:
	case <-h.done:
	}
}

func (h *Hub) deliver(topic string, message []byte) {
	for client := range h.subscriptions[topic] {
		h.sendTo(client, message)
	}
}

// sendTo never blocks: a client whose buffer is full is dropped.
func (h *Hub) sendTo(client *Client, message []byte) {
	select {
	case client.Send <- message:
	default:
		log.Warn().Str("topic", client.Topic).Msg("Dropping slow websocket client")
		h.drop(client)
	}
}

func (h *Hub) drop(client *Client) {
	delete(h.clients, client)
	h.removeSubscription(client)
	close(client.Send)
}

func (h *Hub) addSubscription(client *Client, topic string) {
	if h.subscriptions[topic] == nil {
		h.subscriptions[topic] = make(map[*Client]bool)
	}
	h.subscriptions[topic][client] = true
}

func (h *Hub) removeSubscription(client *Client) {
	for topic, subs := range h.subscriptions {
		if _, ok := subs[client]; ok {
			delete(subs, client)
			if len(subs) == 0 {
				delete(h.subscriptions, topic)
			}
		}
	}
}
