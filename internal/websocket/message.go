package websocket

import "encoding/json"

// Message defines the structure for websocket messages.
type Message struct {
	Action  string      `json:"action"`
	Payload interface{} `json:"payload"`
}

// NewErrorMessage encodes an error notice for a single client.
func NewErrorMessage(text string) []byte {
	msg, _ := json.Marshal(Message{Action: "error", Payload: map[string]string{"message": text}})
	return msg
}

// NewPongMessage answers a client "ping".
func NewPongMessage() []byte {
	msg, _ := json.Marshal(Message{Action: "pong"})
	return msg
}
