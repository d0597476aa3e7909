package model

import "time"

type EventType string

const (
	// HealthEvent used to check if client is alive
	HealthEvent EventType = "health"
	// SceneEvent carries a new svg root from server -> client
	SceneEvent EventType = "scene"
)

type Health struct{}

type Scene struct {
	Root string `json:"root"`
}

// Event sent over the svg socket, either from client -> server, or other way around
type Event[E any] struct {
	Type    EventType `json:"type"`
	Created time.Time `json:"time"`
	Payload E         `json:"payload"`
}
