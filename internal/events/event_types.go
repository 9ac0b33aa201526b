package events

import (
	"time"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered  EventType = "user_registered"
	EventProductCreated  EventType = "product_created"
	EventProductOrphaned EventType = "product_orphaned"
	EventProductLinked   EventType = "product_linked"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Subject   string      `json:"subject"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// ProductCreatedPayload payload.
type ProductCreatedPayload struct {
	ProductID         string `json:"product_id"`
	ExternalProductID string `json:"external_product_id"`
	Category          string `json:"category"`
}

// ProductOrphanedPayload marks a catalog record awaiting processor
// registration or link-back.
type ProductOrphanedPayload struct {
	ProductID string `json:"product_id"`
	Phase     string `json:"phase"`
}

// ProductLinkedPayload payload.
type ProductLinkedPayload struct {
	ProductID         string `json:"product_id"`
	ExternalProductID string `json:"external_product_id"`
}
