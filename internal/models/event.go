package models

import (
	"fmt"
	"strings"
	"time"
)

// EventType categorizes a provenance event.
type EventType string

const (
	EventIngestion       EventType = "INGESTION"
	EventMetadataEdit    EventType = "METADATA_EDIT"
	EventMigration       EventType = "MIGRATION"
	EventCustodyTransfer EventType = "CUSTODY_TRANSFER"
)

var validEventTypes = map[EventType]struct{}{
	EventIngestion:       {},
	EventMetadataEdit:    {},
	EventMigration:       {},
	EventCustodyTransfer: {},
}

func IsValidEventType(t EventType) bool {
	_, ok := validEventTypes[t]
	return ok
}

func ParseEventType(raw string) (EventType, error) {
	value := EventType(strings.ToUpper(strings.TrimSpace(raw)))
	if value == "" {
		return "", fmt.Errorf("event type is required")
	}
	if !IsValidEventType(value) {
		return "", fmt.Errorf("invalid event type: %s", value)
	}
	return value, nil
}

// Event is one link in an object's append-only provenance chain.
// PrevEventHash is empty for the genesis event only. Anchored and BatchID are
// set exactly once, by the anchor engine; every other field is immutable after
// creation.
type Event struct {
	EventHash     string         `json:"event_hash"`
	ObjectID      string         `json:"object_id"`
	EventType     EventType      `json:"event_type"`
	Payload       map[string]any `json:"payload"`
	ActorID       string         `json:"actor_id"`
	Timestamp     time.Time      `json:"timestamp"`
	PrevEventHash string         `json:"prev_event_hash,omitempty"`
	Signature     string         `json:"signature"`
	Anchored      bool           `json:"anchored"`
	BatchID       string         `json:"batch_id,omitempty"`
}
