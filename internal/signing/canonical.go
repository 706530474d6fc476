package signing

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"provl/internal/models"
)

// canonicalTimeFormat fixes the timestamp encoding used in canonical event
// bytes. Format -> Parse -> Format round-trips exactly, so a stored timestamp
// always re-hashes to the value computed at creation.
const canonicalTimeFormat = time.RFC3339Nano

// EventContent is the signable portion of an event: every field except the
// signature and the anchoring state.
type EventContent struct {
	ObjectID      string
	EventType     models.EventType
	PrevEventHash string
	Timestamp     time.Time
	ActorID       string
	Payload       map[string]any
}

// canonicalEvent fixes the JSON key order to the sorted-key form. Struct
// fields are emitted in declaration order, and map values are emitted with
// sorted keys by encoding/json, so the output is deterministic.
type canonicalEvent struct {
	ActorID       string         `json:"actor_id"`
	EventType     string         `json:"event_type"`
	ObjectID      string         `json:"object_id"`
	Payload       map[string]any `json:"payload"`
	PrevEventHash *string        `json:"prev_event_hash"`
	Timestamp     string         `json:"timestamp"`
}

// CanonicalBytes returns the canonical serialization of event content:
// sorted keys, no extra whitespace, null prev_event_hash for genesis.
func CanonicalBytes(c EventContent) ([]byte, error) {
	if c.ObjectID == "" {
		return nil, fmt.Errorf("object id is required")
	}
	if c.ActorID == "" {
		return nil, fmt.Errorf("actor id is required")
	}

	var prev *string
	if c.PrevEventHash != "" {
		prev = &c.PrevEventHash
	}
	payload := c.Payload
	if payload == nil {
		payload = map[string]any{}
	}

	return json.Marshal(canonicalEvent{
		ActorID:       c.ActorID,
		EventType:     string(c.EventType),
		ObjectID:      c.ObjectID,
		Payload:       payload,
		PrevEventHash: prev,
		Timestamp:     FormatTimestamp(c.Timestamp),
	})
}

// HashEvent computes the event hash: SHA-256 over the canonical bytes,
// hex-encoded. The signature field never participates.
func HashEvent(c EventContent) (string, error) {
	b, err := CanonicalBytes(c)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

// FormatTimestamp renders a timestamp in the canonical wire form.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(canonicalTimeFormat)
}

// ParseTimestamp parses a canonical timestamp back into a time.Time.
func ParseTimestamp(raw string) (time.Time, error) {
	return time.Parse(canonicalTimeFormat, raw)
}
