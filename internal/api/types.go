package api

import (
	"provl/internal/models"
	"provl/internal/provenance"
)

// ErrorResponse is a generic JSON error wrapper.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	ErrorCode int    `json:"error_code,omitempty"`
}

// InfoResponse is the response from GET /v1/info.
type InfoResponse struct {
	DBPath        string `json:"db_path"`
	SchemaVersion int    `json:"schema_version"`
	ActorCount    int    `json:"actor_count"`
	ObjectCount   int    `json:"object_count"`
	EventCount    int    `json:"event_count"`
	BatchCount    int    `json:"batch_count"`
}

// ActorCreateRequest defines the payload for registering an actor.
type ActorCreateRequest struct {
	ActorID   string `json:"actor_id"`
	Name      string `json:"name"`
	PublicKey string `json:"public_key,omitempty"`
}

// ActorResponse describes a registered actor. PrivateKey is present only in
// the creation response when the server derived the keypair.
type ActorResponse struct {
	ActorID    string `json:"actor_id"`
	Name       string `json:"name"`
	PublicKey  string `json:"public_key"`
	CreatedAt  string `json:"created_at"`
	PrivateKey string `json:"private_key,omitempty"`
}

// KeypairResponse is the response from POST /v1/actors/keygen.
type KeypairResponse struct {
	PublicKey  string `json:"public_key"`
	PrivateKey string `json:"private_key"`
}

// IngestResponse identifies a newly registered object.
type IngestResponse struct {
	ObjectID         string `json:"object_id"`
	CID              string `json:"cid"`
	GenesisEventHash string `json:"genesis_event_hash"`
	SizeBytes        int64  `json:"size_bytes"`
}

// EventAppendRequest defines the payload for appending an event.
type EventAppendRequest struct {
	EventType  string         `json:"event_type"`
	Payload    map[string]any `json:"payload,omitempty"`
	ActorID    string         `json:"actor_id"`
	PrivateKey string         `json:"private_key,omitempty"`
}

// EventResponse is the response from POST /v1/objects/{id}/events.
type EventResponse struct {
	EventHash     string `json:"event_hash"`
	PrevEventHash string `json:"prev_event_hash,omitempty"`
}

// ChainResponse wraps an object's event chain.
type ChainResponse struct {
	ObjectID string         `json:"object_id"`
	CID      string         `json:"cid"`
	Events   []models.Event `json:"events"`
}

// AnchorResponse is the response from POST /v1/anchor.
type AnchorResponse struct {
	Anchored bool          `json:"anchored"`
	Batch    *models.Batch `json:"batch,omitempty"`
}

// ProofResponse is the response from GET /v1/events/{hash}/proof.
type ProofResponse = provenance.EventProof

// VerificationReport is the response from POST /v1/verify.
type VerificationReport = provenance.Report
