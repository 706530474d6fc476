package provenance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"provl/internal/models"
	"provl/internal/signing"
	"provl/internal/store"
)

// AppendRequest describes one event to append to an object's chain.
// PrivateKey is the hex seed used to sign; when empty, the key is derived
// from the actor id, matching CreateActor's derivation.
type AppendRequest struct {
	ObjectID   string
	EventType  models.EventType
	Payload    map[string]any
	ActorID    string
	PrivateKey string
}

// AppendEvent appends one signed event to an object's chain. Appends to the
// same object are serialized; if an external writer still wins the head race
// the append is retried once before surfacing ErrChainConflict.
func (s *Service) AppendEvent(ctx context.Context, req AppendRequest) (*models.Event, error) {
	if !models.IsValidEventType(req.EventType) {
		return nil, fmt.Errorf("invalid event type: %s", req.EventType)
	}
	if _, err := s.store.GetObject(ctx, req.ObjectID); err != nil {
		return nil, err
	}
	actor, err := s.store.GetActor(ctx, req.ActorID)
	if err != nil {
		return nil, err
	}

	privateKey := req.PrivateKey
	if privateKey == "" {
		privateKey = signing.DeriveKeypair(req.ActorID).PrivateKey
	}

	mu := s.chainMu.lock(req.ObjectID)
	defer mu.Unlock()

	event, err := s.appendOnce(ctx, req, actor.PublicKey, privateKey)
	if errors.Is(err, store.ErrChainConflict) {
		event, err = s.appendOnce(ctx, req, actor.PublicKey, privateKey)
	}
	if err != nil {
		return nil, err
	}

	s.log.Info("event appended",
		"object_id", req.ObjectID,
		"event_type", req.EventType,
		"event_hash", event.EventHash,
		"actor_id", req.ActorID)
	return event, nil
}

func (s *Service) appendOnce(ctx context.Context, req AppendRequest, publicKey, privateKey string) (*models.Event, error) {
	head, err := s.store.ChainHead(ctx, req.ObjectID)
	if err != nil {
		return nil, err
	}

	if head == "" && req.EventType != models.EventIngestion {
		return nil, fmt.Errorf("first event for an object must be %s, got %s", models.EventIngestion, req.EventType)
	}
	if head != "" && req.EventType == models.EventIngestion {
		return nil, fmt.Errorf("%s is only valid as the first event", models.EventIngestion)
	}

	content := signing.EventContent{
		ObjectID:      req.ObjectID,
		EventType:     req.EventType,
		PrevEventHash: head,
		Timestamp:     time.Now().UTC(),
		ActorID:       req.ActorID,
		Payload:       req.Payload,
	}
	hash, err := signing.HashEvent(content)
	if err != nil {
		return nil, err
	}
	sig, err := signing.SignEventHash(hash, privateKey)
	if err != nil {
		return nil, err
	}
	if !signing.VerifyEventHash(hash, sig, publicKey) {
		return nil, fmt.Errorf("%w: private key does not match the actor's registered public key", signing.ErrInvalidKeyMaterial)
	}

	event := &models.Event{
		EventHash:     hash,
		ObjectID:      req.ObjectID,
		EventType:     req.EventType,
		Payload:       content.Payload,
		ActorID:       req.ActorID,
		Timestamp:     content.Timestamp,
		PrevEventHash: head,
		Signature:     sig,
	}
	if err := s.store.InsertEvent(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// GetChain returns an object's events oldest first.
func (s *Service) GetChain(ctx context.Context, objectID string) ([]models.Event, error) {
	return s.store.GetChain(ctx, objectID)
}
