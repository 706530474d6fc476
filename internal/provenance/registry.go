package provenance

import (
	"context"
	"fmt"
	"strings"
	"time"

	"provl/internal/models"
	"provl/internal/signing"
)

// CreateActorResult is the outcome of registering an actor. DerivedKeypair is
// set only when no public key was supplied and a deterministic pair was
// derived; the private half is surfaced exactly once here.
type CreateActorResult struct {
	Actor          *models.Actor
	DerivedKeypair *signing.Keypair
}

// CreateActor registers an actor under its caller-chosen id. With an empty
// public key a deterministic keypair is derived from the actor id so the
// actor can sign immediately; a supplied key must be a valid Ed25519 public
// key encoding.
func (s *Service) CreateActor(ctx context.Context, actorID, name, publicKey string) (*CreateActorResult, error) {
	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return nil, fmt.Errorf("actor id is required")
	}
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("actor name is required")
	}

	result := &CreateActorResult{}
	if publicKey == "" {
		kp := signing.DeriveKeypair(actorID)
		publicKey = kp.PublicKey
		result.DerivedKeypair = &kp
	} else if _, err := signing.ParsePublicKey(publicKey); err != nil {
		return nil, err
	}

	actor := &models.Actor{
		ActorID:   actorID,
		Name:      name,
		PublicKey: publicKey,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.CreateActor(ctx, actor); err != nil {
		return nil, err
	}

	s.log.Info("actor registered", "actor_id", actorID, "derived_key", result.DerivedKeypair != nil)
	result.Actor = actor
	return result, nil
}

// GetActor returns a registered actor.
func (s *Service) GetActor(ctx context.Context, actorID string) (*models.Actor, error) {
	return s.store.GetActor(ctx, actorID)
}

// ListActors returns all registered actors.
func (s *Service) ListActors(ctx context.Context) ([]models.Actor, error) {
	return s.store.ListActors(ctx)
}

// GenerateKeypair produces a fresh Ed25519 keypair. Nothing is persisted;
// callers register the public half via CreateActor and keep the private half.
func (s *Service) GenerateKeypair() (signing.Keypair, error) {
	return signing.GenerateKeypair()
}
