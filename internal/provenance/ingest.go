package provenance

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"provl/internal/models"
)

// IngestRequest carries one original file plus its descriptive metadata.
type IngestRequest struct {
	Content    []byte
	Metadata   map[string]any
	ActorID    string
	PrivateKey string
}

// IngestResult identifies the registered object and its genesis event.
type IngestResult struct {
	ObjectID         string `json:"object_id"`
	CID              string `json:"cid"`
	GenesisEventHash string `json:"genesis_event_hash"`
	SizeBytes        int64  `json:"size_bytes"`
}

// Ingest registers a new object: the bytes go into the content-addressed
// store, the object row records the CID, and an ingestion event with the
// supplied metadata opens the provenance chain.
func (s *Service) Ingest(ctx context.Context, req IngestRequest) (*IngestResult, error) {
	if len(req.Content) == 0 {
		return nil, fmt.Errorf("file content is required")
	}
	if _, err := s.store.GetActor(ctx, req.ActorID); err != nil {
		return nil, err
	}

	put, err := s.blobs.Put(ctx, bytes.NewReader(req.Content))
	if err != nil {
		return nil, fmt.Errorf("store content: %w", err)
	}

	obj := &models.Object{
		ObjectID:  uuid.NewString(),
		CID:       put.CID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.CreateObject(ctx, obj); err != nil {
		return nil, err
	}

	genesis, err := s.AppendEvent(ctx, AppendRequest{
		ObjectID:   obj.ObjectID,
		EventType:  models.EventIngestion,
		Payload:    req.Metadata,
		ActorID:    req.ActorID,
		PrivateKey: req.PrivateKey,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("object ingested",
		"object_id", obj.ObjectID,
		"cid", put.CID,
		"size_bytes", put.SizeBytes)

	return &IngestResult{
		ObjectID:         obj.ObjectID,
		CID:              put.CID,
		GenesisEventHash: genesis.EventHash,
		SizeBytes:        put.SizeBytes,
	}, nil
}

// GetObject returns a registered object.
func (s *Service) GetObject(ctx context.Context, objectID string) (*models.Object, error) {
	return s.store.GetObject(ctx, objectID)
}
