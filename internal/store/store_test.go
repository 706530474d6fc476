package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"provl/internal/merkle"
	"provl/internal/models"
)

// testStore creates a temporary store for testing.
func testStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	st, err := Open(path)
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func seedActor(t *testing.T, st *Store, actorID string) {
	t.Helper()
	err := st.CreateActor(context.Background(), &models.Actor{
		ActorID:   actorID,
		Name:      "Test Actor",
		PublicKey: "00",
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seed actor %s: %v", actorID, err)
	}
}

func seedObject(t *testing.T, st *Store, objectID, cid string) {
	t.Helper()
	err := st.CreateObject(context.Background(), &models.Object{
		ObjectID:  objectID,
		CID:       cid,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seed object %s: %v", objectID, err)
	}
}

func testEvent(objectID, hash, prev string) *models.Event {
	return &models.Event{
		EventHash:     hash,
		ObjectID:      objectID,
		EventType:     models.EventIngestion,
		Payload:       map[string]any{"note": "seed"},
		ActorID:       "curator-001",
		Timestamp:     time.Now().UTC(),
		PrevEventHash: prev,
		Signature:     "sig-" + hash,
	}
}

func TestCreateActorDuplicate(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	seedActor(t, st, "curator-001")

	err := st.CreateActor(ctx, &models.Actor{
		ActorID:   "curator-001",
		Name:      "Someone Else",
		PublicKey: "ff",
		CreatedAt: time.Now().UTC(),
	})
	if !errors.Is(err, ErrDuplicateActor) {
		t.Fatalf("expected ErrDuplicateActor, got %v", err)
	}
}

func TestGetActorUnknown(t *testing.T) {
	st := testStore(t)

	if _, err := st.GetActor(context.Background(), "nobody"); !errors.Is(err, ErrUnknownActor) {
		t.Fatalf("expected ErrUnknownActor, got %v", err)
	}
}

func TestFindObjectsByCID(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	seedObject(t, st, "obj-1", "cid-aaa")
	seedObject(t, st, "obj-2", "cid-aaa")
	seedObject(t, st, "obj-3", "cid-bbb")

	matches, err := st.FindObjectsByCID(ctx, "cid-aaa")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}

	none, err := st.FindObjectsByCID(ctx, "cid-zzz")
	if err != nil {
		t.Fatalf("find none: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("expected no matches, got %d", len(none))
	}
}

func TestInsertEventAndGetChain(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	seedActor(t, st, "curator-001")
	seedObject(t, st, "obj-1", "cid-aaa")

	if err := st.InsertEvent(ctx, testEvent("obj-1", "hash-1", "")); err != nil {
		t.Fatalf("insert genesis: %v", err)
	}
	if err := st.InsertEvent(ctx, testEvent("obj-1", "hash-2", "hash-1")); err != nil {
		t.Fatalf("insert second: %v", err)
	}

	chain, err := st.GetChain(ctx, "obj-1")
	if err != nil {
		t.Fatalf("get chain: %v", err)
	}
	if len(chain) != 2 {
		t.Fatalf("expected 2 events, got %d", len(chain))
	}
	if chain[0].EventHash != "hash-1" || chain[1].EventHash != "hash-2" {
		t.Fatalf("chain out of order: %s, %s", chain[0].EventHash, chain[1].EventHash)
	}
	if chain[0].PrevEventHash != "" {
		t.Fatalf("genesis prev should be empty, got %q", chain[0].PrevEventHash)
	}
	if chain[0].Payload["note"] != "seed" {
		t.Fatalf("payload lost: %+v", chain[0].Payload)
	}
}

func TestGetChainUnknownObject(t *testing.T) {
	st := testStore(t)

	if _, err := st.GetChain(context.Background(), "ghost"); !errors.Is(err, ErrUnknownObject) {
		t.Fatalf("expected ErrUnknownObject, got %v", err)
	}
}

func TestInsertEventStaleHead(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	seedActor(t, st, "curator-001")
	seedObject(t, st, "obj-1", "cid-aaa")

	if err := st.InsertEvent(ctx, testEvent("obj-1", "hash-1", "")); err != nil {
		t.Fatalf("insert genesis: %v", err)
	}

	// Second genesis attempt: head is now hash-1, not empty.
	if err := st.InsertEvent(ctx, testEvent("obj-1", "hash-x", "")); !errors.Is(err, ErrChainConflict) {
		t.Fatalf("expected ErrChainConflict for duplicate genesis, got %v", err)
	}

	// Append referencing a hash that is not the head.
	if err := st.InsertEvent(ctx, testEvent("obj-1", "hash-y", "hash-0")); !errors.Is(err, ErrChainConflict) {
		t.Fatalf("expected ErrChainConflict for stale prev, got %v", err)
	}

	chain, err := st.GetChain(ctx, "obj-1")
	if err != nil {
		t.Fatalf("get chain: %v", err)
	}
	if len(chain) != 1 {
		t.Fatalf("conflicting inserts must not land, got %d events", len(chain))
	}
}

func TestChainHead(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	seedActor(t, st, "curator-001")
	seedObject(t, st, "obj-1", "cid-aaa")

	head, err := st.ChainHead(ctx, "obj-1")
	if err != nil {
		t.Fatalf("head: %v", err)
	}
	if head != "" {
		t.Fatalf("expected empty head, got %q", head)
	}

	if err := st.InsertEvent(ctx, testEvent("obj-1", "hash-1", "")); err != nil {
		t.Fatalf("insert: %v", err)
	}
	head, err = st.ChainHead(ctx, "obj-1")
	if err != nil {
		t.Fatalf("head: %v", err)
	}
	if head != "hash-1" {
		t.Fatalf("expected head hash-1, got %q", head)
	}
}

func TestListUnanchoredEventsOrder(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	seedActor(t, st, "curator-001")
	seedObject(t, st, "obj-1", "cid-aaa")

	// Insert out of lexicographic order.
	for i, hash := range []string{"cc", "aa", "bb"} {
		prev := ""
		if i > 0 {
			prev = []string{"cc", "aa", "bb"}[i-1]
		}
		if err := st.InsertEvent(ctx, testEvent("obj-1", hash, prev)); err != nil {
			t.Fatalf("insert %s: %v", hash, err)
		}
	}

	events, err := st.ListUnanchoredEvents(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	for i, want := range []string{"aa", "bb", "cc"} {
		if events[i].EventHash != want {
			t.Fatalf("position %d: expected %s, got %s", i, want, events[i].EventHash)
		}
	}
}

func TestCreateBatchMarksEvents(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	seedActor(t, st, "curator-001")
	seedObject(t, st, "obj-1", "cid-aaa")

	if err := st.InsertEvent(ctx, testEvent("obj-1", "hash-1", "")); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := st.InsertEvent(ctx, testEvent("obj-1", "hash-2", "hash-1")); err != nil {
		t.Fatalf("insert: %v", err)
	}

	now := time.Now().UTC()
	batch := &models.Batch{
		BatchID:     "batch-1",
		MerkleRoot:  "root-1",
		AnchoredAt:  now,
		EventCount:  2,
		EventHashes: []string{"hash-1", "hash-2"},
	}
	proofs := []Proof{
		{EventHash: "hash-1", Path: []merkle.ProofStep{{Hash: "hash-2", Left: false}}},
		{EventHash: "hash-2", Path: []merkle.ProofStep{{Hash: "hash-1", Left: true}}},
	}

	if err := st.CreateBatch(ctx, batch, proofs); err != nil {
		t.Fatalf("create batch: %v", err)
	}

	chain, err := st.GetChain(ctx, "obj-1")
	if err != nil {
		t.Fatalf("get chain: %v", err)
	}
	for _, ev := range chain {
		if !ev.Anchored || ev.BatchID != "batch-1" {
			t.Fatalf("event %s not anchored to batch-1: %+v", ev.EventHash, ev)
		}
	}

	proof, err := st.GetProof(ctx, "hash-1")
	if err != nil {
		t.Fatalf("get proof: %v", err)
	}
	if proof == nil {
		t.Fatal("expected proof, got nil")
	}
	if proof.BatchID != "batch-1" || len(proof.Path) != 1 || proof.Path[0].Hash != "hash-2" {
		t.Fatalf("unexpected proof: %+v", proof)
	}

	remaining, err := st.ListUnanchoredEvents(ctx)
	if err != nil {
		t.Fatalf("list unanchored: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("expected no unanchored events, got %d", len(remaining))
	}
}

func TestCreateBatchRejectsReanchoring(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	seedActor(t, st, "curator-001")
	seedObject(t, st, "obj-1", "cid-aaa")

	if err := st.InsertEvent(ctx, testEvent("obj-1", "hash-1", "")); err != nil {
		t.Fatalf("insert: %v", err)
	}

	now := time.Now().UTC()
	first := &models.Batch{BatchID: "batch-1", MerkleRoot: "root-1", AnchoredAt: now, EventCount: 1, EventHashes: []string{"hash-1"}}
	if err := st.CreateBatch(ctx, first, []Proof{{EventHash: "hash-1", Path: []merkle.ProofStep{}}}); err != nil {
		t.Fatalf("create first batch: %v", err)
	}

	second := &models.Batch{BatchID: "batch-2", MerkleRoot: "root-2", AnchoredAt: now, EventCount: 1, EventHashes: []string{"hash-1"}}
	err := st.CreateBatch(ctx, second, []Proof{{EventHash: "hash-1", Path: []merkle.ProofStep{}}})
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}

	// The failed second batch must not be visible.
	got, err := st.GetBatch(ctx, "batch-2")
	if err != nil {
		t.Fatalf("get batch: %v", err)
	}
	if got != nil {
		t.Fatalf("rolled-back batch leaked: %+v", got)
	}
}

func TestListBatches(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	seedActor(t, st, "curator-001")
	seedObject(t, st, "obj-1", "cid-aaa")

	prev := ""
	for i := 1; i <= 3; i++ {
		hash := fmt.Sprintf("hash-%d", i)
		if err := st.InsertEvent(ctx, testEvent("obj-1", hash, prev)); err != nil {
			t.Fatalf("insert %s: %v", hash, err)
		}
		prev = hash

		batch := &models.Batch{
			BatchID:     fmt.Sprintf("batch-%d", i),
			MerkleRoot:  fmt.Sprintf("root-%d", i),
			AnchoredAt:  time.Now().UTC().Add(time.Duration(i) * time.Second),
			EventCount:  1,
			EventHashes: []string{hash},
		}
		if err := st.CreateBatch(ctx, batch, []Proof{{EventHash: hash, Path: []merkle.ProofStep{}}}); err != nil {
			t.Fatalf("create batch %d: %v", i, err)
		}
	}

	batches, err := st.ListBatches(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(batches) != 3 {
		t.Fatalf("expected 3 batches, got %d", len(batches))
	}
	if batches[0].BatchID != "batch-3" {
		t.Fatalf("expected newest first, got %s", batches[0].BatchID)
	}
	if len(batches[0].EventHashes) != 1 {
		t.Fatalf("event hashes lost: %+v", batches[0])
	}
}

func TestOperatorPassword(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	hash, err := st.GetOperatorPasswordHash(ctx)
	if err != nil {
		t.Fatalf("get empty: %v", err)
	}
	if hash != "" {
		t.Fatalf("expected no credential, got %q", hash)
	}

	if err := st.SetOperatorPassword(ctx, "bcrypt-1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := st.SetOperatorPassword(ctx, "bcrypt-2"); err != nil {
		t.Fatalf("replace: %v", err)
	}

	hash, err = st.GetOperatorPasswordHash(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if hash != "bcrypt-2" {
		t.Fatalf("expected bcrypt-2, got %q", hash)
	}
}

func TestMigrationPlanOnFreshStore(t *testing.T) {
	st := testStore(t)

	plan, err := MigrationPlan(st.db)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if plan.CurrentVersion != plan.AvailableVersion {
		t.Fatalf("fresh store should be fully migrated: %+v", plan)
	}
	if len(plan.Pending) != 0 {
		t.Fatalf("expected no pending migrations, got %+v", plan.Pending)
	}
}
