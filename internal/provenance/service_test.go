package provenance

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	_ "modernc.org/sqlite"

	"provl/internal/anchors"
	"provl/internal/cas"
	"provl/internal/models"
	"provl/internal/store"
)

type testEnv struct {
	svc    *Service
	dbPath string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "provl.db")

	st, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	blobs, err := cas.NewLocal(filepath.Join(dir, "cas"))
	if err != nil {
		t.Fatalf("open cas: %v", err)
	}
	ledger, err := anchors.NewLedger(filepath.Join(dir, "anchors.jsonl"))
	if err != nil {
		t.Fatalf("open ledger: %v", err)
	}

	return &testEnv{
		svc:    New(st, blobs, ledger, nil),
		dbPath: dbPath,
	}
}

func (e *testEnv) createActor(t *testing.T, actorID string) {
	t.Helper()
	if _, err := e.svc.CreateActor(context.Background(), actorID, "Test Curator", ""); err != nil {
		t.Fatalf("create actor %s: %v", actorID, err)
	}
}

func (e *testEnv) ingest(t *testing.T, actorID string, content []byte) *IngestResult {
	t.Helper()
	res, err := e.svc.Ingest(context.Background(), IngestRequest{
		Content:  content,
		Metadata: map[string]any{"title": "Test Object", "format": "image/tiff"},
		ActorID:  actorID,
	})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	return res
}

// exec runs a raw statement against the test database through a second
// connection, bypassing the store's invariants. Used to simulate storage
// tampering.
func (e *testEnv) exec(t *testing.T, query string, args ...any) {
	t.Helper()
	db, err := sql.Open("sqlite", "file:"+e.dbPath)
	if err != nil {
		t.Fatalf("open raw db: %v", err)
	}
	defer db.Close()
	if _, err := db.Exec(query, args...); err != nil {
		t.Fatalf("exec %q: %v", query, err)
	}
}

func TestCreateActorValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res, err := env.svc.CreateActor(ctx, "curator-001", "Ada", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if res.DerivedKeypair == nil {
		t.Fatal("expected a derived keypair when no public key is supplied")
	}
	if res.Actor.PublicKey != res.DerivedKeypair.PublicKey {
		t.Fatal("registered key must match the derived pair")
	}

	if _, err := env.svc.CreateActor(ctx, "curator-001", "Ada", ""); !errors.Is(err, store.ErrDuplicateActor) {
		t.Fatalf("expected ErrDuplicateActor, got %v", err)
	}
	if _, err := env.svc.CreateActor(ctx, "curator-002", "Bob", "not-hex"); err == nil {
		t.Fatal("expected error for malformed public key")
	}
	if _, err := env.svc.CreateActor(ctx, "", "Nameless", ""); err == nil {
		t.Fatal("expected error for empty actor id")
	}
}

func TestCreateActorWithGeneratedKey(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	kp, err := env.svc.GenerateKeypair()
	if err != nil {
		t.Fatalf("keygen: %v", err)
	}
	res, err := env.svc.CreateActor(ctx, "curator-001", "Ada", kp.PublicKey)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if res.DerivedKeypair != nil {
		t.Fatal("no keypair should be derived when a key is supplied")
	}

	// The generated private key must be usable for appends.
	ing := env.ingest(t, "curator-001", []byte("scan-01"))
	_ = ing
}

func TestIngestCreatesGenesis(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.createActor(t, "curator-001")

	res := env.ingest(t, "curator-001", []byte("original scan bytes"))
	if res.CID != cas.ComputeCID([]byte("original scan bytes")) {
		t.Fatalf("cid mismatch: %s", res.CID)
	}

	chain, err := env.svc.GetChain(ctx, res.ObjectID)
	if err != nil {
		t.Fatalf("chain: %v", err)
	}
	if len(chain) != 1 {
		t.Fatalf("expected 1 event, got %d", len(chain))
	}
	genesis := chain[0]
	if genesis.EventType != models.EventIngestion {
		t.Fatalf("genesis type: %s", genesis.EventType)
	}
	if genesis.PrevEventHash != "" {
		t.Fatalf("genesis has a predecessor: %s", genesis.PrevEventHash)
	}
	if genesis.EventHash != res.GenesisEventHash {
		t.Fatalf("genesis hash mismatch: %s vs %s", genesis.EventHash, res.GenesisEventHash)
	}
	if genesis.Payload["title"] != "Test Object" {
		t.Fatalf("metadata lost: %+v", genesis.Payload)
	}
}

func TestIngestUnknownActor(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Ingest(context.Background(), IngestRequest{
		Content: []byte("x"),
		ActorID: "ghost",
	})
	if !errors.Is(err, store.ErrUnknownActor) {
		t.Fatalf("expected ErrUnknownActor, got %v", err)
	}
}

func TestAppendEventLinksChain(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.createActor(t, "curator-001")
	res := env.ingest(t, "curator-001", []byte("content"))

	ev, err := env.svc.AppendEvent(ctx, AppendRequest{
		ObjectID:  res.ObjectID,
		EventType: models.EventMetadataEdit,
		Payload:   map[string]any{"field": "title", "new": "Corrected Title"},
		ActorID:   "curator-001",
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if ev.PrevEventHash != res.GenesisEventHash {
		t.Fatalf("event links to %s, expected genesis %s", ev.PrevEventHash, res.GenesisEventHash)
	}

	chain, err := env.svc.GetChain(ctx, res.ObjectID)
	if err != nil {
		t.Fatalf("chain: %v", err)
	}
	if len(chain) != 2 || chain[1].EventHash != ev.EventHash {
		t.Fatalf("unexpected chain: %+v", chain)
	}
}

func TestAppendEventValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.createActor(t, "curator-001")
	res := env.ingest(t, "curator-001", []byte("content"))

	if _, err := env.svc.AppendEvent(ctx, AppendRequest{
		ObjectID: res.ObjectID, EventType: "SOMETHING", ActorID: "curator-001",
	}); err == nil {
		t.Fatal("expected error for invalid event type")
	}

	if _, err := env.svc.AppendEvent(ctx, AppendRequest{
		ObjectID: "ghost", EventType: models.EventMigration, ActorID: "curator-001",
	}); !errors.Is(err, store.ErrUnknownObject) {
		t.Fatalf("expected ErrUnknownObject, got %v", err)
	}

	if _, err := env.svc.AppendEvent(ctx, AppendRequest{
		ObjectID: res.ObjectID, EventType: models.EventMigration, ActorID: "ghost",
	}); !errors.Is(err, store.ErrUnknownActor) {
		t.Fatalf("expected ErrUnknownActor, got %v", err)
	}

	// Ingestion is reserved for the genesis event.
	if _, err := env.svc.AppendEvent(ctx, AppendRequest{
		ObjectID: res.ObjectID, EventType: models.EventIngestion, ActorID: "curator-001",
	}); err == nil {
		t.Fatal("expected error for second ingestion event")
	}
}

func TestAppendRejectsForeignPrivateKey(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.createActor(t, "curator-001")
	res := env.ingest(t, "curator-001", []byte("content"))

	other, err := env.svc.GenerateKeypair()
	if err != nil {
		t.Fatalf("keygen: %v", err)
	}
	_, err = env.svc.AppendEvent(ctx, AppendRequest{
		ObjectID:   res.ObjectID,
		EventType:  models.EventMigration,
		ActorID:    "curator-001",
		PrivateKey: other.PrivateKey,
	})
	if err == nil {
		t.Fatal("expected error when the key does not match the registered public key")
	}
}

func TestConcurrentAppendsSerialize(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.createActor(t, "curator-001")
	res := env.ingest(t, "curator-001", []byte("content"))

	const writers = 8
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.svc.AppendEvent(ctx, AppendRequest{
				ObjectID:  res.ObjectID,
				EventType: models.EventMetadataEdit,
				Payload:   map[string]any{"edit": "concurrent"},
				ActorID:   "curator-001",
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	chain, err := env.svc.GetChain(ctx, res.ObjectID)
	if err != nil {
		t.Fatalf("chain: %v", err)
	}
	if len(chain) != writers+1 {
		t.Fatalf("expected %d events, got %d", writers+1, len(chain))
	}
	for i := 1; i < len(chain); i++ {
		if chain[i].PrevEventHash != chain[i-1].EventHash {
			t.Fatalf("broken linkage at %d", i)
		}
	}
}

func TestExportJSONLD(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.createActor(t, "curator-001")
	res := env.ingest(t, "curator-001", []byte("content"))

	doc, err := env.svc.ExportJSONLD(ctx, res.ObjectID)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if doc["@id"] != "urn:object:"+res.ObjectID {
		t.Fatalf("unexpected @id: %v", doc["@id"])
	}
	if doc["provenance:cid"] != res.CID {
		t.Fatalf("unexpected cid: %v", doc["provenance:cid"])
	}
	activities, ok := doc["prov:wasGeneratedBy"].([]map[string]any)
	if !ok || len(activities) != 1 {
		t.Fatalf("unexpected activities: %v", doc["prov:wasGeneratedBy"])
	}
	if activities[0]["@id"] != "urn:provenance:event:"+res.GenesisEventHash {
		t.Fatalf("unexpected activity id: %v", activities[0]["@id"])
	}

	if _, err := env.svc.ExportJSONLD(ctx, "ghost"); !errors.Is(err, store.ErrUnknownObject) {
		t.Fatalf("expected ErrUnknownObject, got %v", err)
	}
}
