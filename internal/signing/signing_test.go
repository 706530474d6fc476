package signing

import (
	"strings"
	"testing"
	"time"

	"provl/internal/models"
)

func testContent(prev string) EventContent {
	ts, _ := time.Parse(time.RFC3339, "2026-03-01T12:00:00Z")
	return EventContent{
		ObjectID:      "obj-1",
		EventType:     models.EventIngestion,
		PrevEventHash: prev,
		Timestamp:     ts,
		ActorID:       "curator-001",
		Payload:       map[string]any{"filename": "photo.jpg", "cid": "abc"},
	}
}

func TestCanonicalBytesStable(t *testing.T) {
	a, err := CanonicalBytes(testContent(""))
	if err != nil {
		t.Fatalf("canonical: %v", err)
	}
	b, err := CanonicalBytes(testContent(""))
	if err != nil {
		t.Fatalf("canonical: %v", err)
	}
	if string(a) != string(b) {
		t.Fatalf("canonical bytes not stable:\n%s\n%s", a, b)
	}
	if !strings.Contains(string(a), `"prev_event_hash":null`) {
		t.Fatalf("genesis should serialize null prev hash, got %s", a)
	}
	// Keys must appear in sorted order.
	s := string(a)
	order := []string{`"actor_id"`, `"event_type"`, `"object_id"`, `"payload"`, `"prev_event_hash"`, `"timestamp"`}
	last := -1
	for _, key := range order {
		idx := strings.Index(s, key)
		if idx < 0 || idx < last {
			t.Fatalf("key %s out of order in %s", key, s)
		}
		last = idx
	}
}

func TestHashEventSensitivity(t *testing.T) {
	base, err := HashEvent(testContent(""))
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if len(base) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(base))
	}

	changed := testContent("")
	changed.Payload["filename"] = "photo2.jpg"
	other, err := HashEvent(changed)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if other == base {
		t.Fatal("payload change did not change event hash")
	}

	linked, err := HashEvent(testContent(base))
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if linked == base {
		t.Fatal("prev hash change did not change event hash")
	}
}

func TestTimestampRoundTrip(t *testing.T) {
	now := time.Now()
	raw := FormatTimestamp(now)
	parsed, err := ParseTimestamp(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if FormatTimestamp(parsed) != raw {
		t.Fatalf("timestamp format not stable: %s vs %s", FormatTimestamp(parsed), raw)
	}
}

func TestGenerateKeypairSignVerify(t *testing.T) {
	kp, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(kp.PublicKey) != 64 || len(kp.PrivateKey) != 64 {
		t.Fatalf("unexpected key lengths: pub=%d priv=%d", len(kp.PublicKey), len(kp.PrivateKey))
	}

	hash, err := HashEvent(testContent(""))
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	sig, err := SignEventHash(hash, kp.PrivateKey)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if !VerifyEventHash(hash, sig, kp.PublicKey) {
		t.Fatal("signature should verify")
	}

	other, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if VerifyEventHash(hash, sig, other.PublicKey) {
		t.Fatal("signature verified against the wrong key")
	}
}

func TestDeriveKeypairDeterministic(t *testing.T) {
	a := DeriveKeypair("curator-001")
	b := DeriveKeypair("curator-001")
	if a != b {
		t.Fatalf("derivation not stable: %+v vs %+v", a, b)
	}
	c := DeriveKeypair("curator-002")
	if c.PublicKey == a.PublicKey {
		t.Fatal("different actors derived the same key")
	}

	hash, err := HashEvent(testContent(""))
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	sig, err := SignEventHash(hash, a.PrivateKey)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if !VerifyEventHash(hash, sig, a.PublicKey) {
		t.Fatal("derived keypair signature should verify")
	}
}

func TestMalformedMaterial(t *testing.T) {
	hash, err := HashEvent(testContent(""))
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	if _, err := SignEventHash(hash, "not-hex"); err == nil {
		t.Fatal("expected error for non-hex private key")
	}
	if _, err := SignEventHash(hash, "abcd"); err == nil {
		t.Fatal("expected error for short private key")
	}
	if _, err := SignEventHash("zz", DeriveKeypair("x").PrivateKey); err == nil {
		t.Fatal("expected error for non-hex event hash")
	}

	kp := DeriveKeypair("x")
	if VerifyEventHash(hash, "not-hex", kp.PublicKey) {
		t.Fatal("malformed signature should not verify")
	}
	if VerifyEventHash(hash, strings.Repeat("ab", 64), "short") {
		t.Fatal("malformed public key should not verify")
	}
}
