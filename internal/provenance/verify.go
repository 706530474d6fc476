package provenance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"provl/internal/cas"
	"provl/internal/merkle"
	"provl/internal/models"
	"provl/internal/signing"
	"provl/internal/store"
)

// TimelineEntry is one event in a verification report, annotated with the
// per-event check results.
type TimelineEntry struct {
	EventHash      string           `json:"event_hash"`
	EventType      models.EventType `json:"event_type"`
	ActorID        string           `json:"actor_id"`
	Timestamp      time.Time        `json:"timestamp"`
	PrevEventHash  string           `json:"prev_event_hash,omitempty"`
	Payload        map[string]any   `json:"payload"`
	SignatureValid bool             `json:"signature_valid"`
	Anchored       bool             `json:"anchored"`
	BatchID        string           `json:"batch_id,omitempty"`
}

// Report is the outcome of verifying a file against the ledger. Data problems
// never abort verification; they clear the relevant flag and add a line to
// Errors.
type Report struct {
	ObjectID        string          `json:"object_id,omitempty"`
	CID             string          `json:"cid"`
	CIDMatch        bool            `json:"cid_match"`
	ChainValid      bool            `json:"chain_valid"`
	SignaturesValid bool            `json:"signatures_valid"`
	Anchored        bool            `json:"anchored"`
	Timeline        []TimelineEntry `json:"timeline"`
	Errors          []string        `json:"errors"`
}

func (r *Report) fail(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Verify checks a file's bytes against the ledger: recompute the CID, resolve
// the object (by claimed id, or by reverse CID lookup when the id is empty),
// then validate chain linkage, per-event hashes, signatures, anchoring state,
// and stored inclusion proofs. Returns an error only for infrastructure
// failures; everything about the data itself lands in the report.
func (s *Service) Verify(ctx context.Context, content []byte, claimedObjectID string) (*Report, error) {
	report := &Report{
		CID:      cas.ComputeCID(content),
		Timeline: []TimelineEntry{},
		Errors:   []string{},
	}

	obj, err := s.resolveObject(ctx, report, claimedObjectID)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return report, nil
	}
	report.ObjectID = obj.ObjectID
	report.CIDMatch = obj.CID == report.CID
	if !report.CIDMatch {
		report.fail("cid mismatch: ledger has %s, file hashes to %s", obj.CID, report.CID)
	}

	chain, err := s.store.GetChain(ctx, obj.ObjectID)
	if err != nil {
		return nil, err
	}
	if len(chain) == 0 {
		report.fail("object %s has no events", obj.ObjectID)
		return report, nil
	}

	report.ChainValid = s.checkChain(report, chain)
	report.SignaturesValid = s.checkSignatures(ctx, report, chain)
	if err := s.checkAnchoring(ctx, report, chain); err != nil {
		return nil, err
	}

	return report, nil
}

func (s *Service) resolveObject(ctx context.Context, report *Report, claimedObjectID string) (*models.Object, error) {
	if claimedObjectID != "" {
		obj, err := s.store.GetObject(ctx, claimedObjectID)
		if errors.Is(err, store.ErrUnknownObject) {
			report.fail("object %s is not registered", claimedObjectID)
			return nil, nil
		}
		return obj, err
	}

	matches, err := s.store.FindObjectsByCID(ctx, report.CID)
	if err != nil {
		return nil, err
	}
	switch len(matches) {
	case 0:
		report.fail("no object registered for cid %s", report.CID)
		return nil, nil
	case 1:
		return &matches[0], nil
	default:
		report.fail("cid %s matches %d objects; pass an object id to disambiguate", report.CID, len(matches))
		return nil, nil
	}
}

// checkChain validates linkage and recomputes every event hash from stored
// content. Any deviation invalidates the chain but the walk continues so the
// report names every broken event.
func (s *Service) checkChain(report *Report, chain []models.Event) bool {
	valid := true

	if chain[0].PrevEventHash != "" {
		valid = false
		report.fail("first event %s is not a genesis event", chain[0].EventHash)
	}
	if chain[0].EventType != models.EventIngestion {
		valid = false
		report.fail("genesis event %s has type %s, expected %s", chain[0].EventHash, chain[0].EventType, models.EventIngestion)
	}

	for i, ev := range chain {
		if i > 0 && ev.PrevEventHash != chain[i-1].EventHash {
			valid = false
			report.fail("event %s links to %s, expected %s", ev.EventHash, ev.PrevEventHash, chain[i-1].EventHash)
		}

		recomputed, err := signing.HashEvent(signing.EventContent{
			ObjectID:      ev.ObjectID,
			EventType:     ev.EventType,
			PrevEventHash: ev.PrevEventHash,
			Timestamp:     ev.Timestamp,
			ActorID:       ev.ActorID,
			Payload:       ev.Payload,
		})
		if err != nil {
			valid = false
			report.fail("event %s cannot be rehashed: %v", ev.EventHash, err)
			continue
		}
		if recomputed != ev.EventHash {
			valid = false
			report.fail("event %s content hashes to %s; stored content was altered", ev.EventHash, recomputed)
		}
	}

	return valid
}

// checkSignatures verifies each event's Ed25519 signature against the
// registered key of its actor, and fills the report timeline.
func (s *Service) checkSignatures(ctx context.Context, report *Report, chain []models.Event) bool {
	valid := true
	keys := map[string]string{}

	for _, ev := range chain {
		publicKey, ok := keys[ev.ActorID]
		if !ok {
			pk, err := s.store.GetPublicKey(ctx, ev.ActorID)
			if errors.Is(err, store.ErrUnknownActor) {
				pk = ""
			} else if err != nil {
				report.fail("lookup key for actor %s: %v", ev.ActorID, err)
			}
			publicKey = pk
			keys[ev.ActorID] = pk
		}

		sigValid := false
		if publicKey == "" {
			valid = false
			report.fail("event %s signed by unregistered actor %s", ev.EventHash, ev.ActorID)
		} else {
			sigValid = signing.VerifyEventHash(ev.EventHash, ev.Signature, publicKey)
			if !sigValid {
				valid = false
				report.fail("signature on event %s does not verify for actor %s", ev.EventHash, ev.ActorID)
			}
		}

		report.Timeline = append(report.Timeline, TimelineEntry{
			EventHash:      ev.EventHash,
			EventType:      ev.EventType,
			ActorID:        ev.ActorID,
			Timestamp:      ev.Timestamp,
			PrevEventHash:  ev.PrevEventHash,
			Payload:        ev.Payload,
			SignatureValid: sigValid,
			Anchored:       ev.Anchored,
			BatchID:        ev.BatchID,
		})
	}

	return valid
}

// checkAnchoring sets the report's anchored flag (true only when every event
// is anchored) and rechecks each stored inclusion proof against its batch
// root.
func (s *Service) checkAnchoring(ctx context.Context, report *Report, chain []models.Event) error {
	allAnchored := true

	for _, ev := range chain {
		if !ev.Anchored {
			allAnchored = false
			continue
		}

		proof, err := s.store.GetProof(ctx, ev.EventHash)
		if err != nil {
			return err
		}
		if proof == nil {
			allAnchored = false
			report.fail("event %s is marked anchored but has no inclusion proof", ev.EventHash)
			continue
		}
		if !merkle.VerifyProof(ev.EventHash, proof.Path, proof.MerkleRoot) {
			report.fail("inclusion proof for event %s does not recompute to root %s", ev.EventHash, proof.MerkleRoot)
		}
	}

	report.Anchored = allAnchored && len(chain) > 0
	return nil
}
