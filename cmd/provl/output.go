package main

import (
	"fmt"
	"os"
	"time"

	"provl/internal/api"
	"provl/internal/format"
	"provl/internal/models"
)

var outputFormatter format.Formatter = format.JSONFormatter{}

func writeStructured(payload any) error {
	return outputFormatter.Write(os.Stdout, payload)
}

func writePlain(format string, args ...any) error {
	_, err := fmt.Fprintf(os.Stdout, format, args...)
	return err
}

func writeActorDetail(actor api.ActorResponse) error {
	if err := writePlain("actor_id: %s\n", actor.ActorID); err != nil {
		return err
	}
	_ = writePlain("name: %s\n", actor.Name)
	_ = writePlain("public_key: %s\n", actor.PublicKey)
	_ = writePlain("created_at: %s\n", actor.CreatedAt)
	if actor.PrivateKey != "" {
		_ = writePlain("private_key: %s\n", actor.PrivateKey)
		_ = writePlain("note: store the private key now; it is not shown again\n")
	}
	return nil
}

func writeChain(chain api.ChainResponse) error {
	if err := writePlain("object_id: %s\ncid: %s\n", chain.ObjectID, chain.CID); err != nil {
		return err
	}
	for _, event := range chain.Events {
		if err := writePlain("%s\n", formatEventLine(event)); err != nil {
			return err
		}
	}
	return nil
}

func formatEventLine(event models.Event) string {
	anchored := " "
	if event.Anchored {
		anchored = "*"
	}
	return fmt.Sprintf("%s %s [%s] by %s at %s",
		anchored, shortHash(event.EventHash), event.EventType, event.ActorID, formatTime(event.Timestamp))
}

func writeBatchDetail(batch models.Batch) error {
	if err := writePlain("batch_id: %s\n", batch.BatchID); err != nil {
		return err
	}
	_ = writePlain("merkle_root: %s\n", batch.MerkleRoot)
	_ = writePlain("anchored_at: %s\n", formatTime(batch.AnchoredAt))
	_ = writePlain("event_count: %d\n", batch.EventCount)
	for _, hash := range batch.EventHashes {
		_ = writePlain("  %s\n", hash)
	}
	return nil
}

func writeVerificationReport(report api.VerificationReport) error {
	if report.ObjectID != "" {
		_ = writePlain("object_id: %s\n", report.ObjectID)
	}
	_ = writePlain("cid: %s\n", report.CID)
	_ = writePlain("cid_match: %s\n", checkMark(report.CIDMatch))
	_ = writePlain("chain_valid: %s\n", checkMark(report.ChainValid))
	_ = writePlain("signatures_valid: %s\n", checkMark(report.SignaturesValid))
	_ = writePlain("anchored: %s\n", checkMark(report.Anchored))

	if len(report.Timeline) > 0 {
		_ = writePlain("timeline:\n")
	}
	for _, entry := range report.Timeline {
		sig := "ok"
		if !entry.SignatureValid {
			sig = "BAD SIGNATURE"
		}
		_ = writePlain("  %s [%s] by %s at %s (%s)\n",
			shortHash(entry.EventHash), entry.EventType, entry.ActorID, formatTime(entry.Timestamp), sig)
	}

	for _, line := range report.Errors {
		if err := writePlain("error: %s\n", line); err != nil {
			return err
		}
	}
	return nil
}

func checkMark(ok bool) string {
	if ok {
		return "yes"
	}
	return "NO"
}

func shortHash(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
