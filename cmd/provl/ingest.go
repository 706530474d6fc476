package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"provl/internal/api"
	"provl/internal/config"
)

func newIngestCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var (
		actorID    string
		privateKey string
		metadata   string
	)

	cmd := &cobra.Command{
		Use:   "ingest <file>",
		Short: "Register a file as a new heritage object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if actorID == "" {
				return errors.New("--actor is required")
			}

			meta, err := parseMetadata(metadata)
			if err != nil {
				return err
			}

			file, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer file.Close()

			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.Ingest(cmd.Context(), filepath.Base(args[0]), file, meta, actorID, privateKey)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeStructured(resp)
				}
				_ = writePlain("object_id: %s\n", resp.ObjectID)
				_ = writePlain("cid: %s\n", resp.CID)
				_ = writePlain("genesis_event: %s\n", resp.GenesisEventHash)
				return writePlain("size_bytes: %d\n", resp.SizeBytes)
			})
		},
	}

	cmd.Flags().StringVar(&actorID, "actor", "", "acting actor id (required)")
	cmd.Flags().StringVar(&privateKey, "key", "", "hex Ed25519 private key; omit to use the actor's derived key")
	cmd.Flags().StringVar(&metadata, "metadata", "", "descriptive metadata as a JSON object")
	return cmd
}

func parseMetadata(raw string) (map[string]any, error) {
	if raw == "" {
		return nil, nil
	}
	var meta map[string]any
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		return nil, fmt.Errorf("--metadata must be a JSON object: %w", err)
	}
	return meta, nil
}
