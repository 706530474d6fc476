package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"provl/internal/api"
	"provl/internal/config"
)

func newEventCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "event",
		Short: "Work with provenance events",
	}

	cmd.AddCommand(newEventAppendCmd(cfg, jsonOutput))
	return cmd
}

func newEventAppendCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var (
		eventType  string
		actorID    string
		privateKey string
		payload    string
	)

	cmd := &cobra.Command{
		Use:   "append <object-id>",
		Short: "Append a signed event to an object's chain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if eventType == "" {
				return errors.New("--type is required")
			}
			if actorID == "" {
				return errors.New("--actor is required")
			}

			var payloadMap map[string]any
			if payload != "" {
				if err := json.Unmarshal([]byte(payload), &payloadMap); err != nil {
					return fmt.Errorf("--payload must be a JSON object: %w", err)
				}
			}

			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.AppendEvent(cmd.Context(), args[0], api.EventAppendRequest{
					EventType:  eventType,
					Payload:    payloadMap,
					ActorID:    actorID,
					PrivateKey: privateKey,
				})
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeStructured(resp)
				}
				return writePlain("%s\n", resp.EventHash)
			})
		},
	}

	cmd.Flags().StringVar(&eventType, "type", "", "event type: METADATA_EDIT, MIGRATION or CUSTODY_TRANSFER (required)")
	cmd.Flags().StringVar(&actorID, "actor", "", "acting actor id (required)")
	cmd.Flags().StringVar(&privateKey, "key", "", "hex Ed25519 private key; omit to use the actor's derived key")
	cmd.Flags().StringVar(&payload, "payload", "", "event payload as a JSON object")
	return cmd
}
