package main

import (
	"github.com/spf13/cobra"

	"provl/internal/api"
	"provl/internal/config"
)

func newInfoCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show database and ledger info",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.GetInfo(cmd.Context())
				if err != nil {
					return err
				}
				resp.DBPath = cfg.DBPath

				if *jsonOutput {
					return writeStructured(resp)
				}

				_ = writePlain("db_path: %s\n", resp.DBPath)
				_ = writePlain("schema_version: %d\n", resp.SchemaVersion)
				_ = writePlain("actors: %d\n", resp.ActorCount)
				_ = writePlain("objects: %d\n", resp.ObjectCount)
				_ = writePlain("events: %d\n", resp.EventCount)
				return writePlain("batches: %d\n", resp.BatchCount)
			})
		},
	}
}
