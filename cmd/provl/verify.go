package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"provl/internal/api"
	"provl/internal/config"
)

func newVerifyCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var objectID string

	cmd := &cobra.Command{
		Use:   "verify <file>",
		Short: "Verify a file against the ledger",
		Long:  "Recompute the file's CID, replay the chain, check every signature and inclusion proof, and print the resulting report. A failing check never aborts the run; it shows up in the report.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer file.Close()

			return withClient(cfg, func(client *api.Client) error {
				report, err := client.Verify(cmd.Context(), filepath.Base(args[0]), file, objectID)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeStructured(report)
				}
				return writeVerificationReport(report)
			})
		},
	}

	cmd.Flags().StringVar(&objectID, "object", "", "object id; omit to resolve by CID")
	return cmd
}
