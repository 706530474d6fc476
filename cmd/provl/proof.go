package main

import (
	"github.com/spf13/cobra"

	"provl/internal/api"
	"provl/internal/config"
)

func newProofCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "proof <event-hash>",
		Short: "Show the Merkle inclusion proof for an anchored event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				proof, err := client.GetProof(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return writeStructured(proof)
			})
		},
	}
}
