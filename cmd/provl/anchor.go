package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"provl/internal/api"
	"provl/internal/config"
)

const operatorPasswordEnvKey = "PROVL_OPERATOR_PASSWORD"

func newAnchorCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "anchor",
		Short: "Anchor events under Merkle roots",
	}

	cmd.AddCommand(
		newAnchorRunCmd(cfg, jsonOutput),
		newAnchorListCmd(cfg, jsonOutput),
		newAnchorShowCmd(cfg, jsonOutput),
	)
	return cmd
}

func newAnchorRunCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var passwordStdin bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Anchor all unanchored events in a new batch",
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := operatorPassword(passwordStdin)
			if err != nil {
				return err
			}

			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.Anchor(cmd.Context(), password)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeStructured(resp)
				}
				if !resp.Anchored {
					return writePlain("nothing to anchor\n")
				}
				return writeBatchDetail(*resp.Batch)
			})
		},
	}

	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the operator password from stdin")
	return cmd
}

func operatorPassword(fromStdin bool) (string, error) {
	if fromStdin {
		raw, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read password from stdin: %w", err)
		}
		password := strings.TrimSpace(string(raw))
		if password == "" {
			return "", errors.New("empty password on stdin")
		}
		return password, nil
	}

	if password := os.Getenv(operatorPasswordEnvKey); password != "" {
		return password, nil
	}
	return "", fmt.Errorf("operator password required: pass --password-stdin or set %s", operatorPasswordEnvKey)
}

func newAnchorListCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List anchor batches, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				batches, err := client.ListAnchors(cmd.Context())
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeStructured(batches)
				}
				for _, batch := range batches {
					if err := writePlain("%s  %s  %d events\n",
						batch.BatchID, formatTime(batch.AnchoredAt), batch.EventCount); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func newAnchorShowCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "show <batch-id>",
		Short: "Show one anchor batch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				batch, err := client.GetAnchor(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeStructured(batch)
				}
				return writeBatchDetail(batch)
			})
		},
	}
}
