package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"provl/internal/config"
	"provl/internal/format"
)

func newRootCmd(cfg *config.Config) *cobra.Command {
	var (
		jsonOutput bool
		yamlOutput bool
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:   "provl",
		Short: "Provl is a provenance ledger for digital heritage objects",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if jsonOutput && yamlOutput {
				return fmt.Errorf("--json and --yaml are mutually exclusive")
			}
			if yamlOutput {
				outputFormatter = format.YAMLFormatter{}
			}

			warning, err := configureLoggerForCLI(logLevel, cfg.LogLevel)
			if err != nil {
				return err
			}
			if warning != "" {
				fmt.Fprintln(os.Stderr, warning)
			}
			return nil
		},
	}

	cmd.Version = version
	cmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output JSON")
	cmd.PersistentFlags().BoolVar(&yamlOutput, "yaml", false, "output YAML")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	cmd.AddCommand(
		newSrvCmd(cfg),
		newActorCmd(cfg, &jsonOutput),
		newIngestCmd(cfg, &jsonOutput),
		newEventCmd(cfg, &jsonOutput),
		newChainCmd(cfg, &jsonOutput),
		newExportCmd(cfg),
		newAnchorCmd(cfg, &jsonOutput),
		newProofCmd(cfg),
		newVerifyCmd(cfg, &jsonOutput),
		newInfoCmd(cfg, &jsonOutput),
		newConfigCmd(cfg),
		newAdminCmd(cfg),
	)

	return cmd
}
