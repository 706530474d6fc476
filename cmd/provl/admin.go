package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"provl/internal/auth"
	"provl/internal/config"
	"provl/internal/store"
)

func newAdminCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Administrative commands",
	}

	cmd.AddCommand(newAdminSetPasswordCmd(cfg))
	return cmd
}

// newAdminSetPasswordCmd writes the operator credential straight into the
// database, so it works whether or not a server is running.
func newAdminSetPasswordCmd(cfg *config.Config) *cobra.Command {
	var passwordStdin bool

	cmd := &cobra.Command{
		Use:   "set-password",
		Short: "Set the operator password that protects anchoring",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !passwordStdin {
				return fmt.Errorf("--password-stdin is required")
			}

			raw, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("read password from stdin: %w", err)
			}
			password := strings.TrimSpace(string(raw))
			if password == "" {
				return errors.New("empty password on stdin")
			}

			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}

			st, err := store.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.SetOperatorPassword(cmd.Context(), hash); err != nil {
				return err
			}
			return writePlain("operator password updated\n")
		},
	}

	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read password from stdin")
	return cmd
}
