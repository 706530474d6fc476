package main

import (
	"errors"

	"github.com/spf13/cobra"

	"provl/internal/api"
	"provl/internal/config"
)

func newActorCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "actor",
		Short: "Manage signing actors",
	}

	cmd.AddCommand(
		newActorCreateCmd(cfg, jsonOutput),
		newActorShowCmd(cfg, jsonOutput),
		newActorListCmd(cfg, jsonOutput),
		newActorKeygenCmd(cfg, jsonOutput),
	)
	return cmd
}

func newActorCreateCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var (
		name      string
		publicKey string
	)

	cmd := &cobra.Command{
		Use:   "create <actor-id>",
		Short: "Register an actor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" {
				return errors.New("--name is required")
			}

			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.CreateActor(cmd.Context(), api.ActorCreateRequest{
					ActorID:   args[0],
					Name:      name,
					PublicKey: publicKey,
				})
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeStructured(resp)
				}
				return writeActorDetail(resp)
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name of the institution or curator (required)")
	cmd.Flags().StringVar(&publicKey, "public-key", "", "hex Ed25519 public key; omitted keys are derived server-side")
	return cmd
}

func newActorShowCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "show <actor-id>",
		Short: "Show a registered actor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.GetActor(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeStructured(resp)
				}
				return writeActorDetail(resp)
			})
		},
	}
}

func newActorListCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered actors",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.ListActors(cmd.Context())
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeStructured(resp)
				}
				for _, actor := range resp {
					if err := writePlain("%s\t%s\n", actor.ActorID, actor.Name); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func newActorKeygenCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Generate a fresh Ed25519 keypair",
		Long:  "Generate a keypair without registering anything. Register the public half with 'actor create --public-key' and keep the private half safe.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.Keygen(cmd.Context())
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeStructured(resp)
				}
				_ = writePlain("public_key: %s\n", resp.PublicKey)
				return writePlain("private_key: %s\n", resp.PrivateKey)
			})
		},
	}
}
