package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"provl/internal/anchors"
	"provl/internal/cas"
	"provl/internal/config"
	"provl/internal/provenance"
	"provl/internal/server"
	"provl/internal/store"
)

func newSrvCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "srv",
		Short: "Run the provl API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg == nil {
				return fmt.Errorf("config not initialized")
			}
			if cfg.DBPath == "" {
				return fmt.Errorf("db path is required")
			}

			logger := slog.Default().With("component", "server")

			addr, err := server.ListenAddr(cfg.APIURL)
			if err != nil {
				return err
			}

			logger.Info("opening database", "path", cfg.DBPath)
			st, err := store.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			defer st.Close()

			blobs, err := cas.NewLocal(cfg.CASRoot)
			if err != nil {
				return err
			}
			ledger, err := anchors.NewLedger(cfg.AnchorsPath)
			if err != nil {
				return err
			}

			svc := provenance.New(st, blobs, ledger, slog.Default().With("component", "provenance"))

			srv := server.New(addr, svc, server.Options{
				DBPath:             cfg.DBPath,
				MaxUploadBytes:     cfg.Upload.MaxUploadBytes,
				MultipartMaxMemory: cfg.Upload.MultipartMaxMemory,
			}, logger)

			return srv.ListenAndServe()
		},
	}
}
