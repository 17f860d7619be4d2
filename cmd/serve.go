package main

import (
	"context"
	"time"

	"ledger_import/internal/handlers"
	"ledger_import/internal/server"

	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP upload/import API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, a, err := bootstrap(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer a.close()

			checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			if err := a.cfg.CheckConnections(checkCtx); err != nil {
				return err
			}
			a.log.Info().Str("port", a.opts.Server.Port).Strs("types", a.importer.Types()).Msg("all connections OK")

			h := handlers.New(a.cfg, a.importer, a.tempDir, a.log)
			return server.NewServer(a.opts.Server.Port, a.opts.Server.APIToken, h).Run(ctx)
		},
	}
}
