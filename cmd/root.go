package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"ledger_import/internal/adapters/opener"
	"ledger_import/internal/config"
	"ledger_import/internal/logger"
	importitems "ledger_import/internal/repository/imports"
	"ledger_import/internal/services/importer"
	"ledger_import/internal/services/importer/processors"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "ledger-import",
		Short:        "Load acts and payments spreadsheets into PostgreSQL",
		SilenceUsage: true,
	}
	cmd.AddCommand(newServeCmd(), newSyncActsCmd(), newImportFileCmd(), newBotCmd())
	return cmd
}

type app struct {
	opts     *config.Options
	cfg      *config.Config
	log      zerolog.Logger
	tabs     []config.TabBinding
	tempDir  string
	importer *importer.Service
}

// bootstrap loads configuration, opens connections and wires the importer.
// With confine set, local files are only readable from the temp dir.
func bootstrap(ctx context.Context, confine bool) (context.Context, *app, error) {
	opts, err := config.Load()
	if err != nil {
		return ctx, nil, err
	}

	log := logger.New(opts.LogLevel)
	ctx = logger.WithContext(ctx, log)

	tabs, err := opts.Sheets.TabBindings()
	if err != nil {
		return ctx, nil, err
	}

	setupCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cfg, err := config.Init(setupCtx, opts)
	if err != nil {
		return ctx, nil, err
	}
	log.Info().Bool("mongo", cfg.Mongo != nil).Bool("s3", cfg.S3 != nil).Msg("connections established")

	tempDir := opts.Server.TempDir
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	if err := os.MkdirAll(tempDir, 0o755); err != nil {
		cfg.Close(ctx)
		return ctx, nil, fmt.Errorf("temp dir: %w", err)
	}

	tables := make([]string, 0, len(tabs))
	for _, t := range tabs {
		tables = append(tables, t.Table)
	}
	registry, err := processors.DefaultRegistry(cfg.Postgres.Pool, tables)
	if err != nil {
		cfg.Close(ctx)
		return ctx, nil, err
	}

	localRoot := ""
	if confine {
		localRoot = tempDir
	}
	var s3Op *opener.S3Opener
	bucket := ""
	if cfg.S3 != nil {
		s3Op = opener.NewS3Opener(cfg.S3.Client)
		bucket = cfg.S3.Bucket
	}
	open := opener.NewCompoundOpener(
		opener.NewHTTPOpener(&http.Client{Timeout: 5 * time.Minute}),
		s3Op,
		opener.NewLocalOpener(localRoot),
		bucket,
	)

	return ctx, &app{
		opts:     opts,
		cfg:      cfg,
		log:      log,
		tabs:     tabs,
		tempDir:  tempDir,
		importer: importer.NewService(open, registry, importitems.NewJournal(cfg.Mongo)),
	}, nil
}

func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	a.cfg.Close(ctx)
}
