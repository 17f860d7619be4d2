package sheetsync

import (
	"context"
	"errors"
	"fmt"

	"ledger_import/internal/config"
	"ledger_import/internal/logger"
	"ledger_import/internal/ports"
	"ledger_import/internal/services/importer"
)

type GridReader interface {
	Grid(ctx context.Context, sheet string) ([][]string, error)
}

type GridImporter interface {
	ImportGrid(ctx context.Context, typ string, grid [][]string, info ports.RunInfo) (importer.Result, error)
}

// Service pulls each configured worksheet and replaces its acts table.
type Service struct {
	Reader   GridReader
	Importer GridImporter
	Tabs     []config.TabBinding
}

// SyncAll processes every tab even when an earlier one fails; failures are
// joined into the returned error.
func (s *Service) SyncAll(ctx context.Context) ([]importer.Result, error) {
	log := logger.Component(ctx, "sheetsync")

	var (
		results []importer.Result
		errs    []error
	)
	for _, tab := range s.Tabs {
		res, err := s.Sync(ctx, tab)
		if err != nil {
			log.Error().Err(err).Str("sheet", tab.Sheet).Str("table", tab.Table).Msg("sync failed")
			errs = append(errs, err)
			continue
		}
		log.Info().
			Str("sheet", tab.Sheet).
			Str("table", tab.Table).
			Int("rows", res.Rows).
			Int("warnings", len(res.Warnings)).
			Msg("sheet synced")
		results = append(results, res)
	}
	return results, errors.Join(errs...)
}

func (s *Service) Sync(ctx context.Context, tab config.TabBinding) (importer.Result, error) {
	grid, err := s.Reader.Grid(ctx, tab.Sheet)
	if err != nil {
		return importer.Result{}, err
	}

	res, err := s.Importer.ImportGrid(ctx, tab.Table, grid, ports.RunInfo{
		Source: "sheets",
		Path:   tab.Sheet,
	})
	if err != nil {
		return res, fmt.Errorf("sheet %q -> %s: %w", tab.Sheet, tab.Table, err)
	}
	return res, nil
}
