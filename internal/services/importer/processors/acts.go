package processors

import (
	"context"

	"ledger_import/internal/logger"
	"ledger_import/internal/models"
	"ledger_import/internal/ports"
	"ledger_import/internal/services/normalizer"
)

type ActsStore interface {
	Table() string
	Replace(ctx context.Context, acts []models.Act) (int, error)
}

// ActsProcessor loads a documents ledger into its table, replacing
// whatever the previous run stored there.
type ActsProcessor struct {
	Store ActsStore
}

func (p ActsProcessor) Type() string { return p.Store.Table() }

func (p ActsProcessor) HeaderRows() int { return normalizer.ActHeaderRows }

func (p ActsProcessor) Process(ctx context.Context, grid [][]string) (ports.Outcome, error) {
	log := logger.Component(ctx, "acts")

	res := normalizer.NormalizeActs(grid)
	logWarnings(ctx, p.Type(), p.HeaderRows(), res.Warnings)

	out := ports.Outcome{
		Table:    p.Store.Table(),
		Rows:     len(res.Acts),
		Warnings: res.Warnings,
	}

	stored, err := p.Store.Replace(ctx, res.Acts)
	if err != nil {
		return out, err
	}
	out.Stored = stored

	log.Info().Str("table", out.Table).Int("rows", out.Rows).Int("warnings", len(out.Warnings)).Msg("acts replaced")
	return out, nil
}

func logWarnings(ctx context.Context, typ string, headerRows int, ws []normalizer.Warning) {
	log := logger.Component(ctx, typ)
	for _, w := range ws {
		log.Warn().
			Int("row", w.SheetRow(headerRows)).
			Int("column", w.Column+1).
			Str("field", w.Field).
			Str("value", w.Value).
			Msg(w.Reason)
	}
}
