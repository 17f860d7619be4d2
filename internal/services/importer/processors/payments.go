package processors

import (
	"context"

	"ledger_import/internal/logger"
	"ledger_import/internal/models"
	"ledger_import/internal/ports"
	"ledger_import/internal/services/normalizer"
)

type PaymentsStore interface {
	Table() string
	EnsureSchema(ctx context.Context) error
	Upsert(ctx context.Context, payments []models.Payment) (int, error)
}

// PaymentsProcessor appends bank statement lines, skipping ones already stored.
type PaymentsProcessor struct {
	Store PaymentsStore
}

func (p PaymentsProcessor) Type() string { return p.Store.Table() }

func (p PaymentsProcessor) HeaderRows() int { return normalizer.PaymentHeaderRows }

func (p PaymentsProcessor) Process(ctx context.Context, grid [][]string) (ports.Outcome, error) {
	log := logger.Component(ctx, "payments")

	res := normalizer.NormalizePayments(grid)
	logWarnings(ctx, p.Type(), p.HeaderRows(), res.Warnings)

	out := ports.Outcome{
		Table:    p.Store.Table(),
		Rows:     len(res.Payments),
		Warnings: res.Warnings,
	}

	if err := p.Store.EnsureSchema(ctx); err != nil {
		return out, err
	}

	stored, err := p.Store.Upsert(ctx, res.Payments)
	if err != nil {
		return out, err
	}
	out.Stored = stored

	log.Info().
		Str("table", out.Table).
		Int("rows", out.Rows).
		Int("inserted", stored).
		Int("duplicates", out.Rows-stored).
		Msg("payments upserted")
	return out, nil
}
