package ports

import (
	"context"

	"ledger_import/internal/services/normalizer"
)

// Outcome summarizes one processed grid.
type Outcome struct {
	Table    string
	Rows     int
	Stored   int
	Warnings []normalizer.Warning
}

// Processor normalizes a grid (header rows already removed) and persists
// the records into its destination table.
type Processor interface {
	Type() string
	HeaderRows() int
	Process(ctx context.Context, grid [][]string) (Outcome, error)
}
