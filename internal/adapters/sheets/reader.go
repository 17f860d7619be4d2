package sheets

import (
	"context"
	"fmt"

	"ledger_import/internal/logger"

	"google.golang.org/api/sheets/v4"
)

// ValuesGetter fetches a range of formatted cell values. It is satisfied
// by ServiceGetter and by test fakes.
type ValuesGetter interface {
	GetValues(ctx context.Context, spreadsheetID, readRange string) ([][]interface{}, error)
}

type ServiceGetter struct {
	Service *sheets.Service
}

func (g ServiceGetter) GetValues(ctx context.Context, spreadsheetID, readRange string) ([][]interface{}, error) {
	resp, err := g.Service.Spreadsheets.Values.Get(spreadsheetID, readRange).
		ValueRenderOption("FORMATTED_VALUE").
		MajorDimension("ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

// Reader returns whole worksheets as grids of cell text.
type Reader struct {
	Getter        ValuesGetter
	SpreadsheetID string
}

func NewReader(svc *sheets.Service, spreadsheetID string) *Reader {
	return &Reader{Getter: ServiceGetter{Service: svc}, SpreadsheetID: spreadsheetID}
}

// Grid reads every row of the named worksheet, header rows included. The
// API omits trailing empty cells, so rows may have different lengths.
func (r *Reader) Grid(ctx context.Context, sheet string) ([][]string, error) {
	values, err := r.Getter.GetValues(ctx, r.SpreadsheetID, quoteSheet(sheet))
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	log := logger.Component(ctx, "sheets")
	log.Debug().Str("sheet", sheet).Int("rows", len(values)).Msg("fetched")

	return ValuesToGrid(values), nil
}

func ValuesToGrid(values [][]interface{}) [][]string {
	grid := make([][]string, len(values))
	for i, row := range values {
		cells := make([]string, len(row))
		for j, v := range row {
			if v == nil {
				continue
			}
			if s, ok := v.(string); ok {
				cells[j] = s
			} else {
				cells[j] = fmt.Sprint(v)
			}
		}
		grid[i] = cells
	}
	return grid
}

// quoteSheet wraps a worksheet title for A1 notation; inner quotes double.
func quoteSheet(name string) string {
	out := []rune{'\''}
	for _, r := range name {
		if r == '\'' {
			out = append(out, '\'')
		}
		out = append(out, r)
	}
	return string(append(out, '\''))
}
