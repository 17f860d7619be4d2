package normalizer

import "ledger_import/internal/models"

// Column offsets of the documents ledger.
const (
	ActColProject        = 0
	ActColContractNumber = 4
	ActColCurrentDebt    = 8
	ActColActSum         = 11
	ActColActNumber      = 12
	ActColCreatedDate    = 13
	ActColSignedDate     = 14
	ActColContractor     = 16
	ActColINN            = 17
)

// ActHeaderRows is the number of title rows above the first act.
const ActHeaderRows = 3

var actSignalColumns = []int{
	ActColProject, ActColCurrentDebt, ActColActSum,
	ActColActNumber, ActColContractor, ActColINN,
}

// CarryState holds the values that continue downward from the row they
// were entered on until something overrides them.
type CarryState struct {
	ProjectName *string
	Contractor  *string
	INN         *string
}

// Advance returns the state after reading one row. A contractor change on
// a row without its own project name starts an unrelated block, so the
// carried project and INN are dropped before the row's own cells apply.
func (s CarryState) Advance(row Row) CarryState {
	next := s

	if contractor := row.Cell(ActColContractor); contractor != "" {
		// the first contractor of a run never resets: the block above it
		// has no contractor to differ from
		if s.Contractor != nil && *s.Contractor != contractor && row.Cell(ActColProject) == "" {
			next.ProjectName = nil
			next.INN = nil
		}
		next.Contractor = &contractor
	}

	if project := row.Cell(ActColProject); project != "" {
		next.ProjectName = &project
	}

	if inn := row.Cell(ActColINN); inn != "" {
		next.INN = &inn
	}

	return next
}

type ActResult struct {
	Acts     []models.Act
	Warnings []Warning
}

// IsSpacer reports whether a row has nothing in any act signal column.
func IsSpacer(row Row) bool {
	return row.AllEmpty(actSignalColumns...)
}

// NormalizeActs folds the carry-forward state over rows (header rows
// already removed) and emits one Act per non-spacer row, in order.
func NormalizeActs(rows [][]string) ActResult {
	var (
		res   ActResult
		state CarryState
		warns collector
	)

	for i, raw := range rows {
		row := Row(raw)
		if IsSpacer(row) {
			continue
		}

		state = state.Advance(row)
		res.Acts = append(res.Acts, buildAct(state, row, i, &warns))
	}

	res.Warnings = warns.warnings
	return res
}

func buildAct(state CarryState, row Row, idx int, warns *collector) models.Act {
	debt, err := ParseCurrency(row.Cell(ActColCurrentDebt))
	warns.add(idx, ActColCurrentDebt, "current_debt", err)

	sum, err := ParseCurrency(row.Cell(ActColActSum))
	warns.add(idx, ActColActSum, "act_sum", err)

	created, err := ParseDate(row.Cell(ActColCreatedDate), ActDateLayout)
	warns.add(idx, ActColCreatedDate, "created_date", err)

	signed, err := ParseDate(row.Cell(ActColSignedDate), ActDateLayout)
	warns.add(idx, ActColSignedDate, "signed_date", err)

	return models.Act{
		ProjectName:    clone(state.ProjectName),
		CurrentDebt:    debt,
		ActSum:         sum,
		ActNumber:      nullIfEmpty(row.Cell(ActColActNumber)),
		Contractor:     clone(state.Contractor),
		INN:            clone(state.INN),
		ContractNumber: nullIfEmpty(row.Cell(ActColContractNumber)),
		CreatedDate:    created,
		SignedDate:     signed,
	}
}

func clone(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
