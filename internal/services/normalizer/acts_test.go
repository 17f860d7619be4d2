package normalizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// actRow builds an 18-column ledger row from column -> value pairs.
func actRow(cells map[int]string) []string {
	row := make([]string, 18)
	for i, v := range cells {
		row[i] = v
	}
	return row
}

func str(p *string) string {
	if p == nil {
		return "<nil>"
	}
	return *p
}

func TestNormalizeActs_SkipsSpacerRows(t *testing.T) {
	rows := [][]string{
		actRow(nil),
		actRow(map[int]string{ActColContractNumber: "K-1", ActColCreatedDate: "01-Jan-2024"}),
		{"", "", "  "},
		{},
	}

	res := NormalizeActs(rows)
	assert.Empty(t, res.Acts)
	assert.Empty(t, res.Warnings)
}

func TestNormalizeActs_CountMatchesNonEmptyRows(t *testing.T) {
	rows := [][]string{
		actRow(map[int]string{ActColProject: "P1", ActColContractor: "A"}),
		actRow(nil),
		actRow(map[int]string{ActColActNumber: "1"}),
		actRow(map[int]string{ActColActSum: "100"}),
		actRow(nil),
		actRow(map[int]string{ActColINN: "7701"}),
	}

	res := NormalizeActs(rows)
	assert.Len(t, res.Acts, 4)
}

func TestNormalizeActs_ContractorChangeResetsProject(t *testing.T) {
	rows := [][]string{
		actRow(map[int]string{ActColContractor: "A", ActColProject: "P1"}),
		actRow(map[int]string{ActColContractor: "A"}),
		actRow(map[int]string{ActColContractor: "B"}),
	}

	res := NormalizeActs(rows)
	require.Len(t, res.Acts, 3)

	assert.Equal(t, "P1", str(res.Acts[0].ProjectName))
	assert.Equal(t, "P1", str(res.Acts[1].ProjectName))
	assert.Nil(t, res.Acts[2].ProjectName)
	assert.Equal(t, "B", str(res.Acts[2].Contractor))
}

func TestNormalizeActs_SameRowINNAfterReset(t *testing.T) {
	rows := [][]string{
		actRow(map[int]string{ActColContractor: "A", ActColProject: "P1", ActColINN: "I1"}),
		actRow(map[int]string{ActColContractor: "B", ActColINN: "I2"}),
	}

	res := NormalizeActs(rows)
	require.Len(t, res.Acts, 2)

	assert.Equal(t, "I2", str(res.Acts[1].INN))
	assert.Nil(t, res.Acts[1].ProjectName)
}

func TestNormalizeActs_ContractorChangeWithNewProject(t *testing.T) {
	rows := [][]string{
		actRow(map[int]string{ActColContractor: "A", ActColProject: "P1", ActColINN: "I1"}),
		actRow(map[int]string{ActColContractor: "B", ActColProject: "P2"}),
	}

	res := NormalizeActs(rows)
	require.Len(t, res.Acts, 2)

	assert.Equal(t, "P2", str(res.Acts[1].ProjectName))
	assert.Equal(t, "B", str(res.Acts[1].Contractor))
	// no reset: the row names its own project, INN keeps carrying
	assert.Equal(t, "I1", str(res.Acts[1].INN))
}

func TestNormalizeActs_SameContractorKeepsINN(t *testing.T) {
	rows := [][]string{
		actRow(map[int]string{ActColContractor: "A", ActColProject: "P1", ActColINN: "I1"}),
		actRow(map[int]string{ActColContractor: "A", ActColActNumber: "7"}),
		actRow(map[int]string{ActColActNumber: "8"}),
	}

	res := NormalizeActs(rows)
	require.Len(t, res.Acts, 3)
	for _, a := range res.Acts {
		assert.Equal(t, "P1", str(a.ProjectName))
		assert.Equal(t, "A", str(a.Contractor))
		assert.Equal(t, "I1", str(a.INN))
	}
}

func TestNormalizeActs_FirstContractorCarriesProject(t *testing.T) {
	row1 := []string{"P1", "", "", "", "", "", "", "", "D1", "", "", "", "", "", ""}
	row2 := []string{"", "", "", "", "", "", "", "", "", "", "", "", "A1", "", "", "", "C1", "999"}

	res := NormalizeActs([][]string{row1, row2})
	require.Len(t, res.Acts, 2)

	first, second := res.Acts[0], res.Acts[1]
	assert.Equal(t, "P1", str(first.ProjectName))
	assert.Nil(t, first.Contractor)
	assert.Nil(t, first.INN)
	assert.Nil(t, first.CurrentDebt)

	assert.Equal(t, "P1", str(second.ProjectName))
	assert.Equal(t, "C1", str(second.Contractor))
	assert.Equal(t, "999", str(second.INN))
	assert.Equal(t, "A1", str(second.ActNumber))

	require.Len(t, res.Warnings, 1)
	w := res.Warnings[0]
	assert.Equal(t, 0, w.Row)
	assert.Equal(t, ActColCurrentDebt, w.Column)
	assert.Equal(t, "current_debt", w.Field)
	assert.Equal(t, "D1", w.Value)
	assert.Equal(t, 4, w.SheetRow(ActHeaderRows))
}

func TestNormalizeActs_ParsesFields(t *testing.T) {
	rows := [][]string{actRow(map[int]string{
		ActColProject:        "Office",
		ActColContractNumber: "K-17",
		ActColCurrentDebt:    "1,234.00 ₽",
		ActColActSum:         "500 ₽",
		ActColActNumber:      " 12 ",
		ActColCreatedDate:    "15-Jan-2024",
		ActColSignedDate:     "not a date",
		ActColContractor:     "ООО Ромашка",
		ActColINN:            "7701234567",
	})}

	res := NormalizeActs(rows)
	require.Len(t, res.Acts, 1)
	a := res.Acts[0]

	assert.Equal(t, "1234", a.CurrentDebt.String())
	assert.Equal(t, "500", a.ActSum.String())
	assert.Equal(t, "12", str(a.ActNumber))
	assert.Equal(t, "K-17", str(a.ContractNumber))
	require.NotNil(t, a.CreatedDate)
	assert.Equal(t, "2024-01-15", a.CreatedDate.Format("2006-01-02"))
	assert.Nil(t, a.SignedDate)

	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "signed_date", res.Warnings[0].Field)
}

func TestNormalizeActs_ShortRowsReadAsEmpty(t *testing.T) {
	rows := [][]string{
		{"P1"},
		{"", "", "", "", "", "", "", "", "", "", "", "", "42"},
	}

	res := NormalizeActs(rows)
	require.Len(t, res.Acts, 2)
	assert.Nil(t, res.Acts[0].Contractor)
	assert.Equal(t, "P1", str(res.Acts[1].ProjectName))
	assert.Equal(t, "42", str(res.Acts[1].ActNumber))
}

func TestNormalizeActs_RecordsDoNotShareCarriedValues(t *testing.T) {
	rows := [][]string{
		actRow(map[int]string{ActColProject: "P1"}),
		actRow(map[int]string{ActColActNumber: "2"}),
	}

	res := NormalizeActs(rows)
	require.Len(t, res.Acts, 2)

	*res.Acts[0].ProjectName = "changed"
	assert.Equal(t, "P1", str(res.Acts[1].ProjectName))
}

func TestCarryState_Advance(t *testing.T) {
	s := CarryState{}.Advance(Row(actRow(map[int]string{ActColContractor: "A", ActColProject: "P", ActColINN: "1"})))
	assert.Equal(t, "A", str(s.Contractor))

	// an INN change alone never resets the project
	s2 := s.Advance(Row(actRow(map[int]string{ActColINN: "2"})))
	assert.Equal(t, "P", str(s2.ProjectName))
	assert.Equal(t, "2", str(s2.INN))

	// the previous state is untouched
	assert.Equal(t, "1", str(s.INN))
}

func TestSkipRows(t *testing.T) {
	grid := [][]string{{"h1"}, {"h2"}, {"h3"}, {"d1"}}
	assert.Equal(t, [][]string{{"d1"}}, SkipRows(grid, ActHeaderRows))
	assert.Nil(t, SkipRows(grid, 10))
	assert.Equal(t, grid, SkipRows(grid, 0))
}
