package importer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"ledger_import/internal/ports"
	"ledger_import/internal/services/normalizer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type memOpener struct {
	data []byte
	meta ports.Meta
	err  error
}

func (o memOpener) Open(context.Context, string) (io.ReadCloser, ports.Meta, error) {
	if o.err != nil {
		return nil, ports.Meta{}, o.err
	}
	return io.NopCloser(bytes.NewReader(o.data)), o.meta, nil
}

type recordingProcessor struct {
	header int
	got    [][]string
	warn   []normalizer.Warning
	err    error
}

func (p *recordingProcessor) Type() string    { return "ledger" }
func (p *recordingProcessor) HeaderRows() int { return p.header }

func (p *recordingProcessor) Process(_ context.Context, grid [][]string) (ports.Outcome, error) {
	p.got = grid
	return ports.Outcome{Table: "ledger", Rows: len(grid), Stored: len(grid), Warnings: p.warn}, p.err
}

type fakeJournal struct {
	beginErr error
	began    []ports.RunInfo
	warned   map[string]int
	finished []error
}

func (j *fakeJournal) Begin(_ context.Context, info ports.RunInfo) (string, error) {
	j.began = append(j.began, info)
	if j.beginErr != nil {
		return "", j.beginErr
	}
	return "rec-1", nil
}

func (j *fakeJournal) Warnings(_ context.Context, id, _ string, _ int, ws []normalizer.Warning) error {
	if j.warned == nil {
		j.warned = map[string]int{}
	}
	j.warned[id] += len(ws)
	return nil
}

func (j *fakeJournal) Finish(_ context.Context, _ string, _ ports.Outcome, runErr error) error {
	j.finished = append(j.finished, runErr)
	return nil
}

func xlsxBytes(t *testing.T, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestImport_XLSXSkipsHeaderRows(t *testing.T) {
	data := xlsxBytes(t, [][]any{
		{"title"},
		{"col a", "col b"},
		{"a1", "b1"},
		{"a2", "b2"},
	})
	proc := &recordingProcessor{header: 2}
	j := &fakeJournal{}
	svc := NewService(memOpener{data: data, meta: ports.Meta{Source: "s3", Bucket: "b", Key: "k.xlsx"}},
		map[string]ports.Processor{"ledger": proc}, j)

	res, err := svc.Import(context.Background(), Request{Type: "ledger", FilePath: "s3://b/k.xlsx"})
	require.NoError(t, err)

	assert.Equal(t, [][]string{{"a1", "b1"}, {"a2", "b2"}}, proc.got)
	assert.Equal(t, "xlsx", res.Format)
	assert.Equal(t, "rec-1", res.ImportRecordID)
	assert.Equal(t, 2, res.Rows)
	assert.Equal(t, "s3", res.Source)
	assert.Len(t, res.SHA256, 64)

	require.Len(t, j.began, 1)
	assert.Equal(t, "ledger", j.began[0].Type)
	assert.Equal(t, "k.xlsx", j.began[0].Key)
	assert.Equal(t, []error{nil}, j.finished)
}

func TestImport_CSVAndWarnings(t *testing.T) {
	proc := &recordingProcessor{
		header: 1,
		warn:   []normalizer.Warning{{Row: 0, Column: 1, Field: "amount", Value: "x"}},
	}
	j := &fakeJournal{}
	svc := NewService(memOpener{data: []byte("h1,h2\nx,1\ny,2,extra\n")},
		map[string]ports.Processor{"ledger": proc}, j)

	res, err := svc.Import(context.Background(), Request{Type: "ledger", FilePath: "/tmp/in.csv"})
	require.NoError(t, err)

	assert.Equal(t, "csv", res.Format)
	assert.Equal(t, [][]string{{"x", "1"}, {"y", "2", "extra"}}, proc.got)
	assert.Len(t, res.Warnings, 1)
	assert.Equal(t, 1, j.warned["rec-1"])
}

func TestImport_UnknownType(t *testing.T) {
	svc := NewService(memOpener{}, map[string]ports.Processor{}, nil)

	_, err := svc.Import(context.Background(), Request{Type: "nope"})
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestImport_OpenError(t *testing.T) {
	svc := NewService(memOpener{err: errors.New("404")},
		map[string]ports.Processor{"ledger": &recordingProcessor{}}, nil)

	_, err := svc.Import(context.Background(), Request{Type: "ledger", FilePath: "https://x/y.xlsx"})
	assert.ErrorContains(t, err, "404")
}

func TestImport_ProcessorErrorIsJournaled(t *testing.T) {
	boom := errors.New("insert failed")
	proc := &recordingProcessor{err: boom}
	j := &fakeJournal{}
	svc := NewService(memOpener{data: []byte("a,b\n")}, map[string]ports.Processor{"ledger": proc}, j)

	_, err := svc.Import(context.Background(), Request{Type: "ledger", FilePath: "x.csv"})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []error{boom}, j.finished)
}

func TestImportGrid_JournalFailureDoesNotFailRun(t *testing.T) {
	proc := &recordingProcessor{header: 1}
	j := &fakeJournal{beginErr: errors.New("mongo down")}
	svc := NewService(nil, map[string]ports.Processor{"ledger": proc}, j)

	res, err := svc.ImportGrid(context.Background(), "ledger",
		[][]string{{"hdr"}, {"v"}}, ports.RunInfo{Source: "sheets", Path: "Tab"})
	require.NoError(t, err)

	assert.Equal(t, [][]string{{"v"}}, proc.got)
	assert.Equal(t, "sheets", res.Source)
	assert.Equal(t, "ledger", j.began[0].Type)
}

func TestTypes(t *testing.T) {
	svc := NewService(nil, map[string]ports.Processor{"b": nil, "a": nil}, nil)
	assert.Equal(t, []string{"a", "b"}, svc.Types())
}

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, "xlsx", detectFormat("s3://b/k/file.XLSX", ""))
	assert.Equal(t, "csv", detectFormat("https://h/p.csv?x=1", ""))
	assert.Equal(t, "csv", detectFormat("blob", "text/csv; charset=utf-8"))
	assert.Equal(t, "", detectFormat("blob", ""))
}
