package importer

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/url"
	"path"
	"sort"
	"strings"
	"time"

	"ledger_import/internal/logger"
	"ledger_import/internal/ports"
	"ledger_import/internal/services/normalizer"

	"github.com/xuri/excelize/v2"
)

var ErrUnknownType = errors.New("unknown import type")

type Request struct {
	Type           string
	FilePath       string
	ImportRecordID string
}

type Result struct {
	ImportRecordID string
	Type           string
	Table          string
	Source         string
	FilePath       string
	Format         string
	Rows           int
	Stored         int
	Warnings       []normalizer.Warning
	SHA256         string
	ContentType    string
	Bucket         string
	Key            string
	SizeBytes      int64
}

type Service struct {
	Opener     ports.FileOpener
	Processors map[string]ports.Processor
	Journal    ports.Journal
}

func NewService(opener ports.FileOpener, registry map[string]ports.Processor, journal ports.Journal) *Service {
	if journal == nil {
		journal = ports.NopJournal{}
	}
	return &Service{Opener: opener, Processors: registry, Journal: journal}
}

// Types lists the registered import types in stable order.
func (s *Service) Types() []string {
	out := make([]string, 0, len(s.Processors))
	for k := range s.Processors {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (s *Service) processor(typ string) (ports.Processor, error) {
	proc, ok := s.Processors[typ]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, typ)
	}
	return proc, nil
}

// Import opens the file behind req.FilePath, reads its first sheet (or CSV
// body) into a grid and hands it to the processor registered for req.Type.
func (s *Service) Import(ctx context.Context, req Request) (Result, error) {
	log := logger.Component(ctx, "importer")
	t0 := time.Now()

	proc, err := s.processor(req.Type)
	if err != nil {
		return Result{}, err
	}

	rc, meta, err := s.Opener.Open(ctx, req.FilePath)
	if err != nil {
		return Result{}, fmt.Errorf("open %s: %w", req.FilePath, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return Result{}, fmt.Errorf("read %s: %w", req.FilePath, err)
	}
	sum := sha256.Sum256(data)

	format := detectFormat(req.FilePath, meta.ContentType)
	grid, format, err := readGrid(data, format)
	if err != nil {
		return Result{}, err
	}

	log.Info().
		Str("type", req.Type).
		Str("path", req.FilePath).
		Str("source", meta.Source).
		Str("format", format).
		Int("lines", len(grid)).
		Msg("file read")

	res, err := s.run(ctx, proc, grid, ports.RunInfo{
		ImportRecordID: req.ImportRecordID,
		Type:           req.Type,
		Source:         meta.Source,
		Path:           req.FilePath,
		Bucket:         meta.Bucket,
		Key:            meta.Key,
		SizeBytes:      meta.Size,
	})
	res.FilePath = req.FilePath
	res.Source = meta.Source
	res.Format = format
	res.SHA256 = hex.EncodeToString(sum[:])
	res.ContentType = meta.ContentType
	res.Bucket = meta.Bucket
	res.Key = meta.Key
	res.SizeBytes = meta.Size

	if err != nil {
		log.Error().Err(err).Str("type", req.Type).Dur("took", time.Since(t0)).Msg("import failed")
		return res, err
	}
	log.Info().
		Str("type", req.Type).
		Int("rows", res.Rows).
		Int("stored", res.Stored).
		Int("warnings", len(res.Warnings)).
		Dur("took", time.Since(t0)).
		Msg("import done")
	return res, nil
}

// ImportGrid processes an already fetched grid, header rows included.
func (s *Service) ImportGrid(ctx context.Context, typ string, grid [][]string, info ports.RunInfo) (Result, error) {
	proc, err := s.processor(typ)
	if err != nil {
		return Result{}, err
	}
	info.Type = typ
	res, err := s.run(ctx, proc, grid, info)
	res.Source = info.Source
	res.FilePath = info.Path
	return res, err
}

func (s *Service) run(ctx context.Context, proc ports.Processor, grid [][]string, info ports.RunInfo) (Result, error) {
	log := logger.Component(ctx, "importer")

	recordID, err := s.Journal.Begin(ctx, info)
	if err != nil {
		log.Error().Err(err).Msg("journal begin")
		recordID = info.ImportRecordID
	}

	rows := normalizer.SkipRows(grid, proc.HeaderRows())
	out, runErr := proc.Process(ctx, rows)

	if len(out.Warnings) > 0 && recordID != "" {
		if err := s.Journal.Warnings(ctx, recordID, proc.Type(), proc.HeaderRows(), out.Warnings); err != nil {
			log.Error().Err(err).Str("import_record_id", recordID).Msg("journal warnings")
		}
	}
	if err := s.Journal.Finish(ctx, recordID, out, runErr); err != nil {
		log.Error().Err(err).Str("import_record_id", recordID).Msg("journal finish")
	}

	return Result{
		ImportRecordID: recordID,
		Type:           info.Type,
		Table:          out.Table,
		Rows:           out.Rows,
		Stored:         out.Stored,
		Warnings:       out.Warnings,
	}, runErr
}

// readGrid tries the detected format first and falls back to the other one.
func readGrid(data []byte, format string) ([][]string, string, error) {
	order := []string{"xlsx", "csv"}
	if format == "csv" {
		order = []string{"csv", "xlsx"}
	}

	var errs []error
	for _, f := range order {
		var (
			grid [][]string
			err  error
		)
		switch f {
		case "xlsx":
			grid, err = readXLSXFirstSheet(data)
		case "csv":
			grid, err = readCSV(data)
		}
		if err == nil {
			return grid, f, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", f, err))
	}
	return nil, "", fmt.Errorf("unreadable file: %w", errors.Join(errs...))
}

func readXLSXFirstSheet(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("xlsx has no sheets")
	}
	return f.GetRows(sheets[0])
}

func readCSV(data []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	return r.ReadAll()
}

func detectFormat(filePath, contentType string) string {
	p := filePath
	if u, err := url.Parse(filePath); err == nil && u != nil && u.Path != "" {
		p = u.Path
	}
	switch strings.ToLower(strings.TrimPrefix(path.Ext(p), ".")) {
	case "xlsx":
		return "xlsx"
	case "csv":
		return "csv"
	}
	med, _, _ := mime.ParseMediaType(contentType)
	switch med {
	case "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":
		return "xlsx"
	case "text/csv", "application/csv", "text/plain":
		return "csv"
	}
	return ""
}
