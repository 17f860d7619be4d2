package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"ledger_import/internal/config"
	importitems "ledger_import/internal/repository/imports"
	"ledger_import/internal/services/importer"

	"github.com/rs/zerolog"
)

type Importer interface {
	Import(ctx context.Context, req importer.Request) (importer.Result, error)
}

// Archive keeps a copy of every uploaded file.
type Archive interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
}

type RecordStore interface {
	Insert(ctx context.Context, rec importitems.Record) (string, error)
	Find(ctx context.Context, id string) (importitems.Record, error)
	List(ctx context.Context, typ string, limit, skip int64) ([]importitems.Record, int64, error)
}

type Handlers struct {
	Importer Importer
	Archive  Archive
	Records  RecordStore
	Check    func(ctx context.Context) error

	TempDir       string
	ImportTimeout time.Duration

	Logger zerolog.Logger
}

// New wires handlers to the open connections; Archive and Records stay nil
// when S3 or Mongo is disabled.
func New(cfg *config.Config, imp Importer, tempDir string, log zerolog.Logger) *Handlers {
	h := &Handlers{
		Importer:      imp,
		Check:         cfg.CheckConnections,
		TempDir:       tempDir,
		ImportTimeout: 15 * time.Minute,
		Logger:        log.With().Str("component", "http").Logger(),
	}
	if cfg.S3 != nil {
		h.Archive = cfg.S3
	}
	if cfg.Mongo != nil {
		h.Records = importitems.Store{MG: cfg.Mongo}
	}
	return h
}

func (h *Handlers) JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func resultBody(res importer.Result) map[string]any {
	return map[string]any{
		"status":           "ok",
		"type":             res.Type,
		"table":            res.Table,
		"rows":             res.Rows,
		"stored":           res.Stored,
		"warnings":         len(res.Warnings),
		"import_record_id": res.ImportRecordID,
	}
}
