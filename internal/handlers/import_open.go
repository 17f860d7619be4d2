package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"ledger_import/internal/logger"
	"ledger_import/internal/services/importer"
)

type importRequest struct {
	Type           string `json:"type"`
	FilePath       string `json:"file_path"`
	TimeoutMin     int    `json:"timeout_minutes,omitempty"`
	ImportRecordID string `json:"import_record_id"`
}

// Import starts a background run for a file that is already reachable
// (s3://, https:// or a key in the default bucket).
func (h *Handlers) Import(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.JSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "use POST"})
		return
	}

	var req importRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(&req); err != nil {
		h.Logger.Warn().Err(err).Msg("import: bad JSON")
		h.JSON(w, http.StatusBadRequest, map[string]string{"error": "bad JSON: " + err.Error()})
		return
	}
	if strings.TrimSpace(req.FilePath) == "" {
		h.JSON(w, http.StatusBadRequest, map[string]string{"error": "file_path is required"})
		return
	}
	if strings.TrimSpace(req.Type) == "" {
		h.JSON(w, http.StatusBadRequest, map[string]string{"error": "type is required"})
		return
	}

	timeout := h.ImportTimeout
	if req.TimeoutMin > 0 {
		timeout = time.Duration(req.TimeoutMin) * time.Minute
	}
	if timeout <= 0 {
		timeout = 15 * time.Minute
	}

	go h.runBackground(req, timeout)

	h.JSON(w, http.StatusAccepted, map[string]any{
		"status":           "started",
		"type":             req.Type,
		"file_path":        req.FilePath,
		"import_record_id": req.ImportRecordID,
	})
}

func (h *Handlers) runBackground(req importRequest, timeout time.Duration) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(logger.WithContext(context.Background(), h.Logger), timeout)
	defer cancel()

	res, err := h.Importer.Import(ctx, importer.Request{
		Type:           req.Type,
		FilePath:       req.FilePath,
		ImportRecordID: req.ImportRecordID,
	})
	if err != nil {
		h.Logger.Error().Err(err).
			Str("type", req.Type).
			Str("path", req.FilePath).
			Dur("took", time.Since(start)).
			Msg("background import failed")
		return
	}

	h.Logger.Info().
		Str("type", req.Type).
		Str("source", res.Source).
		Str("format", res.Format).
		Int("rows", res.Rows).
		Int("stored", res.Stored).
		Str("bucket", res.Bucket).
		Str("key", res.Key).
		Dur("took", time.Since(start)).
		Msg("background import done")
}
