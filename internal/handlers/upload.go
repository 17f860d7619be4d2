package handlers

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"ledger_import/internal/logger"
	importitems "ledger_import/internal/repository/imports"
	"ledger_import/internal/services/importer"

	"github.com/google/uuid"
)

// Upload accepts multipart/form-data with `file` and `type` fields, archives
// the file in S3, imports it synchronously from a temp copy and replies with
// the outcome. The temp copy is removed on every path.
func (h *Handlers) Upload(w http.ResponseWriter, r *http.Request) {
	// CORS preflight support for simple usage from frontend apps
	if r.Method == http.MethodOptions {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if r.Method != http.MethodPost {
		h.JSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "use POST"})
		return
	}
	w.Header().Set("Access-Control-Allow-Origin", "*")

	if err := r.ParseMultipartForm(128 << 20); err != nil {
		h.Logger.Warn().Err(err).Msg("upload: parse multipart")
		h.JSON(w, http.StatusBadRequest, map[string]any{"error": "bad multipart: " + err.Error()})
		return
	}

	typ := strings.TrimSpace(r.FormValue("type"))
	if typ == "" {
		typ = strings.TrimSpace(r.FormValue("action"))
	}
	if typ == "" {
		h.JSON(w, http.StatusBadRequest, map[string]any{"error": "type is required"})
		return
	}

	f, fh, err := r.FormFile("file")
	if err != nil {
		h.JSON(w, http.StatusBadRequest, map[string]any{"error": "file is required"})
		return
	}
	defer f.Close()

	fname := path.Base(fh.Filename)
	ctx := logger.WithContext(r.Context(), h.Logger)

	tmp, err := os.CreateTemp(h.TempDir, "upload-*"+strings.ToLower(filepath.Ext(fname)))
	if err != nil {
		h.Logger.Error().Err(err).Msg("upload: temp file")
		h.JSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
		return
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	size, err := io.Copy(tmp, f)
	if err != nil {
		h.JSON(w, http.StatusInternalServerError, map[string]any{"error": "failed to store file: " + err.Error()})
		return
	}

	rec := importitems.Record{
		Status:    importitems.StatusParsed,
		Type:      typ,
		Source:    "upload",
		Path:      &fname,
		SizeBytes: &size,
	}

	if h.Archive != nil {
		if _, err := tmp.Seek(0, io.SeekStart); err != nil {
			h.JSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
			return
		}
		key := "imports/" + uuid.NewString() + "-" + fname
		s3path, err := h.Archive.Put(ctx, key, tmp, size, fh.Header.Get("Content-Type"))
		if err != nil {
			h.Logger.Error().Err(err).Str("key", key).Msg("upload: s3 put")
			h.JSON(w, http.StatusInternalServerError, map[string]any{"error": "failed to store file: " + err.Error()})
			return
		}
		rec.Path = &s3path
		rec.Key = &key
	}

	var recordID string
	if h.Records != nil {
		if recordID, err = h.Records.Insert(ctx, rec); err != nil {
			h.Logger.Error().Err(err).Msg("upload: import record")
			recordID = ""
		}
	}

	if err := tmp.Close(); err != nil {
		h.JSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
		return
	}

	res, err := h.Importer.Import(ctx, importer.Request{
		Type:           typ,
		FilePath:       "file://" + tmp.Name(),
		ImportRecordID: recordID,
	})
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, importer.ErrUnknownType) {
			code = http.StatusBadRequest
		}
		h.JSON(w, code, map[string]any{"error": err.Error(), "import_record_id": recordID})
		return
	}

	body := resultBody(res)
	if rec.Key != nil {
		body["path"] = *rec.Path
	}
	h.JSON(w, http.StatusOK, body)
}
