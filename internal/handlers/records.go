package handlers

import (
	"net/http"
	"strconv"
)

func (h *Handlers) ListImports(w http.ResponseWriter, r *http.Request) {
	if h.Records == nil {
		h.JSON(w, http.StatusServiceUnavailable, map[string]string{"error": "import journal disabled"})
		return
	}

	q := r.URL.Query()
	limit := parseInt64(q.Get("limit"), 50)
	skip := parseInt64(q.Get("skip"), 0)

	recs, total, err := h.Records.List(r.Context(), q.Get("type"), limit, skip)
	if err != nil {
		h.Logger.Error().Err(err).Msg("list imports")
		h.JSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	h.JSON(w, http.StatusOK, map[string]any{"items": recs, "total": total})
}

func (h *Handlers) GetImport(w http.ResponseWriter, r *http.Request) {
	if h.Records == nil {
		h.JSON(w, http.StatusServiceUnavailable, map[string]string{"error": "import journal disabled"})
		return
	}

	rec, err := h.Records.Find(r.Context(), r.PathValue("id"))
	if err != nil {
		h.JSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	h.JSON(w, http.StatusOK, rec)
}

func parseInt64(raw string, def int64) int64 {
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		return def
	}
	return v
}
