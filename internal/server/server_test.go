package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"ledger_import/internal/handlers"
	importitems "ledger_import/internal/repository/imports"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

type records struct{}

func (records) Insert(context.Context, importitems.Record) (string, error) { return "", nil }

func (records) Find(_ context.Context, id string) (importitems.Record, error) {
	return importitems.Record{ID: id}, nil
}

func (records) List(context.Context, string, int64, int64) ([]importitems.Record, int64, error) {
	return nil, 0, nil
}

func TestRoutes(t *testing.T) {
	h := &handlers.Handlers{Records: records{}, Logger: zerolog.Nop()}
	srv := httptest.NewServer(Routes("secret", h))
	defer srv.Close()

	get := func(path, token string) int {
		req, _ := http.NewRequest(http.MethodGet, srv.URL+path, nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusOK, get("/health", ""))
	assert.Equal(t, http.StatusUnauthorized, get("/imports", ""))
	assert.Equal(t, http.StatusOK, get("/imports", "secret"))
	assert.Equal(t, http.StatusOK, get("/imports/abc", "secret"))
	assert.Equal(t, http.StatusUnauthorized, get("/upload", "wrong"))
	assert.Equal(t, http.StatusMethodNotAllowed, get("/upload", "secret"))
}
