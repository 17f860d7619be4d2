package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"ledger_import/internal/handlers"
	"ledger_import/internal/logger"
	"ledger_import/internal/transport/auth"
)

type Server struct {
	httpServer *http.Server
}

func NewServer(port, apiToken string, h *handlers.Handlers) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%s", port),
			Handler:      Routes(apiToken, h),
			ReadTimeout:  15 * time.Minute,
			WriteTimeout: 30 * time.Minute,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// Routes builds the mux; everything but /health sits behind the API token.
func Routes(apiToken string, h *handlers.Handlers) http.Handler {
	mux := http.NewServeMux()
	if h == nil {
		return mux
	}

	guard := auth.TokenMiddleware(apiToken)

	mux.HandleFunc("/health", h.Health)
	mux.Handle("/import", guard(http.HandlerFunc(h.Import)))
	mux.Handle("/upload", guard(http.HandlerFunc(h.Upload)))
	mux.Handle("GET /imports", guard(http.HandlerFunc(h.ListImports)))
	mux.Handle("GET /imports/{id}", guard(http.HandlerFunc(h.GetImport)))

	return withLogger(h, mux)
}

func withLogger(h *handlers.Handlers, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r.WithContext(logger.WithContext(r.Context(), h.Logger)))
		h.Logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("took", time.Since(start)).
			Msg("request")
	})
}

func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shCtx)
	case err := <-errCh:
		return err
	}
}
