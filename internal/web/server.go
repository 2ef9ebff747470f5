// Package web serves the catalog over HTTP: an htmx-driven browsing UI whose
// address bar mirrors the filter state, and a small JSON API.
package web

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/kamusis/skillcat/internal/catalog"
	"github.com/kamusis/skillcat/internal/logger"
	"github.com/kamusis/skillcat/internal/query"
)

// CatalogStore is the part of the catalog store the server needs.
// *store.Store satisfies it.
type CatalogStore interface {
	Load(ctx context.Context) (*catalog.Catalog, error)
	ClearCache(ctx context.Context) error
}

// Options configures a Server.
type Options struct {
	Addr    string
	PerPage int
	// Debounce is the client-side search delay.
	Debounce time.Duration
	// Timeout bounds each request.
	Timeout time.Duration
}

// Server is the web front end.
type Server struct {
	router chi.Router
	store  CatalogStore
	opts   Options
	tmpl   *template.Template
	server *http.Server
}

// NewServer builds the router and parses the embedded templates.
func NewServer(st CatalogStore, opts Options) (*Server, error) {
	if st == nil {
		return nil, errors.New("catalog store is nil")
	}
	if opts.PerPage <= 0 {
		opts.PerPage = query.DefaultPerPage
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Debounce <= 0 {
		opts.Debounce = 300 * time.Millisecond
	}

	tmpl, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("cannot parse templates: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		store:  st,
		opts:   opts,
		tmpl:   tmpl,
	}
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	r := s.router
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(HTMX)
	r.Use(RequestLogger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(s.opts.Timeout))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/", s.handleIndex)
	r.Get("/skills/{id}", s.handleSkill)

	r.Route("/api", func(r chi.Router) {
		r.Get("/catalog", s.handleAPICatalog)
		r.Get("/categories", s.handleAPICategories)
		r.Get("/skills", s.handleAPISkills)
		r.Get("/skills/{id}", s.handleAPISkill)
		r.Post("/cache/clear", s.handleAPIClearCache)
	})
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Start listens on Addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("web server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.G(ctx).Info("shutting down web server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}
