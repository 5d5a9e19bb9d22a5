// Package api exposes the charge generator, the importer and the reports
// over HTTP so they can be triggered without the CLI.
package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/beesaferoot/imobipro/internal/backup"
	"github.com/beesaferoot/imobipro/internal/billing"
	"github.com/beesaferoot/imobipro/internal/importer"
	"github.com/beesaferoot/imobipro/internal/store"
)

const maxUploadBytes = 32 << 20

// Deps holds the components the handlers delegate to. Backups may be nil.
type Deps struct {
	Store      store.Store
	Generator  *billing.Generator
	Importer   *importer.Importer
	Backups    *backup.Service
	BackupKeep int
	Logger     *log.Logger
}

// Server holds the handler dependencies.
type Server struct {
	store      store.Store
	gen        *billing.Generator
	importer   *importer.Importer
	backups    *backup.Service
	backupKeep int
	log        *log.Logger
	now        func() time.Time
}

// New returns a Server for deps.
func New(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		store:      deps.Store,
		gen:        deps.Generator,
		importer:   deps.Importer,
		backups:    deps.Backups,
		backupKeep: deps.BackupKeep,
		log:        logger,
		now:        time.Now,
	}
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/expenses", func(r chi.Router) {
		r.Post("/property-tax", s.generatePropertyTax)
		r.Post("/condo", s.generateCondo)
		r.Post("/{id}/pay", s.payExpense)
	})
	r.Route("/receipts", func(r chi.Router) {
		r.Post("/billing", s.generateBilling)
		r.Post("/{id}/receive", s.receiveReceipt)
	})
	r.Route("/reports", func(r chi.Router) {
		r.Get("/pending-expenses", s.pendingExpenses)
		r.Get("/pending-expenses.xlsx", s.pendingExpensesXLSX)
	})
	r.Post("/imports", s.importUpload)
	r.Get("/runs", s.listRuns)
	r.Route("/backups", func(r chi.Router) {
		r.Get("/", s.listBackups)
		r.Post("/", s.createBackup)
	})

	return r
}

// ListenAndServe serves the routes on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Printf("api: listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
