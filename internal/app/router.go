package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/gemlot/gemlot/internal/catalog"
	"github.com/gemlot/gemlot/internal/consignment"
	"github.com/gemlot/gemlot/internal/expenses"
	"github.com/gemlot/gemlot/internal/observability"
	"github.com/gemlot/gemlot/internal/pos"
	"github.com/gemlot/gemlot/internal/reports"
	"github.com/gemlot/gemlot/internal/suppliers"
	"github.com/gemlot/gemlot/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	SupplierHandler    *suppliers.Handler
	CatalogHandler     *catalog.Handler
	ExpenseHandler     *expenses.Handler
	POSHandler         *pos.Handler
	ConsignmentHandler *consignment.Handler
	ReportHandler      *reports.Handler
	JobHandler         *jobs.Handler
	Metrics            *observability.Metrics
}

// NewRouter constructs the chi.Router with Gemlot defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/suppliers", params.SupplierHandler.MountRoutes)
	r.Route("/products", params.CatalogHandler.MountRoutes)
	r.Route("/expenses", params.ExpenseHandler.MountRoutes)
	r.Route("/pos", params.POSHandler.MountRoutes)
	r.Route("/consignments", params.ConsignmentHandler.MountRoutes)
	r.Route("/reports", params.ReportHandler.MountRoutes)
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
