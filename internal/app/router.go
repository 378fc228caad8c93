package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/milletflow/milletflow/internal/activity"
	"github.com/milletflow/milletflow/internal/ledger"
	"github.com/milletflow/milletflow/internal/masterdata/distributors"
	"github.com/milletflow/milletflow/internal/masterdata/products"
	"github.com/milletflow/milletflow/internal/masterdata/warehouses"
	"github.com/milletflow/milletflow/internal/observability"
	"github.com/milletflow/milletflow/internal/orders"
	"github.com/milletflow/milletflow/internal/sales"
	"github.com/milletflow/milletflow/internal/summary"
	"github.com/milletflow/milletflow/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger *slog.Logger
	Config *Config

	ProductHandler     *products.Handler
	WarehouseHandler   *warehouses.Handler
	DistributorHandler *distributors.Handler
	LedgerHandler      *ledger.Handler
	OrderHandler       *orders.Handler
	SalesHandler       *sales.Handler
	ActivityHandler    *activity.Handler
	SummaryHandler     *summary.Handler
	JobHandler         *jobs.Handler

	Metrics *observability.Metrics
}

// NewRouter constructs the chi.Router with application defaults.
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

	r.Get("/api/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/products", params.ProductHandler.Routes)
	r.Route("/api/warehouses", params.WarehouseHandler.Routes)
	r.Route("/api/distributors", params.DistributorHandler.Routes)
	r.Route("/api/stock", params.LedgerHandler.Routes)
	r.Route("/api/orders", params.OrderHandler.Routes)
	r.Route("/api/sales", params.SalesHandler.Routes)
	r.Route("/api/activity", params.ActivityHandler.Routes)
	r.Route("/api/admin/summary", params.SummaryHandler.Routes)
	if params.JobHandler != nil {
		r.Route("/api/admin/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
