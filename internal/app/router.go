package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tallydesk/tallydesk/internal/audit"
	"github.com/tallydesk/tallydesk/internal/gst"
	"github.com/tallydesk/tallydesk/internal/ledgers"
	"github.com/tallydesk/tallydesk/internal/observability"
	"github.com/tallydesk/tallydesk/internal/reports"
	"github.com/tallydesk/tallydesk/internal/search"
	"github.com/tallydesk/tallydesk/internal/tallysync"
	"github.com/tallydesk/tallydesk/internal/vouchers"
)

// RouterParams collects the handlers mounted on the API router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	Pool           *pgxpool.Pool
	Metrics        *observability.Metrics
	GSTHandler     *gst.Handler
	LedgerHandler  *ledgers.Handler
	VoucherHandler *vouchers.Handler
	ReportHandler  *reports.Handler
	SearchHandler  *search.Handler
	AuditHandler   *audit.Handler
	SyncHandler    *tallysync.Handler
}

// NewRouter constructs the chi.Router with TallyDesk defaults.
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
		status := `{"status":"ok"}`
		if params.Pool != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := params.Pool.Ping(ctx); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":"degraded","postgres":"unreachable"}`))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(status))
	})

	if params.Metrics != nil {
		r.Get("/metrics", params.Metrics.Handler().ServeHTTP)
	}

	r.Route("/api/v1", func(api chi.Router) {
		api.Route("/gst", params.GSTHandler.MountRoutes)
		api.Route("/ledgers", params.LedgerHandler.MountRoutes)
		api.Route("/vouchers", params.VoucherHandler.MountRoutes)
		api.Route("/reports", params.ReportHandler.MountRoutes)
		api.Route("/search", params.SearchHandler.MountRoutes)
		api.Route("/audit", params.AuditHandler.MountRoutes)
		api.Route("/sync", params.SyncHandler.MountRoutes)
	})

	return r
}
