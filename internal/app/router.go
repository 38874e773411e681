package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	importhttp "github.com/meridian-oms/meridian-oms/internal/leadimport/http"
	"github.com/meridian-oms/meridian-oms/internal/masterdata/cities"
	"github.com/meridian-oms/meridian-oms/internal/masterdata/products"
	"github.com/meridian-oms/meridian-oms/internal/sales/customers"
	"github.com/meridian-oms/meridian-oms/internal/sales/orders"
	"github.com/meridian-oms/meridian-oms/internal/users"
	"github.com/meridian-oms/meridian-oms/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	ImportHandler    *importhttp.Handler
	ProductsHandler  *products.Handler
	CitiesHandler    *cities.Handler
	CustomersHandler *customers.Handler
	OrdersHandler    *orders.Handler
	UsersHandler     *users.Handler
	JobsHandler      *jobs.Handler
}

// NewRouter constructs the chi.Router with Meridian defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.ImportHandler != nil {
		r.Route("/imports", params.ImportHandler.MountRoutes)
	}
	if params.ProductsHandler != nil {
		r.Route("/masterdata/products", params.ProductsHandler.MountRoutes)
	}
	if params.CitiesHandler != nil {
		r.Route("/masterdata/cities", params.CitiesHandler.MountRoutes)
	}
	if params.CustomersHandler != nil {
		r.Route("/sales/customers", params.CustomersHandler.MountRoutes)
	}
	if params.OrdersHandler != nil {
		r.Route("/sales/orders", params.OrdersHandler.MountRoutes)
	}
	if params.UsersHandler != nil {
		r.Route("/users", params.UsersHandler.MountRoutes)
	}
	if params.JobsHandler != nil {
		r.Route("/jobs", params.JobsHandler.MountRoutes)
	}

	return r
}
