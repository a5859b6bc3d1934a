package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/harlowprint/backoffice-backend/api/controllers"
	"github.com/harlowprint/backoffice-backend/api/middleware"
	"github.com/harlowprint/backoffice-backend/internal/categories"
	"github.com/harlowprint/backoffice-backend/internal/files"
	"github.com/harlowprint/backoffice-backend/internal/metafields"
	"github.com/harlowprint/backoffice-backend/internal/pricing"
	"github.com/harlowprint/backoffice-backend/internal/products"
	"github.com/harlowprint/backoffice-backend/internal/runstream"
	"github.com/harlowprint/backoffice-backend/pkg/config"
	"github.com/harlowprint/backoffice-backend/pkg/logger"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Cfg    *config.Config
	Logger *logger.Logger

	DB       controllers.Pinger
	Redis    controllers.Pinger
	Platform controllers.Pinger

	Products   products.Service
	Pricing    pricing.Service
	Metafields metafields.Service
	Files      files.Service
	Categories categories.Service

	RunHub     *runstream.Hub
	RunHistory controllers.RunHistory

	MetricsGatherer prometheus.Gatherer
}

func NewRouter(deps Deps) http.Handler {
	cfg, logg := deps.Cfg, deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis, deps.Platform))
	})

	if deps.MetricsGatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.MetricsGatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(deps.Products, logg))
			r.Post("/", controllers.CreateProduct(deps.Products, logg))
			r.Get("/{productID}", controllers.GetProduct(deps.Products, logg))
			r.Get("/{productID}/prices", controllers.GetProductPrices(deps.Products, logg))
		})

		r.Route("/pricing", func(r chi.Router) {
			r.Post("/run", controllers.RunPricing(deps.Pricing, deps.RunHub, logg))
			r.Get("/runs", controllers.ListRuns(deps.RunHistory, logg))
			r.Get("/runs/{runID}/stream", controllers.StreamRun(deps.RunHub, logg))
		})

		r.Route("/metafields", func(r chi.Router) {
			r.Get("/", controllers.ListMetafields(deps.Metafields, logg))
			r.Post("/", controllers.SetMetafield(deps.Metafields, logg))
			r.Put("/", controllers.SetMetafield(deps.Metafields, logg))
			r.Delete("/", controllers.DeleteMetafield(deps.Metafields, logg))
		})

		r.Route("/files", func(r chi.Router) {
			r.Get("/", controllers.ListFiles(deps.Files, logg))
			r.Delete("/", controllers.DeleteFiles(deps.Files, logg))
			r.Post("/templates", controllers.UploadTemplates(deps.Files, cfg.Files.MaxUploadMB, logg))
			r.Post("/assign", controllers.AssignFile(deps.Files, logg))
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", controllers.ListCategories(deps.Categories, logg))
			r.Post("/", controllers.CreateCategory(deps.Categories, logg))
			r.Put("/{categoryID}", controllers.UpdateCategory(deps.Categories, logg))
			r.Delete("/{categoryID}", controllers.DeleteCategory(deps.Categories, logg))
			r.Post("/sync", controllers.SyncCategories(deps.Categories, logg))
		})
	})

	return r
}
