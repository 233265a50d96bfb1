// Package app contains the application setup for the marketplace service.
package app

import (
	"log/slog"
	"net/http"

	"github.com/abgdnv/localmarket/internal/cart"
	"github.com/abgdnv/localmarket/internal/catalog"
	"github.com/abgdnv/localmarket/internal/config"
	"github.com/abgdnv/localmarket/internal/service"
	"github.com/abgdnv/localmarket/internal/session"
	"github.com/abgdnv/localmarket/internal/transport/rest"
	"github.com/abgdnv/localmarket/pkg/server"
	"github.com/go-chi/chi/v5"
)

type Dependencies struct {
	MarketplaceService service.MarketplaceService
	Logger             *slog.Logger
}

// SetupDependencies builds the in-memory state and the service over it.
// All state is transient and lost on restart; persistence is out of scope.
func SetupDependencies(cfg *config.Config, logger *slog.Logger) *Dependencies {
	cat := catalog.NewCatalog()
	if cfg.Catalog.Seed {
		catalog.Seed(cat)
		logger.Info("Catalog seeded with demo storefront data")
	}
	mService := service.NewService(cat, cart.New(), session.NewManager(), logger)

	return &Dependencies{
		MarketplaceService: mService,
		Logger:             logger,
	}
}

// SetupHttpHandler initializes the HTTP routes for the marketplace application.
// Also used by handler tests to build a fully wired router.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	wireRoutes(mux, deps)
	return mux
}

// wireRoutes sets up the HTTP routes for the marketplace application.
func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	marketHandler := rest.NewHandler(deps.MarketplaceService, deps.Logger)
	marketHandler.RegisterRoutes(mux)
}

// SetupHttpServer creates and configures an HTTP server for the marketplace application.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	mux := SetupHttpHandler(deps)

	httpCfg := server.HTTPConfig{
		Port:           cfg.HTTPServer.Port,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		ReadTimeout:    cfg.HTTPServer.Timeout.Read,
		WriteTimeout:   cfg.HTTPServer.Timeout.Write,
		IdleTimeout:    cfg.HTTPServer.Timeout.Idle,
		ReadHeader:     cfg.HTTPServer.Timeout.ReadHeader,
	}

	return server.NewHTTPServer(httpCfg, mux)
}
