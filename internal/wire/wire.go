// internal/wire/wire.go
package wire

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"socialgram/internal/adaptor"
	"socialgram/internal/data/repository"
	"socialgram/internal/usecase"
	"socialgram/pkg/middleware"
	"socialgram/pkg/notifier"
	"socialgram/pkg/token"
	"socialgram/pkg/utils"
)

// App holds the wired HTTP surface
type App struct {
	Router *chi.Mux
}

// Wiring initializes all dependencies
func Wiring(
	repo *repository.Repository,
	config *utils.Config,
	issuer *token.Issuer,
	dispatcher *notifier.Dispatcher,
	logger *zap.Logger,
) *App {
	service := usecase.NewService(repo, config, issuer, dispatcher, logger)
	handler := adaptor.NewHandler(service, logger)

	router := setupRouter(handler, repo, issuer, logger)

	return &App{
		Router: router,
	}
}

// setupRouter configures the Chi router
func setupRouter(
	handler *adaptor.Handler,
	repo *repository.Repository,
	issuer *token.Issuer,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS())

	// Apply routes
	wireAuth(r, handler.Auth, issuer, logger)
	wireUser(r, handler.User, repo, issuer, logger)
	wirePost(r, handler.Post, issuer, logger)

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}
