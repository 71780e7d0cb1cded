package wire

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"socialgram/internal/adaptor"
	"socialgram/internal/data/repository"
	"socialgram/pkg/middleware"
	"socialgram/pkg/token"
)

func wireUser(
	r chi.Router,
	userHandler *adaptor.UserHandler,
	repo *repository.Repository,
	issuer *token.Issuer,
	log *zap.Logger,
) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(issuer, log))

		r.Get("/api/users/me", userHandler.Me)
	})

	// ==================== ADMIN ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(issuer, log))
		r.Use(middleware.Admin(repo.User, log))

		r.Get("/api/admin/users", userHandler.GetAllUsers)
		r.Delete("/api/admin/users/{id}", userHandler.DeleteUser)
	})
}
