package wire

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"socialgram/internal/adaptor"
	"socialgram/pkg/middleware"
	"socialgram/pkg/token"
)

func wirePost(
	r chi.Router,
	postHandler *adaptor.PostHandler,
	issuer *token.Issuer,
	log *zap.Logger,
) {
	// ==================== PUBLIC ROUTES ====================
	// Reads are public; a valid token personalizes me_liked.
	r.Group(func(r chi.Router) {
		r.Use(middleware.OptionalAuth(issuer, log))

		r.Get("/api/posts", postHandler.GetAllPosts)
		r.Get("/api/posts/{id}", postHandler.GetPost)
		r.Get("/api/posts/{id}/comments", postHandler.GetComments)
		r.Get("/api/comments/{id}", postHandler.GetComment)
	})

	// ==================== PROTECTED ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(issuer, log))

		r.Post("/api/posts", postHandler.CreatePost)
		r.Put("/api/posts/{id}", postHandler.UpdatePost)
		r.Delete("/api/posts/{id}", postHandler.DeletePost)
		r.Post("/api/posts/{id}/comments", postHandler.CreateComment)
		r.Delete("/api/comments/{id}", postHandler.DeleteComment)
		r.Post("/api/posts/{id}/like", postHandler.TogglePostLike)
		r.Post("/api/comments/{id}/like", postHandler.ToggleCommentLike)
	})
}
