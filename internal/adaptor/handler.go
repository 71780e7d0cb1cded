package adaptor

import (
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"socialgram/internal/dto/request"
	"socialgram/internal/usecase"
	"socialgram/pkg/utils"
)

type Handler struct {
	Auth *AuthHandler
	User *UserHandler
	Post *PostHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Auth: NewAuthHandler(service.Auth, log),
		User: NewUserHandler(service.User, log),
		Post: NewPostHandler(service.Post, log),
	}
}

// parsePagination reads page/per_page query params, defaulting to page 1
// with 10 items.
func parsePagination(r *http.Request) *request.PaginatedRequest {
	return &request.PaginatedRequest{
		Page:    utils.ParseInt(r.URL.Query().Get("page"), 1),
		PerPage: utils.ParseInt(r.URL.Query().Get("per_page"), 10),
	}
}

// viewerFromContext returns the authenticated account id, or nil for an
// anonymous request.
func viewerFromContext(r *http.Request) *uuid.UUID {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		return nil
	}
	return &userID
}
