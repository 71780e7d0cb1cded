package usecase

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"socialgram/internal/data/repository"
	"socialgram/pkg/notifier"
	"socialgram/pkg/token"
	"socialgram/pkg/utils"
)

// TokenIssuer is the slice of pkg/token the services depend on. Tests swap in
// a stub.
type TokenIssuer interface {
	IssuePair(ctx context.Context, userID uuid.UUID) (*token.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (uuid.UUID, *token.TokenPair, error)
	Revoke(ctx context.Context, refreshToken string) error
}

type Service struct {
	Auth AuthService
	User UserService
	Post PostService
}

func NewService(
	repo *repository.Repository,
	config *utils.Config,
	issuer TokenIssuer,
	dispatcher notifier.Notifier,
	log *zap.Logger,
) *Service {
	return &Service{
		Auth: NewAuthService(repo, config, issuer, dispatcher, log),
		User: NewUserService(repo.User, log),
		Post: NewPostService(repo, log),
	}
}
