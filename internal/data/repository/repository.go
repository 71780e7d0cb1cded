package repository

import (
	"go.uber.org/zap"

	"socialgram/pkg/database"
)

type Repository struct {
	User         UserRepository
	Verification VerificationRepository
	Post         PostRepository
	Comment      CommentRepository
	Like         LikeRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		User:         NewUserRepository(db, log),
		Verification: NewVerificationRepository(db, log),
		Post:         NewPostRepository(db, log),
		Comment:      NewCommentRepository(db, log),
		Like:         NewLikeRepository(db, log),
	}
}
