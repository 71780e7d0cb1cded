package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"socialgram/internal/data/entity"
	"socialgram/pkg/database"
)

// LikeRepository owns the (author, post) and (author, comment) like pairs.
// Uniqueness is enforced by database constraints; the service layer treats
// likes as toggles.
type LikeRepository interface {
	FindPostLike(ctx context.Context, authorID, postID uuid.UUID) (*entity.PostLike, error)
	CreatePostLike(ctx context.Context, like *entity.PostLike) error
	DeletePostLike(ctx context.Context, id uuid.UUID) error

	FindCommentLike(ctx context.Context, authorID, commentID uuid.UUID) (*entity.CommentLike, error)
	CreateCommentLike(ctx context.Context, like *entity.CommentLike) error
	DeleteCommentLike(ctx context.Context, id uuid.UUID) error
}

type likeRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewLikeRepository(db database.PgxIface, log *zap.Logger) LikeRepository {
	return &likeRepository{
		db:  db,
		log: log.With(zap.String("repository", "like")),
	}
}

func (r *likeRepository) FindPostLike(ctx context.Context, authorID, postID uuid.UUID) (*entity.PostLike, error) {
	query := `
		SELECT id, author_id, post_id, created_at
		FROM post_likes
		WHERE author_id = $1 AND post_id = $2
	`

	var like entity.PostLike
	err := r.db.QueryRow(ctx, query, authorID, postID).Scan(
		&like.ID,
		&like.AuthorID,
		&like.PostID,
		&like.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find post like",
			zap.Error(err),
			zap.String("post_id", postID.String()),
			zap.String("author_id", authorID.String()),
		)
		return nil, fmt.Errorf("find like on post %s: %w", postID.String(), err)
	}

	return &like, nil
}

func (r *likeRepository) CreatePostLike(ctx context.Context, like *entity.PostLike) error {
	query := `
		INSERT INTO post_likes (id, author_id, post_id, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.Exec(ctx, query,
		like.ID,
		like.AuthorID,
		like.PostID,
		like.CreatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create post like",
			zap.Error(err),
			zap.String("post_id", like.PostID.String()),
			zap.String("author_id", like.AuthorID.String()),
		)
		return fmt.Errorf("like post %s: %w", like.PostID.String(), err)
	}

	return nil
}

func (r *likeRepository) DeletePostLike(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM post_likes WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to delete post like",
			zap.Error(err),
			zap.String("like_id", id.String()),
		)
		return fmt.Errorf("delete post like %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("post like %s not found", id.String())
	}

	return nil
}

func (r *likeRepository) FindCommentLike(ctx context.Context, authorID, commentID uuid.UUID) (*entity.CommentLike, error) {
	query := `
		SELECT id, author_id, comment_id, created_at
		FROM comment_likes
		WHERE author_id = $1 AND comment_id = $2
	`

	var like entity.CommentLike
	err := r.db.QueryRow(ctx, query, authorID, commentID).Scan(
		&like.ID,
		&like.AuthorID,
		&like.CommentID,
		&like.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find comment like",
			zap.Error(err),
			zap.String("comment_id", commentID.String()),
			zap.String("author_id", authorID.String()),
		)
		return nil, fmt.Errorf("find like on comment %s: %w", commentID.String(), err)
	}

	return &like, nil
}

func (r *likeRepository) CreateCommentLike(ctx context.Context, like *entity.CommentLike) error {
	query := `
		INSERT INTO comment_likes (id, author_id, comment_id, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.Exec(ctx, query,
		like.ID,
		like.AuthorID,
		like.CommentID,
		like.CreatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create comment like",
			zap.Error(err),
			zap.String("comment_id", like.CommentID.String()),
			zap.String("author_id", like.AuthorID.String()),
		)
		return fmt.Errorf("like comment %s: %w", like.CommentID.String(), err)
	}

	return nil
}

func (r *likeRepository) DeleteCommentLike(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM comment_likes WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to delete comment like",
			zap.Error(err),
			zap.String("like_id", id.String()),
		)
		return fmt.Errorf("delete comment like %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("comment like %s not found", id.String())
	}

	return nil
}
