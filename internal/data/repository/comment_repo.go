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

type CommentRepository interface {
	Create(ctx context.Context, comment *entity.PostComment) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.PostComment, error)
	FindByPostID(ctx context.Context, postID uuid.UUID, limit, offset int) ([]*entity.PostComment, error)
	CountByPostID(ctx context.Context, postID uuid.UUID) (int64, error)
	FindReplies(ctx context.Context, parentID uuid.UUID) ([]*entity.PostComment, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// Read-only projections
	GetCommentStats(ctx context.Context, commentID uuid.UUID, viewerID *uuid.UUID) (likes int64, meLiked bool, err error)
}

type commentRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewCommentRepository(db database.PgxIface, log *zap.Logger) CommentRepository {
	return &commentRepository{
		db:  db,
		log: log.With(zap.String("repository", "comment")),
	}
}

const commentColumns = `id, author_id, post_id, comment, parent_id, created_at, updated_at, deleted_at`

func (r *commentRepository) Create(ctx context.Context, comment *entity.PostComment) error {
	query := `
		INSERT INTO post_comments (id, author_id, post_id, comment, parent_id,
		                           created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(ctx, query,
		comment.ID,
		comment.AuthorID,
		comment.PostID,
		comment.Comment,
		comment.ParentID,
		comment.CreatedAt,
		comment.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create comment",
			zap.Error(err),
			zap.String("post_id", comment.PostID.String()),
			zap.String("author_id", comment.AuthorID.String()),
		)
		return fmt.Errorf("create comment on post %s: %w", comment.PostID.String(), err)
	}

	return nil
}

func (r *commentRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.PostComment, error) {
	query := `
		SELECT ` + commentColumns + `
		FROM post_comments
		WHERE id = $1 AND deleted_at IS NULL
	`

	var comment entity.PostComment
	err := r.db.QueryRow(ctx, query, id).Scan(
		&comment.ID,
		&comment.AuthorID,
		&comment.PostID,
		&comment.Comment,
		&comment.ParentID,
		&comment.CreatedAt,
		&comment.UpdatedAt,
		&comment.DeletedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find comment by ID",
			zap.Error(err),
			zap.String("comment_id", id.String()),
		)
		return nil, fmt.Errorf("find comment by ID %s: %w", id.String(), err)
	}

	return &comment, nil
}

func (r *commentRepository) FindByPostID(ctx context.Context, postID uuid.UUID, limit, offset int) ([]*entity.PostComment, error) {
	query := `
		SELECT ` + commentColumns + `
		FROM post_comments
		WHERE post_id = $1 AND parent_id IS NULL AND deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, postID, limit, offset)
	if err != nil {
		r.log.Error("Failed to find comments by post ID",
			zap.Error(err),
			zap.String("post_id", postID.String()),
		)
		return nil, fmt.Errorf("find comments for post %s: %w", postID.String(), err)
	}
	defer rows.Close()

	return r.collectComments(rows)
}

func (r *commentRepository) CountByPostID(ctx context.Context, postID uuid.UUID) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM post_comments
		WHERE post_id = $1 AND parent_id IS NULL AND deleted_at IS NULL
	`

	var count int64
	err := r.db.QueryRow(ctx, query, postID).Scan(&count)
	if err != nil {
		r.log.Error("Database error counting comments",
			zap.Error(err),
			zap.String("post_id", postID.String()),
		)
		return 0, fmt.Errorf("count comments for post %s: %w", postID.String(), err)
	}

	return count, nil
}

func (r *commentRepository) FindReplies(ctx context.Context, parentID uuid.UUID) ([]*entity.PostComment, error) {
	query := `
		SELECT ` + commentColumns + `
		FROM post_comments
		WHERE parent_id = $1 AND deleted_at IS NULL
		ORDER BY created_at ASC
	`

	rows, err := r.db.Query(ctx, query, parentID)
	if err != nil {
		r.log.Error("Failed to find comment replies",
			zap.Error(err),
			zap.String("parent_id", parentID.String()),
		)
		return nil, fmt.Errorf("find replies for comment %s: %w", parentID.String(), err)
	}
	defer rows.Close()

	return r.collectComments(rows)
}

func (r *commentRepository) collectComments(rows pgx.Rows) ([]*entity.PostComment, error) {
	var comments []*entity.PostComment
	for rows.Next() {
		var comment entity.PostComment
		err := rows.Scan(
			&comment.ID,
			&comment.AuthorID,
			&comment.PostID,
			&comment.Comment,
			&comment.ParentID,
			&comment.CreatedAt,
			&comment.UpdatedAt,
			&comment.DeletedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan comment row", zap.Error(err))
			return nil, fmt.Errorf("scan comment row: %w", err)
		}
		comments = append(comments, &comment)
	}

	if err := rows.Err(); err != nil {
		r.log.Error("Rows iteration error", zap.Error(err))
		return nil, fmt.Errorf("iterate comment rows: %w", err)
	}

	return comments, nil
}

func (r *commentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE post_comments SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to delete comment",
			zap.Error(err),
			zap.String("comment_id", id.String()),
		)
		return fmt.Errorf("delete comment %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("comment %s not found", id.String())
	}

	return nil
}

func (r *commentRepository) GetCommentStats(ctx context.Context, commentID uuid.UUID, viewerID *uuid.UUID) (int64, bool, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM comment_likes WHERE comment_id = $1),
			(SELECT EXISTS (
				SELECT 1 FROM comment_likes WHERE comment_id = $1 AND author_id = $2
			))
	`

	var likes int64
	var meLiked bool
	err := r.db.QueryRow(ctx, query, commentID, viewerID).Scan(&likes, &meLiked)
	if err != nil {
		r.log.Error("Failed to get comment stats",
			zap.Error(err),
			zap.String("comment_id", commentID.String()),
		)
		return 0, false, fmt.Errorf("get comment stats for %s: %w", commentID.String(), err)
	}

	return likes, meLiked, nil
}
