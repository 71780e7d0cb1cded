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

type PostRepository interface {
	Create(ctx context.Context, post *entity.Post) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Post, error)
	FindAll(ctx context.Context, limit, offset int) ([]*entity.Post, error)
	CountAll(ctx context.Context) (int64, error)
	Update(ctx context.Context, post *entity.Post) error
	Delete(ctx context.Context, id uuid.UUID) error

	// Read-only projections for the feed
	GetPostStats(ctx context.Context, postID uuid.UUID, viewerID *uuid.UUID) (likes int64, comments int64, meLiked bool, err error)
}

type postRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewPostRepository(db database.PgxIface, log *zap.Logger) PostRepository {
	return &postRepository{
		db:  db,
		log: log.With(zap.String("repository", "post")),
	}
}

func (r *postRepository) Create(ctx context.Context, post *entity.Post) error {
	query := `
		INSERT INTO posts (id, author_id, image, caption, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Exec(ctx, query,
		post.ID,
		post.AuthorID,
		post.Image,
		post.Caption,
		post.CreatedAt,
		post.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create post",
			zap.Error(err),
			zap.String("author_id", post.AuthorID.String()),
		)
		return fmt.Errorf("create post by %s: %w", post.AuthorID.String(), err)
	}

	return nil
}

func (r *postRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Post, error) {
	query := `
		SELECT id, author_id, image, caption, created_at, updated_at, deleted_at
		FROM posts
		WHERE id = $1 AND deleted_at IS NULL
	`

	var post entity.Post
	err := r.db.QueryRow(ctx, query, id).Scan(
		&post.ID,
		&post.AuthorID,
		&post.Image,
		&post.Caption,
		&post.CreatedAt,
		&post.UpdatedAt,
		&post.DeletedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find post by ID",
			zap.Error(err),
			zap.String("post_id", id.String()),
		)
		return nil, fmt.Errorf("find post by ID %s: %w", id.String(), err)
	}

	return &post, nil
}

func (r *postRepository) FindAll(ctx context.Context, limit, offset int) ([]*entity.Post, error) {
	query := `
		SELECT id, author_id, image, caption, created_at, updated_at, deleted_at
		FROM posts
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		r.log.Error("Failed to get posts",
			zap.Error(err),
			zap.Int("limit", limit),
			zap.Int("offset", offset),
		)
		return nil, fmt.Errorf("find all posts limit %d offset %d: %w", limit, offset, err)
	}
	defer rows.Close()

	var posts []*entity.Post
	for rows.Next() {
		var post entity.Post
		err := rows.Scan(
			&post.ID,
			&post.AuthorID,
			&post.Image,
			&post.Caption,
			&post.CreatedAt,
			&post.UpdatedAt,
			&post.DeletedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan post row", zap.Error(err))
			return nil, fmt.Errorf("scan post row: %w", err)
		}
		posts = append(posts, &post)
	}

	if err := rows.Err(); err != nil {
		r.log.Error("Rows iteration error", zap.Error(err))
		return nil, fmt.Errorf("iterate posts rows: %w", err)
	}

	return posts, nil
}

func (r *postRepository) CountAll(ctx context.Context) (int64, error) {
	query := `SELECT COUNT(*) FROM posts WHERE deleted_at IS NULL`

	var count int64
	err := r.db.QueryRow(ctx, query).Scan(&count)
	if err != nil {
		r.log.Error("Database error counting posts", zap.Error(err))
		return 0, fmt.Errorf("count all posts: %w", err)
	}

	return count, nil
}

func (r *postRepository) Update(ctx context.Context, post *entity.Post) error {
	query := `
		UPDATE posts
		SET image = $2, caption = $3, updated_at = $4
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.Exec(ctx, query,
		post.ID,
		post.Image,
		post.Caption,
		post.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to update post",
			zap.Error(err),
			zap.String("post_id", post.ID.String()),
		)
		return fmt.Errorf("update post %s: %w", post.ID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("post %s not found or already deleted", post.ID.String())
	}

	return nil
}

func (r *postRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE posts SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to delete post",
			zap.Error(err),
			zap.String("post_id", id.String()),
		)
		return fmt.Errorf("delete post %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("post %s not found", id.String())
	}

	return nil
}

// GetPostStats computes like count, comment count and whether the viewer has
// liked the post, in one round trip. viewerID may be nil for anonymous reads.
func (r *postRepository) GetPostStats(ctx context.Context, postID uuid.UUID, viewerID *uuid.UUID) (int64, int64, bool, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM post_likes WHERE post_id = $1),
			(SELECT COUNT(*) FROM post_comments WHERE post_id = $1 AND deleted_at IS NULL),
			(SELECT EXISTS (
				SELECT 1 FROM post_likes WHERE post_id = $1 AND author_id = $2
			))
	`

	var likes, comments int64
	var meLiked bool
	err := r.db.QueryRow(ctx, query, postID, viewerID).Scan(&likes, &comments, &meLiked)
	if err != nil {
		r.log.Error("Failed to get post stats",
			zap.Error(err),
			zap.String("post_id", postID.String()),
		)
		return 0, 0, false, fmt.Errorf("get post stats for %s: %w", postID.String(), err)
	}

	return likes, comments, meLiked, nil
}
