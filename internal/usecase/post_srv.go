package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"socialgram/internal/data/entity"
	"socialgram/internal/data/repository"
	"socialgram/internal/dto/request"
	"socialgram/internal/dto/response"
	"socialgram/pkg/apperr"
	"socialgram/pkg/utils"
)

type PostService interface {
	CreatePost(ctx context.Context, authorID uuid.UUID, req *request.CreatePostRequest) (*response.PostResponse, error)
	GetPost(ctx context.Context, postID uuid.UUID, viewerID *uuid.UUID) (*response.PostResponse, error)
	GetAllPosts(ctx context.Context, viewerID *uuid.UUID, req *request.PaginatedRequest) (*response.PaginatedResponse[response.PostResponse], error)
	UpdatePost(ctx context.Context, userID, postID uuid.UUID, req *request.UpdatePostRequest) (*response.PostResponse, error)
	DeletePost(ctx context.Context, userID, postID uuid.UUID) error

	CreateComment(ctx context.Context, authorID, postID uuid.UUID, req *request.CreateCommentRequest) (*response.CommentResponse, error)
	GetComments(ctx context.Context, postID uuid.UUID, viewerID *uuid.UUID, req *request.PaginatedRequest) (*response.PaginatedResponse[response.CommentResponse], error)
	GetComment(ctx context.Context, commentID uuid.UUID, viewerID *uuid.UUID) (*response.CommentResponse, error)
	DeleteComment(ctx context.Context, userID, commentID uuid.UUID) error

	TogglePostLike(ctx context.Context, userID, postID uuid.UUID) (*response.LikeResponse, error)
	ToggleCommentLike(ctx context.Context, userID, commentID uuid.UUID) (*response.LikeResponse, error)
}

type postService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewPostService(repo *repository.Repository, log *zap.Logger) PostService {
	return &postService{
		repo: repo,
		log:  log,
	}
}

func (ps *postService) CreatePost(ctx context.Context, authorID uuid.UUID, req *request.CreatePostRequest) (*response.PostResponse, error) {
	// 1. Validate
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		ps.log.Warn("Create post validation failed", zap.Any("errors", errs))
		return nil, apperr.Validation(utils.FormatValidationErrors(errs))
	}

	author, err := ps.mustFindUser(ctx, authorID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	post := &entity.Post{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		AuthorID: authorID,
		Image:    &req.Image,
		Caption:  req.Caption,
	}

	if err := ps.repo.Post.Create(ctx, post); err != nil {
		ps.log.Error("Failed to create post", zap.Error(err), zap.String("author_id", authorID.String()))
		return nil, apperr.Internal(err)
	}

	ps.log.Info("Post created",
		zap.String("post_id", post.ID.String()),
		zap.String("author_id", authorID.String()),
	)

	resp := response.PostToResponse(post, author, 0, 0, false)
	return &resp, nil
}

func (ps *postService) GetPost(ctx context.Context, postID uuid.UUID, viewerID *uuid.UUID) (*response.PostResponse, error) {
	post, err := ps.mustFindPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	resp, err := ps.buildPostResponse(ctx, post, viewerID, nil)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (ps *postService) GetAllPosts(ctx context.Context, viewerID *uuid.UUID, req *request.PaginatedRequest) (*response.PaginatedResponse[response.PostResponse], error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PerPage < 1 {
		req.PerPage = 10
	}
	if req.PerPage > 100 {
		req.PerPage = 100
	}

	posts, err := ps.repo.Post.FindAll(ctx, req.Limit(), req.Offset())
	if err != nil {
		ps.log.Error("Failed to get posts", zap.Error(err), zap.Int("page", req.Page))
		return nil, apperr.Internal(err)
	}

	total, err := ps.repo.Post.CountAll(ctx)
	if err != nil {
		ps.log.Error("Failed to count posts", zap.Error(err))
		return nil, apperr.Internal(err)
	}

	// Authors repeat across a feed page; resolve each one once.
	authors := make(map[uuid.UUID]*entity.User)
	postResponses := make([]response.PostResponse, 0, len(posts))
	for _, post := range posts {
		resp, err := ps.buildPostResponse(ctx, post, viewerID, authors)
		if err != nil {
			return nil, err
		}
		postResponses = append(postResponses, *resp)
	}

	return response.NewPaginatedResponse(postResponses, req.Page, req.PerPage, total), nil
}

func (ps *postService) UpdatePost(ctx context.Context, userID, postID uuid.UUID, req *request.UpdatePostRequest) (*response.PostResponse, error) {
	// 1. Validate
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		ps.log.Warn("Update post validation failed", zap.Any("errors", errs))
		return nil, apperr.Validation(utils.FormatValidationErrors(errs))
	}

	post, err := ps.mustFindPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	// 2. Only the author may edit
	if post.AuthorID != userID {
		return nil, apperr.Forbidden("Only the author can edit this post")
	}

	post.Image = &req.Image
	post.Caption = req.Caption
	post.UpdatedAt = time.Now()

	if err := ps.repo.Post.Update(ctx, post); err != nil {
		ps.log.Error("Failed to update post", zap.Error(err), zap.String("post_id", postID.String()))
		return nil, apperr.Internal(err)
	}

	ps.log.Info("Post updated", zap.String("post_id", postID.String()))

	return ps.buildPostResponse(ctx, post, &userID, nil)
}

func (ps *postService) DeletePost(ctx context.Context, userID, postID uuid.UUID) error {
	post, err := ps.mustFindPost(ctx, postID)
	if err != nil {
		return err
	}

	if post.AuthorID != userID {
		return apperr.Forbidden("Only the author can delete this post")
	}

	if err := ps.repo.Post.Delete(ctx, postID); err != nil {
		ps.log.Error("Failed to delete post", zap.Error(err), zap.String("post_id", postID.String()))
		return apperr.Internal(err)
	}

	ps.log.Info("Post deleted", zap.String("post_id", postID.String()))
	return nil
}

func (ps *postService) CreateComment(ctx context.Context, authorID, postID uuid.UUID, req *request.CreateCommentRequest) (*response.CommentResponse, error) {
	// 1. Validate
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		ps.log.Warn("Create comment validation failed", zap.Any("errors", errs))
		return nil, apperr.Validation(utils.FormatValidationErrors(errs))
	}

	author, err := ps.mustFindUser(ctx, authorID)
	if err != nil {
		return nil, err
	}

	if _, err := ps.mustFindPost(ctx, postID); err != nil {
		return nil, err
	}

	// 2. Replies attach to a top-level comment on the same post
	var parentID *uuid.UUID
	if req.ParentID != nil {
		parsed, err := uuid.Parse(*req.ParentID)
		if err != nil {
			return nil, apperr.Validation("parent_id must be a valid UUID")
		}

		parent, err := ps.repo.Comment.FindByID(ctx, parsed)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		if parent == nil || parent.PostID != postID {
			return nil, apperr.NotFound("Parent comment not found on this post")
		}
		if parent.ParentID != nil {
			return nil, apperr.Validation("Replies to replies are not supported")
		}
		parentID = &parsed
	}

	now := time.Now()
	comment := &entity.PostComment{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		AuthorID: authorID,
		PostID:   postID,
		Comment:  req.Comment,
		ParentID: parentID,
	}

	if err := ps.repo.Comment.Create(ctx, comment); err != nil {
		ps.log.Error("Failed to create comment", zap.Error(err), zap.String("post_id", postID.String()))
		return nil, apperr.Internal(err)
	}

	ps.log.Info("Comment created",
		zap.String("comment_id", comment.ID.String()),
		zap.String("post_id", postID.String()),
	)

	resp := response.CommentToResponse(comment, author, 0, false)
	return &resp, nil
}

func (ps *postService) GetComments(ctx context.Context, postID uuid.UUID, viewerID *uuid.UUID, req *request.PaginatedRequest) (*response.PaginatedResponse[response.CommentResponse], error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PerPage < 1 {
		req.PerPage = 10
	}
	if req.PerPage > 100 {
		req.PerPage = 100
	}

	if _, err := ps.mustFindPost(ctx, postID); err != nil {
		return nil, err
	}

	comments, err := ps.repo.Comment.FindByPostID(ctx, postID, req.Limit(), req.Offset())
	if err != nil {
		ps.log.Error("Failed to get comments", zap.Error(err), zap.String("post_id", postID.String()))
		return nil, apperr.Internal(err)
	}

	total, err := ps.repo.Comment.CountByPostID(ctx, postID)
	if err != nil {
		ps.log.Error("Failed to count comments", zap.Error(err), zap.String("post_id", postID.String()))
		return nil, apperr.Internal(err)
	}

	authors := make(map[uuid.UUID]*entity.User)
	commentResponses := make([]response.CommentResponse, 0, len(comments))
	for _, comment := range comments {
		resp, err := ps.buildCommentResponse(ctx, comment, viewerID, authors, true)
		if err != nil {
			return nil, err
		}
		commentResponses = append(commentResponses, *resp)
	}

	return response.NewPaginatedResponse(commentResponses, req.Page, req.PerPage, total), nil
}

func (ps *postService) GetComment(ctx context.Context, commentID uuid.UUID, viewerID *uuid.UUID) (*response.CommentResponse, error) {
	comment, err := ps.mustFindComment(ctx, commentID)
	if err != nil {
		return nil, err
	}

	return ps.buildCommentResponse(ctx, comment, viewerID, nil, true)
}

func (ps *postService) DeleteComment(ctx context.Context, userID, commentID uuid.UUID) error {
	comment, err := ps.mustFindComment(ctx, commentID)
	if err != nil {
		return err
	}

	if comment.AuthorID != userID {
		return apperr.Forbidden("Only the author can delete this comment")
	}

	if err := ps.repo.Comment.Delete(ctx, commentID); err != nil {
		ps.log.Error("Failed to delete comment", zap.Error(err), zap.String("comment_id", commentID.String()))
		return apperr.Internal(err)
	}

	ps.log.Info("Comment deleted", zap.String("comment_id", commentID.String()))
	return nil
}

// TogglePostLike likes the post if the caller has not, and removes the like
// otherwise. The response reports the resulting state.
func (ps *postService) TogglePostLike(ctx context.Context, userID, postID uuid.UUID) (*response.LikeResponse, error) {
	if _, err := ps.mustFindPost(ctx, postID); err != nil {
		return nil, err
	}

	existing, err := ps.repo.Like.FindPostLike(ctx, userID, postID)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	if existing != nil {
		if err := ps.repo.Like.DeletePostLike(ctx, existing.ID); err != nil {
			return nil, apperr.Internal(err)
		}
		return &response.LikeResponse{Liked: false}, nil
	}

	like := &entity.PostLike{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
		},
		AuthorID: userID,
		PostID:   postID,
	}
	if err := ps.repo.Like.CreatePostLike(ctx, like); err != nil {
		return nil, apperr.Internal(err)
	}

	return &response.LikeResponse{Liked: true}, nil
}

func (ps *postService) ToggleCommentLike(ctx context.Context, userID, commentID uuid.UUID) (*response.LikeResponse, error) {
	if _, err := ps.mustFindComment(ctx, commentID); err != nil {
		return nil, err
	}

	existing, err := ps.repo.Like.FindCommentLike(ctx, userID, commentID)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	if existing != nil {
		if err := ps.repo.Like.DeleteCommentLike(ctx, existing.ID); err != nil {
			return nil, apperr.Internal(err)
		}
		return &response.LikeResponse{Liked: false}, nil
	}

	like := &entity.CommentLike{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
		},
		AuthorID:  userID,
		CommentID: commentID,
	}
	if err := ps.repo.Like.CreateCommentLike(ctx, like); err != nil {
		return nil, apperr.Internal(err)
	}

	return &response.LikeResponse{Liked: true}, nil
}

// ==================== HELPER METHODS ====================

func (ps *postService) mustFindUser(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := ps.repo.User.FindByID(ctx, userID)
	if err != nil {
		ps.log.Error("Failed to find user", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, apperr.Internal(err)
	}
	if user == nil {
		return nil, apperr.NotFound("Account not found")
	}
	return user, nil
}

func (ps *postService) mustFindPost(ctx context.Context, postID uuid.UUID) (*entity.Post, error) {
	post, err := ps.repo.Post.FindByID(ctx, postID)
	if err != nil {
		ps.log.Error("Failed to find post", zap.Error(err), zap.String("post_id", postID.String()))
		return nil, apperr.Internal(err)
	}
	if post == nil {
		return nil, apperr.NotFound("Post not found")
	}
	return post, nil
}

func (ps *postService) mustFindComment(ctx context.Context, commentID uuid.UUID) (*entity.PostComment, error) {
	comment, err := ps.repo.Comment.FindByID(ctx, commentID)
	if err != nil {
		ps.log.Error("Failed to find comment", zap.Error(err), zap.String("comment_id", commentID.String()))
		return nil, apperr.Internal(err)
	}
	if comment == nil {
		return nil, apperr.NotFound("Comment not found")
	}
	return comment, nil
}

// resolveAuthor reads through the per-request author cache when one is given.
func (ps *postService) resolveAuthor(ctx context.Context, authorID uuid.UUID, cache map[uuid.UUID]*entity.User) (*entity.User, error) {
	if cache != nil {
		if author, ok := cache[authorID]; ok {
			return author, nil
		}
	}

	author, err := ps.mustFindUser(ctx, authorID)
	if err != nil {
		return nil, err
	}

	if cache != nil {
		cache[authorID] = author
	}
	return author, nil
}

func (ps *postService) buildPostResponse(ctx context.Context, post *entity.Post, viewerID *uuid.UUID, cache map[uuid.UUID]*entity.User) (*response.PostResponse, error) {
	author, err := ps.resolveAuthor(ctx, post.AuthorID, cache)
	if err != nil {
		return nil, err
	}

	likes, comments, meLiked, err := ps.repo.Post.GetPostStats(ctx, post.ID, viewerID)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	resp := response.PostToResponse(post, author, likes, comments, meLiked)
	return &resp, nil
}

func (ps *postService) buildCommentResponse(ctx context.Context, comment *entity.PostComment, viewerID *uuid.UUID, cache map[uuid.UUID]*entity.User, withReplies bool) (*response.CommentResponse, error) {
	author, err := ps.resolveAuthor(ctx, comment.AuthorID, cache)
	if err != nil {
		return nil, err
	}

	likes, meLiked, err := ps.repo.Comment.GetCommentStats(ctx, comment.ID, viewerID)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	resp := response.CommentToResponse(comment, author, likes, meLiked)

	if withReplies && comment.ParentID == nil {
		replies, err := ps.repo.Comment.FindReplies(ctx, comment.ID)
		if err != nil {
			return nil, apperr.Internal(err)
		}

		for _, reply := range replies {
			replyResp, err := ps.buildCommentResponse(ctx, reply, viewerID, cache, false)
			if err != nil {
				return nil, err
			}
			resp.Replies = append(resp.Replies, *replyResp)
		}
	}

	return &resp, nil
}
