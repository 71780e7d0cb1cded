package response

import (
	"time"

	"socialgram/internal/data/entity"
)

type PostAuthor struct {
	ID       string  `json:"id"`
	Username string  `json:"username"`
	FullName string  `json:"full_name"`
	Image    *string `json:"image,omitempty"`
}

type PostResponse struct {
	ID            string     `json:"id"`
	Author        PostAuthor `json:"author"`
	Image         *string    `json:"image,omitempty"`
	Caption       string     `json:"caption"`
	LikesCount    int64      `json:"post_likes_count"`
	CommentsCount int64      `json:"post_comments_count"`
	MeLiked       bool       `json:"me_liked"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type CommentResponse struct {
	ID         string            `json:"id"`
	Author     PostAuthor        `json:"author"`
	PostID     string            `json:"post_id"`
	Comment    string            `json:"comment"`
	ParentID   *string           `json:"parent_id,omitempty"`
	LikesCount int64             `json:"likes_count"`
	MeLiked    bool              `json:"me_liked"`
	Replies    []CommentResponse `json:"replies,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}

type LikeResponse struct {
	Liked bool `json:"liked"`
}

// Helper converters
func AuthorToResponse(user *entity.User) PostAuthor {
	return PostAuthor{
		ID:       user.ID.String(),
		Username: user.Username,
		FullName: user.FullName(),
		Image:    user.Image,
	}
}

func PostToResponse(post *entity.Post, author *entity.User, likes, comments int64, meLiked bool) PostResponse {
	return PostResponse{
		ID:            post.ID.String(),
		Author:        AuthorToResponse(author),
		Image:         post.Image,
		Caption:       post.Caption,
		LikesCount:    likes,
		CommentsCount: comments,
		MeLiked:       meLiked,
		CreatedAt:     post.CreatedAt,
		UpdatedAt:     post.UpdatedAt,
	}
}

func CommentToResponse(comment *entity.PostComment, author *entity.User, likes int64, meLiked bool) CommentResponse {
	resp := CommentResponse{
		ID:         comment.ID.String(),
		Author:     AuthorToResponse(author),
		PostID:     comment.PostID.String(),
		Comment:    comment.Comment,
		LikesCount: likes,
		MeLiked:    meLiked,
		CreatedAt:  comment.CreatedAt,
	}

	if comment.ParentID != nil {
		parent := comment.ParentID.String()
		resp.ParentID = &parent
	}

	return resp
}
