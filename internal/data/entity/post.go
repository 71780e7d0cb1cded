package entity

import (
	"github.com/google/uuid"
)

type Post struct {
	Base
	AuthorID uuid.UUID `db:"author_id"`
	Image    *string   `db:"image"`
	Caption  string    `db:"caption"`
}

// PostComment supports one level of threading through ParentID.
type PostComment struct {
	Base
	AuthorID uuid.UUID  `db:"author_id"`
	PostID   uuid.UUID  `db:"post_id"`
	Comment  string     `db:"comment"`
	ParentID *uuid.UUID `db:"parent_id"`
}

type PostLike struct {
	BaseSimple
	AuthorID uuid.UUID `db:"author_id"`
	PostID   uuid.UUID `db:"post_id"`
}

type CommentLike struct {
	BaseSimple
	AuthorID  uuid.UUID `db:"author_id"`
	CommentID uuid.UUID `db:"comment_id"`
}
