package request

type CreatePostRequest struct {
	Image   string `json:"image" validate:"required"`
	Caption string `json:"caption" validate:"max=2000"`
}

type UpdatePostRequest struct {
	Image   string `json:"image" validate:"required"`
	Caption string `json:"caption" validate:"max=2000"`
}

type CreateCommentRequest struct {
	Comment  string  `json:"comment" validate:"required,max=1000"`
	ParentID *string `json:"parent_id,omitempty" validate:"omitempty,uuid"`
}
