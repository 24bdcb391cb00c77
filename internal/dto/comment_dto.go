package dto

type CreateCommentRequest struct {
	Content  string  `json:"content" validate:"required,min=1,max=2000"`
	ParentID *string `json:"parent_id" validate:"omitempty,uuid"`
}

type UpdateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=2000"`
}

type ListCommentsQuery struct {
	Page  int
	Limit int
	Sort  string
}
