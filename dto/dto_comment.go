package dto

type CreateCommentReq struct {
	Text string `json:"text" form:"text" validate:"required,min=1,max=2000"`
}

// CommentResponse is a comment with its id rendered as a hex string.
type CommentResponse struct {
	ID        string      `json:"_id"`
	User      UserRefResp `json:"user"`
	Text      string      `json:"text"`
	CreatedAt string      `json:"createdAt"`
	UpdatedAt string      `json:"updatedAt"`
}

type ListCommentsResp struct {
	Comments []CommentResponse `json:"comments"`
}
