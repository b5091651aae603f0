package dto

type UserRefResp struct {
	UserID    string `json:"userId"`
	UserImage string `json:"userImage"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName,omitempty"`
}

// PostResponse is the transport form of a post: every identifier is a string
// and comments are resolved newest-first.
type PostResponse struct {
	ID         string            `json:"_id"`
	User       UserRefResp       `json:"user"`
	Text       string            `json:"text"`
	ImageURL   string            `json:"imageUrl,omitempty"`
	Comments   []CommentResponse `json:"comments"`
	CommentIDs []string          `json:"commentIds"`
	Likes      []string          `json:"likes"`
	LikeCount  int               `json:"likeCount"`
	CreatedAt  string            `json:"createdAt"`
	UpdatedAt  string            `json:"updatedAt"`
}

type FeedResp struct {
	Posts []PostResponse `json:"posts"`
}

// DeletePostReq mirrors the body the web client sends on delete.
type DeletePostReq struct {
	UserID string `json:"userId"`
}

type ErrorResponse struct {
	Error string `json:"error" example:"invalid body"`
}
