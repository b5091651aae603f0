package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

var (
	ErrEmptyText   = errors.New("text is required")
	ErrInvalidUser = errors.New("invalid user")
)

// UserRef is the author snapshot stored by value inside posts and comments.
type UserRef struct {
	UserID    string `json:"userId"             bson:"user_id"`
	UserImage string `json:"userImage"          bson:"user_image"`
	FirstName string `json:"firstName"          bson:"first_name"`
	LastName  string `json:"lastName,omitempty" bson:"last_name,omitempty"`
}

func NewUserRef(userID, userImage, firstName, lastName string) (UserRef, error) {
	u := UserRef{
		UserID:    strings.TrimSpace(userID),
		UserImage: strings.TrimSpace(userImage),
		FirstName: strings.TrimSpace(firstName),
		LastName:  strings.TrimSpace(lastName),
	}
	return u, u.Validate()
}

func (u UserRef) Validate() error {
	switch {
	case u.UserID == "":
		return fmt.Errorf("%w: userId is required", ErrInvalidUser)
	case u.UserImage == "":
		return fmt.Errorf("%w: userImage is required", ErrInvalidUser)
	case u.FirstName == "":
		return fmt.Errorf("%w: firstName is required", ErrInvalidUser)
	}
	return nil
}

func (u UserRef) DisplayName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

type Post struct {
	ID        bson.ObjectID   `json:"id"                 bson:"_id,omitempty"`
	User      UserRef         `json:"user"               bson:"user"`
	Text      string          `json:"text"               bson:"text"`
	ImageURL  string          `json:"imageUrl,omitempty" bson:"image_url,omitempty"`
	Comments  []bson.ObjectID `json:"comments"           bson:"comments"`
	Likes     []string        `json:"likes"              bson:"likes"`
	CreatedAt time.Time       `json:"createdAt"          bson:"created_at"`
	UpdatedAt time.Time       `json:"updatedAt"          bson:"updated_at"`
}

// NewPost validates input and returns a post ready to insert. Comments and
// Likes start as empty arrays so $push and $addToSet always find an array.
func NewPost(user UserRef, text, imageURL string, now time.Time) (*Post, error) {
	if err := user.Validate(); err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}
	now = now.UTC()
	return &Post{
		User:      user,
		Text:      text,
		ImageURL:  strings.TrimSpace(imageURL),
		Comments:  []bson.ObjectID{},
		Likes:     []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (p *Post) HasLiked(userID string) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

func (p *Post) IsOwnedBy(userID string) bool {
	return userID != "" && p.User.UserID == userID
}
