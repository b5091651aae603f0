package models

import (
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type Comment struct {
	ID        bson.ObjectID `json:"id"        bson:"_id,omitempty"`
	User      UserRef       `json:"user"      bson:"user"`
	Text      string        `json:"text"      bson:"text"`
	CreatedAt time.Time     `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time     `json:"updatedAt" bson:"updated_at"`
}

func NewComment(user UserRef, text string, now time.Time) (*Comment, error) {
	if err := user.Validate(); err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}
	now = now.UTC()
	return &Comment{
		ID:        bson.NewObjectID(),
		User:      user,
		Text:      text,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// SortCommentsNewestFirst orders by created_at desc, then _id desc for equal timestamps.
func SortCommentsNewestFirst(cs []Comment) {
	sort.SliceStable(cs, func(i, j int) bool {
		if !cs[i].CreatedAt.Equal(cs[j].CreatedAt) {
			return cs[i].CreatedAt.After(cs[j].CreatedAt)
		}
		return cs[i].ID.Hex() > cs[j].ID.Hex()
	})
}

// SortPostsNewestFirst uses the same ordering as the feed index.
func SortPostsNewestFirst(ps []Post) {
	sort.SliceStable(ps, func(i, j int) bool {
		if !ps[i].CreatedAt.Equal(ps[j].CreatedAt) {
			return ps[i].CreatedAt.After(ps[j].CreatedAt)
		}
		return ps[i].ID.Hex() > ps[j].ID.Hex()
	})
}
