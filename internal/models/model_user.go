package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// User is a locally registered account. Its hex id is the userId that ends
// up inside UserRef.
type User struct {
	ID           bson.ObjectID `bson:"_id,omitempty"      json:"_id,omitempty"`
	Email        string        `bson:"email"              json:"email"`
	PasswordHash string        `bson:"password_hash"      json:"-"`
	FirstName    string        `bson:"first_name"         json:"firstName"`
	LastName     string        `bson:"last_name,omitempty" json:"lastName,omitempty"`
	UserImage    string        `bson:"user_image"         json:"userImage"`
	CreatedAt    time.Time     `bson:"created_at"         json:"createdAt"`
}

func (u User) Ref() UserRef {
	return UserRef{
		UserID:    u.ID.Hex(),
		UserImage: u.UserImage,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}
