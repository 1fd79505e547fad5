package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Profile is one form submission. Records are append-only.
type Profile struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	Interests    string             `bson:"interests" json:"interests"`
	ProfileImage *string            `bson:"profileImage" json:"profileImage"` // nil when no file was submitted
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}

// NewProfile builds a record from submitted form fields. Missing fields are
// stored blank.
func NewProfile(fields map[string]string, imagePath *string, now time.Time) *Profile {
	return &Profile{
		ID:           primitive.NewObjectID(),
		Name:         fields["name"],
		Email:        fields["email"],
		Interests:    fields["interests"],
		ProfileImage: imagePath,
		CreatedAt:    now,
	}
}
