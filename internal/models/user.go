package models

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a user account in the system.
type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username string             `bson:"username" json:"username"`
}

// GetID returns the store-assigned identifier.
func (u User) GetID() primitive.ObjectID {
	return u.ID
}

// WithID returns a copy of the user carrying id.
func (u User) WithID(id primitive.ObjectID) User {
	u.ID = id
	return u
}

// Fields returns the mutable fields replaced on update.
func (u User) Fields() bson.M {
	return bson.M{"username": u.Username}
}
