package models

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post is a piece of published content. Author is free-form text and is not
// checked against the users collection.
type Post struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title   string             `bson:"title" json:"title"`
	Content string             `bson:"content" json:"content"`
	Author  string             `bson:"author" json:"author"`
}

// GetID returns the store-assigned identifier.
func (p Post) GetID() primitive.ObjectID {
	return p.ID
}

// WithID returns a copy of the post carrying id.
func (p Post) WithID(id primitive.ObjectID) Post {
	p.ID = id
	return p
}

// Fields returns the mutable fields replaced on update. All three are
// replaced together.
func (p Post) Fields() bson.M {
	return bson.M{
		"title":   p.Title,
		"content": p.Content,
		"author":  p.Author,
	}
}
