// Package database is the data access layer. It exposes one Collection per
// resource kind over a shared, goroutine-safe store handle.
package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/postboard/postboard-be/internal/models"
)

// Collection names.
const (
	UsersCollection = "users"
	PostsCollection = "posts"
)

// Document is implemented by every stored model. WithID stamps the
// store-assigned identifier, Fields lists what an update replaces.
type Document[T any] interface {
	GetID() primitive.ObjectID
	WithID(id primitive.ObjectID) T
	Fields() bson.M
}

// Collection is the set of operations available on one resource collection.
// Every call is a single round-trip to the store.
type Collection[T any] interface {
	Insert(ctx context.Context, record T) (T, error)
	FindAll(ctx context.Context) ([]T, error)
	FindByID(ctx context.Context, id string) (T, error)
	UpdateByID(ctx context.Context, id string, record T) (int64, error)
	DeleteByID(ctx context.Context, id string) (int64, error)
}

// Store owns the backend handle and the collections built on it.
type Store struct {
	Users Collection[models.User]
	Posts Collection[models.Post]

	driver string
	ping   func(ctx context.Context) error
	close  func(ctx context.Context) error
}

// Open connects to the backend named by driver ("mongo" or "sqlite") and
// verifies the connection before returning.
func Open(ctx context.Context, driver, url, dbName string) (*Store, error) {
	switch driver {
	case "mongo":
		return OpenMongo(ctx, url, dbName)
	case "sqlite":
		return OpenSQLite(ctx, url)
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}

// Driver returns the backend name.
func (s *Store) Driver() string {
	return s.driver
}

// Ping checks that the store is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.ping(ctx)
}

// Close releases the backend handle.
func (s *Store) Close(ctx context.Context) error {
	return s.close(ctx)
}

// ParseID converts a path identifier into an ObjectID. Anything that is not
// 24 hex characters yields ErrInvalidID.
func ParseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return oid, nil
}
