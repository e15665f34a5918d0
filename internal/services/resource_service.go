package services

import (
	"context"

	"github.com/postboard/postboard-be/internal/database"
)

// ResourceServiceProvider defines the CRUD operations exposed for one resource kind.
type ResourceServiceProvider[T any] interface {
	Create(ctx context.Context, record T) (T, error)
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id string) (T, error)
	Update(ctx context.Context, id string, record T) (int64, error)
	Delete(ctx context.Context, id string) (int64, error)
}

// ResourceService forwards each call to its collection and announces
// successful mutations on the change feed.
type ResourceService[T database.Document[T]] struct {
	name       string // singular, used in event types
	collection string
	coll       database.Collection[T]
	events     EventServiceProvider
}

// NewResourceService creates a ResourceService for the resource called name
// (e.g. "user") stored in the named collection.
func NewResourceService[T database.Document[T]](name, collection string, coll database.Collection[T], events EventServiceProvider) *ResourceService[T] {
	return &ResourceService[T]{
		name:       name,
		collection: collection,
		coll:       coll,
		events:     events,
	}
}

// Create inserts record; the store assigns its identifier.
func (s *ResourceService[T]) Create(ctx context.Context, record T) (T, error) {
	created, err := s.coll.Insert(ctx, record)
	if err != nil {
		return created, err
	}
	s.events.Publish(s.collection, s.name+".created", created.GetID().Hex(), created)
	return created, nil
}

// List returns every record in the collection.
func (s *ResourceService[T]) List(ctx context.Context) ([]T, error) {
	return s.coll.FindAll(ctx)
}

// Get returns a single record by its identifier.
func (s *ResourceService[T]) Get(ctx context.Context, id string) (T, error) {
	return s.coll.FindByID(ctx, id)
}

// Update replaces the mutable fields of the record with the given id and
// returns the matched count.
func (s *ResourceService[T]) Update(ctx context.Context, id string, record T) (int64, error) {
	matched, err := s.coll.UpdateByID(ctx, id, record)
	if err != nil || matched == 0 {
		return matched, err
	}
	s.events.Publish(s.collection, s.name+".updated", id, record.Fields())
	return matched, nil
}

// Delete removes the record with the given id and returns the deleted count.
func (s *ResourceService[T]) Delete(ctx context.Context, id string) (int64, error) {
	deleted, err := s.coll.DeleteByID(ctx, id)
	if err != nil || deleted == 0 {
		return deleted, err
	}
	s.events.Publish(s.collection, s.name+".deleted", id, nil)
	return deleted, nil
}
