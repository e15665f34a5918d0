package database

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/postboard/postboard-be/internal/models"
)

// OpenMongo connects to the MongoDB deployment at uri and returns a Store
// whose collections live in database dbName. The client pools its own
// connections and is shared by every request.
func OpenMongo(ctx context.Context, uri, dbName string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	db := client.Database(dbName)
	return &Store{
		Users:  NewMongoCollection[models.User](db, UsersCollection),
		Posts:  NewMongoCollection[models.Post](db, PostsCollection),
		driver: "mongo",
		ping: func(ctx context.Context) error {
			return client.Ping(ctx, readpref.Primary())
		},
		close: client.Disconnect,
	}, nil
}

// MongoCollection implements Collection on a MongoDB collection.
type MongoCollection[T Document[T]] struct {
	name string
	coll *mongo.Collection
}

// NewMongoCollection binds a Collection to db.name.
func NewMongoCollection[T Document[T]](db *mongo.Database, name string) *MongoCollection[T] {
	return &MongoCollection[T]{name: name, coll: db.Collection(name)}
}

// Insert stores record under a freshly generated ObjectID.
func (c *MongoCollection[T]) Insert(ctx context.Context, record T) (T, error) {
	record = record.WithID(primitive.NewObjectID())
	if _, err := c.coll.InsertOne(ctx, record); err != nil {
		var zero T
		return zero, storeErr("insert", c.name, err)
	}
	return record, nil
}

// FindAll returns every document in the order the server yields them. A
// decode or cursor error discards what was read so far.
func (c *MongoCollection[T]) FindAll(ctx context.Context) ([]T, error) {
	cursor, err := c.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, storeErr("find", c.name, err)
	}
	defer cursor.Close(ctx)

	items := make([]T, 0)
	for cursor.Next(ctx) {
		var item T
		if err := cursor.Decode(&item); err != nil {
			return nil, storeErr("find", c.name, err)
		}
		items = append(items, item)
	}
	if err := cursor.Err(); err != nil {
		return nil, storeErr("find", c.name, err)
	}
	return items, nil
}

// FindByID returns the document with the given id.
func (c *MongoCollection[T]) FindByID(ctx context.Context, id string) (T, error) {
	var item T
	oid, err := ParseID(id)
	if err != nil {
		return item, err
	}

	err = c.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&item)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return item, ErrNotFound
	}
	if err != nil {
		return item, storeErr("find_one", c.name, err)
	}
	return item, nil
}

// UpdateByID sets the mutable fields of record on the matching document and
// returns the matched count.
func (c *MongoCollection[T]) UpdateByID(ctx context.Context, id string, record T) (int64, error) {
	oid, err := ParseID(id)
	if err != nil {
		return 0, err
	}

	res, err := c.coll.UpdateByID(ctx, oid, bson.M{"$set": record.Fields()})
	if err != nil {
		return 0, storeErr("update_one", c.name, err)
	}
	return res.MatchedCount, nil
}

// DeleteByID removes the matching document and returns the deleted count.
func (c *MongoCollection[T]) DeleteByID(ctx context.Context, id string) (int64, error) {
	oid, err := ParseID(id)
	if err != nil {
		return 0, err
	}

	res, err := c.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return 0, storeErr("delete_one", c.name, err)
	}
	return res.DeletedCount, nil
}
