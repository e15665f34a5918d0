package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/postboard/postboard-be/internal/models"
)

// OpenSQLite opens an embedded document store at dsn (a file path or
// ":memory:"). Documents are kept as JSON, keyed by ObjectID hex, so the
// identifier format matches the Mongo backend.
func OpenSQLite(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// A single connection keeps ":memory:" databases alive and avoids
	// SQLITE_BUSY between writers.
	db.SetMaxOpenConns(1)

	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if err = Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{
		Users:  NewSQLiteCollection[models.User](db, UsersCollection),
		Posts:  NewSQLiteCollection[models.Post](db, PostsCollection),
		driver: "sqlite",
		ping:   db.PingContext,
		close: func(context.Context) error {
			return db.Close()
		},
	}, nil
}

// Migrate creates the document tables if they do not exist.
func Migrate(ctx context.Context, db *sql.DB) error {
	const sqlStmt = `
	CREATE TABLE IF NOT EXISTS users (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		doc TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS posts (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		doc TEXT NOT NULL
	);
	`
	_, err := db.ExecContext(ctx, sqlStmt)
	return err
}

// SQLiteCollection implements Collection on one SQLite document table.
type SQLiteCollection[T Document[T]] struct {
	name string
	db   *sql.DB
}

// NewSQLiteCollection binds a Collection to the table name. name must be
// one of the tables created by Migrate.
func NewSQLiteCollection[T Document[T]](db *sql.DB, name string) *SQLiteCollection[T] {
	return &SQLiteCollection[T]{name: name, db: db}
}

// Insert stores record under a freshly generated ObjectID.
func (c *SQLiteCollection[T]) Insert(ctx context.Context, record T) (T, error) {
	var zero T
	oid := primitive.NewObjectID()
	record = record.WithID(oid)

	doc, err := json.Marshal(record)
	if err != nil {
		return zero, storeErr("insert", c.name, err)
	}
	if _, err := c.db.ExecContext(ctx, "INSERT INTO "+c.name+" (id, doc) VALUES (?, ?)", oid.Hex(), string(doc)); err != nil {
		return zero, storeErr("insert", c.name, err)
	}
	return record, nil
}

// FindAll returns every document in insertion order. Any scan or decode
// error discards what was read so far.
func (c *SQLiteCollection[T]) FindAll(ctx context.Context) ([]T, error) {
	rows, err := c.db.QueryContext(ctx, "SELECT doc FROM "+c.name+" ORDER BY seq")
	if err != nil {
		return nil, storeErr("find", c.name, err)
	}
	defer rows.Close()

	items := make([]T, 0)
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, storeErr("find", c.name, err)
		}
		var item T
		if err := json.Unmarshal([]byte(doc), &item); err != nil {
			return nil, storeErr("find", c.name, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("find", c.name, err)
	}
	return items, nil
}

// FindByID returns the document with the given id.
func (c *SQLiteCollection[T]) FindByID(ctx context.Context, id string) (T, error) {
	var item T
	oid, err := ParseID(id)
	if err != nil {
		return item, err
	}

	var doc string
	err = c.db.QueryRowContext(ctx, "SELECT doc FROM "+c.name+" WHERE id = ?", oid.Hex()).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return item, ErrNotFound
	}
	if err != nil {
		return item, storeErr("find_one", c.name, err)
	}
	if err := json.Unmarshal([]byte(doc), &item); err != nil {
		return item, storeErr("find_one", c.name, err)
	}
	return item, nil
}

// UpdateByID merges the mutable fields of record into the stored document
// and returns the matched count.
func (c *SQLiteCollection[T]) UpdateByID(ctx context.Context, id string, record T) (int64, error) {
	oid, err := ParseID(id)
	if err != nil {
		return 0, err
	}

	patch, err := json.Marshal(record.Fields())
	if err != nil {
		return 0, storeErr("update_one", c.name, err)
	}
	res, err := c.db.ExecContext(ctx, "UPDATE "+c.name+" SET doc = json_patch(doc, ?) WHERE id = ?", string(patch), oid.Hex())
	if err != nil {
		return 0, storeErr("update_one", c.name, err)
	}
	matched, err := res.RowsAffected()
	if err != nil {
		return 0, storeErr("update_one", c.name, err)
	}
	return matched, nil
}

// DeleteByID removes the matching document and returns the deleted count.
func (c *SQLiteCollection[T]) DeleteByID(ctx context.Context, id string) (int64, error) {
	oid, err := ParseID(id)
	if err != nil {
		return 0, err
	}

	res, err := c.db.ExecContext(ctx, "DELETE FROM "+c.name+" WHERE id = ?", oid.Hex())
	if err != nil {
		return 0, storeErr("delete_one", c.name, err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, storeErr("delete_one", c.name, err)
	}
	return deleted, nil
}
