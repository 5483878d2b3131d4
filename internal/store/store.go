// Package store is the document repository behind the back office. Documents
// are JSON values addressed by collection and id, mirroring the hosted
// document database the admin pages were built on.
package store

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"io/fs"
)

var (
	ErrNotFound = errors.New("store: document not found")
	ErrEncode   = errors.New("store: failed to encode document")
	ErrDecode   = errors.New("store: failed to decode document")
)

// Documents is the narrow repository the newsletter pipeline and the admin
// handlers depend on.
type Documents interface {
	// Get decodes the document into dst or returns ErrNotFound.
	Get(ctx context.Context, collection, id string, dst any) error
	// Put creates or replaces the document.
	Put(ctx context.Context, collection, id string, v any) error
	// QueryEmails returns the email field of every document in collection
	// whose boolean field is true, ordered by id.
	QueryEmails(ctx context.Context, collection, field string) ([]string, error)
	// Update loads the document into dst, calls fn and stores dst when fn
	// succeeds. exists is false when the document was absent and dst was left
	// untouched. Concurrent updates of the same document are serialized.
	Update(ctx context.Context, collection, id string, dst any, fn func(exists bool) error) error
	// List returns every document of collection ordered by id.
	List(ctx context.Context, collection string) ([]Document, error)
	// Delete removes the document or returns ErrNotFound.
	Delete(ctx context.Context, collection, id string) error
}

// Document is a raw stored document.
type Document struct {
	ID   string
	Data json.RawMessage
}

// Decode unmarshals the document data into dst.
func (d Document) Decode(dst any) error {
	if err := json.Unmarshal(d.Data, dst); err != nil {
		return errors.Join(ErrDecode, err)
	}
	return nil
}

//go:embed migrations/*.sql
var migrations embed.FS

// Migrations returns the goose migrations for the documents table.
func Migrations() fs.FS {
	sub, err := fs.Sub(migrations, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}
