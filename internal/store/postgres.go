package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/lemamita/mamita/pkg/db"
)

// DB is the subset of *pgxpool.Pool used by Postgres.
type DB interface {
	db.Beginner
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Postgres stores documents as JSONB rows of the documents table.
type Postgres struct {
	db DB
}

// NewPostgres wraps a pool.
func NewPostgres(pool DB) *Postgres {
	return &Postgres{db: pool}
}

const (
	selectDocument = `SELECT data FROM documents WHERE collection = $1 AND id = $2`
	lockDocument   = selectDocument + ` FOR UPDATE`
	upsertDocument = `INSERT INTO documents (collection, id, data, updated_at)
VALUES ($1, $2, $3::jsonb, now())
ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`
	selectFlaggedEmails = `SELECT data->>'email' FROM documents
WHERE collection = $1 AND data -> $2 = 'true'::jsonb AND coalesce(data->>'email', '') <> ''
ORDER BY id`
	selectCollection = `SELECT id, data FROM documents WHERE collection = $1 ORDER BY id`
	deleteDocument   = `DELETE FROM documents WHERE collection = $1 AND id = $2`
)

// Get decodes the document into dst or returns ErrNotFound.
func (p *Postgres) Get(ctx context.Context, collection, id string, dst any) error {
	return get(ctx, p.db, selectDocument, collection, id, dst)
}

// Put upserts the document.
func (p *Postgres) Put(ctx context.Context, collection, id string, v any) error {
	return put(ctx, p.db, collection, id, v)
}

// QueryEmails returns the email of every document whose boolean field is
// true, ordered by id.
func (p *Postgres) QueryEmails(ctx context.Context, collection, field string) ([]string, error) {
	rows, err := p.db.Query(ctx, selectFlaggedEmails, collection, field)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// Update runs fn inside a transaction holding a row lock on the document.
func (p *Postgres) Update(ctx context.Context, collection, id string, dst any, fn func(exists bool) error) error {
	return db.WithTx(ctx, p.db, func(tx pgx.Tx) error {
		err := get(ctx, tx, lockDocument, collection, id, dst)
		exists := err == nil
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		if err := fn(exists); err != nil {
			return err
		}
		return put(ctx, tx, collection, id, dst)
	})
}

// List returns every document of collection ordered by id.
func (p *Postgres) List(ctx context.Context, collection string) ([]Document, error) {
	rows, err := p.db.Query(ctx, selectCollection, collection)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Document, error) {
		var d Document
		err := row.Scan(&d.ID, &d.Data)
		return d, err
	})
}

// Delete removes the document or returns ErrNotFound.
func (p *Postgres) Delete(ctx context.Context, collection, id string) error {
	tag, err := p.db.Exec(ctx, deleteDocument, collection, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func get(ctx context.Context, q querier, query, collection, id string, dst any) error {
	var data []byte
	if err := q.QueryRow(ctx, query, collection, id).Scan(&data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return errors.Join(ErrDecode, err)
	}
	return nil
}

func put(ctx context.Context, q querier, collection, id string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Join(ErrEncode, err)
	}
	_, err = q.Exec(ctx, upsertDocument, collection, id, string(data))
	return err
}
