package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// blobRepo implements BlobRepo on the blobs table.
type blobRepo struct {
	db *sql.DB
}

func (r *blobRepo) Load(ctx context.Context, key string) ([]byte, bool, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select("data").
		From(entsql.Table(BlobsTable.Name)).
		Where(entsql.EQ("name", key)).
		Query()

	var data []byte
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load blob %q: %w", key, err)
	}
	return data, true, nil
}

func (r *blobRepo) Save(ctx context.Context, key string, data []byte) error {
	query, args := entsql.Dialect(dialect.SQLite).
		Insert(BlobsTable.Name).
		Columns("name", "data", "updated_at").
		Values(key, data, time.Now().UTC()).
		OnConflict(
			entsql.ConflictColumns("name"),
			entsql.ResolveWithNewValues(),
		).
		Query()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save blob %q: %w", key, err)
	}
	return nil
}

func (r *blobRepo) Delete(ctx context.Context, key string) error {
	query, args := entsql.Dialect(dialect.SQLite).
		Delete(BlobsTable.Name).
		Where(entsql.EQ("name", key)).
		Query()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete blob %q: %w", key, err)
	}
	return nil
}
