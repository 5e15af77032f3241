package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// planCollectionRow mirrors one row of plan_collections.
type planCollectionRow struct {
	Name      string    `db:"name"`
	Content   string    `db:"content"`
	Version   string    `db:"version"`
	UpdatedAt time.Time `db:"updated_at"`
}

// PostgresCollection keeps the plan collection in one plan_collections row. The version column is
// the compare-and-swap guard.
type PostgresCollection struct {
	db   *sqlx.DB
	name string
}

// NewPostgresCollection binds the collection to the row identified by name.
func NewPostgresCollection(db *sqlx.DB, name string) *PostgresCollection {
	return &PostgresCollection{db: db, name: name}
}

// Load implements CollectionBackend.
func (p *PostgresCollection) Load(ctx context.Context) ([]byte, error) {
	const query = `SELECT content FROM plan_collections WHERE name = $1`
	var content string
	if err := p.db.GetContext(ctx, &content, query, p.name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCollectionMissing
		}
		return nil, fmt.Errorf("load plan collection: %w", err)
	}
	return []byte(content), nil
}

// Replace implements CollectionBackend.
func (p *PostgresCollection) Replace(ctx context.Context, expected string, next []byte) error {
	row := planCollectionRow{
		Name:      p.name,
		Content:   string(next),
		Version:   VersionOf(next),
		UpdatedAt: time.Now().UTC(),
	}

	var (
		res sql.Result
		err error
	)
	if expected == "" {
		const insert = `INSERT INTO plan_collections (name, content, version, updated_at)
			VALUES (:name, :content, :version, :updated_at)
			ON CONFLICT (name) DO NOTHING`
		res, err = p.db.NamedExecContext(ctx, insert, row)
	} else {
		const update = `UPDATE plan_collections SET content = $1, version = $2, updated_at = $3
			WHERE name = $4 AND version = $5`
		res, err = p.db.ExecContext(ctx, update, row.Content, row.Version, row.UpdatedAt, row.Name, expected)
	}
	if err != nil {
		return fmt.Errorf("replace plan collection: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("replace plan collection: %w", err)
	}
	if affected == 0 {
		return ErrVersionMismatch
	}
	return nil
}
