package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/matthieukhl/shopcore/internal/database"
)

const (
	mysqlLoadSQL   = "SELECT id, body FROM shop_records WHERE collection = ?"
	mysqlGetSQL    = "SELECT body FROM shop_records WHERE collection = ? AND id = ?"
	mysqlClearSQL  = "DELETE FROM shop_records WHERE collection = ?"
	mysqlDeleteSQL = "DELETE FROM shop_records WHERE collection = ? AND id = ?"
	mysqlInsertSQL = "INSERT INTO shop_records (collection, id, body) VALUES (?, ?, ?)"
	mysqlUpsertSQL = "INSERT INTO shop_records (collection, id, body) VALUES (?, ?, ?) ON DUPLICATE KEY UPDATE body = VALUES(body)"
)

// MySQL stores records in the shop_records table. Save and Commit run in a
// single SQL transaction.
type MySQL struct {
	db *database.DB
}

func NewMySQL(db *database.DB) *MySQL {
	return &MySQL{db: db}
}

func (s *MySQL) Load(ctx context.Context, collection string) (map[string][]byte, error) {
	rows, err := s.db.QueryContext(ctx, mysqlLoadSQL, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", collection, err)
	}
	defer rows.Close()

	out := make(map[string][]byte)
	for rows.Next() {
		var (
			id   string
			body []byte
		)
		if err := rows.Scan(&id, &body); err != nil {
			return nil, fmt.Errorf("failed to scan %s record: %w", collection, err)
		}
		out[id] = body
	}
	return out, rows.Err()
}

func (s *MySQL) Get(ctx context.Context, collection, id string) ([]byte, error) {
	var body []byte
	err := s.db.QueryRowContext(ctx, mysqlGetSQL, collection, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s/%s: %w", collection, id, err)
	}
	return body, nil
}

func (s *MySQL) Save(ctx context.Context, collection string, records map[string][]byte) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, mysqlClearSQL, collection); err != nil {
			return fmt.Errorf("failed to clear %s: %w", collection, err)
		}
		for _, id := range sortedKeys(records) {
			if _, err := tx.ExecContext(ctx, mysqlInsertSQL, collection, id, records[id]); err != nil {
				return fmt.Errorf("failed to insert %s/%s: %w", collection, id, err)
			}
		}
		return nil
	})
}

func (s *MySQL) Commit(ctx context.Context, writes ...Write) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, w := range writes {
			if w.Delete {
				if _, err := tx.ExecContext(ctx, mysqlDeleteSQL, w.Collection, w.ID); err != nil {
					return fmt.Errorf("failed to delete %s/%s: %w", w.Collection, w.ID, err)
				}
				continue
			}
			if _, err := tx.ExecContext(ctx, mysqlUpsertSQL, w.Collection, w.ID, w.Record); err != nil {
				return fmt.Errorf("failed to upsert %s/%s: %w", w.Collection, w.ID, err)
			}
		}
		return nil
	})
}

func (s *MySQL) HealthCheck(ctx context.Context) error {
	return s.db.HealthCheck(ctx)
}

func (s *MySQL) Close() error {
	return s.db.Close()
}

func (s *MySQL) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func sortedKeys(records map[string][]byte) []string {
	keys := make([]string, 0, len(records))
	for k := range records {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
