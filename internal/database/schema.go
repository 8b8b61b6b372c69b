package database

import "context"

// RecordsTable holds every persisted entity as a JSON document keyed by
// (collection, id).
const RecordsTable = "shop_records"

const RecordsSchemaSQL = `
CREATE TABLE IF NOT EXISTS shop_records (
    collection VARCHAR(32) NOT NULL,
    id VARCHAR(64) NOT NULL,
    body JSON NOT NULL,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
    PRIMARY KEY (collection, id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

// SetupSchema creates the record table
func (db *DB) SetupSchema(ctx context.Context) error {
	_, err := db.ExecContext(ctx, RecordsSchemaSQL)
	return err
}

// DropSchema removes the record table
func (db *DB) DropSchema(ctx context.Context) error {
	_, err := db.ExecContext(ctx, "DROP TABLE IF EXISTS shop_records")
	return err
}
