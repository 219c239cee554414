package repository

import (
	"context"
	"fmt"

	"github.com/Karlitosantana/reima-resale/pkg/storage/postgres"
)

// _itemsSchema keeps the remote table self-bootstrapping: the jsonb payload
// is the record of truth, the typed columns mirror the fields the list query
// reads without decoding.
const _itemsSchema = `
CREATE TABLE IF NOT EXISTS items (
    id             TEXT PRIMARY KEY,
    name           TEXT,
    data           JSONB NOT NULL,
    created_at     BIGINT,
    sale_date      TEXT,
    sale_price     DOUBLE PRECISION,
    purchase_price DOUBLE PRECISION,
    purchase_date  TEXT
);

CREATE INDEX IF NOT EXISTS idx_items_sale_date ON items (sale_date) WHERE sale_date IS NOT NULL;
`

// EnsureSchema creates the items table when it does not exist yet. Safe to
// run on every startup.
func EnsureSchema(ctx context.Context, db *postgres.Postgres) error {
	const op = "repository.EnsureSchema"

	if _, err := db.Pool.Exec(ctx, _itemsSchema); err != nil {
		return fmt.Errorf("%s: exec schema: %w", op, err)
	}

	return nil
}
