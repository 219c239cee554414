package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Karlitosantana/reima-resale/internal/entity"
	"github.com/Karlitosantana/reima-resale/internal/normalize"
	"github.com/Karlitosantana/reima-resale/pkg/metric"
	"github.com/Karlitosantana/reima-resale/pkg/storage/postgres"

	"github.com/jackc/pgx/v5/pgconn"
)

const _uniqueViolationCode = "23505"

// RemoteItemRepository is the authoritative store when the service runs in
// remote mode. Each row keys the item id to a jsonb payload holding the full
// record, alongside mirrored typed columns kept for query convenience; the
// payload wins on read, field by field (the normalizer owns that rule).
type RemoteItemRepository struct {
	db      *postgres.Postgres
	metrics metric.Storage
}

func NewRemoteItemRepository(db *postgres.Postgres, metrics metric.Storage) *RemoteItemRepository {
	return &RemoteItemRepository{
		db:      db,
		metrics: metrics,
	}
}

func (rr *RemoteItemRepository) List(ctx context.Context, limit uint64) ([]normalize.RawItem, error) {
	const op = "repository.remote.List"

	start := time.Now()
	defer func() {
		rr.metrics.ObserveQuery("remote", "list", time.Since(start))
	}()

	query := rr.db.Builder.
		Select("id", "name", "data", "created_at", "sale_date", "sale_price", "purchase_price", "purchase_date").
		From("items").
		Limit(limit)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: building query: %w", op, err)
	}

	rows, err := rr.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		rr.metrics.IncrementFailures("remote", "list")
		return nil, fmt.Errorf("%s: query: %w", op, err)
	}
	defer rows.Close()

	result := make([]normalize.RawItem, 0)
	for rows.Next() {
		var (
			id            string
			name          *string
			data          []byte
			createdAt     *int64
			saleDate      *string
			salePrice     *float64
			purchasePrice *float64
			purchaseDate  *string
		)
		if err = rows.Scan(&id, &name, &data, &createdAt, &saleDate, &salePrice, &purchasePrice, &purchaseDate); err != nil {
			rr.metrics.IncrementFailures("remote", "list")
			return nil, fmt.Errorf("%s: rows scan: %w", op, err)
		}

		var raw normalize.RawItem
		if len(data) > 0 {
			// A payload that fails to decode degrades to the mirrored
			// columns instead of poisoning the whole read.
			if err := json.Unmarshal(data, &raw); err != nil {
				raw = normalize.RawItem{}
			}
		}

		// The row key always wins; mirrored columns fill gaps only.
		raw.ID = id
		if raw.Name == "" && name != nil {
			raw.Name = *name
		}
		if createdAt != nil {
			raw.RowCreatedAt = *createdAt
		}
		if saleDate != nil {
			raw.RowSaleDate = *saleDate
		}
		if salePrice != nil {
			raw.RowSalePrice = *salePrice
		}
		if purchasePrice != nil {
			raw.RowPurchasePrice = *purchasePrice
		}
		if purchaseDate != nil {
			raw.RowPurchaseDate = *purchaseDate
		}

		result = append(result, raw)
	}

	if rows.Err() != nil {
		rr.metrics.IncrementFailures("remote", "list")
		return nil, fmt.Errorf("%s: rows final error: %w", op, rows.Err())
	}

	return result, nil
}

func (rr *RemoteItemRepository) Upsert(ctx context.Context, item *entity.Item) error {
	const op = "repository.remote.Upsert"

	start := time.Now()
	defer func() {
		rr.metrics.ObserveQuery("remote", "upsert", time.Since(start))
	}()

	payload, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("%s: marshal item: %w", op, err)
	}

	query := rr.db.Builder.Insert("items").
		Columns("id", "name", "data", "created_at", "sale_date", "sale_price", "purchase_price", "purchase_date").
		Values(
			item.ID,
			item.Name,
			payload,
			item.CreatedAt,
			nullableString(item.SaleDate),
			nullableFloat(item.SalePrice, item.Status == entity.StatusSold),
			item.PurchasePrice,
			nullableString(item.PurchaseDate),
		).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			data = EXCLUDED.data,
			created_at = EXCLUDED.created_at,
			sale_date = EXCLUDED.sale_date,
			sale_price = EXCLUDED.sale_price,
			purchase_price = EXCLUDED.purchase_price,
			purchase_date = EXCLUDED.purchase_date`)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("%s: building query: %w", op, err)
	}

	if _, err = rr.db.Pool.Exec(ctx, sql, args...); err != nil {
		rr.metrics.IncrementFailures("remote", "upsert")
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == _uniqueViolationCode {
			return entity.ErrConflictingData
		}
		return fmt.Errorf("%s: exec: %w", op, err)
	}

	return nil
}

func (rr *RemoteItemRepository) Delete(ctx context.Context, id string) error {
	const op = "repository.remote.Delete"

	start := time.Now()
	defer func() {
		rr.metrics.ObserveQuery("remote", "delete", time.Since(start))
	}()

	query := rr.db.Builder.Delete("items").Where("id = ?", id)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("%s: building query: %w", op, err)
	}

	if _, err = rr.db.Pool.Exec(ctx, sql, args...); err != nil {
		rr.metrics.IncrementFailures("remote", "delete")
		return fmt.Errorf("%s: exec: %w", op, err)
	}

	return nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nullableFloat(f float64, present bool) *float64 {
	if !present {
		return nil
	}
	return &f
}
