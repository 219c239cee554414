package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Karlitosantana/reima-resale/internal/entity"
	"github.com/Karlitosantana/reima-resale/internal/normalize"
	"github.com/Karlitosantana/reima-resale/pkg/logger"
)

// Export serializes the current collection as indented JSON, suitable for a
// file download and for feeding back through Import.
func (is *ItemService) Export(ctx context.Context) ([]byte, error) {
	const op = "service.Export"

	items, err := is.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: list items: %w", op, err)
	}

	payload, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%s: marshal items: %w", op, err)
	}

	is.log.Ctx(ctx).LogAttrs(ctx, logger.InfoLevel, "collection exported",
		logger.String("op", op),
		logger.Int("count", len(items)),
	)

	return payload, nil
}

// Import replaces the entire local collection with the parsed payload.
// The payload must be a JSON array whose first element carries at least an
// id and a name; anything else is rejected without touching stored data.
func (is *ItemService) Import(ctx context.Context, payload []byte) ([]entity.Item, error) {
	const op = "service.Import"
	log := is.log.Ctx(ctx)

	var raws []normalize.RawItem
	if err := json.Unmarshal(payload, &raws); err != nil {
		return nil, fmt.Errorf("%s: parse payload: %w", op, entity.ErrInvalidData)
	}

	if len(raws) > 0 && (raws[0].ID == "" || raws[0].Name == "") {
		return nil, fmt.Errorf("%s: first record missing id or name: %w", op, entity.ErrInvalidData)
	}

	items := is.normalizer.Items(raws)

	if err := is.local.Store(ctx, items); err != nil {
		// A restore that did not land is a hard failure, unlike the
		// best-effort writes on the save path.
		return nil, fmt.Errorf("%s: store items: %w", op, err)
	}
	is.itemCache.Purge()

	is.notifyChange(ctx, op)

	log.LogAttrs(ctx, logger.InfoLevel, "collection imported",
		logger.String("op", op),
		logger.Int("count", len(items)),
	)

	return items, nil
}
