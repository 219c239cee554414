package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Karlitosantana/reima-resale/internal/analytics"
	"github.com/Karlitosantana/reima-resale/internal/entity"
)

const _defaultMonthlyWindow = 6

// Summary computes the headline figures over the current collection.
func (is *ItemService) Summary(ctx context.Context) (entity.SummaryStats, error) {
	const op = "service.Summary"

	items, err := is.ListItems(ctx)
	if err != nil {
		return entity.SummaryStats{}, fmt.Errorf("%s: list items: %w", op, err)
	}

	return analytics.Summarize(items), nil
}

// MonthlyStats buckets revenue, cost and profit from completed sales into
// the trailing months window. A non-positive window falls back to the
// default.
func (is *ItemService) MonthlyStats(ctx context.Context, months int) ([]entity.MonthBucket, error) {
	const op = "service.MonthlyStats"

	if months <= 0 {
		months = _defaultMonthlyWindow
	}

	items, err := is.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: list items: %w", op, err)
	}

	return analytics.MonthlySeries(items, months, time.Now()), nil
}

// PlatformStats counts completed sales per platform, busiest first.
func (is *ItemService) PlatformStats(ctx context.Context) ([]entity.PlatformCount, error) {
	const op = "service.PlatformStats"

	items, err := is.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: list items: %w", op, err)
	}

	return analytics.PlatformBreakdown(items), nil
}
