// Package analytics folds an item collection into the dashboard projections.
// Everything here is pure and recomputed from the full collection on demand;
// nothing is incrementally maintained.
package analytics

import (
	"sort"
	"time"

	"github.com/Karlitosantana/reima-resale/internal/entity"
)

const _dateLayout = "2006-01-02"

// Summarize partitions items by status and folds the sold side into
// revenue/cost/profit. Profit is computed per item and then summed, so that
// edge behavior matches the per-item view shown next to each record.
func Summarize(items []entity.Item) entity.SummaryStats {
	var stats entity.SummaryStats

	for i := range items {
		item := &items[i]
		if item.Status == entity.StatusSold {
			stats.SoldCount++
			stats.TotalProfit += item.Profit()
			stats.TotalRevenue += item.SalePrice
			stats.TotalCost += item.SaleCost()
		} else {
			stats.ActiveCount++
			stats.InventoryValue += item.PurchasePrice
		}
	}

	if stats.SoldCount > 0 {
		stats.AverageSalePrice = stats.TotalRevenue / float64(stats.SoldCount)
		stats.AverageProfit = stats.TotalProfit / float64(stats.SoldCount)
	}
	if stats.TotalCost > 0 {
		stats.ROIPercent = (stats.TotalRevenue - stats.TotalCost) / stats.TotalCost * 100
	}

	return stats
}

// MonthlySeries buckets sold items into the trailing `months` calendar
// months anchored at now. Every bucket in the window is emitted, zero-filled
// and in chronological order, whether or not it saw a sale.
func MonthlySeries(items []entity.Item, months int, now time.Time) []entity.MonthBucket {
	if months < 1 {
		return []entity.MonthBucket{}
	}

	buckets := make([]entity.MonthBucket, 0, months)
	index := make(map[string]int, months)

	anchor := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	for i := months - 1; i >= 0; i-- {
		month := anchor.AddDate(0, -i, 0)
		key := month.Format("2006-01")
		index[key] = len(buckets)
		buckets = append(buckets, entity.MonthBucket{
			Key:   key,
			Label: month.Format("Jan"),
		})
	}

	for i := range items {
		item := &items[i]
		if item.Status != entity.StatusSold || item.SaleDate == "" {
			continue
		}
		saleDate, err := time.Parse(_dateLayout, item.SaleDate)
		if err != nil {
			continue
		}
		pos, ok := index[saleDate.Format("2006-01")]
		if !ok {
			continue
		}
		buckets[pos].Revenue += item.SalePrice
		buckets[pos].Cost += item.SaleCost()
		buckets[pos].Profit += item.Profit()
	}

	return buckets
}

// PlatformBreakdown counts sold items per platform, absent platform folding
// into the "Jiné" label, ordered by count descending with platform name as
// the deterministic tiebreak.
func PlatformBreakdown(items []entity.Item) []entity.PlatformCount {
	counts := make(map[entity.Platform]int)

	for i := range items {
		item := &items[i]
		if item.Status != entity.StatusSold {
			continue
		}
		p := item.SalePlatform
		if p == "" {
			p = entity.PlatformOther
		}
		counts[p]++
	}

	result := make([]entity.PlatformCount, 0, len(counts))
	for platform, count := range counts {
		if count <= 0 {
			continue
		}
		result = append(result, entity.PlatformCount{Platform: platform, Count: count})
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Platform < result[j].Platform
	})

	return result
}
