package analytics_test

import (
	"testing"
	"time"

	"github.com/Karlitosantana/reima-resale/internal/analytics"
	"github.com/Karlitosantana/reima-resale/internal/entity"
)

func soldItem(purchase, sale, fees, shipping float64, saleDate string, platform entity.Platform) entity.Item {
	return entity.Item{
		ID:            "sold-" + saleDate,
		Name:          "Sold item",
		Status:        entity.StatusSold,
		PurchasePrice: purchase,
		SalePrice:     sale,
		Fees:          fees,
		ShippingCost:  shipping,
		SaleDate:      saleDate,
		SalePlatform:  platform,
		Quantity:      1,
	}
}

func activeItem(purchase float64) entity.Item {
	return entity.Item{
		ID:            "active",
		Name:          "Active item",
		Status:        entity.StatusActive,
		PurchasePrice: purchase,
		Quantity:      1,
	}
}

func TestSummarize(t *testing.T) {
	items := []entity.Item{
		soldItem(1800, 2900, 0, 79, "2024-02-10", entity.PlatformVinted),
		soldItem(800, 1500, 0, 65, "2024-03-01", entity.PlatformFacebook),
		activeItem(2200),
	}

	stats := analytics.Summarize(items)

	if stats.SoldCount != 2 {
		t.Errorf("sold count = %d, want 2", stats.SoldCount)
	}
	if stats.ActiveCount != 1 {
		t.Errorf("active count = %d, want 1", stats.ActiveCount)
	}
	if stats.TotalRevenue != 4400 {
		t.Errorf("total revenue = %v, want 4400", stats.TotalRevenue)
	}
	// (2900-1800-79) + (1500-800-65)
	if stats.TotalProfit != 1656 {
		t.Errorf("total profit = %v, want 1656", stats.TotalProfit)
	}
	if stats.TotalCost != 2744 {
		t.Errorf("total cost = %v, want 2744", stats.TotalCost)
	}
	if stats.InventoryValue != 2200 {
		t.Errorf("inventory value = %v, want 2200", stats.InventoryValue)
	}
	if stats.AverageSalePrice != 2200 {
		t.Errorf("average sale price = %v, want 2200", stats.AverageSalePrice)
	}
	if stats.AverageProfit != 828 {
		t.Errorf("average profit = %v, want 828", stats.AverageProfit)
	}

	wantROI := (4400 - 2744.0) / 2744.0 * 100
	if stats.ROIPercent != wantROI {
		t.Errorf("roi = %v, want %v", stats.ROIPercent, wantROI)
	}
}

func TestSummarize_EmptyCollection(t *testing.T) {
	stats := analytics.Summarize(nil)

	if stats.SoldCount != 0 || stats.ActiveCount != 0 {
		t.Errorf("counts = %d/%d, want zeros", stats.SoldCount, stats.ActiveCount)
	}
	if stats.AverageSalePrice != 0 || stats.AverageProfit != 0 || stats.ROIPercent != 0 {
		t.Error("averages and roi must stay zero on an empty collection")
	}
}

// Sale-side fields on an active item must not leak into the sold totals.
func TestSummarize_ActiveItemWithSaleFields(t *testing.T) {
	item := activeItem(500)
	item.SalePrice = 900
	item.Fees = 20

	stats := analytics.Summarize([]entity.Item{item})

	if stats.TotalRevenue != 0 || stats.TotalProfit != 0 {
		t.Errorf("revenue/profit = %v/%v, want zeros for active item", stats.TotalRevenue, stats.TotalProfit)
	}
	if stats.InventoryValue != 500 {
		t.Errorf("inventory value = %v, want 500", stats.InventoryValue)
	}
}

func TestMonthlySeries(t *testing.T) {
	now := time.Date(2024, time.March, 20, 10, 0, 0, 0, time.UTC)

	items := []entity.Item{
		soldItem(1800, 2900, 0, 79, "2024-02-10", entity.PlatformVinted),
		soldItem(800, 1500, 0, 65, "2024-03-01", entity.PlatformFacebook),
		// Outside the window.
		soldItem(400, 700, 0, 0, "2023-09-15", entity.PlatformAukro),
		// Unparseable date is skipped, not fatal.
		soldItem(100, 200, 0, 0, "soon", entity.PlatformDepop),
		activeItem(2200),
	}

	buckets := analytics.MonthlySeries(items, 3, now)

	if len(buckets) != 3 {
		t.Fatalf("bucket count = %d, want 3", len(buckets))
	}

	wantKeys := []string{"2024-01", "2024-02", "2024-03"}
	for i, want := range wantKeys {
		if buckets[i].Key != want {
			t.Errorf("buckets[%d].Key = %q, want %q", i, buckets[i].Key, want)
		}
	}

	if buckets[0].Revenue != 0 || buckets[0].Profit != 0 {
		t.Errorf("january bucket = %+v, want zero-filled", buckets[0])
	}
	if buckets[1].Revenue != 2900 {
		t.Errorf("february revenue = %v, want 2900", buckets[1].Revenue)
	}
	if buckets[1].Profit != 1021 {
		t.Errorf("february profit = %v, want 1021", buckets[1].Profit)
	}
	if buckets[2].Revenue != 1500 {
		t.Errorf("march revenue = %v, want 1500", buckets[2].Revenue)
	}
}

func TestMonthlySeries_EmptyWindow(t *testing.T) {
	buckets := analytics.MonthlySeries(nil, 0, time.Now())
	if len(buckets) != 0 {
		t.Errorf("bucket count = %d, want 0", len(buckets))
	}
}

func TestMonthlySeries_AllBucketsEmittedWithoutSales(t *testing.T) {
	now := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)

	buckets := analytics.MonthlySeries(nil, 6, now)

	if len(buckets) != 6 {
		t.Fatalf("bucket count = %d, want 6", len(buckets))
	}
	if buckets[0].Key != "2024-01" || buckets[5].Key != "2024-06" {
		t.Errorf("window = %q..%q, want 2024-01..2024-06", buckets[0].Key, buckets[5].Key)
	}
	for _, b := range buckets {
		if b.Revenue != 0 || b.Cost != 0 || b.Profit != 0 {
			t.Errorf("bucket %s = %+v, want zero-filled", b.Key, b)
		}
	}
}

func TestPlatformBreakdown(t *testing.T) {
	items := []entity.Item{
		soldItem(100, 200, 0, 0, "2024-01-01", entity.PlatformVinted),
		soldItem(100, 200, 0, 0, "2024-01-02", entity.PlatformVinted),
		soldItem(100, 200, 0, 0, "2024-01-03", entity.PlatformFacebook),
		// Absent platform folds into Jiné.
		soldItem(100, 200, 0, 0, "2024-01-04", ""),
		activeItem(500),
	}

	breakdown := analytics.PlatformBreakdown(items)

	if len(breakdown) != 3 {
		t.Fatalf("platform count = %d, want 3", len(breakdown))
	}
	if breakdown[0].Platform != entity.PlatformVinted || breakdown[0].Count != 2 {
		t.Errorf("top platform = %+v, want Vinted with 2", breakdown[0])
	}
	// Facebook and Jiné tie at 1; name order breaks the tie.
	if breakdown[1].Platform != entity.PlatformFacebook {
		t.Errorf("second platform = %q, want Facebook", breakdown[1].Platform)
	}
	if breakdown[2].Platform != entity.PlatformOther {
		t.Errorf("third platform = %q, want Jiné", breakdown[2].Platform)
	}
}

func TestPlatformBreakdown_NoSoldItems(t *testing.T) {
	breakdown := analytics.PlatformBreakdown([]entity.Item{activeItem(100)})
	if len(breakdown) != 0 {
		t.Errorf("breakdown = %v, want empty", breakdown)
	}
}
