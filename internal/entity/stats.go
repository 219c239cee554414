package entity

// SummaryStats is the dashboard projection over the full item collection.
type SummaryStats struct {
	TotalProfit      float64 `json:"totalProfit"`
	TotalRevenue     float64 `json:"totalRevenue"`
	TotalCost        float64 `json:"totalCost"`
	SoldCount        int     `json:"soldCount"`
	ActiveCount      int     `json:"activeCount"`
	InventoryValue   float64 `json:"inventoryValue"`
	AverageSalePrice float64 `json:"averageSalePrice"`
	AverageProfit    float64 `json:"averageProfit"`
	ROIPercent       float64 `json:"roiPercent"`
}

// MonthBucket is one calendar month of sold-item aggregates. Key is
// "YYYY-MM" so buckets never collide across years.
type MonthBucket struct {
	Key     string  `json:"key"`
	Label   string  `json:"label"`
	Revenue float64 `json:"revenue"`
	Cost    float64 `json:"cost"`
	Profit  float64 `json:"profit"`
}

// PlatformCount is one row of the sold-by-platform breakdown.
type PlatformCount struct {
	Platform Platform `json:"platform"`
	Count    int      `json:"count"`
}
