package normalize

// RawItem is the union of every persisted item shape: the current payload
// fields, the legacy single-image field, and the snake_case column names
// remote rows use alongside the payload. Numeric fields are declared as any
// because historical records stored them as JSON numbers or strings.
type RawItem struct {
	ID             string `json:"id,omitempty"`
	Name           string `json:"name,omitempty"`
	Notes          string `json:"notes,omitempty"`
	Size           string `json:"size,omitempty"`
	Condition      string `json:"condition,omitempty"`
	Category       string `json:"category,omitempty"`
	ListingURL     string `json:"listingUrl,omitempty"`
	PurchaseSource string `json:"purchaseSource,omitempty"`
	Status         string `json:"status,omitempty"`

	PurchasePrice any    `json:"purchasePrice,omitempty"`
	PurchaseDate  string `json:"purchaseDate,omitempty"`
	SalePrice     any    `json:"salePrice,omitempty"`
	SaleDate      string `json:"saleDate,omitempty"`
	SalePlatform  string `json:"salePlatform,omitempty"`
	Fees          any    `json:"fees,omitempty"`
	ShippingCost  any    `json:"shippingCost,omitempty"`

	// nil means absent; an empty slice is a valid present value.
	Images []string  `json:"images,omitempty"`
	Sales  []RawSale `json:"sales,omitempty"`

	// Legacy single-image revision.
	ImageURL string `json:"imageUrl,omitempty"`

	Quantity  any `json:"quantity,omitempty"`
	CreatedAt any `json:"createdAt,omitempty"`

	// Row-level alternates mirrored as typed columns by the remote store.
	// They fill gaps only; a present payload value always wins.
	RowSaleDate      string `json:"sale_date,omitempty"`
	RowSalePlatform  string `json:"sale_platform,omitempty"`
	RowSalePrice     any    `json:"sale_price,omitempty"`
	RowPurchasePrice any    `json:"purchase_price,omitempty"`
	RowPurchaseDate  string `json:"purchase_date,omitempty"`
	RowCreatedAt     any    `json:"created_at,omitempty"`
}

// RawSale mirrors a persisted sale record of a multi-unit lot.
type RawSale struct {
	ID           string `json:"id,omitempty"`
	SalePrice    any    `json:"salePrice,omitempty"`
	SalePlatform string `json:"salePlatform,omitempty"`
	SaleDate     string `json:"saleDate,omitempty"`
	Fees         any    `json:"fees,omitempty"`
	ShippingCost any    `json:"shippingCost,omitempty"`
}
