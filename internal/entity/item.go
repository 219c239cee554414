package entity

type (
	Status    string
	Category  string
	Condition string
	Platform  string
)

const (
	StatusActive Status = "active"
	StatusSold   Status = "sold"
)

const (
	CategoryOveralls    Category = "overalls"
	CategoryJackets     Category = "jackets"
	CategoryPants       Category = "pants"
	CategorySoftshell   Category = "softshell"
	CategoryShoes       Category = "shoes"
	CategoryAccessories Category = "accessories"
	CategoryOther       Category = "other"
)

const (
	ConditionNew     Condition = "new"
	ConditionLikeNew Condition = "like-new"
	ConditionGood    Condition = "good"
	ConditionFair    Condition = "fair"
)

const (
	PlatformVinted   Platform = "Vinted"
	PlatformFacebook Platform = "Facebook"
	PlatformAukro    Platform = "Aukro"
	PlatformDepop    Platform = "Depop"
	PlatformOther    Platform = "Jiné"
)

// Item is one inventory unit (or multi-unit lot) tracked from purchase to
// resale. Records are replaced wholesale on save; there is no field-level
// patching.
type Item struct {
	ID             string    `json:"id"             validate:"required"`
	Name           string    `json:"name"           validate:"required,max=255"`
	Notes          string    `json:"notes,omitempty"`
	Size           string    `json:"size,omitempty"`
	Condition      Condition `json:"condition,omitempty"    validate:"omitempty,oneof=new like-new good fair"`
	Category       Category  `json:"category"       validate:"required,oneof=overalls jackets pants softshell shoes accessories other"`
	ListingURL     string    `json:"listingUrl,omitempty"`
	PurchasePrice  float64   `json:"purchasePrice"  validate:"gte=0"`
	PurchaseDate   string    `json:"purchaseDate"`
	PurchaseSource string    `json:"purchaseSource"`
	Status         Status    `json:"status"         validate:"required,oneof=active sold"`

	// Legacy single-sale facet. Meaningful only when Status is sold; the
	// normalizer mirrors it into Sales for quantity-1 items.
	SalePrice    float64  `json:"salePrice,omitempty"`
	SaleDate     string   `json:"saleDate,omitempty"`
	SalePlatform Platform `json:"salePlatform,omitempty" validate:"omitempty,oneof=Vinted Facebook Aukro Depop Jiné"`
	Fees         float64  `json:"fees,omitempty"`
	ShippingCost float64  `json:"shippingCost,omitempty"`

	// Images are ordered; the first entry is the cover image.
	Images []string `json:"images"`

	Quantity int    `json:"quantity" validate:"gte=1"`
	Sales    []Sale `json:"sales"`

	CreatedAt int64 `json:"createdAt"`
}

// Sale is one completed disposition of a single unit of a lot.
type Sale struct {
	ID           string   `json:"id"`
	SalePrice    float64  `json:"salePrice"`
	SalePlatform Platform `json:"salePlatform"`
	SaleDate     string   `json:"saleDate"`
	Fees         float64  `json:"fees"`
	ShippingCost float64  `json:"shippingCost"`
}

// Profit is the realized profit of a sold item, zero for active ones. Sale
// fields present on an active item never contribute.
func (i *Item) Profit() float64 {
	if i.Status != StatusSold {
		return 0
	}
	return i.SalePrice - i.PurchasePrice - i.Fees - i.ShippingCost
}

// SaleCost is the cost side of a sold item: acquisition plus selling fees.
func (i *Item) SaleCost() float64 {
	return i.PurchasePrice + i.Fees + i.ShippingCost
}
