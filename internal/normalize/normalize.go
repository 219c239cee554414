// Package normalize converts any persisted item record, whatever schema
// revision produced it, into the canonical entity shape. Normalization is
// pure and never fails; unusable values degrade to defaults.
package normalize

import (
	"strconv"
	"strings"
	"time"

	"github.com/Karlitosantana/reima-resale/internal/entity"

	"github.com/google/uuid"
)

const _dateLayout = "2006-01-02"

type Normalizer struct {
	// Now and NewID are swappable for tests.
	Now   func() time.Time
	NewID func() string
}

func New() *Normalizer {
	return &Normalizer{
		Now:   time.Now,
		NewID: uuid.NewString,
	}
}

// Empty synthesizes a fresh item template the way the UI instantiates one on
// an explicit "add" action.
func (n *Normalizer) Empty() entity.Item {
	now := n.Now()
	return entity.Item{
		ID:           n.NewID(),
		Category:     entity.CategoryOther,
		Status:       entity.StatusActive,
		PurchaseDate: now.Format(_dateLayout),
		Images:       []string{},
		Quantity:     1,
		Sales:        []entity.Sale{},
		CreatedAt:    now.UnixMilli(),
	}
}

// Item resolves a raw record into the canonical shape. Running the result
// through Item again yields an identical value.
func (n *Normalizer) Item(raw *RawItem) entity.Item {
	if raw == nil {
		return n.Empty()
	}

	item := entity.Item{
		ID:             raw.ID,
		Name:           raw.Name,
		Notes:          raw.Notes,
		Size:           raw.Size,
		Condition:      condition(raw.Condition),
		Category:       category(raw.Category),
		ListingURL:     raw.ListingURL,
		PurchaseSource: raw.PurchaseSource,
		Status:         status(raw.Status),
	}

	if item.ID == "" {
		item.ID = n.NewID()
	}

	// Payload value, else row-level alternate, else default.
	item.PurchasePrice = number(raw.PurchasePrice, raw.RowPurchasePrice)
	item.SalePrice = number(raw.SalePrice, raw.RowSalePrice)
	item.Fees = number(raw.Fees, nil)
	item.ShippingCost = number(raw.ShippingCost, nil)
	item.PurchaseDate = fallback(raw.PurchaseDate, raw.RowPurchaseDate)
	item.SaleDate = fallback(raw.SaleDate, raw.RowSaleDate)
	item.SalePlatform = platform(fallback(raw.SalePlatform, raw.RowSalePlatform))

	item.CreatedAt = int64(number(raw.CreatedAt, raw.RowCreatedAt))
	if item.CreatedAt == 0 {
		item.CreatedAt = n.Now().UnixMilli()
	}

	item.Images = raw.Images
	if item.Images == nil {
		if raw.ImageURL != "" {
			item.Images = []string{raw.ImageURL}
		} else {
			item.Images = []string{}
		}
	}

	item.Quantity = int(number(raw.Quantity, nil))
	if item.Quantity < 1 {
		item.Quantity = 1
	}

	item.Sales = n.sales(raw, &item)

	return item
}

// Items normalizes a whole collection, preserving order.
func (n *Normalizer) Items(raws []RawItem) []entity.Item {
	items := make([]entity.Item, 0, len(raws))
	for i := range raws {
		items = append(items, n.Item(&raws[i]))
	}
	return items
}

func (n *Normalizer) sales(raw *RawItem, item *entity.Item) []entity.Sale {
	if raw.Sales != nil {
		sales := make([]entity.Sale, 0, len(raw.Sales))
		for _, rs := range raw.Sales {
			sale := entity.Sale{
				ID:           rs.ID,
				SalePrice:    number(rs.SalePrice, nil),
				SalePlatform: platform(rs.SalePlatform),
				SaleDate:     rs.SaleDate,
				Fees:         number(rs.Fees, nil),
				ShippingCost: number(rs.ShippingCost, nil),
			}
			if sale.ID == "" {
				sale.ID = n.NewID()
			}
			if sale.SalePlatform == "" {
				sale.SalePlatform = entity.PlatformOther
			}
			sales = append(sales, sale)
		}
		return sales
	}

	// Legacy single-sale fields: a sold quantity-1 item becomes one sale
	// record.
	if item.Status == entity.StatusSold && item.SalePrice > 0 && item.Quantity == 1 {
		sale := entity.Sale{
			ID:           n.NewID(),
			SalePrice:    item.SalePrice,
			SalePlatform: item.SalePlatform,
			SaleDate:     item.SaleDate,
			Fees:         item.Fees,
			ShippingCost: item.ShippingCost,
		}
		if sale.SalePlatform == "" {
			sale.SalePlatform = entity.PlatformOther
		}
		if sale.SaleDate == "" {
			sale.SaleDate = n.Now().Format(_dateLayout)
		}
		return []entity.Sale{sale}
	}

	return []entity.Sale{}
}

// number coerces a persisted numeric value: JSON numbers pass through,
// numeric strings parse, anything else counts as absent and falls back to
// the row-level alternate, then to zero.
func number(v, alt any) float64 {
	if f, ok := toFloat(v); ok {
		return f
	}
	if f, ok := toFloat(alt); ok {
		return f
	}
	return 0
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case nil:
		return 0, false
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func fallback(value, alt string) string {
	if value != "" {
		return value
	}
	return alt
}

func status(s string) entity.Status {
	if entity.Status(s) == entity.StatusSold {
		return entity.StatusSold
	}
	return entity.StatusActive
}

func category(s string) entity.Category {
	switch c := entity.Category(s); c {
	case entity.CategoryOveralls, entity.CategoryJackets, entity.CategoryPants,
		entity.CategorySoftshell, entity.CategoryShoes, entity.CategoryAccessories,
		entity.CategoryOther:
		return c
	default:
		return entity.CategoryOther
	}
}

func condition(s string) entity.Condition {
	switch c := entity.Condition(s); c {
	case entity.ConditionNew, entity.ConditionLikeNew, entity.ConditionGood,
		entity.ConditionFair:
		return c
	default:
		return ""
	}
}

func platform(s string) entity.Platform {
	switch p := entity.Platform(s); p {
	case entity.PlatformVinted, entity.PlatformFacebook, entity.PlatformAukro,
		entity.PlatformDepop, entity.PlatformOther:
		return p
	default:
		return ""
	}
}
