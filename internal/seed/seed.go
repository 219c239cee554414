// Package seed holds the fixed demo dataset used to populate an empty store
// on first run.
package seed

import (
	"time"

	"github.com/Karlitosantana/reima-resale/internal/entity"

	"github.com/google/uuid"
)

// Items returns the demo collection. IDs are stable so repeated seeding of
// the same store upserts rather than duplicates; sale record ids are fresh
// per call.
func Items(now time.Time) []entity.Item {
	createdAt := now.UnixMilli()

	return []entity.Item{
		{
			ID:             "demo-1",
			Name:           "Reima Gotland Winter Overall",
			Category:       entity.CategoryOveralls,
			PurchasePrice:  1800,
			PurchaseDate:   "2023-09-15",
			PurchaseSource: "Vinted",
			Status:         entity.StatusSold,
			SalePrice:      2900,
			SaleDate:       "2023-11-20",
			SalePlatform:   entity.PlatformFacebook,
			Fees:           0,
			ShippingCost:   79,
			Images:         []string{"https://images.unsplash.com/photo-1605518216938-7c31b7b14ad0?ixlib=rb-4.0.3&auto=format&fit=crop&w=800&q=80"},
			Quantity:       1,
			Sales: []entity.Sale{{
				ID:           uuid.NewString(),
				SalePrice:    2900,
				SalePlatform: entity.PlatformFacebook,
				SaleDate:     "2023-11-20",
				Fees:         0,
				ShippingCost: 79,
			}},
			CreatedAt: createdAt,
		},
		{
			ID:             "demo-2",
			Name:           "Reima Stavanger (Navy)",
			Category:       entity.CategoryOveralls,
			PurchasePrice:  2200,
			PurchaseDate:   "2023-10-01",
			PurchaseSource: "Sleva E-shop",
			Status:         entity.StatusActive,
			Images:         []string{"https://images.unsplash.com/photo-1545648580-7798782eb86e?ixlib=rb-4.0.3&auto=format&fit=crop&w=800&q=80"},
			Quantity:       1,
			Sales:          []entity.Sale{},
			CreatedAt:      createdAt,
		},
		{
			ID:             "demo-3",
			Name:           "Reima Tec Boots Laplander",
			Category:       entity.CategoryShoes,
			PurchasePrice:  800,
			PurchaseDate:   "2023-10-10",
			PurchaseSource: "Marketplace",
			Status:         entity.StatusSold,
			SalePrice:      1500,
			SaleDate:       "2023-12-05",
			SalePlatform:   entity.PlatformVinted,
			Fees:           0,
			ShippingCost:   65,
			Images:         []string{"https://images.unsplash.com/photo-1515347619252-60a6bf4fffce?ixlib=rb-4.0.3&auto=format&fit=crop&w=800&q=80"},
			Quantity:       1,
			Sales: []entity.Sale{{
				ID:           uuid.NewString(),
				SalePrice:    1500,
				SalePlatform: entity.PlatformVinted,
				SaleDate:     "2023-12-05",
				Fees:         0,
				ShippingCost: 65,
			}},
			CreatedAt: createdAt,
		},
	}
}
