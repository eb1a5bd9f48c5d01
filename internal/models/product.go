// internal/models/product.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ProductPrice carries the canonical price. Current is the HT (tax-excluded)
// price; TTC is the tax-included price and may be absent, in which case
// pricing falls back to a fixed rate.
type ProductPrice struct {
	Current float64  `json:"current" gorm:"column:price_current;type:decimal(10,2);not null"`
	TTC     *float64 `json:"ttc,omitempty" gorm:"column:price_ttc;type:decimal(10,2)"`
}

// PromotionSnapshot is the denormalized promotion cache stored on a product.
// It holds the raw campaign window as last written by the promotion registry;
// validity is only ever evaluated at the moment of use.
type PromotionSnapshot struct {
	IsActive        bool       `json:"is_active" gorm:"column:promo_is_active;default:false"`
	DiscountPercent float64    `json:"discount_percent" gorm:"column:promo_discount_percent;type:decimal(5,2);default:0"`
	StartDate       *time.Time `json:"start_date,omitempty" gorm:"column:promo_start_date"`
	EndDate         *time.Time `json:"end_date,omitempty" gorm:"column:promo_end_date"`
}

// ValidAt reports whether the snapshot describes a discount applicable at t.
// Both window bounds are inclusive.
func (s PromotionSnapshot) ValidAt(t time.Time) bool {
	if !s.IsActive || s.DiscountPercent <= 0 {
		return false
	}
	if s.StartDate == nil || s.EndDate == nil {
		return false
	}
	return !t.Before(*s.StartDate) && !t.After(*s.EndDate)
}

type ProductStock struct {
	Quantity int `json:"quantity" gorm:"column:stock_quantity;default:0"`
}

type Product struct {
	BaseModel
	ShopID      uuid.UUID         `json:"shop_id" gorm:"type:uuid;not null;index"`
	Name        string            `json:"name" gorm:"size:255;not null"`
	Description string            `json:"description" gorm:"type:text"`
	Images      pq.StringArray    `json:"images" gorm:"type:text[]"`
	Price       ProductPrice      `json:"price" gorm:"embedded"`
	Promotion   PromotionSnapshot `json:"promotion" gorm:"embedded"`
	Stock       ProductStock      `json:"stock" gorm:"embedded"`

	// Relationships
	Shop Shop `json:"shop,omitempty" gorm:"foreignKey:ShopID"`
}
