// internal/models/promotion.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Promotion is the source of truth for a discount campaign. The per-product
// PromotionSnapshot is only a cache derived from it.
type Promotion struct {
	BaseModel
	ShopID          uuid.UUID `json:"shop_id" gorm:"type:uuid;not null;index"`
	Name            string    `json:"name" gorm:"size:255;not null"`
	DiscountPercent float64   `json:"discount_percent" gorm:"type:decimal(5,2);not null"`
	ProductIDs      UUIDSlice `json:"product_ids" gorm:"type:jsonb"`
	StartDate       time.Time `json:"start_date" gorm:"not null;index"`
	EndDate         time.Time `json:"end_date" gorm:"not null;index"`
	IsActive        bool      `json:"is_active" gorm:"default:true;index"`
	Budget          float64   `json:"budget" gorm:"type:decimal(10,2);default:0"`
	Stats           JSONB     `json:"stats" gorm:"type:jsonb"`

	// Relationships
	Shop Shop `json:"shop,omitempty" gorm:"foreignKey:ShopID"`
}

// EffectiveAt reports whether the campaign applies at t, both bounds inclusive.
func (p *Promotion) EffectiveAt(t time.Time) bool {
	return p.IsActive && !t.Before(p.StartDate) && !t.After(p.EndDate)
}

// Snapshot builds the denormalized state propagated onto referenced products.
// The raw window is copied regardless of current validity.
func (p *Promotion) Snapshot() PromotionSnapshot {
	start := p.StartDate
	end := p.EndDate
	return PromotionSnapshot{
		IsActive:        p.IsActive,
		DiscountPercent: p.DiscountPercent,
		StartDate:       &start,
		EndDate:         &end,
	}
}
