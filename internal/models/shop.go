// internal/models/shop.go
package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Shop struct {
	BaseModel
	OwnerID     uuid.UUID      `json:"owner_id" gorm:"type:uuid;not null;index"`
	Name        string         `json:"name" gorm:"size:255;not null"`
	Description string         `json:"description" gorm:"type:text"`
	Address     JSONB          `json:"address" gorm:"type:jsonb"`
	Images      pq.StringArray `json:"images" gorm:"type:text[]"`
	IsActive    bool           `json:"is_active" gorm:"default:true"`

	// Relationships
	Owner      User        `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	Products   []Product   `json:"products,omitempty" gorm:"foreignKey:ShopID"`
	Promotions []Promotion `json:"promotions,omitempty" gorm:"foreignKey:ShopID"`
}
