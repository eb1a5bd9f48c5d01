// internal/models/order.go
package models

import (
	"github.com/google/uuid"
)

// OrderAmounts are frozen at creation time. Tax is derived as Total-Subtotal
// so the three always add up exactly.
type OrderAmounts struct {
	Subtotal float64 `json:"subtotal" gorm:"column:amount_subtotal;type:decimal(12,2);not null"`
	Tax      float64 `json:"tax" gorm:"column:amount_tax;type:decimal(12,2);not null"`
	Total    float64 `json:"total" gorm:"column:amount_total;type:decimal(12,2);not null"`
}

type Order struct {
	BaseModel
	OrderNumber   string       `json:"order_number" gorm:"size:64;uniqueIndex;not null"`
	BuyerID       uuid.UUID    `json:"buyer_id" gorm:"type:uuid;not null;index"`
	ShopID        uuid.UUID    `json:"shop_id" gorm:"type:uuid;not null;index"`
	Status        OrderStatus  `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	PaymentStatus PaymentState `json:"payment_status" gorm:"type:varchar(20);default:'pending';index"`
	Delivery      JSONB        `json:"delivery" gorm:"type:jsonb"`
	Amounts       OrderAmounts `json:"amounts" gorm:"embedded"`

	// Relationships
	Buyer User        `json:"buyer,omitempty" gorm:"foreignKey:BuyerID"`
	Shop  Shop        `json:"shop,omitempty" gorm:"foreignKey:ShopID"`
	Items []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID"`
}

// OrderItem is a frozen pricing line. Later price or promotion changes never
// alter a persisted item.
type OrderItem struct {
	BaseModel
	OrderID              uuid.UUID `json:"order_id" gorm:"type:uuid;not null;index"`
	ProductID            uuid.UUID `json:"product_id" gorm:"type:uuid;not null;index"`
	ProductName          string    `json:"product_name" gorm:"size:255;not null"`
	Quantity             int       `json:"quantity" gorm:"not null"`
	UnitPrice            float64   `json:"unit_price" gorm:"type:decimal(10,2);not null"`
	UnitPriceTTC         float64   `json:"unit_price_ttc" gorm:"type:decimal(10,2);not null"`
	OriginalUnitPriceTTC float64   `json:"original_unit_price_ttc" gorm:"type:decimal(10,2);not null"`
	IsPromo              bool      `json:"is_promo" gorm:"default:false"`
	TotalHT              float64   `json:"total_ht" gorm:"type:decimal(12,2);not null"`
	TotalTTC             float64   `json:"total_ttc" gorm:"type:decimal(12,2);not null"`
}
