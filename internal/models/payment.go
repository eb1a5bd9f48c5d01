// internal/models/payment.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type Payment struct {
	BaseModel
	Type    PaymentType  `json:"type" gorm:"type:varchar(20);not null;index"`
	OrderID *uuid.UUID   `json:"order_id,omitempty" gorm:"type:uuid;index"`
	ShopID  *uuid.UUID   `json:"shop_id,omitempty" gorm:"type:uuid;index"`
	PayerID uuid.UUID    `json:"payer_id" gorm:"type:uuid;not null;index"`
	Amount  float64      `json:"amount" gorm:"type:decimal(12,2);not null"`
	Method  string       `json:"method" gorm:"size:50"`
	Status  PaymentState `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	PaidAt  *time.Time   `json:"paid_at"`

	// Relationships
	Order *Order `json:"order,omitempty" gorm:"foreignKey:OrderID"`
	Shop  *Shop  `json:"shop,omitempty" gorm:"foreignKey:ShopID"`
}
