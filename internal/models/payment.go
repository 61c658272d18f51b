// internal/models/payment.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentOrder tracks one payment link issued through the hosted gateway,
// from link creation to the webhook that settles or voids it.
type PaymentOrder struct {
	BaseModel
	UserID     uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	OrderID    string    `json:"order_id" gorm:"uniqueIndex;size:50;not null"`
	GatewayRef string    `json:"gateway_ref" gorm:"size:255"`

	GrossAmount decimal.Decimal `json:"gross_amount" gorm:"type:decimal(12,2);not null"`
	Currency    string          `json:"currency" gorm:"size:3;default:'IDR';not null"`

	Status      PaymentStatus `json:"status" gorm:"type:varchar(20);default:'pending';not null;index"`
	PaymentType string        `json:"payment_type" gorm:"size:50"`

	Kind      PaymentKind         `json:"kind" gorm:"type:varchar(20);not null"`
	ProductID *uuid.UUID          `json:"product_id" gorm:"type:uuid;index"`
	Quantity  int                 `json:"quantity"`
	UnitPrice decimal.NullDecimal `json:"unit_price" gorm:"type:decimal(12,2)"`

	Description string `json:"description" gorm:"type:text"`
	Notes       string `json:"notes,omitempty" gorm:"type:text"`

	PaymentURL      string `json:"payment_url" gorm:"size:1024"`
	GatewayResponse JSONB  `json:"-" gorm:"type:jsonb"`

	WebhookReceived bool  `json:"webhook_received" gorm:"default:false;not null"`
	WebhookData     JSONB `json:"-" gorm:"type:jsonb"`

	TransactionDate time.Time  `json:"transaction_date" gorm:"not null"`
	SettledAt       *time.Time `json:"settled_at"`

	// Relationships
	Owner   User     `json:"-" gorm:"foreignKey:UserID"`
	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}
