// internal/models/product.go
package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product names are unique per owner, case-insensitively; the index is
// created in database.createIndexes because GORM tags cannot express
// expression indexes.
type Product struct {
	BaseModel
	UserID       uuid.UUID       `json:"user_id" gorm:"type:uuid;not null;index"`
	Name         string          `json:"name" gorm:"size:255;not null"`
	Description  string          `json:"description" gorm:"type:text"`
	SKU          string          `json:"sku" gorm:"size:100"`
	Category     string          `json:"category" gorm:"size:100;index"`
	Status       ProductStatus   `json:"status" gorm:"type:varchar(20);default:'active';index"`
	SellingPrice decimal.Decimal `json:"selling_price" gorm:"type:decimal(12,2);not null"`
	CostPrice    decimal.Decimal `json:"cost_price" gorm:"type:decimal(12,2)"`
	CurrentStock int             `json:"current_stock" gorm:"default:0"`
	MinimumStock int             `json:"minimum_stock" gorm:"default:0"`

	// Relationships
	Owner        User          `json:"-" gorm:"foreignKey:UserID"`
	Transactions []Transaction `json:"transactions,omitempty" gorm:"foreignKey:ProductID"`
}

// IsLowStock reports whether the product has fallen below its restock level.
func (p *Product) IsLowStock() bool {
	return p.CurrentStock < p.MinimumStock
}

type InventoryMovement struct {
	BaseModel
	ProductID     uuid.UUID    `json:"product_id" gorm:"type:uuid;not null;index"`
	TransactionID *uuid.UUID   `json:"transaction_id" gorm:"type:uuid;index"`
	Type          MovementType `json:"type" gorm:"type:varchar(20);not null"`
	Quantity      int          `json:"quantity" gorm:"not null"`
	Reason        string       `json:"reason" gorm:"size:50"`
	BalanceBefore int          `json:"balance_before" gorm:"not null"`
	BalanceAfter  int          `json:"balance_after" gorm:"not null"`

	Product Product `json:"-" gorm:"foreignKey:ProductID"`
}
