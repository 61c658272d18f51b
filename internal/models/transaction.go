// internal/models/transaction.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction is the ledger row for one financial event. Rows are
// append-only: after creation only the receipt URL may be attached.
type Transaction struct {
	BaseModel
	UserID          uuid.UUID           `json:"user_id" gorm:"type:uuid;not null;index"`
	Type            TransactionType     `json:"type" gorm:"type:varchar(10);not null;index"`
	Amount          decimal.Decimal     `json:"amount" gorm:"type:decimal(12,2);not null"`
	Description     string              `json:"description" gorm:"type:text"`
	ProductID       *uuid.UUID          `json:"product_id" gorm:"type:uuid;index"`
	Quantity        int                 `json:"quantity"`
	UnitPrice       decimal.NullDecimal `json:"unit_price" gorm:"type:decimal(12,2)"`
	ExpenseType     ExpenseType         `json:"expense_type,omitempty" gorm:"type:varchar(20)"`
	TransactionDate time.Time           `json:"transaction_date" gorm:"not null;index"`
	ReceiptURL      string              `json:"receipt_url,omitempty" gorm:"size:512"`
	Notes           string              `json:"notes,omitempty" gorm:"type:text"`

	// Relationships
	Owner   User     `json:"-" gorm:"foreignKey:UserID"`
	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}
