// internal/services/ledger_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/bizzyhq/bizzy-backend/internal/models"
	"github.com/bizzyhq/bizzy-backend/internal/utils"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrAmountRequired      = errors.New("amount is required when no product is referenced")
	ErrExpenseTypeRequired = errors.New("expense type is required for expenses")
	ErrOwnerRequired       = errors.New("owner id is required")
)

// LedgerService records income and expenses. Income linked to a product
// also moves inventory; the ledger itself is append-only.
type LedgerService struct {
	db             *gorm.DB
	productService *ProductService
}

type RecordTransactionRequest struct {
	Type            models.TransactionType `json:"type" validate:"required,oneof=income expense"`
	Amount          decimal.Decimal        `json:"amount,omitempty"`
	Description     string                 `json:"description" validate:"required,min=1,max=500"`
	ProductName     string                 `json:"product_name,omitempty"`
	Quantity        int                    `json:"quantity,omitempty" validate:"omitempty,min=1"`
	UnitPrice       *decimal.Decimal       `json:"unit_price,omitempty"`
	ExpenseType     models.ExpenseType     `json:"expense_type,omitempty" validate:"omitempty,oneof=operating cogs capital other"`
	TransactionDate *time.Time             `json:"transaction_date,omitempty"`
	Notes           string                 `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

type TransactionSearchParams struct {
	utils.PaginationParams
	Type      *models.TransactionType `json:"type,omitempty"`
	ProductID *uuid.UUID              `json:"product_id,omitempty"`
	StartDate *time.Time              `json:"start_date,omitempty"`
	EndDate   *time.Time              `json:"end_date,omitempty"`
}

func NewLedgerService(db *gorm.DB, productService *ProductService) *LedgerService {
	return &LedgerService{
		db:             db,
		productService: productService,
	}
}

// RecordTransaction writes one ledger entry. For income referencing a
// known product the amount is quantity times the catalog selling price;
// a caller-supplied unit price is ignored on a match. The product stock
// is decremented in the same database transaction. The decrement is
// conditional on sufficient stock; when it cannot be applied the whole
// recording fails with ErrInsufficientStock.
//
// An income entry naming a product the owner does not have falls back
// to a plain entry with the caller-supplied amount and no stock effect.
func (s *LedgerService) RecordTransaction(userID uuid.UUID, req *RecordTransactionRequest) (*models.Transaction, error) {
	if userID == uuid.Nil {
		return nil, ErrOwnerRequired
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if req.Type == models.TransactionTypeExpense && req.ExpenseType == "" {
		return nil, ErrExpenseTypeRequired
	}
	if req.Amount.IsNegative() {
		return nil, errors.New("amount must not be negative")
	}
	if req.UnitPrice != nil && req.UnitPrice.IsNegative() {
		return nil, errors.New("unit price must not be negative")
	}

	txDate := time.Now()
	if req.TransactionDate != nil {
		txDate = *req.TransactionDate
	}

	// Resolve the product before opening the transaction. A miss is not
	// an error: informal bookkeeping often names things the catalog
	// does not know yet.
	var product *models.Product
	if req.Type == models.TransactionTypeIncome && req.ProductName != "" {
		found, err := s.productService.GetProductByName(userID, req.ProductName)
		if err != nil && !errors.Is(err, ErrProductNotFound) {
			return nil, err
		}
		product = found
	}

	if product == nil && req.Amount.IsZero() {
		return nil, ErrAmountRequired
	}

	entry := &models.Transaction{
		UserID:          userID,
		Type:            req.Type,
		Amount:          req.Amount,
		Description:     req.Description,
		Quantity:        req.Quantity,
		TransactionDate: txDate,
		Notes:           req.Notes,
	}
	if req.UnitPrice != nil {
		entry.UnitPrice = decimal.NewNullDecimal(*req.UnitPrice)
	}
	if req.Type == models.TransactionTypeExpense {
		entry.ExpenseType = req.ExpenseType
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if product != nil {
			quantity := req.Quantity
			if quantity == 0 {
				quantity = 1
			}

			// The catalog price is authoritative for matched products;
			// whatever the caller sent as unit price does not apply.
			unitPrice := product.SellingPrice

			entry.ProductID = &product.ID
			entry.Quantity = quantity
			entry.UnitPrice = decimal.NewNullDecimal(unitPrice)
			entry.Amount = unitPrice.Mul(decimal.NewFromInt(int64(quantity)))

			// Conditional decrement: the WHERE clause is the stock
			// check, so two concurrent sales cannot both take the
			// last unit.
			res := tx.Model(&models.Product{}).
				Where("id = ? AND current_stock >= ?", product.ID, quantity).
				Update("current_stock", gorm.Expr("current_stock - ?", quantity))
			if res.Error != nil {
				return fmt.Errorf("failed to decrement stock: %w", res.Error)
			}
			if res.RowsAffected == 0 {
				return ErrInsufficientStock
			}

			if err := tx.Create(entry).Error; err != nil {
				return fmt.Errorf("failed to create transaction: %w", err)
			}

			var after models.Product
			if err := tx.Select("current_stock").First(&after, "id = ?", product.ID).Error; err != nil {
				return fmt.Errorf("failed to read stock balance: %w", err)
			}

			movement := &models.InventoryMovement{
				ProductID:     product.ID,
				TransactionID: &entry.ID,
				Type:          models.MovementTypeOut,
				Quantity:      -quantity,
				Reason:        "sale",
				BalanceBefore: after.CurrentStock + quantity,
				BalanceAfter:  after.CurrentStock,
			}
			if err := tx.Create(movement).Error; err != nil {
				return fmt.Errorf("failed to record stock movement: %w", err)
			}

			return nil
		}

		if err := tx.Create(entry).Error; err != nil {
			return fmt.Errorf("failed to create transaction: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return entry, nil
}

func (s *LedgerService) GetTransaction(userID, transactionID uuid.UUID) (*models.Transaction, error) {
	var entry models.Transaction
	if err := s.db.Preload("Product").
		Where("id = ? AND user_id = ?", transactionID, userID).
		First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &entry, nil
}

func (s *LedgerService) ListTransactions(userID uuid.UUID, params *TransactionSearchParams) (*utils.PaginationResult, error) {
	query := s.db.Model(&models.Transaction{}).Where("user_id = ?", userID)

	if params.Type != nil {
		query = query.Where("type = ?", *params.Type)
	}
	if params.ProductID != nil {
		query = query.Where("product_id = ?", *params.ProductID)
	}
	if params.StartDate != nil {
		query = query.Where("transaction_date >= ?", *params.StartDate)
	}
	if params.EndDate != nil {
		query = query.Where("transaction_date <= ?", *params.EndDate)
	}

	var entries []models.Transaction
	result, err := utils.Paginate(query.Order("transaction_date DESC"), params.PaginationParams, &entries)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return &result, nil
}

// AttachReceipt stores the uploaded receipt location on an existing
// entry. This is the only mutation the ledger allows after recording.
func (s *LedgerService) AttachReceipt(userID, transactionID uuid.UUID, receiptURL string) (*models.Transaction, error) {
	entry, err := s.GetTransaction(userID, transactionID)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(entry).Update("receipt_url", receiptURL).Error; err != nil {
		return nil, fmt.Errorf("failed to attach receipt: %w", err)
	}
	entry.ReceiptURL = receiptURL
	return entry, nil
}
