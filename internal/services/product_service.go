// internal/services/product_service.go
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/bizzyhq/bizzy-backend/internal/models"
	"github.com/bizzyhq/bizzy-backend/internal/utils"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrProductNameTaken  = errors.New("product name already exists")
	ErrInsufficientStock = errors.New("insufficient stock")
)

type ProductService struct {
	db *gorm.DB
}

type CreateProductRequest struct {
	Name         string          `json:"name" validate:"required,min=1,max=255"`
	Description  string          `json:"description,omitempty"`
	SKU          string          `json:"sku,omitempty" validate:"omitempty,max=64"`
	Category     string          `json:"category,omitempty" validate:"omitempty,max=100"`
	SellingPrice decimal.Decimal `json:"selling_price" validate:"required"`
	CostPrice    decimal.Decimal `json:"cost_price,omitempty"`
	CurrentStock int             `json:"current_stock" validate:"min=0"`
	MinimumStock int             `json:"minimum_stock" validate:"min=0"`
}

type UpdateProductRequest struct {
	Name         string               `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Description  *string              `json:"description,omitempty"`
	SKU          *string              `json:"sku,omitempty"`
	Category     *string              `json:"category,omitempty"`
	SellingPrice *decimal.Decimal     `json:"selling_price,omitempty"`
	CostPrice    *decimal.Decimal     `json:"cost_price,omitempty"`
	MinimumStock *int                 `json:"minimum_stock,omitempty" validate:"omitempty,min=0"`
	Status       models.ProductStatus `json:"status,omitempty" validate:"omitempty,oneof=active inactive discontinued"`
}

type ProductSearchParams struct {
	utils.PaginationParams
	Status   *models.ProductStatus `json:"status,omitempty"`
	Category string                `json:"category,omitempty"`
	Search   string                `json:"search,omitempty"`
	LowStock bool                  `json:"low_stock,omitempty"`
}

type AdjustStockRequest struct {
	Delta  int    `json:"delta" validate:"required"`
	Reason string `json:"reason,omitempty" validate:"omitempty,max=255"`
}

func NewProductService(db *gorm.DB) *ProductService {
	return &ProductService{db: db}
}

func (s *ProductService) CreateProduct(userID uuid.UUID, req *CreateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if req.SellingPrice.IsNegative() || req.CostPrice.IsNegative() {
		return nil, errors.New("prices must not be negative")
	}

	// Product names are unique per owner, case-insensitively. The
	// partial index on (user_id, LOWER(name)) backs this; the pre-check
	// exists to return a friendly error instead of a constraint message.
	var count int64
	if err := s.db.Model(&models.Product{}).
		Where("user_id = ? AND LOWER(name) = ?", userID, strings.ToLower(req.Name)).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if count > 0 {
		return nil, ErrProductNameTaken
	}

	product := &models.Product{
		UserID:       userID,
		Name:         req.Name,
		Description:  req.Description,
		SKU:          req.SKU,
		Category:     req.Category,
		Status:       models.ProductStatusActive,
		SellingPrice: req.SellingPrice,
		CostPrice:    req.CostPrice,
		CurrentStock: req.CurrentStock,
		MinimumStock: req.MinimumStock,
	}

	if err := s.db.Create(product).Error; err != nil {
		if strings.Contains(err.Error(), "idx_products_owner_name") ||
			strings.Contains(err.Error(), "UNIQUE constraint") {
			return nil, ErrProductNameTaken
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	// Opening stock is recorded as an inventory movement so the audit
	// trail starts at the first unit.
	if req.CurrentStock > 0 {
		movement := &models.InventoryMovement{
			ProductID:     product.ID,
			Type:          models.MovementTypeIn,
			Quantity:      req.CurrentStock,
			Reason:        "initial stock",
			BalanceBefore: 0,
			BalanceAfter:  req.CurrentStock,
		}
		if err := s.db.Create(movement).Error; err != nil {
			return nil, fmt.Errorf("failed to record initial stock movement: %w", err)
		}
	}

	return product, nil
}

func (s *ProductService) GetProduct(userID, productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := s.db.Where("id = ? AND user_id = ?", productID, userID).
		First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &product, nil
}

// GetProductByName resolves a product by its exact name, ignoring case.
// Assistant tool calls address products by name rather than ID.
func (s *ProductService) GetProductByName(userID uuid.UUID, name string) (*models.Product, error) {
	var product models.Product
	if err := s.db.Where("user_id = ? AND LOWER(name) = ?", userID, strings.ToLower(name)).
		First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &product, nil
}

func (s *ProductService) ListProducts(userID uuid.UUID, params *ProductSearchParams) (*utils.PaginationResult, error) {
	query := s.db.Model(&models.Product{}).Where("user_id = ?", userID)

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.Category != "" {
		query = query.Where("category = ?", params.Category)
	}
	if params.Search != "" {
		pattern := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}
	if params.LowStock {
		query = query.Where("current_stock < minimum_stock")
	}

	var products []models.Product
	result, err := utils.Paginate(query.Order("name ASC"), params.PaginationParams, &products)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return &result, nil
}

func (s *ProductService) ListLowStock(userID uuid.UUID) ([]models.Product, error) {
	var products []models.Product
	if err := s.db.Where("user_id = ? AND status = ? AND current_stock < minimum_stock",
		userID, models.ProductStatusActive).
		Order("current_stock ASC").
		Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list low stock products: %w", err)
	}
	return products, nil
}

func (s *ProductService) UpdateProduct(userID, productID uuid.UUID, req *UpdateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	product, err := s.GetProduct(userID, productID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != "" && !strings.EqualFold(req.Name, product.Name) {
		var count int64
		if err := s.db.Model(&models.Product{}).
			Where("user_id = ? AND LOWER(name) = ? AND id <> ?", userID, strings.ToLower(req.Name), productID).
			Count(&count).Error; err != nil {
			return nil, fmt.Errorf("database error: %w", err)
		}
		if count > 0 {
			return nil, ErrProductNameTaken
		}
		updates["name"] = req.Name
	} else if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.SKU != nil {
		updates["sku"] = *req.SKU
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.SellingPrice != nil {
		if req.SellingPrice.IsNegative() {
			return nil, errors.New("prices must not be negative")
		}
		updates["selling_price"] = *req.SellingPrice
	}
	if req.CostPrice != nil {
		if req.CostPrice.IsNegative() {
			return nil, errors.New("prices must not be negative")
		}
		updates["cost_price"] = *req.CostPrice
	}
	if req.MinimumStock != nil {
		updates["minimum_stock"] = *req.MinimumStock
	}
	if req.Status != "" {
		updates["status"] = req.Status
	}

	if len(updates) > 0 {
		if err := s.db.Model(product).Updates(updates).Error; err != nil {
			if strings.Contains(err.Error(), "idx_products_owner_name") ||
				strings.Contains(err.Error(), "UNIQUE constraint") {
				return nil, ErrProductNameTaken
			}
			return nil, fmt.Errorf("failed to update product: %w", err)
		}
	}

	return s.GetProduct(userID, productID)
}

func (s *ProductService) DeleteProduct(userID, productID uuid.UUID) error {
	product, err := s.GetProduct(userID, productID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(product).Error; err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}

// AdjustStock applies a manual stock correction. Negative deltas are
// rejected when they would take the stock below zero; the guard runs
// inside the UPDATE so concurrent adjustments cannot interleave.
func (s *ProductService) AdjustStock(userID, productID uuid.UUID, req *AdjustStockRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if req.Delta == 0 {
		return nil, errors.New("delta must not be zero")
	}

	var updated models.Product
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.Where("id = ? AND user_id = ?", productID, userID).
			First(&product).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		query := tx.Model(&models.Product{}).Where("id = ?", productID)
		if req.Delta < 0 {
			query = query.Where("current_stock >= ?", -req.Delta)
		}
		res := query.Update("current_stock", gorm.Expr("current_stock + ?", req.Delta))
		if res.Error != nil {
			return fmt.Errorf("failed to adjust stock: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrInsufficientStock
		}

		reason := req.Reason
		if reason == "" {
			reason = "manual adjustment"
		}
		movement := &models.InventoryMovement{
			ProductID:     product.ID,
			Type:          models.MovementTypeAdjustment,
			Quantity:      req.Delta,
			Reason:        reason,
			BalanceBefore: product.CurrentStock,
			BalanceAfter:  product.CurrentStock + req.Delta,
		}
		if err := tx.Create(movement).Error; err != nil {
			return fmt.Errorf("failed to record stock movement: %w", err)
		}

		return tx.First(&updated, "id = ?", productID).Error
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

// ListMovements returns the inventory audit trail for one product.
func (s *ProductService) ListMovements(userID, productID uuid.UUID, params utils.PaginationParams) (*utils.PaginationResult, error) {
	if _, err := s.GetProduct(userID, productID); err != nil {
		return nil, err
	}

	query := s.db.Model(&models.InventoryMovement{}).
		Where("product_id = ?", productID).
		Order("created_at DESC")

	var movements []models.InventoryMovement
	result, err := utils.Paginate(query, params, &movements)
	if err != nil {
		return nil, fmt.Errorf("failed to list movements: %w", err)
	}
	return &result, nil
}
