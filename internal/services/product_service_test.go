// internal/services/product_service_test.go
package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/bizzyhq/bizzy-backend/internal/models"
	"github.com/bizzyhq/bizzy-backend/internal/utils"
)

type ProductServiceTestSuite struct {
	suite.Suite
	db       *gorm.DB
	products *ProductService
	user     *models.User
}

func (s *ProductServiceTestSuite) SetupTest() {
	s.db = setupTestDB(s.T())
	s.products = NewProductService(s.db)
	s.user = createTestUser(s.T(), s.db, "catalog@example.com")
}

func (s *ProductServiceTestSuite) TestCreateAndLookupByNameIgnoresCase() {
	created, err := s.products.CreateProduct(s.user.ID, &CreateProductRequest{
		Name:         "Keripik Singkong",
		SellingPrice: decimal.NewFromInt(10000),
		CurrentStock: 20,
		MinimumStock: 5,
	})
	s.Require().NoError(err)
	s.Equal(models.ProductStatusActive, created.Status)

	found, err := s.products.GetProductByName(s.user.ID, "KERIPIK singkong")
	s.Require().NoError(err)
	s.Equal(created.ID, found.ID)
}

func (s *ProductServiceTestSuite) TestDuplicateNameRejectedCaseInsensitively() {
	_, err := s.products.CreateProduct(s.user.ID, &CreateProductRequest{
		Name:         "Sambal Botol",
		SellingPrice: decimal.NewFromInt(25000),
	})
	s.Require().NoError(err)

	_, err = s.products.CreateProduct(s.user.ID, &CreateProductRequest{
		Name:         "SAMBAL botol",
		SellingPrice: decimal.NewFromInt(30000),
	})
	s.ErrorIs(err, ErrProductNameTaken)

	// A different owner can reuse the name
	other := createTestUser(s.T(), s.db, "other-catalog@example.com")
	_, err = s.products.CreateProduct(other.ID, &CreateProductRequest{
		Name:         "Sambal Botol",
		SellingPrice: decimal.NewFromInt(22000),
	})
	s.NoError(err)
}

func (s *ProductServiceTestSuite) TestRenameIntoExistingNameRejected() {
	_, err := s.products.CreateProduct(s.user.ID, &CreateProductRequest{
		Name:         "Kerupuk",
		SellingPrice: decimal.NewFromInt(5000),
	})
	s.Require().NoError(err)

	second, err := s.products.CreateProduct(s.user.ID, &CreateProductRequest{
		Name:         "Rempeyek",
		SellingPrice: decimal.NewFromInt(7000),
	})
	s.Require().NoError(err)

	_, err = s.products.UpdateProduct(s.user.ID, second.ID, &UpdateProductRequest{
		Name: "kerupuk",
	})
	s.ErrorIs(err, ErrProductNameTaken)
}

func (s *ProductServiceTestSuite) TestDeleteFreesNameForReuse() {
	created, err := s.products.CreateProduct(s.user.ID, &CreateProductRequest{
		Name:         "Dodol",
		SellingPrice: decimal.NewFromInt(15000),
	})
	s.Require().NoError(err)

	s.Require().NoError(s.products.DeleteProduct(s.user.ID, created.ID))

	_, err = s.products.GetProductByName(s.user.ID, "Dodol")
	s.ErrorIs(err, ErrProductNotFound)

	_, err = s.products.CreateProduct(s.user.ID, &CreateProductRequest{
		Name:         "Dodol",
		SellingPrice: decimal.NewFromInt(16000),
	})
	s.NoError(err)
}

func (s *ProductServiceTestSuite) TestAdjustStockWritesMovementTrail() {
	created, err := s.products.CreateProduct(s.user.ID, &CreateProductRequest{
		Name:         "Gula Pasir",
		SellingPrice: decimal.NewFromInt(18000),
		CurrentStock: 10,
	})
	s.Require().NoError(err)

	updated, err := s.products.AdjustStock(s.user.ID, created.ID, &AdjustStockRequest{
		Delta:  5,
		Reason: "restock mingguan",
	})
	s.Require().NoError(err)
	s.Equal(15, updated.CurrentStock)

	updated, err = s.products.AdjustStock(s.user.ID, created.ID, &AdjustStockRequest{
		Delta: -3,
	})
	s.Require().NoError(err)
	s.Equal(12, updated.CurrentStock)

	// Cannot adjust below zero
	_, err = s.products.AdjustStock(s.user.ID, created.ID, &AdjustStockRequest{
		Delta: -20,
	})
	s.ErrorIs(err, ErrInsufficientStock)

	var movements []models.InventoryMovement
	s.Require().NoError(s.db.Where("product_id = ?", created.ID).
		Order("created_at ASC").Find(&movements).Error)
	s.Require().Len(movements, 3) // initial, +5, -3
	s.Equal("restock mingguan", movements[1].Reason)
	s.Equal(15, movements[1].BalanceAfter)
	s.Equal(12, movements[2].BalanceAfter)
}

func (s *ProductServiceTestSuite) TestLowStockListing() {
	_, err := s.products.CreateProduct(s.user.ID, &CreateProductRequest{
		Name:         "Minyak Goreng",
		SellingPrice: decimal.NewFromInt(35000),
		CurrentStock: 1,
		MinimumStock: 5,
	})
	s.Require().NoError(err)

	_, err = s.products.CreateProduct(s.user.ID, &CreateProductRequest{
		Name:         "Beras",
		SellingPrice: decimal.NewFromInt(70000),
		CurrentStock: 50,
		MinimumStock: 10,
	})
	s.Require().NoError(err)

	low, err := s.products.ListLowStock(s.user.ID)
	s.Require().NoError(err)
	s.Require().Len(low, 1)
	s.Equal("Minyak Goreng", low[0].Name)
	s.True(low[0].IsLowStock())
}

func (s *ProductServiceTestSuite) TestListProductsScopedToOwner() {
	other := createTestUser(s.T(), s.db, "neighbor@example.com")

	_, err := s.products.CreateProduct(s.user.ID, &CreateProductRequest{
		Name:         "Susu Kental",
		SellingPrice: decimal.NewFromInt(12000),
	})
	s.Require().NoError(err)
	_, err = s.products.CreateProduct(other.ID, &CreateProductRequest{
		Name:         "Susu Bubuk",
		SellingPrice: decimal.NewFromInt(40000),
	})
	s.Require().NoError(err)

	result, err := s.products.ListProducts(s.user.ID, &ProductSearchParams{
		PaginationParams: utils.PaginationParams{Page: 1, Limit: 20},
	})
	s.Require().NoError(err)
	s.Equal(int64(1), result.Total)

	products := *result.Data.(*[]models.Product)
	s.Require().Len(products, 1)
	s.Equal("Susu Kental", products[0].Name)
}

func TestProductServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ProductServiceTestSuite))
}
