// internal/services/ledger_service_test.go
package services

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/bizzyhq/bizzy-backend/internal/models"
)

type LedgerServiceTestSuite struct {
	suite.Suite
	db       *gorm.DB
	products *ProductService
	ledger   *LedgerService
	user     *models.User
}

func (s *LedgerServiceTestSuite) SetupTest() {
	s.db = setupTestDB(s.T())
	s.products = NewProductService(s.db)
	s.ledger = NewLedgerService(s.db, s.products)
	s.user = createTestUser(s.T(), s.db, "ledger@example.com")
}

func (s *LedgerServiceTestSuite) seedProduct(name string, price float64, stock int) *models.Product {
	product, err := s.products.CreateProduct(s.user.ID, &CreateProductRequest{
		Name:         name,
		SellingPrice: decimal.NewFromFloat(price),
		CostPrice:    decimal.NewFromFloat(price / 2),
		CurrentStock: stock,
		MinimumStock: 2,
	})
	s.Require().NoError(err)
	return product
}

func (s *LedgerServiceTestSuite) TestSaleDecrementsStockAndDerivesAmount() {
	product := s.seedProduct("Kopi Susu", 15000, 10)

	entry, err := s.ledger.RecordTransaction(s.user.ID, &RecordTransactionRequest{
		Type:        models.TransactionTypeIncome,
		ProductName: "kopi susu", // case-insensitive match
		Description: "3 gelas kopi susu",
		Quantity:    3,
	})
	s.Require().NoError(err)

	s.True(entry.Amount.Equal(decimal.NewFromInt(45000)))
	s.Equal(3, entry.Quantity)
	s.Require().NotNil(entry.ProductID)
	s.Equal(product.ID, *entry.ProductID)

	var after models.Product
	s.Require().NoError(s.db.First(&after, "id = ?", product.ID).Error)
	s.Equal(7, after.CurrentStock)

	// Inventory trail: initial-stock movement plus the sale
	var movements []models.InventoryMovement
	s.Require().NoError(s.db.Where("product_id = ?", product.ID).
		Order("created_at ASC").Find(&movements).Error)
	s.Require().Len(movements, 2)
	s.Equal(models.MovementTypeOut, movements[1].Type)
	s.Equal(-3, movements[1].Quantity)
	s.Equal(7, movements[1].BalanceAfter)
}

func (s *LedgerServiceTestSuite) TestCatalogPriceWinsOverCallerUnitPrice() {
	s.seedProduct("Teh Manis", 5000, 10)

	callerPrice := decimal.NewFromInt(1000)
	entry, err := s.ledger.RecordTransaction(s.user.ID, &RecordTransactionRequest{
		Type:        models.TransactionTypeIncome,
		ProductName: "Teh Manis",
		Description: "penjualan teh",
		Quantity:    2,
		UnitPrice:   &callerPrice,
	})
	s.Require().NoError(err)

	s.True(entry.Amount.Equal(decimal.NewFromInt(10000)), "amount = %s", entry.Amount)
	s.Require().True(entry.UnitPrice.Valid)
	s.True(entry.UnitPrice.Decimal.Equal(decimal.NewFromInt(5000)))
}

func (s *LedgerServiceTestSuite) TestUnknownProductKeepsCallerUnitPrice() {
	callerPrice := decimal.NewFromInt(4000)
	entry, err := s.ledger.RecordTransaction(s.user.ID, &RecordTransactionRequest{
		Type:        models.TransactionTypeIncome,
		ProductName: "Es Campur",
		Description: "penjualan lepas",
		Amount:      decimal.NewFromInt(8000),
		Quantity:    2,
		UnitPrice:   &callerPrice,
	})
	s.Require().NoError(err)

	s.Nil(entry.ProductID)
	s.True(entry.Amount.Equal(decimal.NewFromInt(8000)))
	s.Require().True(entry.UnitPrice.Valid)
	s.True(entry.UnitPrice.Decimal.Equal(decimal.NewFromInt(4000)))
	s.Equal(2, entry.Quantity)
}

func (s *LedgerServiceTestSuite) TestUnknownProductFallsBackToPlainEntry() {
	entry, err := s.ledger.RecordTransaction(s.user.ID, &RecordTransactionRequest{
		Type:        models.TransactionTypeIncome,
		ProductName: "Produk Tidak Ada",
		Description: "penjualan lepas",
		Amount:      decimal.NewFromInt(20000),
	})
	s.Require().NoError(err)

	s.Nil(entry.ProductID)
	s.True(entry.Amount.Equal(decimal.NewFromInt(20000)))
}

func (s *LedgerServiceTestSuite) TestUnknownProductWithoutAmountFails() {
	_, err := s.ledger.RecordTransaction(s.user.ID, &RecordTransactionRequest{
		Type:        models.TransactionTypeIncome,
		ProductName: "Produk Tidak Ada",
		Description: "penjualan lepas",
	})
	s.ErrorIs(err, ErrAmountRequired)
}

func (s *LedgerServiceTestSuite) TestInsufficientStockRejectsRecording() {
	product := s.seedProduct("Roti Bakar", 12000, 2)

	_, err := s.ledger.RecordTransaction(s.user.ID, &RecordTransactionRequest{
		Type:        models.TransactionTypeIncome,
		ProductName: "Roti Bakar",
		Description: "pesanan besar",
		Quantity:    5,
	})
	s.ErrorIs(err, ErrInsufficientStock)

	// Nothing was written: no ledger entry, stock untouched
	var count int64
	s.db.Model(&models.Transaction{}).Where("user_id = ?", s.user.ID).Count(&count)
	s.Equal(int64(0), count)

	var after models.Product
	s.Require().NoError(s.db.First(&after, "id = ?", product.ID).Error)
	s.Equal(2, after.CurrentStock)
}

func (s *LedgerServiceTestSuite) TestExpenseRequiresExpenseType() {
	_, err := s.ledger.RecordTransaction(s.user.ID, &RecordTransactionRequest{
		Type:        models.TransactionTypeExpense,
		Description: "beli gas",
		Amount:      decimal.NewFromInt(25000),
	})
	s.ErrorIs(err, ErrExpenseTypeRequired)

	entry, err := s.ledger.RecordTransaction(s.user.ID, &RecordTransactionRequest{
		Type:        models.TransactionTypeExpense,
		Description: "beli gas",
		Amount:      decimal.NewFromInt(25000),
		ExpenseType: models.ExpenseTypeOperating,
	})
	s.Require().NoError(err)
	s.Equal(models.ExpenseTypeOperating, entry.ExpenseType)
}

func (s *LedgerServiceTestSuite) TestRepeatedRecordingIsNotIdempotent() {
	s.seedProduct("Es Jeruk", 8000, 10)

	req := &RecordTransactionRequest{
		Type:        models.TransactionTypeIncome,
		ProductName: "Es Jeruk",
		Description: "dua kali pesanan yang sama",
		Quantity:    2,
	}
	_, err := s.ledger.RecordTransaction(s.user.ID, req)
	s.Require().NoError(err)
	_, err = s.ledger.RecordTransaction(s.user.ID, req)
	s.Require().NoError(err)

	var count int64
	s.db.Model(&models.Transaction{}).Where("user_id = ?", s.user.ID).Count(&count)
	s.Equal(int64(2), count)

	var after models.Product
	s.Require().NoError(s.db.Where("user_id = ? AND name = ?", s.user.ID, "Es Jeruk").
		First(&after).Error)
	s.Equal(6, after.CurrentStock)
}

func (s *LedgerServiceTestSuite) TestConcurrentSalesNeverOversell() {
	product := s.seedProduct("Nasi Goreng", 18000, 10)

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.ledger.RecordTransaction(s.user.ID, &RecordTransactionRequest{
				Type:        models.TransactionTypeIncome,
				ProductName: "Nasi Goreng",
				Description: "pesanan paralel",
				Quantity:    2,
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			s.ErrorIs(err, ErrInsufficientStock)
		}
	}
	// 10 units, 2 per sale: exactly 5 can succeed
	s.Equal(5, succeeded)

	var after models.Product
	s.Require().NoError(s.db.First(&after, "id = ?", product.ID).Error)
	s.Equal(0, after.CurrentStock)

	var total int64
	s.db.Model(&models.Transaction{}).Where("product_id = ?", product.ID).Count(&total)
	s.Equal(int64(succeeded), total)
}

func (s *LedgerServiceTestSuite) TestOwnershipIsolation() {
	other := createTestUser(s.T(), s.db, "other@example.com")
	s.seedProduct("Bakso", 10000, 5)

	// The other user's sale does not see this user's catalog
	_, err := s.ledger.RecordTransaction(other.ID, &RecordTransactionRequest{
		Type:        models.TransactionTypeIncome,
		ProductName: "Bakso",
		Description: "bakso orang lain",
		Amount:      decimal.NewFromInt(10000),
	})
	s.Require().NoError(err)

	var after models.Product
	s.Require().NoError(s.db.Where("user_id = ? AND name = ?", s.user.ID, "Bakso").
		First(&after).Error)
	s.Equal(5, after.CurrentStock)

	// And listing stays scoped
	entry, err := s.ledger.RecordTransaction(s.user.ID, &RecordTransactionRequest{
		Type:        models.TransactionTypeIncome,
		ProductName: "Bakso",
		Description: "bakso sendiri",
		Quantity:    1,
	})
	s.Require().NoError(err)

	_, err = s.ledger.GetTransaction(other.ID, entry.ID)
	s.ErrorIs(err, ErrTransactionNotFound)
}

func (s *LedgerServiceTestSuite) TestAttachReceipt() {
	entry, err := s.ledger.RecordTransaction(s.user.ID, &RecordTransactionRequest{
		Type:        models.TransactionTypeExpense,
		Description: "beli bahan baku",
		Amount:      decimal.NewFromInt(100000),
		ExpenseType: models.ExpenseTypeCOGS,
	})
	s.Require().NoError(err)

	updated, err := s.ledger.AttachReceipt(s.user.ID, entry.ID, "https://cdn.example.com/receipts/abc.jpg")
	s.Require().NoError(err)
	s.Equal("https://cdn.example.com/receipts/abc.jpg", updated.ReceiptURL)
}

func (s *LedgerServiceTestSuite) TestNilOwnerRejectedBeforeAnyWrite() {
	_, err := s.ledger.RecordTransaction(uuid.Nil, &RecordTransactionRequest{
		Type:        models.TransactionTypeIncome,
		Description: "tanpa pemilik",
		Amount:      decimal.NewFromInt(10000),
	})
	s.Require().ErrorIs(err, ErrOwnerRequired)

	var count int64
	s.Require().NoError(s.db.Model(&models.Transaction{}).Count(&count).Error)
	s.Zero(count)
}

func TestLedgerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}
