// internal/services/report_service_test.go
package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/bizzyhq/bizzy-backend/internal/models"
)

type ReportServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	reports *ReportService
	user    *models.User
}

func (s *ReportServiceTestSuite) SetupTest() {
	s.db = setupTestDB(s.T())
	s.reports = NewReportService(s.db)
	s.user = createTestUser(s.T(), s.db, "reports@example.com")
}

func (s *ReportServiceTestSuite) seedEntry(txType models.TransactionType, amount int64, expenseType models.ExpenseType, when time.Time) {
	entry := &models.Transaction{
		UserID:          s.user.ID,
		Type:            txType,
		Amount:          decimal.NewFromInt(amount),
		Description:     "seed",
		ExpenseType:     expenseType,
		TransactionDate: when,
	}
	s.Require().NoError(s.db.Create(entry).Error)
}

func (s *ReportServiceTestSuite) TestDailySummary() {
	now := time.Now()
	s.seedEntry(models.TransactionTypeIncome, 50000, "", now)
	s.seedEntry(models.TransactionTypeIncome, 30000, "", now)
	s.seedEntry(models.TransactionTypeExpense, 20000, models.ExpenseTypeOperating, now)
	s.seedEntry(models.TransactionTypeExpense, 10000, models.ExpenseTypeCOGS, now)
	// Yesterday's entry must not count
	s.seedEntry(models.TransactionTypeIncome, 99999, "", now.AddDate(0, 0, -1))

	summary, err := s.reports.Summary(s.user.ID, PeriodToday)
	s.Require().NoError(err)

	s.True(summary.TotalIncome.Equal(decimal.NewFromInt(80000)))
	s.True(summary.TotalExpense.Equal(decimal.NewFromInt(30000)))
	s.True(summary.NetProfit.Equal(decimal.NewFromInt(50000)))
	s.Equal(2, summary.IncomeCount)
	s.Equal(2, summary.ExpenseCount)
	s.True(summary.ExpenseByType["operating"].Equal(decimal.NewFromInt(20000)))
	s.True(summary.ExpenseByType["cogs"].Equal(decimal.NewFromInt(10000)))
}

func (s *ReportServiceTestSuite) TestSummaryScopedToOwner() {
	other := createTestUser(s.T(), s.db, "rival@example.com")
	otherEntry := &models.Transaction{
		UserID:          other.ID,
		Type:            models.TransactionTypeIncome,
		Amount:          decimal.NewFromInt(123456),
		TransactionDate: time.Now(),
	}
	s.Require().NoError(s.db.Create(otherEntry).Error)

	summary, err := s.reports.Summary(s.user.ID, PeriodToday)
	s.Require().NoError(err)
	s.True(summary.TotalIncome.IsZero())
}

func (s *ReportServiceTestSuite) TestComparePeriods() {
	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 12, 0, 0, 0, now.Location())
	// A few days before the month boundary always lands in the
	// previous comparison window regardless of month length.
	prevWindow := monthStart.AddDate(0, 0, -5)

	s.seedEntry(models.TransactionTypeIncome, 100000, "", monthStart)
	s.seedEntry(models.TransactionTypeIncome, 50000, "", prevWindow)

	comparison, err := s.reports.ComparePeriods(s.user.ID, PeriodMonth)
	s.Require().NoError(err)

	s.True(comparison.Current.TotalIncome.Equal(decimal.NewFromInt(100000)))
	s.True(comparison.Previous.TotalIncome.Equal(decimal.NewFromInt(50000)))
	s.True(comparison.IncomeChange.Equal(decimal.NewFromInt(50000)))
	s.Require().NotNil(comparison.IncomeChangePct)
	s.True(comparison.IncomeChangePct.Equal(decimal.NewFromInt(100)))
}

func (s *ReportServiceTestSuite) TestTotalRevenueWithMonthlyBreakdown() {
	now := time.Now()
	lastMonth := time.Date(now.Year(), now.Month(), 1, 12, 0, 0, 0, now.Location()).AddDate(0, -1, 0)
	s.seedEntry(models.TransactionTypeIncome, 40000, "", now)
	s.seedEntry(models.TransactionTypeIncome, 60000, "", lastMonth)
	// Expenses never count toward revenue
	s.seedEntry(models.TransactionTypeExpense, 500000, models.ExpenseTypeCapital, now)

	report, err := s.reports.TotalRevenue(s.user.ID, nil, nil)
	s.Require().NoError(err)

	s.True(report.TotalRevenue.Equal(decimal.NewFromInt(100000)))
	s.Equal(2, report.TransactionCount)
	s.True(report.AverageValue.Equal(decimal.NewFromInt(50000)))
	s.Len(report.MonthlyBreakdown, 2)
}

func (s *ReportServiceTestSuite) TestRevenueByProduct() {
	products := NewProductService(s.db)
	ledger := NewLedgerService(s.db, products)

	_, err := products.CreateProduct(s.user.ID, &CreateProductRequest{
		Name:         "Serabi",
		SellingPrice: decimal.NewFromInt(7000),
		CostPrice:    decimal.NewFromInt(3000),
		CurrentStock: 30,
	})
	s.Require().NoError(err)
	_, err = products.CreateProduct(s.user.ID, &CreateProductRequest{
		Name:         "Cendol",
		SellingPrice: decimal.NewFromInt(5000),
		CostPrice:    decimal.NewFromInt(2000),
		CurrentStock: 30,
	})
	s.Require().NoError(err)

	for i := 0; i < 3; i++ {
		_, err = ledger.RecordTransaction(s.user.ID, &RecordTransactionRequest{
			Type:        models.TransactionTypeIncome,
			ProductName: "Serabi",
			Description: "jual serabi",
			Quantity:    2,
		})
		s.Require().NoError(err)
	}
	_, err = ledger.RecordTransaction(s.user.ID, &RecordTransactionRequest{
		Type:        models.TransactionTypeIncome,
		ProductName: "Cendol",
		Description: "jual cendol",
		Quantity:    1,
	})
	s.Require().NoError(err)

	now := time.Now()
	revenue, err := s.reports.RevenueByProduct(s.user.ID, now.AddDate(0, 0, -1), now.AddDate(0, 0, 1))
	s.Require().NoError(err)
	s.Require().Len(revenue, 2)

	// Sorted by revenue, Serabi first: 3 sales x 2 units x 7000
	s.Equal("Serabi", revenue[0].ProductName)
	s.Equal(6, revenue[0].UnitsSold)
	s.True(revenue[0].Revenue.Equal(decimal.NewFromInt(42000)))
	s.True(revenue[0].CostOfGoods.Equal(decimal.NewFromInt(18000)))
	s.True(revenue[0].GrossProfit.Equal(decimal.NewFromInt(24000)))
}

func (s *ReportServiceTestSuite) TestPeriodRange() {
	// Wednesday 2026-08-26
	ref := time.Date(2026, 8, 26, 15, 30, 0, 0, time.UTC)

	start, end, err := PeriodRange(PeriodToday, ref)
	s.Require().NoError(err)
	s.Equal(time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC), start)
	s.Equal(time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC), end)

	start, end, err = PeriodRange(PeriodWeek, ref)
	s.Require().NoError(err)
	s.Equal(time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC), start) // Monday
	s.Equal(time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC), end)

	start, end, err = PeriodRange(PeriodMonth, ref)
	s.Require().NoError(err)
	s.Equal(time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), start)
	s.Equal(time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), end)

	_, _, err = PeriodRange(Period("quarter"), ref)
	s.Error(err)
}

func TestReportServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReportServiceTestSuite))
}
