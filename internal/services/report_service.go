// internal/services/report_service.go
package services

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/bizzyhq/bizzy-backend/internal/models"
)

// ReportService aggregates ledger entries into summaries. Sums are
// computed in Go with decimal arithmetic so results are exact and
// independent of the database engine.
type ReportService struct {
	db *gorm.DB
}

type Period string

const (
	PeriodToday Period = "today"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

type FinancialSummary struct {
	Period        string                     `json:"period"`
	StartDate     time.Time                  `json:"start_date"`
	EndDate       time.Time                  `json:"end_date"`
	TotalIncome   decimal.Decimal            `json:"total_income"`
	TotalExpense  decimal.Decimal            `json:"total_expense"`
	NetProfit     decimal.Decimal            `json:"net_profit"`
	IncomeCount   int                        `json:"income_count"`
	ExpenseCount  int                        `json:"expense_count"`
	ExpenseByType map[string]decimal.Decimal `json:"expense_by_type"`
}

type ProductRevenue struct {
	ProductID    uuid.UUID       `json:"product_id"`
	ProductName  string          `json:"product_name"`
	UnitsSold    int             `json:"units_sold"`
	Revenue      decimal.Decimal `json:"revenue"`
	CostOfGoods  decimal.Decimal `json:"cost_of_goods"`
	GrossProfit  decimal.Decimal `json:"gross_profit"`
	CurrentStock int             `json:"current_stock"`
}

type PeriodComparison struct {
	Current         *FinancialSummary `json:"current"`
	Previous        *FinancialSummary `json:"previous"`
	IncomeChange    decimal.Decimal   `json:"income_change"`
	ExpenseChange   decimal.Decimal   `json:"expense_change"`
	NetProfitChange decimal.Decimal   `json:"net_profit_change"`
	IncomeChangePct *decimal.Decimal  `json:"income_change_pct,omitempty"`
}

func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{db: db}
}

// PeriodRange resolves a named period into [start, end) boundaries
// in the local timezone.
func PeriodRange(period Period, now time.Time) (time.Time, time.Time, error) {
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch period {
	case PeriodToday:
		return startOfDay, startOfDay.AddDate(0, 0, 1), nil
	case PeriodWeek:
		// Week starts on Monday
		offset := (int(now.Weekday()) + 6) % 7
		start := startOfDay.AddDate(0, 0, -offset)
		return start, start.AddDate(0, 0, 7), nil
	case PeriodMonth:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return start, start.AddDate(0, 1, 0), nil
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("unknown period: %s", period)
	}
}

func (s *ReportService) Summary(userID uuid.UUID, period Period) (*FinancialSummary, error) {
	start, end, err := PeriodRange(period, time.Now())
	if err != nil {
		return nil, err
	}
	return s.SummaryBetween(userID, string(period), start, end)
}

func (s *ReportService) SummaryBetween(userID uuid.UUID, label string, start, end time.Time) (*FinancialSummary, error) {
	if !end.After(start) {
		return nil, errors.New("end date must be after start date")
	}

	var entries []models.Transaction
	if err := s.db.Where("user_id = ? AND transaction_date >= ? AND transaction_date < ?",
		userID, start, end).
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}

	summary := &FinancialSummary{
		Period:        label,
		StartDate:     start,
		EndDate:       end,
		TotalIncome:   decimal.Zero,
		TotalExpense:  decimal.Zero,
		ExpenseByType: make(map[string]decimal.Decimal),
	}

	for _, entry := range entries {
		switch entry.Type {
		case models.TransactionTypeIncome:
			summary.TotalIncome = summary.TotalIncome.Add(entry.Amount)
			summary.IncomeCount++
		case models.TransactionTypeExpense:
			summary.TotalExpense = summary.TotalExpense.Add(entry.Amount)
			summary.ExpenseCount++
			key := string(entry.ExpenseType)
			if key == "" {
				key = string(models.ExpenseTypeOther)
			}
			summary.ExpenseByType[key] = summary.ExpenseByType[key].Add(entry.Amount)
		}
	}

	summary.NetProfit = summary.TotalIncome.Sub(summary.TotalExpense)
	return summary, nil
}

// RevenueByProduct breaks income entries down per product within the
// given window. Entries without a product link are skipped.
func (s *ReportService) RevenueByProduct(userID uuid.UUID, start, end time.Time) ([]ProductRevenue, error) {
	if !end.After(start) {
		return nil, errors.New("end date must be after start date")
	}

	var entries []models.Transaction
	if err := s.db.Preload("Product").
		Where("user_id = ? AND type = ? AND product_id IS NOT NULL AND transaction_date >= ? AND transaction_date < ?",
			userID, models.TransactionTypeIncome, start, end).
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}

	byProduct := make(map[uuid.UUID]*ProductRevenue)
	order := []uuid.UUID{}
	for _, entry := range entries {
		if entry.ProductID == nil || entry.Product == nil {
			continue
		}
		rev, ok := byProduct[*entry.ProductID]
		if !ok {
			rev = &ProductRevenue{
				ProductID:    *entry.ProductID,
				ProductName:  entry.Product.Name,
				Revenue:      decimal.Zero,
				CostOfGoods:  decimal.Zero,
				CurrentStock: entry.Product.CurrentStock,
			}
			byProduct[*entry.ProductID] = rev
			order = append(order, *entry.ProductID)
		}
		rev.UnitsSold += entry.Quantity
		rev.Revenue = rev.Revenue.Add(entry.Amount)
		rev.CostOfGoods = rev.CostOfGoods.Add(
			entry.Product.CostPrice.Mul(decimal.NewFromInt(int64(entry.Quantity))))
	}

	result := make([]ProductRevenue, 0, len(order))
	for _, id := range order {
		rev := byProduct[id]
		rev.GrossProfit = rev.Revenue.Sub(rev.CostOfGoods)
		result = append(result, *rev)
	}

	// Highest revenue first
	sort.Slice(result, func(i, j int) bool {
		return result[i].Revenue.GreaterThan(result[j].Revenue)
	})

	return result, nil
}

type MonthlyRevenue struct {
	Month        string          `json:"month"` // YYYY-MM
	Revenue      decimal.Decimal `json:"revenue"`
	Transactions int             `json:"transactions"`
}

type RevenueReport struct {
	StartDate        *time.Time       `json:"start_date,omitempty"`
	EndDate          time.Time        `json:"end_date"`
	TotalRevenue     decimal.Decimal  `json:"total_revenue"`
	TransactionCount int              `json:"transaction_count"`
	AverageValue     decimal.Decimal  `json:"average_value"`
	MonthlyBreakdown []MonthlyRevenue `json:"monthly_breakdown"`
}

// TotalRevenue sums income from the optional start date up to the end
// date (default now), with a per-month breakdown.
func (s *ReportService) TotalRevenue(userID uuid.UUID, start *time.Time, end *time.Time) (*RevenueReport, error) {
	until := time.Now()
	if end != nil {
		until = *end
	}

	query := s.db.Where("user_id = ? AND type = ? AND transaction_date <= ?",
		userID, models.TransactionTypeIncome, until)
	if start != nil {
		query = query.Where("transaction_date >= ?", *start)
	}

	var entries []models.Transaction
	if err := query.Order("transaction_date ASC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}

	report := &RevenueReport{
		StartDate:    start,
		EndDate:      until,
		TotalRevenue: decimal.Zero,
		AverageValue: decimal.Zero,
	}

	byMonth := make(map[string]*MonthlyRevenue)
	months := []string{}
	for _, entry := range entries {
		report.TotalRevenue = report.TotalRevenue.Add(entry.Amount)
		report.TransactionCount++

		key := entry.TransactionDate.Format("2006-01")
		bucket, ok := byMonth[key]
		if !ok {
			bucket = &MonthlyRevenue{Month: key, Revenue: decimal.Zero}
			byMonth[key] = bucket
			months = append(months, key)
		}
		bucket.Revenue = bucket.Revenue.Add(entry.Amount)
		bucket.Transactions++
	}

	for _, key := range months {
		report.MonthlyBreakdown = append(report.MonthlyBreakdown, *byMonth[key])
	}

	if report.TransactionCount > 0 {
		report.AverageValue = report.TotalRevenue.
			Div(decimal.NewFromInt(int64(report.TransactionCount))).
			Round(2)
	}

	return report, nil
}

// ComparePeriods compares the current named period with the one
// immediately before it.
func (s *ReportService) ComparePeriods(userID uuid.UUID, period Period) (*PeriodComparison, error) {
	now := time.Now()
	start, end, err := PeriodRange(period, now)
	if err != nil {
		return nil, err
	}

	span := end.Sub(start)
	prevStart := start.Add(-span)

	current, err := s.SummaryBetween(userID, string(period), start, end)
	if err != nil {
		return nil, err
	}
	previous, err := s.SummaryBetween(userID, "previous "+string(period), prevStart, start)
	if err != nil {
		return nil, err
	}

	comparison := &PeriodComparison{
		Current:         current,
		Previous:        previous,
		IncomeChange:    current.TotalIncome.Sub(previous.TotalIncome),
		ExpenseChange:   current.TotalExpense.Sub(previous.TotalExpense),
		NetProfitChange: current.NetProfit.Sub(previous.NetProfit),
	}

	if !previous.TotalIncome.IsZero() {
		pct := comparison.IncomeChange.
			Div(previous.TotalIncome).
			Mul(decimal.NewFromInt(100)).
			Round(2)
		comparison.IncomeChangePct = &pct
	}

	return comparison, nil
}
