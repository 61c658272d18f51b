// internal/assistant/executor.go
package assistant

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/bizzyhq/bizzy-backend/internal/models"
	"github.com/bizzyhq/bizzy-backend/internal/services"
	"github.com/bizzyhq/bizzy-backend/internal/utils"
)

// Executor dispatches one tool call to the service layer. Failures are
// returned in-band as {success: false, error: ...} so the model can
// read them and answer the user; the conversation never aborts on a
// failed tool.
type Executor struct {
	products *services.ProductService
	ledger   *services.LedgerService
	reports  *services.ReportService
	payments *services.PaymentService
}

func NewExecutor(products *services.ProductService, ledger *services.LedgerService, reports *services.ReportService, payments *services.PaymentService) *Executor {
	return &Executor{
		products: products,
		ledger:   ledger,
		reports:  reports,
		payments: payments,
	}
}

func (e *Executor) Execute(userID uuid.UUID, name string, args json.RawMessage) map[string]interface{} {
	result, err := e.dispatch(userID, name, args)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"tool":    name,
			"user_id": userID,
		}).WithError(err).Warn("Tool call failed")
		return map[string]interface{}{
			"success": false,
			"error":   err.Error(),
		}
	}
	return result
}

func (e *Executor) dispatch(userID uuid.UUID, name string, args json.RawMessage) (map[string]interface{}, error) {
	switch name {
	case "addProduct":
		return e.addProduct(userID, args)
	case "deleteProduct":
		return e.deleteProduct(userID, args)
	case "updateProduct":
		return e.updateProduct(userID, args)
	case "listProduct":
		return e.listProduct(userID, args)
	case "getDailySales":
		return e.getDailySales(userID)
	case "getMonthlySales":
		return e.getMonthlySales(userID, args)
	case "compareMonthlySales":
		return e.compareMonthlySales(userID)
	case "getTotalRevenue":
		return e.getTotalRevenue(userID, args)
	case "recordTransaction":
		return e.recordTransaction(userID, args)
	case "listTransaction":
		return e.listTransaction(userID, args)
	case "createPaymentLink":
		return e.createPaymentLink(userID, args)
	case "checkPaymentStatus":
		return e.checkPaymentStatus(userID, args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

func (e *Executor) addProduct(userID uuid.UUID, args json.RawMessage) (map[string]interface{}, error) {
	var input struct {
		Name         string   `json:"name"`
		Description  string   `json:"description"`
		Category     string   `json:"category"`
		SellingPrice float64  `json:"sellingPrice"`
		CostPrice    *float64 `json:"costPrice"`
		CurrentStock int      `json:"currentStock"`
		MinimumStock int      `json:"minimumStock"`
	}
	if err := json.Unmarshal(args, &input); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}

	req := &services.CreateProductRequest{
		Name:         input.Name,
		Description:  input.Description,
		Category:     input.Category,
		SellingPrice: decimal.NewFromFloat(input.SellingPrice),
		CurrentStock: input.CurrentStock,
		MinimumStock: input.MinimumStock,
	}
	if input.CostPrice != nil {
		req.CostPrice = decimal.NewFromFloat(*input.CostPrice)
	}

	product, err := e.products.CreateProduct(userID, req)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"success": true,
		"product": productPayload(product),
	}, nil
}

func (e *Executor) deleteProduct(userID uuid.UUID, args json.RawMessage) (map[string]interface{}, error) {
	var input struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(args, &input); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}

	product, err := e.products.GetProductByName(userID, input.Name)
	if err != nil {
		return nil, err
	}
	if err := e.products.DeleteProduct(userID, product.ID); err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"success": true,
		"deleted": productPayload(product),
	}, nil
}

func (e *Executor) updateProduct(userID uuid.UUID, args json.RawMessage) (map[string]interface{}, error) {
	var input struct {
		Name         string   `json:"name"`
		NewName      string   `json:"newName"`
		Description  *string  `json:"description"`
		Category     *string  `json:"category"`
		SellingPrice *float64 `json:"sellingPrice"`
		CostPrice    *float64 `json:"costPrice"`
		MinimumStock *int     `json:"minimumStock"`
		Status       string   `json:"status"`
	}
	if err := json.Unmarshal(args, &input); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}

	product, err := e.products.GetProductByName(userID, input.Name)
	if err != nil {
		return nil, err
	}

	req := &services.UpdateProductRequest{
		Name:         input.NewName,
		Description:  input.Description,
		Category:     input.Category,
		MinimumStock: input.MinimumStock,
		Status:       models.ProductStatus(input.Status),
	}
	if input.SellingPrice != nil {
		price := decimal.NewFromFloat(*input.SellingPrice)
		req.SellingPrice = &price
	}
	if input.CostPrice != nil {
		price := decimal.NewFromFloat(*input.CostPrice)
		req.CostPrice = &price
	}

	updated, err := e.products.UpdateProduct(userID, product.ID, req)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"success": true,
		"product": productPayload(updated),
	}, nil
}

func (e *Executor) listProduct(userID uuid.UUID, args json.RawMessage) (map[string]interface{}, error) {
	var input struct {
		Search   string `json:"search"`
		LowStock bool   `json:"lowStock"`
	}
	if len(args) > 0 {
		json.Unmarshal(args, &input)
	}

	params := &services.ProductSearchParams{
		PaginationParams: utils.PaginationParams{Page: 1, Limit: 100},
		Search:           input.Search,
		LowStock:         input.LowStock,
	}
	result, err := e.products.ListProducts(userID, params)
	if err != nil {
		return nil, err
	}

	products := *result.Data.(*[]models.Product)
	payload := make([]map[string]interface{}, 0, len(products))
	for i := range products {
		payload = append(payload, productPayload(&products[i]))
	}

	return map[string]interface{}{
		"success":  true,
		"total":    result.Total,
		"products": payload,
	}, nil
}

func (e *Executor) getDailySales(userID uuid.UUID) (map[string]interface{}, error) {
	summary, err := e.reports.Summary(userID, services.PeriodToday)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"success": true,
		"summary": summary,
	}, nil
}

func (e *Executor) getMonthlySales(userID uuid.UUID, args json.RawMessage) (map[string]interface{}, error) {
	var input struct {
		Year  int `json:"year"`
		Month int `json:"month"`
	}
	if len(args) > 0 {
		json.Unmarshal(args, &input)
	}

	now := time.Now()
	year, month := input.Year, input.Month
	if year == 0 {
		year = now.Year()
	}
	if month == 0 {
		month = int(now.Month())
	}
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("month must be between 1 and 12")
	}

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 1, 0)

	summary, err := e.reports.SummaryBetween(userID, start.Format("2006-01"), start, end)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"success": true,
		"summary": summary,
	}, nil
}

func (e *Executor) compareMonthlySales(userID uuid.UUID) (map[string]interface{}, error) {
	comparison, err := e.reports.ComparePeriods(userID, services.PeriodMonth)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"success":    true,
		"comparison": comparison,
	}, nil
}

func (e *Executor) getTotalRevenue(userID uuid.UUID, args json.RawMessage) (map[string]interface{}, error) {
	var input struct {
		StartDate string `json:"startDate"`
		EndDate   string `json:"endDate"`
	}
	if len(args) > 0 {
		json.Unmarshal(args, &input)
	}

	var start, end *time.Time
	if input.StartDate != "" {
		parsed, err := time.Parse("2006-01-02", input.StartDate)
		if err != nil {
			return nil, fmt.Errorf("invalid startDate: %w", err)
		}
		start = &parsed
	}
	if input.EndDate != "" {
		parsed, err := time.Parse("2006-01-02", input.EndDate)
		if err != nil {
			return nil, fmt.Errorf("invalid endDate: %w", err)
		}
		// Inclusive end of day
		parsed = parsed.AddDate(0, 0, 1).Add(-time.Second)
		end = &parsed
	}

	report, err := e.reports.TotalRevenue(userID, start, end)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"success": true,
		"revenue": report,
	}, nil
}

func (e *Executor) recordTransaction(userID uuid.UUID, args json.RawMessage) (map[string]interface{}, error) {
	var input struct {
		Type            string   `json:"type"`
		Name            string   `json:"name"`
		Amount          *float64 `json:"amount"`
		Description     string   `json:"description"`
		Quantity        int      `json:"quantity"`
		UnitPrice       *float64 `json:"unitPrice"`
		ExpenseType     string   `json:"expenseType"`
		TransactionDate string   `json:"transactionDate"`
		Notes           string   `json:"notes"`
	}
	if err := json.Unmarshal(args, &input); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}

	req := &services.RecordTransactionRequest{
		Type:        models.TransactionType(input.Type),
		ProductName: input.Name,
		Description: input.Description,
		Quantity:    input.Quantity,
		ExpenseType: models.ExpenseType(input.ExpenseType),
		Notes:       input.Notes,
	}
	if req.Description == "" {
		req.Description = input.Name
	}
	if input.Amount != nil {
		req.Amount = decimal.NewFromFloat(*input.Amount)
	}
	if input.UnitPrice != nil {
		price := decimal.NewFromFloat(*input.UnitPrice)
		req.UnitPrice = &price
	}
	if input.TransactionDate != "" {
		parsed, err := time.Parse("2006-01-02", input.TransactionDate)
		if err != nil {
			return nil, fmt.Errorf("invalid transactionDate: %w", err)
		}
		req.TransactionDate = &parsed
	}

	entry, err := e.ledger.RecordTransaction(userID, req)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"success":     true,
		"transaction": transactionPayload(entry),
	}, nil
}

func (e *Executor) listTransaction(userID uuid.UUID, args json.RawMessage) (map[string]interface{}, error) {
	var input struct {
		Type      string `json:"type"`
		StartDate string `json:"startDate"`
		EndDate   string `json:"endDate"`
		Limit     int    `json:"limit"`
	}
	if len(args) > 0 {
		json.Unmarshal(args, &input)
	}
	if input.Limit == 0 {
		input.Limit = 20
	}

	params := &services.TransactionSearchParams{
		PaginationParams: utils.PaginationParams{Page: 1, Limit: input.Limit},
	}
	if input.Type != "" {
		txType := models.TransactionType(input.Type)
		params.Type = &txType
	}
	if input.StartDate != "" {
		parsed, err := time.Parse("2006-01-02", input.StartDate)
		if err != nil {
			return nil, fmt.Errorf("invalid startDate: %w", err)
		}
		params.StartDate = &parsed
	}
	if input.EndDate != "" {
		parsed, err := time.Parse("2006-01-02", input.EndDate)
		if err != nil {
			return nil, fmt.Errorf("invalid endDate: %w", err)
		}
		end := parsed.AddDate(0, 0, 1).Add(-time.Second)
		params.EndDate = &end
	}

	result, err := e.ledger.ListTransactions(userID, params)
	if err != nil {
		return nil, err
	}

	entries := *result.Data.(*[]models.Transaction)
	payload := make([]map[string]interface{}, 0, len(entries))
	for i := range entries {
		payload = append(payload, transactionPayload(&entries[i]))
	}

	return map[string]interface{}{
		"success":      true,
		"total":        result.Total,
		"transactions": payload,
	}, nil
}

func (e *Executor) createPaymentLink(userID uuid.UUID, args json.RawMessage) (map[string]interface{}, error) {
	var input struct {
		Type        string   `json:"type"`
		Name        string   `json:"name"`
		Price       *float64 `json:"price"`
		Quantity    int      `json:"quantity"`
		Description string   `json:"description"`
		Notes       string   `json:"notes"`
	}
	if err := json.Unmarshal(args, &input); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	if input.Quantity == 0 {
		input.Quantity = 1
	}

	req := &services.CreatePaymentLinkRequest{
		Quantity:    input.Quantity,
		Description: input.Description,
		Notes:       input.Notes,
	}
	switch input.Type {
	case "product":
		req.ProductName = input.Name
		if input.Price != nil {
			price := decimal.NewFromFloat(*input.Price)
			req.UnitPrice = &price
		}
	case "transaction":
		if input.Price == nil {
			return nil, fmt.Errorf("price is required for general payments")
		}
		req.Amount = decimal.NewFromFloat(*input.Price).
			Mul(decimal.NewFromInt(int64(input.Quantity)))
		if req.Description == "" {
			req.Description = input.Name
		}
	default:
		return nil, fmt.Errorf("type must be 'product' or 'transaction'")
	}

	link, err := e.payments.CreatePaymentLink(userID, req)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"success":     true,
		"orderId":     link.Order.OrderID,
		"paymentUrl":  link.PaymentURL,
		"grossAmount": link.Order.GrossAmount,
		"status":      link.Order.Status,
	}, nil
}

func (e *Executor) checkPaymentStatus(userID uuid.UUID, args json.RawMessage) (map[string]interface{}, error) {
	var input struct {
		OrderID string `json:"orderId"`
	}
	if err := json.Unmarshal(args, &input); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}

	order, err := e.payments.CheckPaymentStatus(userID, input.OrderID)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"success": true,
		"order": map[string]interface{}{
			"orderId":         order.OrderID,
			"status":          order.Status,
			"grossAmount":     order.GrossAmount,
			"paymentType":     order.PaymentType,
			"description":     order.Description,
			"quantity":        order.Quantity,
			"transactionDate": order.TransactionDate,
		},
	}, nil
}

func productPayload(p *models.Product) map[string]interface{} {
	return map[string]interface{}{
		"id":           p.ID,
		"name":         p.Name,
		"description":  p.Description,
		"category":     p.Category,
		"status":       p.Status,
		"sellingPrice": p.SellingPrice,
		"costPrice":    p.CostPrice,
		"currentStock": p.CurrentStock,
		"minimumStock": p.MinimumStock,
		"lowStock":     p.IsLowStock(),
	}
}

func transactionPayload(t *models.Transaction) map[string]interface{} {
	payload := map[string]interface{}{
		"id":              t.ID,
		"type":            t.Type,
		"amount":          t.Amount,
		"description":     t.Description,
		"quantity":        t.Quantity,
		"transactionDate": t.TransactionDate,
		"notes":           t.Notes,
	}
	if t.UnitPrice.Valid {
		payload["unitPrice"] = t.UnitPrice.Decimal
	}
	if t.ExpenseType != "" {
		payload["expenseType"] = t.ExpenseType
	}
	return payload
}
