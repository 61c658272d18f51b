// internal/services/payment_service.go
package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/bizzyhq/bizzy-backend/internal/config"
	"github.com/bizzyhq/bizzy-backend/internal/models"
	"github.com/bizzyhq/bizzy-backend/internal/utils"
)

var (
	ErrPaymentOrderNotFound = errors.New("payment order not found")
)

// PaymentService issues payment links and settles them from gateway
// webhooks. The gateway is injected so tests run against a fake.
type PaymentService struct {
	db             *gorm.DB
	cfg            *config.Config
	gateway        Gateway
	productService *ProductService
}

type CreatePaymentLinkRequest struct {
	ProductName   string           `json:"product_name,omitempty"`
	Quantity      int              `json:"quantity,omitempty" validate:"omitempty,min=1"`
	UnitPrice     *decimal.Decimal `json:"unit_price,omitempty"`
	Amount        decimal.Decimal  `json:"amount,omitempty"`
	Description   string           `json:"description,omitempty" validate:"omitempty,max=500"`
	Notes         string           `json:"notes,omitempty" validate:"omitempty,max=1000"`
	CustomerEmail string           `json:"customer_email,omitempty" validate:"omitempty,email"`
}

type PaymentLinkResponse struct {
	Order      *models.PaymentOrder `json:"order"`
	PaymentURL string               `json:"payment_url"`
}

type PaymentOrderSearchParams struct {
	utils.PaginationParams
	Status *models.PaymentStatus `json:"status,omitempty"`
}

func NewPaymentService(db *gorm.DB, cfg *config.Config, gateway Gateway, productService *ProductService) *PaymentService {
	return &PaymentService{
		db:             db,
		cfg:            cfg,
		gateway:        gateway,
		productService: productService,
	}
}

// CreatePaymentLink creates a pending order and a hosted checkout URL.
// For product orders the stock is checked but NOT reserved; the
// decrement happens at settlement.
func (s *PaymentService) CreatePaymentLink(userID uuid.UUID, req *CreatePaymentLinkRequest) (*PaymentLinkResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	order := &models.PaymentOrder{
		UserID:          userID,
		Currency:        user.Currency,
		Status:          models.PaymentStatusPending,
		Notes:           req.Notes,
		TransactionDate: time.Now(),
	}

	if req.ProductName != "" {
		product, err := s.productService.GetProductByName(userID, req.ProductName)
		if err != nil {
			return nil, err
		}

		quantity := req.Quantity
		if quantity == 0 {
			quantity = 1
		}
		if product.CurrentStock < quantity {
			return nil, ErrInsufficientStock
		}

		unitPrice := product.SellingPrice
		if req.UnitPrice != nil {
			if req.UnitPrice.IsNegative() {
				return nil, errors.New("unit price must not be negative")
			}
			unitPrice = *req.UnitPrice
		}

		order.Kind = models.PaymentKindProduct
		order.ProductID = &product.ID
		order.Quantity = quantity
		order.UnitPrice = decimal.NewNullDecimal(unitPrice)
		order.GrossAmount = unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
		order.Description = req.Description
		if order.Description == "" {
			order.Description = fmt.Sprintf("%s x%d", product.Name, quantity)
		}
	} else {
		if req.Amount.LessThanOrEqual(decimal.Zero) {
			return nil, errors.New("amount must be positive for general payment links")
		}
		order.Kind = models.PaymentKindGeneral
		order.GrossAmount = req.Amount
		order.Description = req.Description
		if order.Description == "" {
			order.Description = "Payment"
		}
	}

	orderID, err := utils.GenerateOrderID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate order id: %w", err)
	}
	order.OrderID = orderID

	checkout, err := s.gateway.CreateCheckout(&CheckoutInput{
		OrderID:       orderID,
		Amount:        order.GrossAmount,
		Currency:      strings.ToLower(order.Currency),
		Description:   order.Description,
		CustomerEmail: req.CustomerEmail,
		SuccessURL:    s.cfg.Frontend.BaseURL + "/payments/success?order_id=" + orderID,
		CancelURL:     s.cfg.Frontend.BaseURL + "/payments/cancel?order_id=" + orderID,
		Metadata:      map[string]string{"user_id": userID.String()},
	})
	if err != nil {
		return nil, fmt.Errorf("gateway error: %w", err)
	}

	order.GatewayRef = checkout.Reference
	order.PaymentURL = checkout.PaymentURL
	order.GatewayResponse = models.JSONB(checkout.Raw)

	if err := s.db.Create(order).Error; err != nil {
		return nil, fmt.Errorf("failed to create payment order: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"order_id": order.OrderID,
		"user_id":  userID,
		"amount":   order.GrossAmount,
	}).Info("Payment link created")

	return &PaymentLinkResponse{
		Order:      order,
		PaymentURL: order.PaymentURL,
	}, nil
}

// HandleGatewayEvent applies one webhook notification. Delivery is
// at-least-once, so replays of an already-settled order are no-ops.
func (s *PaymentService) HandleGatewayEvent(event *GatewayEvent) error {
	if event == nil {
		return nil
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var order models.PaymentOrder
		if err := tx.Where("order_id = ?", event.OrderID).First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPaymentOrderNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		// Idempotence: terminal states never change again.
		if order.Status != models.PaymentStatusPending {
			logrus.WithFields(logrus.Fields{
				"order_id": order.OrderID,
				"status":   order.Status,
				"event":    event.Status,
			}).Info("Webhook replay ignored")
			return nil
		}

		updates := map[string]interface{}{
			"status":           event.Status,
			"payment_type":     event.PaymentType,
			"webhook_received": true,
			"webhook_data":     models.JSONB(event.Raw),
		}
		if event.Status == models.PaymentStatusSettlement {
			now := time.Now()
			updates["settled_at"] = now
		}
		if err := tx.Model(&order).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update payment order: %w", err)
		}

		if event.Status != models.PaymentStatusSettlement {
			return nil
		}

		return s.settleOrder(tx, &order)
	})
}

// settleOrder records the income entry and, for product orders, moves
// the stock. A decrement that cannot be applied does not void the
// payment: money already changed hands, so the income is kept and the
// stock mismatch is logged for manual correction.
func (s *PaymentService) settleOrder(tx *gorm.DB, order *models.PaymentOrder) error {
	entry := &models.Transaction{
		UserID:          order.UserID,
		Type:            models.TransactionTypeIncome,
		Amount:          order.GrossAmount,
		Description:     order.Description,
		TransactionDate: time.Now(),
		Notes:           fmt.Sprintf("Payment link %s", order.OrderID),
	}

	if order.Kind == models.PaymentKindProduct && order.ProductID != nil {
		entry.ProductID = order.ProductID
		entry.Quantity = order.Quantity
		entry.UnitPrice = order.UnitPrice

		res := tx.Model(&models.Product{}).
			Where("id = ? AND current_stock >= ?", *order.ProductID, order.Quantity).
			Update("current_stock", gorm.Expr("current_stock - ?", order.Quantity))
		if res.Error != nil {
			return fmt.Errorf("failed to decrement stock: %w", res.Error)
		}

		if err := tx.Create(entry).Error; err != nil {
			return fmt.Errorf("failed to record income: %w", err)
		}

		if res.RowsAffected == 0 {
			logrus.WithFields(logrus.Fields{
				"order_id":   order.OrderID,
				"product_id": *order.ProductID,
				"quantity":   order.Quantity,
			}).Warn("Settled order exceeds available stock; income recorded without decrement")
			return nil
		}

		var after models.Product
		if err := tx.Select("current_stock").First(&after, "id = ?", *order.ProductID).Error; err != nil {
			return fmt.Errorf("failed to read stock balance: %w", err)
		}

		movement := &models.InventoryMovement{
			ProductID:     *order.ProductID,
			TransactionID: &entry.ID,
			Type:          models.MovementTypeOut,
			Quantity:      -order.Quantity,
			Reason:        "payment link settlement",
			BalanceBefore: after.CurrentStock + order.Quantity,
			BalanceAfter:  after.CurrentStock,
		}
		if err := tx.Create(movement).Error; err != nil {
			return fmt.Errorf("failed to record stock movement: %w", err)
		}
		return nil
	}

	if err := tx.Create(entry).Error; err != nil {
		return fmt.Errorf("failed to record income: %w", err)
	}
	return nil
}

func (s *PaymentService) GetPaymentOrder(userID uuid.UUID, orderID string) (*models.PaymentOrder, error) {
	var order models.PaymentOrder
	if err := s.db.Preload("Product").
		Where("order_id = ? AND user_id = ?", orderID, userID).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentOrderNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &order, nil
}

// CheckPaymentStatus refreshes a pending order from the gateway. The
// webhook remains the settlement authority; a settled status seen here
// is applied through the same path.
func (s *PaymentService) CheckPaymentStatus(userID uuid.UUID, orderID string) (*models.PaymentOrder, error) {
	order, err := s.GetPaymentOrder(userID, orderID)
	if err != nil {
		return nil, err
	}

	if order.Status != models.PaymentStatusPending || order.GatewayRef == "" {
		return order, nil
	}

	status, err := s.gateway.GetStatus(order.GatewayRef)
	if err != nil {
		logrus.WithError(err).WithField("order_id", orderID).Warn("Gateway status check failed")
		return order, nil
	}

	if status != models.PaymentStatusPending {
		if err := s.HandleGatewayEvent(&GatewayEvent{
			OrderID:     order.OrderID,
			Reference:   order.GatewayRef,
			Status:      status,
			PaymentType: "status_poll",
		}); err != nil {
			return nil, err
		}
		return s.GetPaymentOrder(userID, orderID)
	}

	return order, nil
}

func (s *PaymentService) ListPaymentOrders(userID uuid.UUID, params *PaymentOrderSearchParams) (*utils.PaginationResult, error) {
	query := s.db.Model(&models.PaymentOrder{}).Where("user_id = ?", userID)

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}

	var orders []models.PaymentOrder
	result, err := utils.Paginate(query.Order("created_at DESC"), params.PaginationParams, &orders)
	if err != nil {
		return nil, fmt.Errorf("failed to list payment orders: %w", err)
	}
	return &result, nil
}

// ParseWebhook delegates signature verification to the gateway.
func (s *PaymentService) ParseWebhook(payload []byte, signature string) (*GatewayEvent, error) {
	return s.gateway.ParseWebhook(payload, signature)
}
