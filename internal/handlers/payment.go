// internal/handlers/payment.go
package handlers

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/bizzyhq/bizzy-backend/internal/i18n"
	"github.com/bizzyhq/bizzy-backend/internal/models"
	"github.com/bizzyhq/bizzy-backend/internal/services"
	"github.com/bizzyhq/bizzy-backend/internal/utils"
)

type PaymentHandler struct {
	paymentService *services.PaymentService
}

func NewPaymentHandler(paymentService *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

// POST /payments/links
func (h *PaymentHandler) CreatePaymentLink(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.CreatePaymentLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	link, err := h.paymentService.CreatePaymentLink(userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrProductNotFound):
			utils.NotFoundResponse(c, "product")
		case errors.Is(err, services.ErrInsufficientStock):
			utils.ConflictResponse(c, i18n.T(lang, i18n.KeyStockInsufficientGeneric))
		default:
			utils.BadRequestResponse(c, err.Error(), nil)
		}
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":     i18n.T(lang, i18n.KeyPaymentLinkCreated),
		"order":       link.Order,
		"payment_url": link.PaymentURL,
	})
}

// GET /payments/orders
func (h *PaymentHandler) ListPaymentOrders(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	params := &services.PaymentOrderSearchParams{
		PaginationParams: utils.GetPaginationParams(c),
	}
	if status := c.Query("status"); status != "" {
		paymentStatus := models.PaymentStatus(status)
		params.Status = &paymentStatus
	}

	result, err := h.paymentService.ListPaymentOrders(userID, params)
	if err != nil {
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.PaginatedResponse(c, *result)
}

// GET /payments/orders/:orderID
func (h *PaymentHandler) GetPaymentOrder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	order, err := h.paymentService.CheckPaymentStatus(userID, c.Param("orderID"))
	if err != nil {
		if errors.Is(err, services.ErrPaymentOrderNotFound) {
			utils.NotFoundResponse(c, "payment")
			return
		}
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.SuccessResponse(c, order)
}

// POST /webhooks/stripe
// Unauthenticated; the gateway signature is the authentication.
func (h *PaymentHandler) GatewayWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		utils.BadRequestResponse(c, "failed to read payload", nil)
		return
	}

	event, err := h.paymentService.ParseWebhook(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	if err := h.paymentService.HandleGatewayEvent(event); err != nil {
		if errors.Is(err, services.ErrPaymentOrderNotFound) {
			utils.NotFoundResponse(c, "payment")
			return
		}
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.SuccessResponse(c, gin.H{"received": true})
}
