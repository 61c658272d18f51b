// internal/handlers/transaction.go
package handlers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bizzyhq/bizzy-backend/internal/i18n"
	"github.com/bizzyhq/bizzy-backend/internal/models"
	"github.com/bizzyhq/bizzy-backend/internal/services"
	"github.com/bizzyhq/bizzy-backend/internal/utils"
)

type TransactionHandler struct {
	ledgerService  *services.LedgerService
	storageService *services.StorageService
}

func NewTransactionHandler(ledgerService *services.LedgerService, storageService *services.StorageService) *TransactionHandler {
	return &TransactionHandler{
		ledgerService:  ledgerService,
		storageService: storageService,
	}
}

// POST /transactions
func (h *TransactionHandler) RecordTransaction(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.RecordTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	entry, err := h.ledgerService.RecordTransaction(userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInsufficientStock):
			utils.ConflictResponse(c, i18n.T(lang, i18n.KeyStockInsufficientGeneric))
		case errors.Is(err, services.ErrAmountRequired),
			errors.Is(err, services.ErrExpenseTypeRequired):
			utils.BadRequestResponse(c, err.Error(), nil)
		default:
			utils.BadRequestResponse(c, err.Error(), nil)
		}
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":     i18n.T(lang, i18n.KeyTransactionCreated),
		"transaction": entry,
	})
}

// GET /transactions
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	params := &services.TransactionSearchParams{
		PaginationParams: utils.GetPaginationParams(c),
	}
	if txType := c.Query("type"); txType != "" {
		t := models.TransactionType(txType)
		params.Type = &t
	}
	if productID := c.Query("product_id"); productID != "" {
		if id, err := uuid.Parse(productID); err == nil {
			params.ProductID = &id
		}
	}
	if start := c.Query("start_date"); start != "" {
		if parsed, err := time.Parse("2006-01-02", start); err == nil {
			params.StartDate = &parsed
		}
	}
	if end := c.Query("end_date"); end != "" {
		if parsed, err := time.Parse("2006-01-02", end); err == nil {
			inclusive := parsed.AddDate(0, 0, 1).Add(-time.Second)
			params.EndDate = &inclusive
		}
	}

	result, err := h.ledgerService.ListTransactions(userID, params)
	if err != nil {
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.PaginatedResponse(c, *result)
}

// GET /transactions/:id
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	transactionID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	entry, err := h.ledgerService.GetTransaction(userID, transactionID)
	if err != nil {
		if errors.Is(err, services.ErrTransactionNotFound) {
			utils.NotFoundResponse(c, "transaction")
			return
		}
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.SuccessResponse(c, entry)
}

// POST /transactions/:id/receipt
func (h *TransactionHandler) AttachReceipt(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	transactionID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("receipt")
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationRequired, "receipt"), nil)
		return
	}
	defer file.Close()

	upload, err := h.storageService.UploadFile(file, header, h.storageService.GetDefaultUploadOptions("receipts"))
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	entry, err := h.ledgerService.AttachReceipt(userID, transactionID, upload.URL)
	if err != nil {
		if errors.Is(err, services.ErrTransactionNotFound) {
			utils.NotFoundResponse(c, "transaction")
			return
		}
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":     i18n.T(lang, i18n.KeyReceiptAttached),
		"transaction": entry,
		"upload":      upload,
	})
}
