// internal/handlers/product.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/bizzyhq/bizzy-backend/internal/i18n"
	"github.com/bizzyhq/bizzy-backend/internal/models"
	"github.com/bizzyhq/bizzy-backend/internal/services"
	"github.com/bizzyhq/bizzy-backend/internal/utils"
)

type ProductHandler struct {
	productService *services.ProductService
}

func NewProductHandler(productService *services.ProductService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
	}
}

// POST /products
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	product, err := h.productService.CreateProduct(userID, &req)
	if err != nil {
		if errors.Is(err, services.ErrProductNameTaken) {
			utils.ConflictResponse(c, i18n.T(lang, i18n.KeyProductNameTaken, req.Name))
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyProductCreated),
		"product": product,
	})
}

// GET /products
func (h *ProductHandler) ListProducts(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	params := &services.ProductSearchParams{
		PaginationParams: utils.GetPaginationParams(c),
		Category:         c.Query("category"),
		Search:           c.Query("search"),
		LowStock:         c.Query("low_stock") == "true",
	}
	if status := c.Query("status"); status != "" {
		productStatus := models.ProductStatus(status)
		params.Status = &productStatus
	}

	result, err := h.productService.ListProducts(userID, params)
	if err != nil {
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.PaginatedResponse(c, *result)
}

// GET /products/low-stock
func (h *ProductHandler) ListLowStock(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	products, err := h.productService.ListLowStock(userID)
	if err != nil {
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.SuccessResponse(c, gin.H{"products": products})
}

// GET /products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	productID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	product, err := h.productService.GetProduct(userID, productID)
	if err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			utils.NotFoundResponse(c, "product")
			return
		}
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.SuccessResponse(c, product)
}

// PUT /products/:id
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	productID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req services.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	product, err := h.productService.UpdateProduct(userID, productID, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrProductNotFound):
			utils.NotFoundResponse(c, "product")
		case errors.Is(err, services.ErrProductNameTaken):
			utils.ConflictResponse(c, i18n.T(lang, i18n.KeyProductNameTaken, req.Name))
		default:
			utils.BadRequestResponse(c, err.Error(), nil)
		}
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyProductUpdated),
		"product": product,
	})
}

// DELETE /products/:id
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	productID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.productService.DeleteProduct(userID, productID); err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			utils.NotFoundResponse(c, "product")
			return
		}
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyProductDeleted),
	})
}

// POST /products/:id/stock
func (h *ProductHandler) AdjustStock(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	productID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req services.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	product, err := h.productService.AdjustStock(userID, productID, &req)
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

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyProductStockAdjusted),
		"product": product,
	})
}

// GET /products/:id/movements
func (h *ProductHandler) ListMovements(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	productID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	result, err := h.productService.ListMovements(userID, productID, utils.GetPaginationParams(c))
	if err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			utils.NotFoundResponse(c, "product")
			return
		}
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.PaginatedResponse(c, *result)
}
