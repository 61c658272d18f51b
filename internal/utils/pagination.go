// internal/utils/pagination.go
package utils

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type PaginationParams struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

type PaginationResult struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	TotalPages int         `json:"total_pages"`
}

func GetPaginationParams(c *gin.Context) PaginationParams {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	return PaginationParams{Page: page, Limit: limit}
}

func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Paginate runs a count plus a limited query on the given scope and fills dest.
func Paginate(query *gorm.DB, params PaginationParams, dest interface{}) (PaginationResult, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return PaginationResult{}, err
	}

	if err := query.Offset(params.Offset()).Limit(params.Limit).Find(dest).Error; err != nil {
		return PaginationResult{}, err
	}

	totalPages := int((total + int64(params.Limit) - 1) / int64(params.Limit))

	return PaginationResult{
		Data:       dest,
		Total:      total,
		Page:       params.Page,
		Limit:      params.Limit,
		TotalPages: totalPages,
	}, nil
}

func SetPaginationHeaders(c *gin.Context, result PaginationResult) {
	c.Header("X-Total-Count", fmt.Sprintf("%d", result.Total))
	c.Header("X-Page", fmt.Sprintf("%d", result.Page))
	c.Header("X-Per-Page", fmt.Sprintf("%d", result.Limit))
	c.Header("X-Total-Pages", fmt.Sprintf("%d", result.TotalPages))
}
