package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"minimarket/internal/apierror"
	"minimarket/internal/dto"
	"minimarket/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const priceCacheTTL = 4 * time.Hour

// PricesHandler serves the public price check endpoint.
// No authentication required — no side effects whatsoever.
type PricesHandler struct {
	repo repository.ProductRepository
	rdb  *redis.Client
}

func NewPricesHandler(repo repository.ProductRepository, rdb *redis.Client) *PricesHandler {
	return &PricesHandler{repo: repo, rdb: rdb}
}

// GetPriceByCode godoc
// @Summary Price check by product code (no authentication)
// @Tags prices
// @Produce json
// @Param code path string true "Product code"
// @Success 200 {object} dto.PriceCheckResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/price/{code} [get]
func (h *PricesHandler) GetPriceByCode(c *gin.Context) {
	code := c.Param("code")
	ctx := c.Request.Context()
	cacheKey := "price:" + code

	// 1. Try Redis cache
	if cached, err := h.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
		var resp dto.PriceCheckResponse
		if jsonErr := json.Unmarshal(cached, &resp); jsonErr == nil {
			c.JSON(http.StatusOK, resp)
			return
		}
	}

	// 2. Cache miss — query DB
	product, err := h.repo.FindByCode(ctx, code)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New("Product not found"))
		return
	}

	resp := dto.PriceCheckResponse{
		Name:      product.Name,
		SalePrice: product.SalePrice,
		Stock:     product.Stock,
		Category:  product.Category,
	}

	// 3. Populate cache — best effort, ignore errors
	if b, jsonErr := json.Marshal(resp); jsonErr == nil {
		_ = h.rdb.Set(context.Background(), cacheKey, b, priceCacheTTL).Err()
	}

	c.JSON(http.StatusOK, resp)
}
