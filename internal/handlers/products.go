package handlers

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"cartside/api/internal/middleware"
	"cartside/api/internal/models"
	"cartside/api/internal/service"
)

const maxImageBytes = 10 << 20

type productResponse struct {
	ID          string    `json:"id"`
	ShopID      string    `json:"shopId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	PriceCents  int64     `json:"priceCents"`
	Stock       int       `json:"stock"`
	Category    string    `json:"category"`
	ImageURL    *string   `json:"imageUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toProductResponse(product models.Product) productResponse {
	return productResponse{
		ID:          product.ID,
		ShopID:      product.ShopID,
		Name:        product.Name,
		Description: product.Description,
		PriceCents:  product.PriceCents,
		Stock:       product.Stock,
		Category:    product.Category,
		ImageURL:    product.ImageURL,
		CreatedAt:   product.CreatedAt,
	}
}

func (h HandlerSet) currentShop(c *gin.Context) (models.Shop, bool) {
	shopVal, exists := c.Get(middleware.CtxShopKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return models.Shop{}, false
	}
	shop, ok := shopVal.(models.Shop)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return models.Shop{}, false
	}
	return shop, true
}

// productInputFromForm reads the multipart product fields plus an optional
// image file.
func productInputFromForm(c *gin.Context) (service.ProductInput, error) {
	priceCents, _ := strconv.ParseInt(c.PostForm("priceCents"), 10, 64)
	stock, err := strconv.Atoi(c.PostForm("stock"))
	if err != nil {
		stock = -1
	}

	input := service.ProductInput{
		Name:        c.PostForm("name"),
		Description: c.PostForm("description"),
		PriceCents:  priceCents,
		Stock:       stock,
		Category:    c.PostForm("category"),
	}

	file, _, err := c.Request.FormFile("image")
	if err != nil {
		return input, nil
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImageBytes+1))
	if err != nil {
		return service.ProductInput{}, err
	}
	if len(data) > maxImageBytes {
		return service.ProductInput{}, service.ErrInvalidInput
	}
	input.Image = data
	return input, nil
}

func (h HandlerSet) CreateProduct(c *gin.Context) {
	shop, ok := h.currentShop(c)
	if !ok {
		return
	}

	input, err := productInputFromForm(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product payload"})
		return
	}

	product, err := h.catalog.CreateProduct(c.Request.Context(), shop.ID, input)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"product": toProductResponse(product)})
}

func (h HandlerSet) UpdateProduct(c *gin.Context) {
	shop, ok := h.currentShop(c)
	if !ok {
		return
	}

	input, err := productInputFromForm(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product payload"})
		return
	}

	product, err := h.catalog.UpdateProduct(c.Request.Context(), shop.ID, c.Param("id"), input)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": toProductResponse(product)})
}

func (h HandlerSet) DeleteProduct(c *gin.Context) {
	shop, ok := h.currentShop(c)
	if !ok {
		return
	}

	if err := h.catalog.DeleteProduct(c.Request.Context(), shop.ID, c.Param("id")); err != nil {
		h.respondServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h HandlerSet) GetProduct(c *gin.Context) {
	product, err := h.catalog.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": toProductResponse(product)})
}

func (h HandlerSet) ListShopProducts(c *gin.Context) {
	limit, offset := listParams(c)

	products, err := h.catalog.ListShopProducts(c.Request.Context(), c.Param("shopId"), limit, offset)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	items := make([]productResponse, 0, len(products))
	for _, product := range products {
		items = append(items, toProductResponse(product))
	}
	c.JSON(http.StatusOK, gin.H{"products": items})
}

func listParams(c *gin.Context) (int, int) {
	limit := 50
	offset := 0
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 && v <= 200 {
		limit = v
	}
	if v, err := strconv.Atoi(c.Query("offset")); err == nil && v > 0 {
		offset = v
	}
	return limit, offset
}
