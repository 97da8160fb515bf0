package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"cartside/api/internal/middleware"
	"cartside/api/internal/models"
)

type orderResponse struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	ProductID      string    `json:"productId"`
	Quantity       int       `json:"quantity"`
	UnitPriceCents int64     `json:"unitPriceCents"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
}

func toOrderResponse(order models.Order) orderResponse {
	return orderResponse{
		ID:             order.ID,
		UserID:         order.UserID,
		ProductID:      order.ProductID,
		Quantity:       order.Quantity,
		UnitPriceCents: order.UnitPriceCents,
		Status:         string(order.Status),
		CreatedAt:      order.CreatedAt,
	}
}

func (h HandlerSet) currentUser(c *gin.Context) (models.User, bool) {
	userVal, exists := c.Get(middleware.CtxUserKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return models.User{}, false
	}
	user, ok := userVal.(models.User)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return models.User{}, false
	}
	return user, true
}

type placeOrderRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

func (h HandlerSet) PlaceOrder(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req placeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.orders.PlaceOrder(c.Request.Context(), user.ID, req.ProductID, req.Quantity)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"order": toOrderResponse(order)})
}

func (h HandlerSet) ListMyOrders(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	limit, offset := listParams(c)

	orders, err := h.orders.ListUserOrders(c.Request.Context(), user.ID, limit, offset)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	items := make([]orderResponse, 0, len(orders))
	for _, order := range orders {
		items = append(items, toOrderResponse(order))
	}
	c.JSON(http.StatusOK, gin.H{"orders": items})
}

func (h HandlerSet) ListShopOrders(c *gin.Context) {
	shop, ok := h.currentShop(c)
	if !ok {
		return
	}
	limit, offset := listParams(c)

	orders, err := h.orders.ListShopOrders(c.Request.Context(), shop.ID, limit, offset)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	items := make([]orderResponse, 0, len(orders))
	for _, order := range orders {
		items = append(items, toOrderResponse(order))
	}
	c.JSON(http.StatusOK, gin.H{"orders": items})
}

type orderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h HandlerSet) UpdateOrderStatus(c *gin.Context) {
	shop, ok := h.currentShop(c)
	if !ok {
		return
	}

	var req orderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.orders.UpdateOrderStatus(c.Request.Context(), shop.ID, c.Param("id"), models.OrderStatus(req.Status))
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": req.Status})
}

type reviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

func (h HandlerSet) AddReview(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	review, err := h.orders.AddReview(c.Request.Context(), user.ID, c.Param("id"), req.Rating, req.Comment)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"review": gin.H{
		"id":        review.ID,
		"productId": review.ProductID,
		"userId":    review.UserID,
		"rating":    review.Rating,
		"comment":   review.Comment,
	}})
}

func (h HandlerSet) ListProductReviews(c *gin.Context) {
	limit, offset := listParams(c)

	reviews, err := h.orders.ListReviews(c.Request.Context(), c.Param("id"), limit, offset)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	items := make([]gin.H, 0, len(reviews))
	for _, review := range reviews {
		items = append(items, gin.H{
			"id":        review.ID,
			"productId": review.ProductID,
			"userId":    review.UserID,
			"rating":    review.Rating,
			"comment":   review.Comment,
			"createdAt": review.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"reviews": items})
}
