package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"cartside/api/internal/middleware"
	"cartside/api/internal/models"
	"cartside/api/internal/service"
)

type registerShopRequest struct {
	Name        string `json:"name" binding:"required"`
	OwnerName   string `json:"ownerName" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	Description string `json:"description"`
}

type shopResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	OwnerName   string    `json:"ownerName"`
	Description string    `json:"description"`
	Verified    bool      `json:"verified"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toShopResponse(shop models.Shop) shopResponse {
	return shopResponse{
		ID:          shop.ID,
		Email:       shop.Email,
		Name:        shop.Name,
		OwnerName:   shop.OwnerName,
		Description: shop.Description,
		Verified:    shop.Verified,
		CreatedAt:   shop.CreatedAt,
	}
}

func (h HandlerSet) RegisterShop(c *gin.Context) {
	var req registerShopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	shop, err := h.shopSvc.Register(c.Request.Context(), service.RegisterShopInput{
		Name:        req.Name,
		OwnerName:   req.OwnerName,
		Email:       req.Email,
		Password:    req.Password,
		Description: req.Description,
	})
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"shop": toShopResponse(shop)})
}

// VerifyShopOTP activates the shop and, besides setting the session cookie,
// echoes the minted token so API clients without cookie jars can use the
// Bearer header.
func (h HandlerSet) VerifyShopOTP(c *gin.Context) {
	var req otpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	shop, token, err := h.shopSvc.Activate(c.Request.Context(), req.Email, req.OTP)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	h.setSessionCookie(c, h.cfg.Security.ShopCookieName, token)
	c.JSON(http.StatusOK, gin.H{"shop": toShopResponse(shop), "token": token})
}

func (h HandlerSet) ResendShopOTP(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.shopSvc.ResendOTP(c.Request.Context(), req.Email); err != nil {
		h.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "otp_sent"})
}

func (h HandlerSet) LoginShop(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	shop, token, err := h.shopSvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	h.setSessionCookie(c, h.cfg.Security.ShopCookieName, token)
	c.JSON(http.StatusOK, gin.H{"shop": toShopResponse(shop), "token": token})
}

func (h HandlerSet) LogoutShop(c *gin.Context) {
	h.clearSessionCookie(c, h.cfg.Security.ShopCookieName)
	c.JSON(http.StatusOK, gin.H{"status": "logged_out"})
}

func (h HandlerSet) CurrentShop(c *gin.Context) {
	shopVal, exists := c.Get(middleware.CtxShopKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}
	shop, ok := shopVal.(models.Shop)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	resp := gin.H{"shop": toShopResponse(shop)}
	if token := c.GetString(middleware.CtxShopTokenKey); token != "" {
		resp["token"] = token
	}
	c.JSON(http.StatusOK, resp)
}
