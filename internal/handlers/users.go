package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"cartside/api/internal/middleware"
	"cartside/api/internal/models"
	"cartside/api/internal/service"
)

type registerUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"createdAt"`
}

func toUserResponse(user models.User) userResponse {
	return userResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Role:      string(user.Role),
		Verified:  user.Verified,
		CreatedAt: user.CreatedAt,
	}
}

func (h HandlerSet) RegisterUser(c *gin.Context) {
	var req registerUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.accounts.Register(c.Request.Context(), service.RegisterUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     models.UserRole(req.Role),
	})
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": toUserResponse(user)})
}

type otpRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required,len=6"`
}

func (h HandlerSet) VerifyUserOTP(c *gin.Context) {
	var req otpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, token, err := h.accounts.Activate(c.Request.Context(), req.Email, req.OTP)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	h.setSessionCookie(c, h.cfg.Security.UserCookieName, token)
	c.JSON(http.StatusOK, gin.H{"user": toUserResponse(user)})
}

type emailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

func (h HandlerSet) ResendUserOTP(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.accounts.ResendOTP(c.Request.Context(), req.Email); err != nil {
		h.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "otp_sent"})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h HandlerSet) LoginUser(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, token, err := h.accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	h.setSessionCookie(c, h.cfg.Security.UserCookieName, token)
	c.JSON(http.StatusOK, gin.H{"user": toUserResponse(user)})
}

// LogoutUser always succeeds: it only clears the client-held cookie.
func (h HandlerSet) LogoutUser(c *gin.Context) {
	h.clearSessionCookie(c, h.cfg.Security.UserCookieName)
	c.JSON(http.StatusOK, gin.H{"status": "logged_out"})
}

func (h HandlerSet) CurrentUser(c *gin.Context) {
	userVal, exists := c.Get(middleware.CtxUserKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}
	user, ok := userVal.(models.User)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": toUserResponse(user)})
}
