package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"cartside/api/internal/models"
	"cartside/api/internal/repository"
)

func (h HandlerSet) AdminListUsers(c *gin.Context) {
	limit, offset := listParams(c)

	users, err := h.users.List(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	items := make([]gin.H, 0, len(users))
	for _, user := range users {
		items = append(items, gin.H{
			"id":                 user.ID,
			"email":              user.Email,
			"name":               user.Name,
			"role":               user.Role,
			"verified":           user.Verified,
			"sellerApproved":     user.SellerApproved,
			"instructorApproved": user.InstructorApproved,
			"providerApproved":   user.ProviderApproved,
			"createdAt":          user.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"users": items})
}

func (h HandlerSet) AdminListShops(c *gin.Context) {
	limit, offset := listParams(c)

	shops, err := h.shops.List(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	items := make([]gin.H, 0, len(shops))
	for _, shop := range shops {
		items = append(items, gin.H{
			"id":        shop.ID,
			"email":     shop.Email,
			"name":      shop.Name,
			"ownerName": shop.OwnerName,
			"verified":  shop.Verified,
			"createdAt": shop.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"shops": items})
}

type approveRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// AdminApproveRole flips the approval flag for a user's role application.
func (h HandlerSet) AdminApproveRole(c *gin.Context) {
	var req approveRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "account_not_found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		}
		return
	}

	switch models.UserRole(req.Role) {
	case models.UserRoleSeller:
		user.SellerApproved = true
	case models.UserRoleInstructor:
		user.InstructorApproved = true
	case models.UserRoleServiceProvider:
		user.ProviderApproved = true
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown role"})
		return
	}

	if err := h.users.Update(c.Request.Context(), user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "approved", "role": req.Role})
}
