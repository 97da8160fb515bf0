package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"cartside/api/internal/models"
	"cartside/api/internal/repository"
	"cartside/api/internal/security"
)

// Context keys populated by the auth variants.
const (
	CtxUserKey      = "current_user"
	CtxShopKey      = "current_shop"
	CtxShopTokenKey = "seller_token"
)

type UserLoader interface {
	GetByID(ctx context.Context, id string) (models.User, error)
}

type ShopLoader interface {
	GetByID(ctx context.Context, id string) (models.Shop, error)
}

// principalResolver is the contract both auth variants share: pull a token
// out of the request, then resolve the verified account id into a principal
// attached to the request scope. Failure mapping (which status for which
// miss) lives in the implementations so the two variants stay consistent
// and independently testable.
type principalResolver interface {
	extractToken(c *gin.Context) (string, bool)
	attachPrincipal(c *gin.Context, accountID string, token string) bool
}

func authenticate(tokens *security.TokenService, resolver principalResolver, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := resolver.extractToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
			return
		}

		accountID, err := tokens.Verify(token)
		if err != nil {
			// Raw verification errors stay server-side.
			log.Debug().Err(err).Msg("token verification failed")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
			return
		}

		if !resolver.attachPrincipal(c, accountID, token) {
			return
		}
		c.Next()
	}
}

// AuthUser resolves the end-user session cookie into a models.User principal.
func AuthUser(tokens *security.TokenService, users UserLoader, cookieName string, log zerolog.Logger) gin.HandlerFunc {
	return authenticate(tokens, &userResolver{users: users, cookieName: cookieName}, log)
}

type userResolver struct {
	users      UserLoader
	cookieName string
}

func (r *userResolver) extractToken(c *gin.Context) (string, bool) {
	token, err := c.Cookie(r.cookieName)
	if err != nil || token == "" {
		return "", false
	}
	return token, true
}

func (r *userResolver) attachPrincipal(c *gin.Context, accountID string, _ string) bool {
	user, err := r.users.GetByID(c.Request.Context(), accountID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "account_not_found"})
		} else {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		}
		return false
	}

	c.Set(CtxUserKey, user)
	return true
}

// AuthShop resolves the shop session cookie, falling back to a Bearer
// Authorization header. Only verified shops pass; the raw token is attached
// alongside the principal so handlers can relay it in responses.
func AuthShop(tokens *security.TokenService, shops ShopLoader, cookieName string, log zerolog.Logger) gin.HandlerFunc {
	return authenticate(tokens, &shopResolver{shops: shops, cookieName: cookieName}, log)
}

type shopResolver struct {
	shops      ShopLoader
	cookieName string
}

func (r *shopResolver) extractToken(c *gin.Context) (string, bool) {
	if token, err := c.Cookie(r.cookieName); err == nil && token != "" {
		return token, true
	}

	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		if token := strings.TrimPrefix(authHeader, "Bearer "); token != "" {
			return token, true
		}
	}
	return "", false
}

func (r *shopResolver) attachPrincipal(c *gin.Context, accountID string, token string) bool {
	shop, err := r.shops.GetByID(c.Request.Context(), accountID)
	if err != nil {
		if errors.Is(err, repository.ErrShopNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "account_not_found"})
		} else {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		}
		return false
	}

	if !shop.Verified {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "shop_not_verified"})
		return false
	}

	c.Set(CtxShopKey, shop)
	c.Set(CtxShopTokenKey, token)
	return true
}
