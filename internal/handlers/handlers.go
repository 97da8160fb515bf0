package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"cartside/api/internal/cache"
	"cartside/api/internal/config"
	"cartside/api/internal/mail"
	"cartside/api/internal/middleware"
	"cartside/api/internal/models"
	"cartside/api/internal/repository"
	"cartside/api/internal/security"
	"cartside/api/internal/service"
	"cartside/api/internal/storage"
)

type HandlerSet struct {
	log      zerolog.Logger
	cfg      *config.AppConfig
	tokens   *security.TokenService
	accounts *service.AccountService
	shopSvc  *service.ShopService
	catalog  *service.CatalogService
	orders   *service.OrderService
	db       *pgxpool.Pool
	cache    *redis.Client
	users    *repository.UserRepository
	shops    *repository.ShopRepository
}

func NewHandlerSet(
	log zerolog.Logger,
	db *pgxpool.Pool,
	cacheClient *redis.Client,
	media *storage.MediaStore,
	mailer mail.Sender,
	cfg *config.AppConfig,
) HandlerSet {
	userRepo := repository.NewUserRepository(db)
	shopRepo := repository.NewShopRepository(db)
	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	reviewRepo := repository.NewReviewRepository(db)

	tokens := security.NewTokenService(cfg.Security.TokenSecret, cfg.Security.TokenTTL)
	cooldown := cache.NewCooldown(cacheClient)

	accounts := service.NewAccountService(userRepo, tokens, mailer, cooldown, cfg.Security, log)
	shopSvc := service.NewShopService(shopRepo, tokens, mailer, cooldown, cfg.Security, log)
	catalog := service.NewCatalogService(productRepo, media, log)
	orders := service.NewOrderService(orderRepo, reviewRepo, productRepo, log)

	return HandlerSet{
		log:      log,
		cfg:      cfg,
		tokens:   tokens,
		accounts: accounts,
		shopSvc:  shopSvc,
		catalog:  catalog,
		orders:   orders,
		db:       db,
		cache:    cacheClient,
		users:    userRepo,
		shops:    shopRepo,
	}
}

func (h HandlerSet) Mount(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	userAuth := middleware.AuthUser(h.tokens, h.users, h.cfg.Security.UserCookieName, h.log)
	shopAuth := middleware.AuthShop(h.tokens, h.shops, h.cfg.Security.ShopCookieName, h.log)

	v1 := router.Group("/v1")

	users := v1.Group("/users")
	{
		users.POST("/register", h.RegisterUser)
		users.POST("/verify-otp", h.VerifyUserOTP)
		users.POST("/resend-otp", h.ResendUserOTP)
		users.POST("/login", h.LoginUser)
		users.POST("/logout", h.LogoutUser)
		users.GET("/me", userAuth, h.CurrentUser)
	}

	shops := v1.Group("/shops")
	{
		shops.POST("/register", h.RegisterShop)
		shops.POST("/verify-otp", h.VerifyShopOTP)
		shops.POST("/resend-otp", h.ResendShopOTP)
		shops.POST("/login", h.LoginShop)
		shops.POST("/logout", h.LogoutShop)
		shops.GET("/me", shopAuth, h.CurrentShop)
	}

	products := v1.Group("/products")
	{
		products.GET("/:id", h.GetProduct)
		products.GET("/shop/:shopId", h.ListShopProducts)
		products.POST("", shopAuth, h.CreateProduct)
		products.PUT("/:id", shopAuth, h.UpdateProduct)
		products.DELETE("/:id", shopAuth, h.DeleteProduct)
	}

	orders := v1.Group("/orders")
	{
		orders.POST("", userAuth, h.PlaceOrder)
		orders.GET("/mine", userAuth, h.ListMyOrders)
		orders.GET("/shop", shopAuth, h.ListShopOrders)
		orders.PATCH("/:id/status", shopAuth, h.UpdateOrderStatus)
	}

	reviews := v1.Group("/reviews")
	{
		reviews.POST("/products/:id", userAuth, h.AddReview)
		reviews.GET("/products/:id", h.ListProductReviews)
	}

	admin := v1.Group("/admin")
	admin.Use(userAuth, middleware.RequireRoles(models.UserRoleAdmin))
	{
		admin.GET("/users", h.AdminListUsers)
		admin.GET("/shops", h.AdminListShops)
		admin.POST("/users/:id/approve", h.AdminApproveRole)
	}
}
