package router

import (
	"time"

	"minimarket/internal/config"
	"minimarket/internal/handler"
	"minimarket/internal/middleware"
	"minimarket/internal/repository"
	"minimarket/internal/service"
	"minimarket/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	productRepo := repository.NewProductRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	movementRepo := repository.NewInventoryMovementRepository(db)
	counterRepo := repository.NewDocumentCounterRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg)
	productSvc := service.NewProductService(productRepo)
	inventorySvc := service.NewInventoryService(productRepo, movementRepo)
	issuer := service.NewDocumentNumberIssuer(counterRepo)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	saleSvc := service.NewSaleService(saleRepo, productRepo, customerRepo, inventorySvc, issuer, dispatcher, cfg.TaxRatePct)
	closureSvc := service.NewClosureService(saleRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	productsH := handler.NewProductsHandler(productSvc)
	inventoryH := handler.NewInventoryHandler(inventorySvc)
	salesH := handler.NewSalesHandler(saleSvc)
	closureH := handler.NewClosureHandler(closureSvc)
	pricesH := handler.NewPricesHandler(productRepo, rdb)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Price check — no auth required
	r.GET("/v1/price/:code", pricesH.GetPriceByCode)

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Roles: cashier, supervisor, admin — declared per-endpoint
		v1.POST("/sales", middleware.RequireRole("cashier", "supervisor", "admin"), salesH.CreateSale)
		v1.GET("/sales", middleware.RequireRole("cashier", "supervisor", "admin"), salesH.ListSales)
		v1.GET("/sales/:id", middleware.RequireRole("cashier", "supervisor", "admin"), salesH.GetSale)
		v1.DELETE("/sales/:id", middleware.RequireRole("supervisor", "admin"), salesH.CancelSale)

		// Catalog — read-only for every authenticated role
		v1.GET("/products", middleware.RequireRole("cashier", "supervisor", "admin"), productsH.ListProducts)
		v1.GET("/products/:id", middleware.RequireRole("cashier", "supervisor", "admin"), productsH.GetProduct)
		// Manual stock adjustment — supervisor or admin
		v1.PATCH("/products/:id/stock", middleware.RequireRole("supervisor", "admin"), inventoryH.AdjustStock)

		inv := v1.Group("/inventory", middleware.RequireRole("supervisor", "admin"))
		{
			inv.GET("/movements", inventoryH.ListMovements)
			inv.GET("/alerts", inventoryH.StockAlerts)
		}

		// Cashiers preview their own closure; only supervisors commit one
		v1.GET("/cash-closure/summary", middleware.RequireRole("cashier", "supervisor", "admin"), closureH.GetSummary)
		closures := v1.Group("/cash-closure", middleware.RequireRole("supervisor", "admin"))
		{
			closures.POST("", closureH.MarkClosed)
			closures.GET("/history", closureH.GetHistory)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
