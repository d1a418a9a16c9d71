package main

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"go-retail-pos/internal/auth"
	"go-retail-pos/internal/cache"
	"go-retail-pos/internal/config"
	"go-retail-pos/internal/database"
	"go-retail-pos/internal/handlers"
	"go-retail-pos/internal/jobs"
	"go-retail-pos/internal/logger"
	"go-retail-pos/internal/middleware"
	"go-retail-pos/internal/sales"
	"go-retail-pos/internal/store/gormstore"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("no .env file found")
	}

	cfg := config.Load()
	logger.Init("retail-pos", cfg.Development)

	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET is not configured")
	}
	auth.Init(cfg.JWTSecret)

	db, err := database.Connect(cfg.DatabaseDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}

	repo := gormstore.New(db)
	salesService := sales.New(repo)
	requestCache := cache.NewRequestCache()

	// Redis is optional: without it the report mirror is a no-op and only
	// the in-process cache applies.
	var reportCache cache.ReportCache = cache.NoopReportCache{}
	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedisReportCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := redisCache.Ping(ctx); err != nil {
			log.Warn().Err(err).Msg("redis unreachable, report mirror disabled")
		} else {
			reportCache = redisCache
			log.Info().Str("addr", cfg.RedisAddr).Msg("redis report mirror enabled")
		}
		cancel()
	}

	h := handlers.New(repo, salesService, requestCache, reportCache, cfg.GeminiAPIKey)
	authHandler := handlers.NewAuthHandler(db)

	sweep, err := jobs.StartLowStockSweep(cfg.LowStockCron, repo)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid LOW_STOCK_CRON expression")
	}
	defer sweep.Stop()

	if !cfg.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.AllowedOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"status": "online"}) })
	r.POST("/login", authHandler.Login)

	// Only opens if explicitly allowed in .env
	if cfg.AllowRegistration {
		r.POST("/register", authHandler.Register)
		log.Warn().Msg("registration route is OPEN, disable this in production")
	}

	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware())
	{
		// Staff and admin
		api.GET("/products", h.GetProducts)
		api.GET("/products/:id", h.GetProduct)
		api.POST("/sales", h.CreateSale)
		api.GET("/sales", h.ListSales)
		api.GET("/sales/:id", h.GetSale)
		api.GET("/customers", h.ListCustomers)
		api.POST("/customers", h.AddCustomer)

		// Admin only
		admin := api.Group("/")
		admin.Use(middleware.RequireRole("admin"))
		{
			admin.POST("/products", h.AddProduct)
			admin.PUT("/products/:id", h.UpdateProduct)
			admin.DELETE("/products/:id", h.DeleteProduct)
			admin.POST("/products/:id/stock", h.AdjustStock)
			admin.POST("/products/analyze", h.AnalyzeProduct)
			admin.POST("/sales/:id/revoke", h.RevokeSale)
			admin.PUT("/customers/:id", h.UpdateCustomer)
			admin.DELETE("/customers/:id", h.DeleteCustomer)
			admin.GET("/costs", h.ListStoreCosts)
			admin.PUT("/costs", h.SaveStoreCost)
			admin.GET("/reports", h.GetSalesReport)
			admin.GET("/reports/valuation", h.GetStockValuation)
			admin.GET("/reports/monthly", h.GetMonthlyReport)
			admin.GET("/reports/export", h.ExportSales)
		}
	}

	log.Info().Str("addr", cfg.Address()).Msg("server starting")
	if err := r.Run(cfg.Address()); err != nil {
		log.Fatal().Err(err).Msg("server failed to start")
	}
}
