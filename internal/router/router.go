package router

import (
	"time"

	"mata/internal/config"
	"mata/internal/handler"
	"mata/internal/infra"
	"mata/internal/middleware"
	"mata/internal/repository"
	"mata/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis/files
// rdb and paymentsCB may be nil: the snapshot cache then lives in memory and
// cash payments come from the local table only.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, paymentsCB *infra.CircuitBreaker, rollover handler.RolloverEnqueuer) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.AllowedOrigins()...))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(600, time.Minute)) // 600 req/min per IP

	// ── Infrastructure ───────────────────────────────────────────────────────
	var cache infra.SnapshotCache = infra.NewMemorySnapshotCache()
	if rdb != nil {
		cache = infra.NewRedisSnapshotCache(rdb, time.Duration(cfg.DebugCacheTTLHours)*time.Hour)
	}
	var payments service.CashSource
	if cfg.PaymentsAPIURL != "" {
		timeout := time.Duration(cfg.PaymentsAPITimeoutSeconds) * time.Second
		payments = infra.NewPaymentsClient(cfg.PaymentsAPIURL, timeout, paymentsCB)
	}

	// ── Repositories ─────────────────────────────────────────────────────────
	stockStore := repository.NewStockStore(cfg.DataDir)
	venteRepo := repository.NewVenteRepository(db)
	paiementRepo := repository.NewPaiementCashRepository(db)
	reconciliationRepo := repository.NewReconciliationRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	cashSvc := service.NewCashService(paiementRepo, payments)
	reconciliationSvc := service.NewReconciliationService(
		cfg.PointsDeVente(), stockStore, venteRepo, reconciliationRepo, cashSvc, cache)

	// ── Handlers ─────────────────────────────────────────────────────────────
	reconciliationH := handler.NewReconciliationHandler(reconciliationSvc)
	cashH := handler.NewCashPaymentsHandler(cashSvc)
	stockH := handler.NewStockHandler(stockStore, rollover)

	// ── Routes ───────────────────────────────────────────────────────────────
	r.GET("/health", handler.Health(db, rdb, paymentsCB))

	api := r.Group("/api")
	{
		api.GET("/reconciliation", reconciliationH.Resolve)
		rec := api.Group("/reconciliation")
		{
			rec.GET("/load", reconciliationH.Load)
			rec.POST("/calculate", reconciliationH.Calculate)
			rec.POST("/save", reconciliationH.Save)
			rec.GET("/comments", reconciliationH.Comments)
			rec.GET("/detail", reconciliationH.Detail)
			rec.GET("/report.pdf", reconciliationH.Report)
		}

		cash := api.Group("/cash-payments")
		{
			cash.GET("/aggregated", cashH.Aggregated)
			cash.POST("/import", cashH.Import)
		}

		api.POST("/stock/rollover", stockH.Rollover)
		api.GET("/stock/:period", stockH.Stock)
		api.GET("/transferts", stockH.Transferts)
	}

	// Swagger UI, outside production only
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
