package router

import (
	"time"

	"opticpos/internal/config"
	"opticpos/internal/handler"
	"opticpos/internal/infra"
	"opticpos/internal/ledger"
	"opticpos/internal/middleware"
	"opticpos/internal/repository"
	"opticpos/internal/service"
	"opticpos/internal/syncer"
	"opticpos/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Ledger/Repository ← DB/Redis
// The ledger store and circuit breaker are built by the caller because the
// worker pool shares them.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, store *ledger.Store, remoteCB *infra.CircuitBreaker) *gin.Engine {
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

	// ── Infrastructure ───────────────────────────────────────────────────────
	notifier := infra.NewLogNotifier()

	// ── Repositories ─────────────────────────────────────────────────────────
	recordRepo := repository.NewRecordRepository(db)
	summaryRepo := repository.NewSummaryRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	reportSvc := service.NewReportService(recordRepo, summaryRepo)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	invoiceSvc := service.NewInvoiceService(store, dispatcher, notifier)
	syncSvc := service.NewSyncService(store, recordRepo, catalogRepo, reportSvc, remoteCB, cfg.LocationID, syncer.Options{
		BatchSize:  cfg.SyncBatchSize,
		MaxRetries: cfg.SyncMaxRetries,
		RetryDelay: time.Duration(cfg.SyncRetryDelayMs) * time.Millisecond,
		BatchDelay: time.Duration(cfg.SyncBatchDelayMs) * time.Millisecond,
	})

	// ── Handlers ─────────────────────────────────────────────────────────────
	invoicesH := handler.NewInvoicesHandler(invoiceSvc)
	workOrdersH := handler.NewWorkOrdersHandler(invoiceSvc)
	reportsH := handler.NewReportsHandler(reportSvc, cfg.LocationID)
	syncH := handler.NewSyncHandler(syncSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	r.GET("/health", handler.Health(db, rdb, remoteCB))

	v1 := r.Group("/v1")
	{
		invoices := v1.Group("/invoices")
		{
			invoices.POST("", invoicesH.Create)
			invoices.GET("/unpaid", invoicesH.Unpaid)
			invoices.GET("/archived", invoicesH.Archived)
			invoices.GET("/:id", invoicesH.Get)
			invoices.PUT("/:id", invoicesH.Update)
			invoices.POST("/:id/payments", invoicesH.AddPayment)
			invoices.POST("/:id/pay", invoicesH.MarkPaid)
			invoices.POST("/:id/pickup", invoicesH.Pickup)
			invoices.POST("/:id/refund", invoicesH.Refund)
		}

		workorders := v1.Group("/workorders")
		{
			workorders.GET("/archived", workOrdersH.Archived)
			workorders.DELETE("/:id", workOrdersH.Cancel)
		}

		patients := v1.Group("/patients")
		{
			patients.GET("/:id/invoices", invoicesH.ByPatient)
			patients.GET("/:id/workorders", workOrdersH.ByPatient)
		}

		reports := v1.Group("/reports")
		{
			reports.GET("/daily/:date", reportsH.Daily)
			reports.GET("/monthly/:year/:month", reportsH.Monthly)
			reports.POST("/daily/:date/recompute", reportsH.Recompute)
		}

		sync := v1.Group("/sync")
		{
			sync.POST("/ledger", syncH.Ledger)
			sync.POST("/catalog/:entity", syncH.Catalog)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
