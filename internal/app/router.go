package app

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"bizops/internal/config"
	"bizops/internal/domain"
	"bizops/internal/domain/account"
	"bizops/internal/domain/billing"
	"bizops/internal/domain/client"
	"bizops/internal/domain/inventory"
	"bizops/internal/domain/order"
	"bizops/internal/domain/report"
	"bizops/internal/domain/sales"
	"bizops/internal/domain/task"
	"bizops/internal/domain/upload"
	"bizops/internal/domain/workforce"
	"bizops/internal/middleware"
	jwtsvc "bizops/internal/pkg/jwt"
)

// NewRouter wires every service onto one gin engine under /api/v1.
func NewRouter(cfg *config.Config, db *gorm.DB, log *zap.Logger) *gin.Engine {
	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)

	accountService := account.NewService(db, j, log.Named("account"), account.Options{
		DefaultCurrency: cfg.DefaultCurrency,
		DefaultTimezone: cfg.DefaultTimezone,
		TenantTables:    domain.TenantTables(),
	})
	workforceService := workforce.NewService(db, log.Named("workforce"))
	taskService := task.NewService(db, workforceService, log.Named("task"))
	workforceService.OnWorkerDelete(taskService.DeleteForWorker)

	clientService := client.NewService(db, log.Named("client"))
	inventoryService := inventory.NewService(db, log.Named("inventory"))
	paymentService := billing.NewService(db, log.Named("billing"))
	orderService := order.NewService(db, paymentService, clientService, workforceService, log.Named("order"))
	salesService := sales.NewService(db, paymentService, clientService, inventoryService, log.Named("sales"))
	reportService := report.NewService(taskService, workforceService, log.Named("report"))
	uploadService := upload.NewService(upload.NewRepository(db), clientService, log.Named("upload"), upload.Options{
		BaseDir:     cfg.UploadDir,
		StaticBase:  cfg.UploadURLBase,
		MaxFileSize: cfg.MaxUploadBytes,
	})

	r := gin.New()
	r.MaxMultipartMemory = cfg.MaxUploadBytes
	r.Use(
		middleware.ErrorLogger(log),
		middleware.RequestLogger(log.Named("http")),
		middleware.CORS(cfg.CORSOrigins),
	)
	r.Static(cfg.UploadURLBase, cfg.UploadDir)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")
	accountHandler := account.NewHandler(accountService)
	accountHandler.RegisterPublicRoutes(v1)

	protected := v1.Group("")
	protected.Use(middleware.JWTAuth(j), middleware.TenantScope(accountService, log))
	{
		accountHandler.RegisterProtectedRoutes(protected)
		workforce.NewHandler(workforceService).RegisterRoutes(protected)
		task.NewHandler(taskService).RegisterRoutes(protected)
		client.NewHandler(clientService).RegisterRoutes(protected)
		inventory.NewHandler(inventoryService).RegisterRoutes(protected)
		billing.NewHandler(paymentService).RegisterRoutes(protected)
		order.NewHandler(orderService).RegisterRoutes(protected)
		sales.NewHandler(salesService).RegisterRoutes(protected)
		report.NewHandler(reportService).RegisterRoutes(protected)
		upload.NewHandler(uploadService).RegisterRoutes(protected)
	}

	return r
}
