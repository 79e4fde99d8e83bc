package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	billingapp "github.com/wms/backend/internal/application/billing"
	inventoryapp "github.com/wms/backend/internal/application/inventory"
	orderapp "github.com/wms/backend/internal/application/order"
	"github.com/wms/backend/internal/infrastructure/logger"
	"github.com/wms/backend/internal/interfaces/http/handler"
	"github.com/wms/backend/internal/interfaces/http/middleware"
)

// Config carries the dependencies the HTTP layer needs
type Config struct {
	DB               *gorm.DB
	Logger           *zap.Logger
	OrderService     *orderapp.Service
	InvoiceService   *billingapp.Service
	InventoryService *inventoryapp.Service
	CORS             middleware.CORSConfig
	Version          string
}

// New builds the gin engine with all middleware and routes registered
func New(cfg Config) *gin.Engine {
	middleware.SetupValidator()

	engine := gin.New()

	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(cfg.Logger))
	engine.Use(logger.Recovery(cfg.Logger))
	engine.Use(middleware.CORSWithConfig(cfg.CORS))

	systemHandler := handler.NewSystemHandler(cfg.DB, cfg.Version)
	systemHandler.RegisterRoutes(engine)

	v1 := engine.Group("/api/v1")
	{
		handler.NewOrderHandler(cfg.OrderService).RegisterRoutes(v1)
		handler.NewInvoiceHandler(cfg.InvoiceService).RegisterRoutes(v1)
		handler.NewInventoryHandler(cfg.InventoryService).RegisterRoutes(v1)
	}

	return engine
}
