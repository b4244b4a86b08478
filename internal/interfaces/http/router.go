package http

import (
	"github.com/gofiber/fiber/v2"
	appanalytics "github.com/jhoicas/bodega-api/internal/application/analytics"
	"github.com/jhoicas/bodega-api/internal/application/inventory"
	"github.com/jhoicas/bodega-api/internal/application/orders"
	"github.com/jhoicas/bodega-api/internal/application/scan"
	"github.com/jhoicas/bodega-api/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Engine      *orders.Engine
	Applier     *inventory.MovementApplier
	Resolver    *scan.Resolver
	WarehouseUC *usecase.WarehouseUseCase
	ClientUC    *usecase.ClientUseCase
	ItemUC      *usecase.ItemUseCase
	DashboardUC *appanalytics.DashboardUseCase
	JWTSecret   string
}

// Router registra las rutas de la API. Todo bajo /api requiere Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	protected := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	// Orders
	orderGroup := protected.Group("/orders")
	orderHandler := NewOrderHandler(deps.Engine)
	orderGroup.Post("/", orderHandler.Create)
	orderGroup.Get("/", orderHandler.List)
	orderGroup.Get("/:id", orderHandler.GetByID)
	orderGroup.Get("/:id/movements", orderHandler.Movements)
	orderGroup.Post("/:id/fulfill", orderHandler.Fulfill)
	orderGroup.Post("/:id/cancel", orderHandler.Cancel)

	// Inventory movements
	invGroup := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.Applier, deps.ItemUC)
	invGroup.Post("/movements", inventoryHandler.RegisterMovement)
	invGroup.Get("/items/:id/movements", inventoryHandler.ItemMovements)
	invGroup.Get("/low-stock", inventoryHandler.LowStock)

	// Scan (QR del operario)
	scanGroup := protected.Group("/scan")
	scanHandler := NewScanHandler(deps.Resolver)
	scanGroup.Post("/resolve", scanHandler.Resolve)
	scanGroup.Post("/fulfill", scanHandler.Fulfill)
	scanGroup.Post("/movement", scanHandler.Movement)

	// Warehouses
	warehouses := protected.Group("/warehouses")
	warehouseHandler := NewWarehouseHandler(deps.WarehouseUC)
	warehouses.Post("/", warehouseHandler.Create)
	warehouses.Get("/", warehouseHandler.List)
	warehouses.Get("/:id", warehouseHandler.GetByID)
	warehouses.Put("/:id", warehouseHandler.Update)
	warehouses.Delete("/:id", RequireRole("admin"), warehouseHandler.Delete)

	// Clients
	clients := protected.Group("/clients")
	clientHandler := NewClientHandler(deps.ClientUC)
	clients.Post("/", clientHandler.Create)
	clients.Get("/", clientHandler.List)
	clients.Get("/:id", clientHandler.GetByID)
	clients.Put("/:id", clientHandler.Update)
	clients.Delete("/:id", RequireRole("admin"), clientHandler.Delete)

	// Items
	items := protected.Group("/items")
	itemHandler := NewItemHandler(deps.ItemUC)
	items.Post("/", itemHandler.Create)
	items.Get("/", itemHandler.List)
	items.Get("/:id", itemHandler.GetByID)
	items.Put("/:id", itemHandler.Update)
	items.Delete("/:id", RequireRole("admin"), itemHandler.Delete)

	// Dashboard
	dashboardHandler := NewDashboardHandler(deps.DashboardUC)
	protected.Get("/dashboard/summary", dashboardHandler.GetSummary)
}
