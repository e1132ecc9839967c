package http

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	appanalytics "github.com/civistock/civistock-api/internal/application/analytics"
	"github.com/civistock/civistock-api/internal/application/auth"
	"github.com/civistock/civistock-api/internal/application/inventory"
	"github.com/civistock/civistock-api/internal/application/usecase"
	"github.com/civistock/civistock-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC         *auth.AuthUseCase
	Lifecycle      *inventory.LifecycleUseCase
	Replenishment  *inventory.ReplenishmentUseCase
	MaterialUC     *usecase.MaterialUseCase
	MovementQuery  *usecase.MovementQueryUseCase
	UserUC         *usecase.UserUseCase
	NotificationUC *usecase.NotificationUseCase
	DashboardUC    *appanalytics.DashboardUseCase
	Metrics        http.Handler // nil = sin /metrics
	JWTSecret      string
	ServiceName    string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.ServiceName})
	})
	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics))
	}

	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	materialHandler := NewMaterialHandler(deps.MaterialUC)
	inventoryHandler := NewInventoryHandler(deps.Lifecycle, deps.Replenishment)
	movementHandler := NewMovementHandler(deps.MovementQuery)

	// Ingeniero
	eng := protected.Group("/ingeniero", RequireRole(entity.RoleIngeniero))
	eng.Get("/materiales", materialHandler.ListActive)
	eng.Post("/retiros", inventoryHandler.CreateWithdrawal)
	eng.Get("/movimientos", movementHandler.History)
	eng.Delete("/movimientos", movementHandler.ClearHistory)
	eng.Get("/reportes", movementHandler.EngineerReport)
	eng.Get("/devoluciones", movementHandler.Returns)
	eng.Get("/devoluciones/disponible", inventoryHandler.ReturnAllowance)
	eng.Post("/devoluciones", inventoryHandler.CreateReturn)
	eng.Get("/panel", movementHandler.Panel)
	eng.Get("/movimientos/:id/eventos", movementHandler.Events)

	// Almacenista
	keeper := protected.Group("/almacenista", RequireRole(entity.RoleAlmacenista))
	keeper.Get("/materiales", materialHandler.List)
	keeper.Post("/materiales", materialHandler.Create)
	keeper.Get("/materiales/:id", materialHandler.GetByID)
	keeper.Put("/materiales/:id", materialHandler.Update)
	keeper.Put("/materiales/:id/stock", materialHandler.SetStock)
	keeper.Delete("/materiales/:id", materialHandler.Delete)
	keeper.Get("/stock-bajo", inventoryHandler.LowStock)
	keeper.Get("/retiros", movementHandler.PendingWithdrawals)
	keeper.Post("/retiros/:id/autorizar", inventoryHandler.AuthorizeWithdrawal)
	keeper.Post("/retiros/:id/rechazar", inventoryHandler.RejectWithdrawal)
	keeper.Get("/devoluciones", movementHandler.PendingReturns)
	keeper.Post("/devoluciones/:id/decision", inventoryHandler.ReviewReturn)
	keeper.Get("/existencias", movementHandler.StockBuckets)
	keeper.Post("/existencias/:id/:accion", inventoryHandler.Dispose)
	keeper.Get("/reportes", movementHandler.MonthlyReport)
	keeper.Get("/panel", NewDashboardHandler(deps.DashboardUC).KeeperAlerts)
	keeper.Get("/movimientos/:id/eventos", movementHandler.Events)

	// Administrador
	userHandler := NewUserHandler(deps.UserUC)
	admin := protected.Group("/admin", RequireRole(entity.RoleAdmin))
	admin.Get("/usuarios", userHandler.List)
	admin.Post("/usuarios", userHandler.Create)
	admin.Put("/usuarios/:id", userHandler.Update)
	admin.Delete("/usuarios/:id", userHandler.Delete)
	admin.Get("/perfil", userHandler.Profile)
	admin.Put("/perfil", userHandler.UpdateProfile)

	// Cualquier usuario autenticado
	notificationHandler := NewNotificationHandler(deps.NotificationUC)
	protected.Get("/notificaciones", notificationHandler.Recent)
	protected.Post("/notificaciones/leidas", notificationHandler.MarkAllRead)
	protected.Delete("/notificaciones", notificationHandler.Clear)
}
