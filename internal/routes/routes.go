package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/laundromat/internal/config"
	"github.com/example/laundromat/internal/handlers"
	"github.com/example/laundromat/internal/middleware"
	"github.com/example/laundromat/internal/orders"
)

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	engine := orders.NewEngine(orders.NewGormStore(db))

	authHandler := handlers.NewAuthHandler(db, cfg)
	catalogHandler := handlers.NewCatalogHandler(db)
	customerHandler := handlers.NewCustomerHandler(db, engine)
	orderHandler := handlers.NewOrderHandler(engine)

	api := app.Group("/api")

	// Auth routes (public)
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/register", authHandler.Register)
	auth.Post("/refresh", authHandler.Refresh)

	// Protected routes
	protected := api.Group("", middleware.AuthMiddleware(cfg))

	protected.Get("/me", authHandler.Me)
	protected.Post("/logout", authHandler.Logout)

	categories := protected.Group("/categories")
	categories.Get("/", catalogHandler.ListCategories)
	categories.Post("/", catalogHandler.CreateCategory)
	categories.Get("/:id", catalogHandler.GetCategory)
	categories.Put("/:id", catalogHandler.UpdateCategory)
	categories.Delete("/:id", catalogHandler.DeleteCategory)

	services := protected.Group("/services")
	services.Get("/", catalogHandler.ListServices)
	services.Get("/category/:categoryId", catalogHandler.ListServicesByCategory)
	services.Post("/", catalogHandler.CreateService)
	services.Get("/:id", catalogHandler.GetService)
	services.Put("/:id", catalogHandler.UpdateService)
	services.Delete("/:id", catalogHandler.DeleteService)

	customers := protected.Group("/customers")
	customers.Get("/", customerHandler.ListCustomers)
	customers.Get("/search", customerHandler.SearchCustomers)
	customers.Post("/", customerHandler.CreateCustomer)
	customers.Get("/:id", customerHandler.GetCustomer)
	customers.Get("/:id/stats", customerHandler.GetCustomerStats)
	customers.Patch("/:id/toggle-status", customerHandler.ToggleCustomerStatus)
	customers.Put("/:id", customerHandler.UpdateCustomer)
	customers.Delete("/:id", customerHandler.DeleteCustomer)

	ordersGroup := protected.Group("/orders")
	ordersGroup.Get("/", orderHandler.ListOrders)
	ordersGroup.Get("/search", orderHandler.SearchOrders)
	ordersGroup.Post("/", orderHandler.CreateOrder)
	ordersGroup.Get("/:id", orderHandler.GetOrder)
	ordersGroup.Put("/:id", orderHandler.UpdateOrder)
	ordersGroup.Patch("/:id/status", orderHandler.UpdateOrderStatus)
	ordersGroup.Delete("/:id", orderHandler.DeleteOrder)
}
