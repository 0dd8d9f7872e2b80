package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/uptrace/bun"

	"catalogapi/internal/logging"
)

// RegisterRoutes attaches the catalog HTTP routes to the provided fiber
// app. Handlers stay thin: parsing, one unit of work per request, and
// local translation of anticipated errors; everything unexpected flows
// up to the global error handler.
func RegisterRoutes(app *fiber.App, db *bun.DB, log *logging.Logger) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	app.Get("/categories", ListCategories(db))
	app.Post("/categories", CreateCategory(db, log))
	app.Get("/categories/:id", GetCategory(db, log))
	app.Put("/categories/:id", UpdateCategory(db, log))
	app.Delete("/categories/:id", DeleteCategory(db, log))
	app.Get("/categories/:id/products", ListProductsByCategory(db, log))

	app.Get("/products", ListProducts(db))
	app.Post("/products", CreateProduct(db, log))
	app.Get("/products/:id", GetProduct(db, log))
	app.Put("/products/:id", UpdateProduct(db, log))
	app.Delete("/products/:id", DeleteProduct(db, log))
}
