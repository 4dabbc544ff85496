package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"catalogapi/internal/service"
	"catalogapi/internal/upload"
)

// Deps carries what the routes need from process wiring.
type Deps struct {
	DB       *sql.DB
	Posts    service.PostService
	Products service.ProductService

	PostLimits    upload.Limits
	ProductLimits upload.Limits
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, d Deps) {
	app.Get("/health", HealthCheck(d.DB))
	app.Get("/healthz", LivenessProbe())

	api := app.Group("/api")

	posts := api.Group("/posts")
	posts.Get("/", ListPosts(d.Posts))
	posts.Post("/", CreatePost(d.Posts, d.PostLimits))
	posts.Get("/:id", GetPost(d.Posts))
	posts.Put("/:id", UpdatePost(d.Posts, d.PostLimits))
	posts.Delete("/:id", DeletePost(d.Posts))

	products := api.Group("/products")
	products.Get("/", ListProducts(d.Products))
	products.Post("/", CreateProduct(d.Products, d.ProductLimits))
	products.Delete("/", DeleteProducts(d.Products))
	products.Get("/:id", GetProduct(d.Products))
	products.Put("/:id", UpdateProduct(d.Products, d.ProductLimits))
	products.Delete("/:id", DeleteProduct(d.Products))
}
