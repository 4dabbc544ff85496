package handler

import (
	"github.com/gofiber/fiber/v2"

	"catalogapi/internal/service"
	"catalogapi/internal/upload"
	"catalogapi/internal/validation"
)

const productImagesField = "images"

// deleteProductsRequest is the body of a bulk delete. IDs stays untyped so a missing
// member and a non-array member can be told apart.
type deleteProductsRequest struct {
	IDs any `json:"ids" swaggertype:"array,string"`
}

// ListProducts godoc
// @Summary List products
// @Tags products
// @Produce json
// @Success 200 {array} model.Product
// @Failure 500 {object} errorPayload
// @Router /api/products [get]
func ListProducts(svc service.ProductService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		products, err := svc.List(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(products)
	}
}

// GetProduct godoc
// @Summary Get a product
// @Tags products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} model.Product
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /api/products/{id} [get]
func GetProduct(svc service.ProductService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		product, err := svc.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return err
		}
		return c.JSON(product)
	}
}

// CreateProduct godoc
// @Summary Create a product
// @Tags products
// @Accept mpfd
// @Produce json
// @Param name formData string true "Name"
// @Param description formData string true "Description"
// @Param price formData number true "Price"
// @Param images formData file true "Images"
// @Success 201 {object} model.Product
// @Failure 400 {object} errorPayload
// @Failure 503 {object} errorPayload
// @Router /api/products [post]
func CreateProduct(svc service.ProductService, l upload.Limits) fiber.Handler {
	return func(c *fiber.Ctx) error {
		images, err := formFiles(c, productImagesField, l)
		if err != nil {
			return err
		}
		product, err := svc.Create(c.UserContext(), productInput(c), images)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(product)
	}
}

// UpdateProduct godoc
// @Summary Update a product
// @Description Replaces name, description and price; attached images are appended.
// @Tags products
// @Accept mpfd
// @Produce json
// @Param id path string true "Product ID"
// @Param name formData string true "Name"
// @Param description formData string true "Description"
// @Param price formData number true "Price"
// @Param images formData file false "Images"
// @Success 200 {object} model.Product
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /api/products/{id} [put]
func UpdateProduct(svc service.ProductService, l upload.Limits) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := validation.ValidateID(c.Params("id")); err != nil {
			return err
		}
		images, err := formFiles(c, productImagesField, l)
		if err != nil {
			return err
		}
		product, err := svc.Update(c.UserContext(), c.Params("id"), productInput(c), images)
		if err != nil {
			return err
		}
		return c.JSON(product)
	}
}

// DeleteProduct godoc
// @Summary Delete a product
// @Tags products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} model.Product
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /api/products/{id} [delete]
func DeleteProduct(svc service.ProductService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		product, err := svc.Delete(c.UserContext(), c.Params("id"))
		if err != nil {
			return err
		}
		return c.JSON(product)
	}
}

// DeleteProducts godoc
// @Summary Delete several products
// @Description Ids that match no product are ignored; at least one must match.
// @Tags products
// @Accept json
// @Produce json
// @Param body body deleteProductsRequest true "Product IDs"
// @Success 200 {string} string "products deleted"
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /api/products [delete]
func DeleteProducts(svc service.ProductService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req deleteProductsRequest
		if err := decodeJSON(c, &req); err != nil {
			return err
		}
		ids, err := validation.ValidateIDs(req.IDs)
		if err != nil {
			return err
		}
		if err := svc.DeleteMany(c.UserContext(), ids); err != nil {
			return err
		}
		return c.JSON("products deleted")
	}
}

func productInput(c *fiber.Ctx) service.ProductInput {
	return service.ProductInput{
		Name:        c.FormValue("name"),
		Description: c.FormValue("description"),
		Price:       c.FormValue("price"),
	}
}
