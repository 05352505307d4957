package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"catalog/internal/models"
	"catalog/internal/repositories"
	"catalog/internal/services"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "product-handler").Logger()

// ProductHandler exposes the product catalog over HTTP.
type ProductHandler struct {
	productService *services.ProductService
}

func NewProductHandler(productService *services.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// RegisterRoutes mounts the product routes on the given router group.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	products := router.Group("/products")
	products.Get("/", h.ListProducts)
	products.Get("/:id", h.GetProduct)
	products.Post("/", h.CreateProduct)
	products.Put("/:id", h.UpdateProduct)
	products.Delete("/:id", h.DeleteProduct)
}

// ListProducts handles GET /products.
func (h *ProductHandler) ListProducts(c *fiber.Ctx) error {
	products, err := h.productService.List()
	if err != nil {
		return storageError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(products)
}

// GetProduct handles GET /products/:id.
func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return invalidID(c)
	}

	product, err := h.productService.Get(id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(product)
}

// CreateProduct handles POST /products.
func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	var input models.CreateProductInput
	if err := decodeStrict(c.Body(), &input); err != nil {
		return validationFailed(c, err)
	}

	product, err := h.productService.Create(&input)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// UpdateProduct handles PUT /products/:id.
func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return invalidID(c)
	}

	var input models.UpdateProductInput
	if err := decodeStrict(c.Body(), &input); err != nil {
		return validationFailed(c, err)
	}

	product, err := h.productService.Update(id, &input)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(product)
}

// DeleteProduct handles DELETE /products/:id. The response body is the
// deleted record's last known state.
func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return invalidID(c)
	}

	product, err := h.productService.Delete(id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(product)
}

func parseID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

// decodeStrict unmarshals a JSON body rejecting unknown fields, so a
// misspelled or unsupported field fails loudly instead of being
// silently dropped.
func decodeStrict(body []byte, dst interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return decodeError(err)
	}
	// Trailing content after the JSON value is also a malformed body.
	if dec.More() {
		return models.ValidationErrors{{Field: "body", Reason: "unexpected trailing content"}}
	}
	return nil
}

// decodeError maps encoding/json failures onto the same structured
// validation error shape the field constraints use.
func decodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return models.ValidationErrors{{Field: typeErr.Field, Reason: "wrong type"}}
	}
	if strings.HasPrefix(err.Error(), "json: unknown field ") {
		field := strings.Trim(strings.TrimPrefix(err.Error(), "json: unknown field "), "\"")
		return models.ValidationErrors{{Field: field, Reason: "unknown field"}}
	}
	return models.ValidationErrors{{Field: "body", Reason: "malformed JSON"}}
}

func serviceError(c *fiber.Ctx, err error) error {
	var verrs models.ValidationErrors
	if errors.As(err, &verrs) {
		return validationFailed(c, verrs)
	}
	if errors.Is(err, repositories.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "product not found",
		})
	}
	return storageError(c, err)
}

func validationFailed(c *fiber.Ctx, err error) error {
	var verrs models.ValidationErrors
	if !errors.As(err, &verrs) {
		verrs = models.ValidationErrors{{Field: "body", Reason: err.Error()}}
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error":   "validation failed",
		"details": verrs,
	})
}

// storageError deliberately hides the underlying storage failure from
// the client.
func storageError(c *fiber.Ctx, err error) error {
	logger.Error().Err(err).Str("path", c.Path()).Msg("Storage operation failed")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "internal server error",
	})
}

func invalidID(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": "invalid product id",
	})
}
