package admin

import (
	"errors"
	"strconv"
	"strings"

	"heladeria-backend/internal/database"
	"heladeria-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProductRequest struct {
	Name         string `json:"name"`
	Active       *bool  `json:"active"`
	DisplayOrder *int   `json:"displayOrder"`
}

type ProductResponse struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	Active       bool   `json:"active"`
	DisplayOrder int    `json:"displayOrder"`
}

type ProductWithPriceResponse struct {
	ProductResponse
	CurrentPrice *decimal.Decimal `json:"currentPrice"`
}

func productResponse(p models.Product) ProductResponse {
	return ProductResponse{
		ID:           p.ID,
		Name:         p.Name,
		Active:       p.Active,
		DisplayOrder: p.DisplayOrder,
	}
}

// GET /api/products — solo activos, en el orden del mostrador
func ListProductsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var products []models.Product
		err := database.DB.
			Where("active = ?", true).
			Order("display_order ASC, name ASC").
			Find(&products).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron leer los productos")
		}

		out := make([]ProductResponse, 0, len(products))
		for _, p := range products {
			out = append(out, productResponse(p))
		}
		return c.JSON(out)
	}
}

// GET /api/admin/products — todos, con el último precio del historial
func ListProductsWithPricesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var products []models.Product
		err := database.DB.
			Order("display_order ASC, name ASC").
			Find(&products).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron leer los productos")
		}

		out := make([]ProductWithPriceResponse, 0, len(products))
		for _, p := range products {
			item := ProductWithPriceResponse{ProductResponse: productResponse(p)}

			var latest models.PriceHistory
			err := database.DB.
				Where("product_id = ?", p.ID).
				Order("valid_from DESC").
				First(&latest).Error
			if err == nil {
				price := latest.Price
				item.CurrentPrice = &price
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusInternalServerError, "No se pudo leer el historial de precios")
			}
			out = append(out, item)
		}
		return c.JSON(out)
	}
}

// POST /api/admin/products
func CreateProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}

		body.Name = strings.TrimSpace(body.Name)
		if len(body.Name) < 2 {
			return fiber.NewError(fiber.StatusBadRequest, "El nombre necesita al menos 2 caracteres")
		}

		product := models.Product{Name: body.Name, Active: true}
		if body.Active != nil {
			product.Active = *body.Active
		}
		if body.DisplayOrder != nil {
			product.DisplayOrder = *body.DisplayOrder
		}

		if err := database.DB.Create(&product).Error; err != nil {
			return fiber.NewError(fiber.StatusConflict, "Ya existe un producto con ese nombre")
		}
		return c.Status(fiber.StatusCreated).JSON(productResponse(product))
	}
}

// PUT /api/admin/products/:id
// Igual que los vendedores: nunca se borran, se desactivan.
func UpdateProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.ParseUint(c.Params("id"), 10, 32)
		if err != nil || id == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Identificador inválido")
		}

		var product models.Product
		if err := database.DB.First(&product, uint(id)).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Producto no encontrado")
		}

		var body ProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}

		updates := map[string]interface{}{}
		if name := strings.TrimSpace(body.Name); name != "" {
			if len(name) < 2 {
				return fiber.NewError(fiber.StatusBadRequest, "El nombre necesita al menos 2 caracteres")
			}
			updates["name"] = name
		}
		if body.Active != nil {
			updates["active"] = *body.Active
		}
		if body.DisplayOrder != nil {
			updates["display_order"] = *body.DisplayOrder
		}

		if len(updates) > 0 {
			if err := database.DB.Model(&product).Updates(updates).Error; err != nil {
				return fiber.NewError(fiber.StatusConflict, "No se pudo actualizar (¿nombre repetido?)")
			}
		}
		return c.JSON(productResponse(product))
	}
}
