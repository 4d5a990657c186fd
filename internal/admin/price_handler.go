package admin

import (
	"errors"
	"regexp"

	"heladeria-backend/internal/database"
	"heladeria-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

type SetPriceRequest struct {
	ProductID uint            `json:"productId"`
	Price     decimal.Decimal `json:"price"`
	ValidFrom string          `json:"validFrom"` // "YYYY-MM-DD"
}

// POST /api/admin/prices
// Upsert sobre (producto, vigencia): corregir el precio del mismo día lo
// reemplaza; cualquier otra fecha agrega un registro nuevo al historial.
// Las boletas ya abiertas no se ven afectadas: su precio quedó congelado.
func SetPriceHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body SetPriceRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}

		if body.ProductID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "productId es obligatorio")
		}
		if !body.Price.IsPositive() {
			return fiber.NewError(fiber.StatusBadRequest, "El precio debe ser mayor que 0")
		}
		if !isoDatePattern.MatchString(body.ValidFrom) {
			return fiber.NewError(fiber.StatusBadRequest, "Formato de fecha inválido, debe ser 'YYYY-MM-DD'")
		}

		var product models.Product
		if err := database.DB.First(&product, body.ProductID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Producto no encontrado")
		}

		price := body.Price.Round(2)

		var existing models.PriceHistory
		err := database.DB.
			Where("product_id = ? AND valid_from = ?", body.ProductID, body.ValidFrom).
			First(&existing).Error
		switch {
		case err == nil:
			if err := database.DB.Model(&existing).Update("price", price).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "No se pudo actualizar el precio")
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			row := models.PriceHistory{
				ProductID: body.ProductID,
				ValidFrom: body.ValidFrom,
				Price:     price,
			}
			if err := database.DB.Create(&row).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "No se pudo guardar el precio")
			}
		default:
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo leer el historial de precios")
		}

		return c.JSON(fiber.Map{"ok": true})
	}
}
