package admin

import (
	"heladeria-backend/internal/database"
	"heladeria-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type SettingsRequest struct {
	BatteryMode      models.BatteryMode `json:"batteryMode"`
	BatteryUnitPrice decimal.Decimal    `json:"batteryUnitPrice"`
	BatteryQty       int                `json:"batteryQty"`
}

type SettingsResponse struct {
	BatteryMode      models.BatteryMode `json:"batteryMode"`
	BatteryUnitPrice decimal.Decimal    `json:"batteryUnitPrice"`
	BatteryQty       int                `json:"batteryQty"`
}

// GET /api/settings
func GetSettingsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		settings, err := database.EnsureSettings(database.DB)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo leer la configuración")
		}
		return c.JSON(SettingsResponse{
			BatteryMode:      settings.BatteryMode,
			BatteryUnitPrice: settings.BatteryUnitPrice,
			BatteryQty:       settings.BatteryQty,
		})
	}
}

// PUT /api/admin/settings
// Solo cambia las boletas que se abran a partir de ahora: cada boleta lleva
// su propia copia de estos valores.
func UpdateSettingsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body SettingsRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}

		if body.BatteryMode != models.BatteryPerDay && body.BatteryMode != models.BatteryPerUnit {
			return fiber.NewError(fiber.StatusBadRequest, "Modo de batería inválido (PER_DAY|PER_UNIT)")
		}
		if body.BatteryUnitPrice.IsNegative() {
			return fiber.NewError(fiber.StatusBadRequest, "El precio de batería no puede ser negativo")
		}
		if body.BatteryQty < 1 {
			return fiber.NewError(fiber.StatusBadRequest, "La cantidad de baterías debe ser al menos 1")
		}

		settings, err := database.EnsureSettings(database.DB)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo leer la configuración")
		}

		err = database.DB.Model(&settings).Updates(map[string]interface{}{
			"battery_mode":       body.BatteryMode,
			"battery_unit_price": body.BatteryUnitPrice.Round(2),
			"battery_qty":        body.BatteryQty,
		}).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo guardar la configuración")
		}

		return c.JSON(SettingsResponse{
			BatteryMode:      body.BatteryMode,
			BatteryUnitPrice: body.BatteryUnitPrice.Round(2),
			BatteryQty:       body.BatteryQty,
		})
	}
}
