package admin

import (
	"strconv"
	"strings"

	"heladeria-backend/internal/database"
	"heladeria-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type VendorRequest struct {
	Name       string `json:"name"`
	Code       string `json:"code"`
	Active     *bool  `json:"active"`
	IsFavorite *bool  `json:"isFavorite"`
}

type VendorResponse struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	Code       string `json:"code"`
	Active     bool   `json:"active"`
	IsFavorite bool   `json:"isFavorite"`
}

func vendorResponse(v models.Vendor) VendorResponse {
	return VendorResponse{
		ID:         v.ID,
		Name:       v.Name,
		Code:       v.Code,
		Active:     v.Active,
		IsFavorite: v.IsFavorite,
	}
}

func parseVendorID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Identificador inválido")
	}
	return uint(id), nil
}

// GET /api/vendors — favoritos primero, luego por nombre
func ListVendorsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var vendors []models.Vendor
		err := database.DB.
			Where("active = ?", true).
			Order("is_favorite DESC, name ASC").
			Find(&vendors).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron leer los vendedores")
		}

		out := make([]VendorResponse, 0, len(vendors))
		for _, v := range vendors {
			out = append(out, vendorResponse(v))
		}
		return c.JSON(out)
	}
}

// GET /api/vendors/search?q=
func SearchVendorsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		query := strings.TrimSpace(c.Query("q"))
		pattern := "%" + strings.ToLower(query) + "%"

		var vendors []models.Vendor
		err := database.DB.
			Where("active = ? AND (LOWER(name) LIKE ? OR LOWER(code) LIKE ?)", true, pattern, pattern).
			Order("is_favorite DESC, name ASC").
			Find(&vendors).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron buscar los vendedores")
		}

		out := make([]VendorResponse, 0, len(vendors))
		for _, v := range vendors {
			out = append(out, vendorResponse(v))
		}
		return c.JSON(out)
	}
}

// POST /api/admin/vendors
func CreateVendorHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body VendorRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}

		body.Name = strings.TrimSpace(body.Name)
		body.Code = strings.TrimSpace(body.Code)
		if len(body.Name) < 2 || len(body.Code) < 2 {
			return fiber.NewError(fiber.StatusBadRequest, "Nombre y código necesitan al menos 2 caracteres")
		}

		vendor := models.Vendor{
			Name:   body.Name,
			Code:   body.Code,
			Active: true,
		}
		if body.Active != nil {
			vendor.Active = *body.Active
		}
		if body.IsFavorite != nil {
			vendor.IsFavorite = *body.IsFavorite
		}

		if err := database.DB.Create(&vendor).Error; err != nil {
			return fiber.NewError(fiber.StatusConflict, "Ya existe un vendedor con ese código")
		}
		return c.Status(fiber.StatusCreated).JSON(vendorResponse(vendor))
	}
}

// PUT /api/admin/vendors/:id
// Los vendedores nunca se borran: desactivar es enviar active=false.
func UpdateVendorHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseVendorID(c)
		if err != nil {
			return err
		}

		var vendor models.Vendor
		if err := database.DB.First(&vendor, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Vendedor no encontrado")
		}

		var body VendorRequest
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
		if code := strings.TrimSpace(body.Code); code != "" {
			if len(code) < 2 {
				return fiber.NewError(fiber.StatusBadRequest, "El código necesita al menos 2 caracteres")
			}
			updates["code"] = code
		}
		if body.Active != nil {
			updates["active"] = *body.Active
		}
		if body.IsFavorite != nil {
			updates["is_favorite"] = *body.IsFavorite
		}

		if len(updates) > 0 {
			if err := database.DB.Model(&vendor).Updates(updates).Error; err != nil {
				return fiber.NewError(fiber.StatusConflict, "No se pudo actualizar (¿código repetido?)")
			}
		}
		return c.JSON(vendorResponse(vendor))
	}
}

// PUT /api/admin/vendors/:id/favorite
func ToggleVendorFavoriteHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseVendorID(c)
		if err != nil {
			return err
		}

		var body struct {
			IsFavorite bool `json:"isFavorite"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}

		var vendor models.Vendor
		if err := database.DB.First(&vendor, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Vendedor no encontrado")
		}

		if err := database.DB.Model(&vendor).Update("is_favorite", body.IsFavorite).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo actualizar el favorito")
		}
		return c.JSON(vendorResponse(vendor))
	}
}
