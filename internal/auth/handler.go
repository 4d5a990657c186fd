package auth

import (
	"regexp"
	"strings"

	"heladeria-backend/internal/config"
	"heladeria-backend/internal/database"
	"heladeria-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

var pinPattern = regexp.MustCompile(`^\d{4,6}$`)

type LoginRequest struct {
	Pin string `json:"pin"`
}

type RegisterAdminRequest struct {
	Name string `json:"name"`
	Pin  string `json:"pin"`
}

type CreateUserRequest struct {
	Name string          `json:"name"`
	Pin  string          `json:"pin"`
	Role models.UserRole `json:"role"`
}

func setSessionCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(SessionMaxAge.Seconds()),
		HTTPOnly: true,
		SameSite: "Lax",
	})
}

// POST /api/auth/login
// El PIN no va atado a un nombre de usuario: se compara contra todos los
// usuarios, igual que en el teclado numérico del kiosko.
func LoginHandler(cfg *config.Config, limiter *PinLimiter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"ok": false, "message": "Cuerpo de la petición inválido.",
			})
		}

		if !pinPattern.MatchString(body.Pin) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"ok": false, "message": "PIN inválido.",
			})
		}

		key := ClientKey(c)

		lock, err := limiter.GetLock(key)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo verificar el bloqueo de intentos")
		}
		if lock.Locked {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"ok": false, "message": "Demasiados intentos. Espera 30 segundos.",
			})
		}

		var users []models.User
		if err := database.DB.Find(&users).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron leer los usuarios")
		}

		var found *models.User
		for i := range users {
			if bcrypt.CompareHashAndPassword([]byte(users[i].PinHash), []byte(body.Pin)) == nil {
				found = &users[i]
				break
			}
		}

		if found == nil {
			failure, err := limiter.RegisterFailure(key)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "No se pudo registrar el intento")
			}
			if failure.Locked {
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
					"ok": false, "message": "Demasiados intentos. Espera 30 segundos.",
				})
			}
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"ok": false, "message": "PIN incorrecto.",
			})
		}

		if err := limiter.Clear(key); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo limpiar el contador de intentos")
		}

		token, err := EncodeSession(cfg.SessionSecret, SessionPayload{
			UserID: found.ID,
			Role:   found.Role,
			Name:   found.Name,
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo crear la sesión")
		}
		setSessionCookie(c, token)

		return c.JSON(fiber.Map{
			"ok": true,
			"user": fiber.Map{
				"name": found.Name,
				"role": found.Role,
			},
		})
	}
}

// POST /api/auth/logout
func LogoutHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Cookie(&fiber.Cookie{
			Name:     CookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HTTPOnly: true,
			SameSite: "Lax",
		})
		return c.JSON(fiber.Map{"ok": true})
	}
}

// GET /api/auth/me
func MeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"userId": c.Locals(CtxUserIDKey),
			"name":   c.Locals(CtxUserNameKey),
			"role":   c.Locals(CtxUserRoleKey),
		})
	}
}

// POST /api/auth/register-admin
// Bootstrap de primer arranque: solo funciona mientras no exista ningún
// usuario. Después, los usuarios los crea el admin.
func RegisterAdminHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RegisterAdminRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "El nombre es obligatorio")
		}
		if !pinPattern.MatchString(body.Pin) {
			return fiber.NewError(fiber.StatusBadRequest, "El PIN debe tener de 4 a 6 dígitos")
		}

		var count int64
		database.DB.Model(&models.User{}).Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusForbidden, "Ya hay usuarios registrados")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Pin), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo procesar el PIN")
		}

		user := models.User{
			Name:    body.Name,
			PinHash: string(hash),
			Role:    models.RoleAdmin,
		}
		if err := database.DB.Create(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo crear el usuario")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"id":   user.ID,
			"name": user.Name,
			"role": user.Role,
		})
	}
}

// POST /api/admin/users (solo ADMIN)
func CreateUserHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateUserRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "El nombre es obligatorio")
		}
		if !pinPattern.MatchString(body.Pin) {
			return fiber.NewError(fiber.StatusBadRequest, "El PIN debe tener de 4 a 6 dígitos")
		}
		if body.Role != models.RoleAdmin && body.Role != models.RoleOperator {
			return fiber.NewError(fiber.StatusBadRequest, "Rol inválido (ADMIN|OPERATOR)")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Pin), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo procesar el PIN")
		}

		user := models.User{
			Name:    body.Name,
			PinHash: string(hash),
			Role:    body.Role,
		}
		if err := database.DB.Create(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusConflict, "Ya existe un usuario con ese nombre")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"id":   user.ID,
			"name": user.Name,
			"role": user.Role,
		})
	}
}
