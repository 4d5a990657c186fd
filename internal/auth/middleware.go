package auth

import (
	"net/url"

	"heladeria-backend/internal/config"
	"heladeria-backend/internal/database"
	"heladeria-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

const (
	CtxUserIDKey   = "user_id"
	CtxUserRoleKey = "user_role"
	CtxUserNameKey = "user_name"
)

// currentUser valida la cookie de sesión y confirma que el usuario siga
// existiendo: una cookie de un usuario borrado no sirve.
func currentUser(cfg *config.Config, c *fiber.Ctx) *models.User {
	payload := DecodeSession(cfg.SessionSecret, c.Cookies(CookieName))
	if payload == nil {
		return nil
	}
	var user models.User
	if err := database.DB.First(&user, payload.UserID).Error; err != nil {
		return nil
	}
	return &user
}

// RequireSession resuelve la sesión una sola vez por request y deja al
// usuario en Locals; los handlers leen de ahí, nunca vuelven a derivarlo.
func RequireSession(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := currentUser(cfg, c)
		if user == nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Sesión inválida o expirada")
		}

		c.Locals(CtxUserIDKey, user.ID)
		c.Locals(CtxUserRoleKey, user.Role)
		c.Locals(CtxUserNameKey, user.Name)

		return c.Next()
	}
}

func RequireRole(allowedRoles ...models.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals(CtxUserRoleKey).(models.UserRole)
		if !ok {
			return fiber.NewError(fiber.StatusForbidden, "No se pudo determinar el rol")
		}

		for _, r := range allowedRoles {
			if r == role {
				return c.Next()
			}
		}
		return fiber.NewError(fiber.StatusForbidden, "No tienes permisos para esta operación")
	}
}

// PageGuard protege las rutas de páginas (/admin, /pedido, /cierre, /boleta):
// sin sesión redirige a /login conservando la ruta original en "next".
// Con adminOnly, un operador también es redirigido.
func PageGuard(cfg *config.Config, adminOnly bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		toLogin := func() error {
			next := url.QueryEscape(c.OriginalURL())
			return c.Redirect("/login?next="+next, fiber.StatusFound)
		}

		user := currentUser(cfg, c)
		if user == nil {
			return toLogin()
		}
		if adminOnly && user.Role != models.RoleAdmin {
			return toLogin()
		}
		return c.Next()
	}
}
