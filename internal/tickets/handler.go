package tickets

import (
	"regexp"
	"strconv"
	"time"

	"heladeria-backend/internal/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

var isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

func todayIso() string {
	return time.Now().Format("2006-01-02")
}

func currentActor(c *fiber.Ctx) Actor {
	actor := Actor{}
	if id, ok := c.Locals(auth.CtxUserIDKey).(uint); ok {
		actor.UserID = id
	}
	if name, ok := c.Locals(auth.CtxUserNameKey).(string); ok {
		actor.Name = name
	}
	return actor
}

func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(param), 10, 32)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Identificador inválido")
	}
	return uint(id), nil
}

// statusFor traduce los códigos de negocio a HTTP; el código viaja en el
// cuerpo para que el frontend muestre el mensaje que corresponda.
func statusFor(reason Reason) int {
	switch reason {
	case ReasonNotFound:
		return fiber.StatusNotFound
	case ReasonTicketClosed, ReasonLeftoversExceed, ReasonNegativeSold:
		return fiber.StatusConflict
	default:
		return fiber.StatusBadRequest
	}
}

func businessFailure(c *fiber.Ctx, reason Reason) error {
	return c.Status(statusFor(reason)).JSON(fiber.Map{
		"ok":     false,
		"reason": reason,
	})
}

type OpenTicketRequest struct {
	VendorID uint    `json:"vendorId"`
	Date     *string `json:"date"` // "YYYY-MM-DD"; vacío = hoy
}

// POST /api/tickets/open
func OpenTicketHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body OpenTicketRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}
		if body.VendorID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "vendorId es obligatorio")
		}

		date := todayIso()
		if body.Date != nil && *body.Date != "" {
			if !isoDatePattern.MatchString(*body.Date) {
				return fiber.NewError(fiber.StatusBadRequest, "Formato de fecha inválido, debe ser 'YYYY-MM-DD'")
			}
			date = *body.Date
		}

		view, reason, err := svc.OpenOrGet(body.VendorID, date, currentActor(c))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo abrir la boleta")
		}
		if reason != ReasonNone {
			return businessFailure(c, reason)
		}
		return c.JSON(fiber.Map{"ok": true, "ticket": view})
	}
}

// GET /api/tickets/:id
func TicketSummaryHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c, "id")
		if err != nil {
			return err
		}

		view, reason, serr := svc.Summary(id)
		if serr != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo leer la boleta")
		}
		if reason != ReasonNone {
			return businessFailure(c, reason)
		}
		return c.JSON(fiber.Map{"ok": true, "ticket": view})
	}
}

type SaveOrderRequest struct {
	Items []OrderItem `json:"items"`
}

// PUT /api/tickets/:id/order
func SaveOrderHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c, "id")
		if err != nil {
			return err
		}

		var body SaveOrderRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}
		if len(body.Items) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "No hay cantidades para guardar")
		}

		reason, serr := svc.SaveOrder(id, body.Items, currentActor(c))
		if serr != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo guardar el pedido")
		}
		if reason != ReasonNone {
			return businessFailure(c, reason)
		}
		return c.JSON(fiber.Map{"ok": true})
	}
}

type SetLeftoversRequest struct {
	ProductID uint   `json:"productId"`
	Qty       int    `json:"qty"`
	Confirmed bool   `json:"confirmed"`
	Reason    string `json:"reason"`
}

// PUT /api/tickets/:id/leftovers
func SetLeftoversHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c, "id")
		if err != nil {
			return err
		}

		var body SetLeftoversRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}
		if body.ProductID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "productId es obligatorio")
		}

		result, serr := svc.SetLeftovers(id, body.ProductID, body.Qty, body.Confirmed, body.Reason, currentActor(c))
		if serr != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron guardar las sobras")
		}
		if result.NeedsConfirm {
			// No es un error: el frontend pide la confirmación con el máximo
			return c.JSON(fiber.Map{"ok": false, "needsConfirm": true, "max": result.Max})
		}
		if result.Reason != ReasonNone {
			return businessFailure(c, result.Reason)
		}
		return c.JSON(fiber.Map{"ok": true, "soldQty": result.SoldQty, "subtotal": result.Subtotal})
	}
}

type CloseTicketRequest struct {
	BatteryQty *int            `json:"batteryQty"`
	PaidAmount decimal.Decimal `json:"paidAmount"`
}

// POST /api/tickets/:id/close
func CloseTicketHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c, "id")
		if err != nil {
			return err
		}

		var body CloseTicketRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}
		if body.BatteryQty == nil {
			return fiber.NewError(fiber.StatusBadRequest, "batteryQty es obligatorio")
		}

		result, serr := svc.Close(id, *body.BatteryQty, body.PaidAmount, currentActor(c))
		if serr != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo cerrar la boleta")
		}
		if result.Reason != ReasonNone {
			return businessFailure(c, result.Reason)
		}
		return c.JSON(result)
	}
}

// POST /api/tickets/:id/printed
func MarkPrintedHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c, "id")
		if err != nil {
			return err
		}

		printedAt, reason, serr := svc.MarkPrinted(id, currentActor(c))
		if serr != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo marcar la impresión")
		}
		if reason != ReasonNone {
			return businessFailure(c, reason)
		}
		return c.JSON(fiber.Map{"ok": true, "printedAt": printedAt})
	}
}

// GET /api/vendors/:id/history
func VendorHistoryHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c, "id")
		if err != nil {
			return err
		}

		items, serr := svc.VendorHistory(id)
		if serr != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo leer el historial")
		}
		return c.JSON(fiber.Map{"ok": true, "history": items})
	}
}
