package tickets

import (
	"errors"
	"sort"
	"time"

	"heladeria-backend/internal/audit"
	"heladeria-backend/internal/database"
	"heladeria-backend/internal/models"
	"heladeria-backend/internal/pricing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Reason clasifica los fallos de negocio esperados. Cadena vacía = éxito.
type Reason string

const (
	ReasonNone              Reason = ""
	ReasonNotFound          Reason = "NOT_FOUND"
	ReasonTicketClosed      Reason = "TICKET_CLOSED"
	ReasonInvalidQty        Reason = "INVALID_QTY"
	ReasonInvalidItems      Reason = "INVALID_ITEMS"
	ReasonInvalidBatteryQty Reason = "INVALID_BATTERY_QTY"
	ReasonLeftoversExceed   Reason = "LEFTOVERS_EXCEED"
	ReasonNegativeSold      Reason = "NEGATIVE_SOLD"
)

// Actor identifica al usuario autenticado; viene resuelto del middleware de
// sesión y se pasa explícito a cada operación.
type Actor struct {
	UserID uint
	Name   string
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

type LineView struct {
	ProductID     uint            `json:"productId"`
	ProductName   string          `json:"productName"`
	LeftoversPrev int             `json:"leftoversPrev"`
	OrderQty      int             `json:"orderQty"`
	LeftoversNow  int             `json:"leftoversNow"`
	SoldQty       int             `json:"soldQty"`
	UnitPriceUsed decimal.Decimal `json:"unitPriceUsed"`
	Subtotal      decimal.Decimal `json:"subtotal"`
}

type TicketView struct {
	ID               uint                 `json:"id"`
	VendorName       string               `json:"vendorName"`
	VendorCode       string               `json:"vendorCode"`
	Date             string               `json:"date"`
	Status           models.TicketStatus  `json:"status"`
	BatteryUnitPrice decimal.Decimal      `json:"batteryUnitPrice"`
	BatteryQty       int                  `json:"batteryQty"`
	Total            decimal.Decimal      `json:"total"`
	Balance          decimal.Decimal      `json:"balance"`
	PaymentStatus    models.PaymentStatus `json:"paymentStatus"`
	PrintedAt        *time.Time           `json:"printedAt,omitempty"`
	Lines            []LineView           `json:"lines"`
}

// lastLeftovers busca las sobras finales del último cierre del vendedor para
// ese producto; si nunca cerró una boleta con él, arranca en cero.
func lastLeftovers(db *gorm.DB, vendorID, productID uint) (int, error) {
	var line models.TicketLine
	err := db.
		Joins("JOIN tickets ON tickets.id = ticket_lines.ticket_id").
		Where("ticket_lines.product_id = ? AND tickets.vendor_id = ? AND tickets.status = ?",
			productID, vendorID, models.TicketClosed).
		Order("tickets.date DESC").
		First(&line).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return line.LeftoversNow, nil
}

func activeProducts(db *gorm.DB) ([]models.Product, error) {
	var products []models.Product
	err := db.
		Where("active = ?", true).
		Order("display_order ASC, name ASC").
		Find(&products).Error
	return products, err
}

// OpenOrGet abre la boleta del vendedor para la fecha dada, o devuelve la
// existente. Al reabrir una boleta OPEN se agregan como líneas en cero los
// productos activados después de crearla. El índice único (vendor, fecha)
// frena la carrera de dos primeras aperturas simultáneas: ante conflicto se
// relee la boleta del otro request.
func (s *Service) OpenOrGet(vendorID uint, date string, actor Actor) (*TicketView, Reason, error) {
	var vendor models.Vendor
	if err := s.db.First(&vendor, vendorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ReasonNotFound, nil
		}
		return nil, ReasonNone, err
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, ReasonNone, tx.Error
	}

	var ticket models.Ticket
	err := tx.Where("vendor_id = ? AND date = ?", vendorID, date).First(&ticket).Error
	switch {
	case err == nil:
		if ticket.Status == models.TicketOpen {
			if err := s.backfillLines(tx, &ticket); err != nil {
				tx.Rollback()
				return nil, ReasonNone, err
			}
		}

	case errors.Is(err, gorm.ErrRecordNotFound):
		created, err := s.createTicket(tx, vendorID, date, actor)
		if err != nil {
			tx.Rollback()
			// Conflicto del índice único: otro request la creó primero
			var existing models.Ticket
			if ferr := s.db.Where("vendor_id = ? AND date = ?", vendorID, date).First(&existing).Error; ferr == nil {
				return s.buildView(existing.ID, false)
			}
			return nil, ReasonNone, err
		}
		ticket = *created

	default:
		tx.Rollback()
		return nil, ReasonNone, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, ReasonNone, err
	}

	return s.buildView(ticket.ID, false)
}

func (s *Service) createTicket(tx *gorm.DB, vendorID uint, date string, actor Actor) (*models.Ticket, error) {
	settings, err := database.EnsureSettings(tx)
	if err != nil {
		return nil, err
	}
	products, err := activeProducts(tx)
	if err != nil {
		return nil, err
	}

	ticket := models.Ticket{
		VendorID:         vendorID,
		Date:             date,
		Status:           models.TicketOpen,
		BatteryMode:      settings.BatteryMode,
		BatteryUnitPrice: settings.BatteryUnitPrice,
		BatteryQty:       settings.BatteryQty,
		Total:            decimal.Zero,
		PaidAmount:       decimal.Zero,
		Balance:          decimal.Zero,
		PaymentStatus:    models.PaymentCredit,
		CreatedByUserID:  actor.UserID,
	}

	for _, product := range products {
		leftoversPrev, err := lastLeftovers(tx, vendorID, product.ID)
		if err != nil {
			return nil, err
		}
		unitPrice, err := pricing.PriceFor(tx, product.ID, date)
		if err != nil {
			return nil, err
		}
		ticket.Lines = append(ticket.Lines, models.TicketLine{
			ProductID:     product.ID,
			LeftoversPrev: leftoversPrev,
			UnitPriceUsed: unitPrice,
			Subtotal:      decimal.Zero,
		})
	}

	if err := tx.Create(&ticket).Error; err != nil {
		return nil, err
	}
	return &ticket, nil
}

// backfillLines agrega líneas en cero para los productos activos que la
// boleta todavía no tiene, con sobras previas y precio resueltos igual que
// al crearla.
func (s *Service) backfillLines(tx *gorm.DB, ticket *models.Ticket) error {
	products, err := activeProducts(tx)
	if err != nil {
		return err
	}

	var lines []models.TicketLine
	if err := tx.Where("ticket_id = ?", ticket.ID).Find(&lines).Error; err != nil {
		return err
	}
	existing := make(map[uint]bool, len(lines))
	for _, line := range lines {
		existing[line.ProductID] = true
	}

	for _, product := range products {
		if existing[product.ID] {
			continue
		}
		leftoversPrev, err := lastLeftovers(tx, ticket.VendorID, product.ID)
		if err != nil {
			return err
		}
		unitPrice, err := pricing.PriceFor(tx, product.ID, ticket.Date)
		if err != nil {
			return err
		}
		line := models.TicketLine{
			TicketID:      ticket.ID,
			ProductID:     product.ID,
			LeftoversPrev: leftoversPrev,
			UnitPriceUsed: unitPrice,
			Subtotal:      decimal.Zero,
		}
		if err := tx.Create(&line).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) buildView(ticketID uint, includeInactive bool) (*TicketView, Reason, error) {
	var ticket models.Ticket
	err := s.db.
		Preload("Vendor").
		Preload("Lines.Product").
		First(&ticket, ticketID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ReasonNotFound, nil
	}
	if err != nil {
		return nil, ReasonNone, err
	}

	view := &TicketView{
		ID:               ticket.ID,
		VendorName:       ticket.Vendor.Name,
		VendorCode:       ticket.Vendor.Code,
		Date:             ticket.Date,
		Status:           ticket.Status,
		BatteryUnitPrice: ticket.BatteryUnitPrice,
		BatteryQty:       ticket.BatteryQty,
		Total:            ticket.Total,
		Balance:          ticket.Balance,
		PaymentStatus:    ticket.PaymentStatus,
		PrintedAt:        ticket.PrintedAt,
	}

	lines := ticket.Lines
	sort.Slice(lines, func(i, j int) bool {
		if lines[i].Product.DisplayOrder != lines[j].Product.DisplayOrder {
			return lines[i].Product.DisplayOrder < lines[j].Product.DisplayOrder
		}
		return lines[i].Product.Name < lines[j].Product.Name
	})

	for _, line := range lines {
		if !includeInactive && !line.Product.Active {
			continue
		}
		view.Lines = append(view.Lines, LineView{
			ProductID:     line.ProductID,
			ProductName:   line.Product.Name,
			LeftoversPrev: line.LeftoversPrev,
			OrderQty:      line.OrderQty,
			LeftoversNow:  line.LeftoversNow,
			SoldQty:       line.SoldQty,
			UnitPriceUsed: line.UnitPriceUsed,
			Subtotal:      line.Subtotal,
		})
	}

	return view, ReasonNone, nil
}

type OrderItem struct {
	ProductID uint `json:"productId"`
	Qty       int  `json:"qty"`
}

// SaveOrder aplica las cantidades pedidas de una vez: o entran todas o no
// entra ninguna.
func (s *Service) SaveOrder(ticketID uint, items []OrderItem, actor Actor) (Reason, error) {
	for _, item := range items {
		if item.ProductID == 0 || item.Qty < 0 {
			return ReasonInvalidItems, nil
		}
	}

	var ticket models.Ticket
	if err := s.db.Select("id", "status").First(&ticket, ticketID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ReasonNotFound, nil
		}
		return ReasonNone, err
	}
	if ticket.Status != models.TicketOpen {
		return ReasonTicketClosed, nil
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return ReasonNone, tx.Error
	}
	for _, item := range items {
		res := tx.Model(&models.TicketLine{}).
			Where("ticket_id = ? AND product_id = ?", ticketID, item.ProductID).
			Update("order_qty", item.Qty)
		if res.Error != nil {
			tx.Rollback()
			return ReasonNone, res.Error
		}
		if res.RowsAffected == 0 {
			tx.Rollback()
			return ReasonInvalidItems, nil
		}
	}
	return ReasonNone, tx.Commit().Error
}

type LeftoversResult struct {
	OK           bool            `json:"ok"`
	NeedsConfirm bool            `json:"needsConfirm,omitempty"`
	Max          int             `json:"max,omitempty"`
	SoldQty      int             `json:"soldQty,omitempty"`
	Subtotal     decimal.Decimal `json:"subtotal,omitempty"`
	Reason       Reason          `json:"reason,omitempty"`
}

// SetLeftovers registra las sobras de hoy de un producto. Si superan el
// máximo (pedido + sobras de ayer) se exige confirmación explícita: sin ella
// no se muta nada y se devuelve el máximo; con ella se muta y la decisión
// queda auditada con su motivo.
func (s *Service) SetLeftovers(ticketID, productID uint, qty int, confirmed bool, reason string, actor Actor) (*LeftoversResult, error) {
	if qty < 0 {
		return &LeftoversResult{Reason: ReasonInvalidQty}, nil
	}

	var line models.TicketLine
	err := s.db.Where("ticket_id = ? AND product_id = ?", ticketID, productID).First(&line).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &LeftoversResult{Reason: ReasonNotFound}, nil
	}
	if err != nil {
		return nil, err
	}

	var ticket models.Ticket
	if err := s.db.Select("id", "status").First(&ticket, line.TicketID).Error; err != nil {
		return nil, err
	}
	if ticket.Status != models.TicketOpen {
		return &LeftoversResult{Reason: ReasonTicketClosed}, nil
	}

	max := line.OrderQty + line.LeftoversPrev
	if qty > max && !confirmed {
		return &LeftoversResult{NeedsConfirm: true, Max: max}, nil
	}
	overrideConfirmed := qty > max && confirmed

	soldQty := CalcSoldQty(line.OrderQty, line.LeftoversPrev, qty)
	// Fuera de un exceso confirmado, con el chequeo de máximo esto no
	// debería pasar; si pasa, los datos aguas arriba están corruptos.
	// Un exceso confirmado deja la venta derivada en negativo a propósito:
	// la boleta no va a poder cerrarse hasta corregir las cantidades.
	if soldQty < 0 && !overrideConfirmed {
		return &LeftoversResult{Reason: ReasonNegativeSold}, nil
	}
	subtotal := CalcSubtotal(soldQty, line.UnitPriceUsed)

	err = s.db.Model(&line).Updates(map[string]interface{}{
		"leftovers_now": qty,
		"sold_qty":      soldQty,
		"subtotal":      subtotal,
	}).Error
	if err != nil {
		return nil, err
	}

	if overrideConfirmed {
		if reason == "" {
			reason = "sin-motivo"
		}
		err := audit.WriteLog(s.db, audit.LogOptions{
			UserID:     actor.UserID,
			UserName:   actor.Name,
			EntityType: "TicketLine",
			EntityID:   line.ID,
			Action:     models.AuditLeftoversAdjusted,
			Details:    map[string]interface{}{"reason": reason, "max": max, "qty": qty},
		})
		if err != nil {
			return nil, err
		}
	}

	return &LeftoversResult{OK: true, SoldQty: soldQty, Subtotal: subtotal}, nil
}

type CloseResult struct {
	OK            bool                 `json:"ok"`
	AlreadyClosed bool                 `json:"alreadyClosed,omitempty"`
	Total         decimal.Decimal      `json:"total"`
	Balance       decimal.Decimal      `json:"balance"`
	PaymentStatus models.PaymentStatus `json:"paymentStatus"`
	Reason        Reason               `json:"reason,omitempty"`
}

// Close cierra la boleta en una única transacción: recalcula cada línea
// desde sus cantidades (no confía en subtotales incrementales), valida
// máximos, arma el total con la batería y congela la boleta. Cualquier fallo
// deshace todo. Cerrar una boleta ya cerrada devuelve los valores guardados.
func (s *Service) Close(ticketID uint, batteryQty int, paidAmount decimal.Decimal, actor Actor) (*CloseResult, error) {
	if batteryQty < 0 {
		return &CloseResult{Reason: ReasonInvalidBatteryQty}, nil
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	var ticket models.Ticket
	err := tx.First(&ticket, ticketID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		tx.Rollback()
		return &CloseResult{Reason: ReasonNotFound}, nil
	}
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if ticket.Status == models.TicketClosed {
		tx.Rollback()
		return &CloseResult{
			OK:            true,
			AlreadyClosed: true,
			Total:         ticket.Total,
			Balance:       ticket.Balance,
			PaymentStatus: ticket.PaymentStatus,
		}, nil
	}

	var lines []models.TicketLine
	if err := tx.Where("ticket_id = ?", ticket.ID).Find(&lines).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	subtotals := make([]decimal.Decimal, 0, len(lines))
	for i := range lines {
		line := &lines[i]
		max := line.OrderQty + line.LeftoversPrev
		if line.LeftoversNow > max {
			tx.Rollback()
			return &CloseResult{Reason: ReasonLeftoversExceed}, nil
		}
		soldQty := CalcSoldQty(line.OrderQty, line.LeftoversPrev, line.LeftoversNow)
		if soldQty < 0 {
			tx.Rollback()
			return &CloseResult{Reason: ReasonNegativeSold}, nil
		}
		line.SoldQty = soldQty
		line.Subtotal = CalcSubtotal(soldQty, line.UnitPriceUsed)
		subtotals = append(subtotals, line.Subtotal)
	}

	batteryTotal := CalcBatteryTotal(ticket.BatteryMode, ticket.BatteryUnitPrice, batteryQty)
	total := SumTotals(subtotals, batteryTotal)
	paid := paidAmount.Round(2)
	balance := total.Sub(paid).Round(2)
	if balance.IsNegative() {
		balance = decimal.Zero
	}

	var paymentStatus models.PaymentStatus
	switch {
	case paid.GreaterThanOrEqual(total):
		paymentStatus = models.PaymentPaid
	case paid.IsZero():
		paymentStatus = models.PaymentCredit
	default:
		paymentStatus = models.PaymentPartial
	}

	for i := range lines {
		err := tx.Model(&models.TicketLine{}).
			Where("id = ?", lines[i].ID).
			Updates(map[string]interface{}{
				"sold_qty": lines[i].SoldQty,
				"subtotal": lines[i].Subtotal,
			}).Error
		if err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	now := time.Now()
	err = tx.Model(&models.Ticket{}).
		Where("id = ?", ticket.ID).
		Updates(map[string]interface{}{
			"status":            models.TicketClosed,
			"battery_qty":       batteryQty,
			"total":             total,
			"paid_amount":       paid,
			"balance":           balance,
			"payment_status":    paymentStatus,
			"closed_by_user_id": actor.UserID,
			"closed_at":         now,
		}).Error
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	_ = audit.WriteLog(s.db, audit.LogOptions{
		UserID:     actor.UserID,
		UserName:   actor.Name,
		EntityType: "Ticket",
		EntityID:   ticket.ID,
		Action:     models.AuditTicketClosed,
		Details: map[string]interface{}{
			"total":         total,
			"paymentStatus": paymentStatus,
			"paidAmount":    paid,
		},
	})

	return &CloseResult{
		OK:            true,
		Total:         total,
		Balance:       balance,
		PaymentStatus: paymentStatus,
	}, nil
}

// MarkPrinted estampa la hora de impresión. Idempotente: reimprimir vuelve a
// estampar y a auditar.
func (s *Service) MarkPrinted(ticketID uint, actor Actor) (*time.Time, Reason, error) {
	var ticket models.Ticket
	if err := s.db.First(&ticket, ticketID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ReasonNotFound, nil
		}
		return nil, ReasonNone, err
	}

	now := time.Now()
	if err := s.db.Model(&ticket).Update("printed_at", now).Error; err != nil {
		return nil, ReasonNone, err
	}

	_ = audit.WriteLog(s.db, audit.LogOptions{
		UserID:     actor.UserID,
		UserName:   actor.Name,
		EntityType: "Ticket",
		EntityID:   ticket.ID,
		Action:     models.AuditTicketPrinted,
		Details:    map[string]interface{}{"printedAt": now.Format(time.RFC3339)},
	})

	return &now, ReasonNone, nil
}

// Summary devuelve la boleta completa para la vista de impresión, con todas
// sus líneas aunque el producto esté hoy desactivado.
func (s *Service) Summary(ticketID uint) (*TicketView, Reason, error) {
	return s.buildView(ticketID, true)
}

type VendorHistoryItem struct {
	TicketID      uint                 `json:"ticketId"`
	Date          string               `json:"date"`
	Total         decimal.Decimal      `json:"total"`
	PaymentStatus models.PaymentStatus `json:"paymentStatus"`
}

// VendorHistory lista los últimos 3 cierres del vendedor, el más reciente
// primero.
func (s *Service) VendorHistory(vendorID uint) ([]VendorHistoryItem, error) {
	var recent []models.Ticket
	err := s.db.
		Where("vendor_id = ? AND status = ?", vendorID, models.TicketClosed).
		Order("date DESC").
		Limit(3).
		Find(&recent).Error
	if err != nil {
		return nil, err
	}

	items := make([]VendorHistoryItem, 0, len(recent))
	for _, t := range recent {
		items = append(items, VendorHistoryItem{
			TicketID:      t.ID,
			Date:          t.Date,
			Total:         t.Total,
			PaymentStatus: t.PaymentStatus,
		})
	}
	return items, nil
}
