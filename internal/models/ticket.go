package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TicketStatus string

const (
	TicketOpen   TicketStatus = "OPEN"
	TicketClosed TicketStatus = "CLOSED"
)

type PaymentStatus string

const (
	PaymentCredit  PaymentStatus = "CREDIT"
	PaymentPartial PaymentStatus = "PARTIAL"
	PaymentPaid    PaymentStatus = "PAID"
)

// Ticket es la boleta diaria de un vendedor: una por (vendedor, fecha).
// Los valores de batería se copian de Settings al crearla, para que cambios
// posteriores de configuración no alteren boletas ya abiertas.
type Ticket struct {
	ID       uint `gorm:"primaryKey"`
	VendorID uint `gorm:"not null;uniqueIndex:idx_tickets_vendor_date"`
	Vendor   Vendor
	Date     string       `gorm:"size:10;not null;uniqueIndex:idx_tickets_vendor_date;index"` // "YYYY-MM-DD"
	Status   TicketStatus `gorm:"size:10;not null;default:'OPEN'"`

	BatteryMode      BatteryMode     `gorm:"size:10;not null"`
	BatteryUnitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	BatteryQty       int             `gorm:"not null;default:1"`

	Total         decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	PaidAmount    decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Balance       decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	PaymentStatus PaymentStatus   `gorm:"size:10;not null;default:'CREDIT'"`

	CreatedByUserID uint
	ClosedByUserID  *uint
	ClosedAt        *time.Time
	PrintedAt       *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Lines []TicketLine
}

// TicketLine lleva las cantidades de un producto dentro de una boleta.
// UnitPriceUsed queda congelado al crear la línea; cambios de precio
// posteriores no la afectan.
type TicketLine struct {
	ID       uint `gorm:"primaryKey"`
	TicketID uint `gorm:"not null;uniqueIndex:idx_ticket_lines_ticket_product"`
	ProductID uint `gorm:"not null;uniqueIndex:idx_ticket_lines_ticket_product"`
	Product  Product

	LeftoversPrev int `gorm:"not null;default:0"` // sobras de ayer
	OrderQty      int `gorm:"not null;default:0"` // pedido de la mañana
	LeftoversNow  int `gorm:"not null;default:0"` // sobras de hoy
	SoldQty       int `gorm:"not null;default:0"` // derivado: pedido + sobras ayer - sobras hoy

	UnitPriceUsed decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(10,2);not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
