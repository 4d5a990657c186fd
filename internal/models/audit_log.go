package models

import "time"

type AuditAction string

const (
	AuditLeftoversAdjusted AuditAction = "LEFTOVERS_ADJUSTED"
	AuditTicketClosed      AuditAction = "CLOSED"
	AuditTicketPrinted     AuditAction = "PRINTED"
)

// AuditLog es el registro append-only de acciones sensibles. Nunca se
// modifica ni se borra.
type AuditLog struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time

	// Quién hizo la acción (nombre denormalizado para lectura rápida)
	UserID   uint   `gorm:"index"`
	UserName string `gorm:"size:100"`

	// Sobre qué entidad (ej: "Ticket", "TicketLine")
	EntityType string `gorm:"size:50;index"`
	EntityID   uint   `gorm:"index"`

	Action AuditAction `gorm:"size:40"`

	// Detalle de la acción (JSON)
	DetailsJSON string `gorm:"type:jsonb"`
}
