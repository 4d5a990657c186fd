package audit

import (
	"encoding/json"
	"fmt"

	"heladeria-backend/internal/models"

	"gorm.io/gorm"
)

type LogOptions struct {
	UserID     uint
	UserName   string
	EntityType string
	EntityID   uint
	Action     models.AuditAction
	Details    any
}

// WriteLog agrega un registro de auditoría. El detalle se serializa a JSON;
// si no hay detalle queda el literal "null" (jsonb no acepta cadena vacía).
func WriteLog(db *gorm.DB, opts LogOptions) error {
	detailsStr := "null"
	if opts.Details != nil {
		if b, err := json.Marshal(opts.Details); err == nil {
			detailsStr = string(b)
		}
	}

	entry := models.AuditLog{
		UserID:      opts.UserID,
		UserName:    opts.UserName,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		DetailsJSON: detailsStr,
	}

	if err := db.Create(&entry).Error; err != nil {
		return fmt.Errorf("no se pudo guardar el registro de auditoría: %w", err)
	}
	return nil
}
