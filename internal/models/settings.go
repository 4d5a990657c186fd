package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type BatteryMode string

const (
	BatteryPerDay  BatteryMode = "PER_DAY"
	BatteryPerUnit BatteryMode = "PER_UNIT"
)

// SettingsID es la clave de la única fila de configuración.
const SettingsID = "global"

type Settings struct {
	ID               string          `gorm:"primaryKey;size:16"`
	BatteryMode      BatteryMode     `gorm:"size:10;not null;default:'PER_DAY'"`
	BatteryUnitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	BatteryQty       int             `gorm:"not null;default:1"`
	UpdatedAt        time.Time
}
