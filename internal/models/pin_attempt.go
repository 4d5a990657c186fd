package models

import "time"

// PinAttempt lleva el contador de intentos fallidos de PIN por clave de
// cliente. La tabla se crea sola en el primer uso (ver auth.PinLimiter),
// para que un despliegue recién instalado no falle por tabla faltante.
type PinAttempt struct {
	ID        uint   `gorm:"primaryKey"`
	Key       string `gorm:"size:64;uniqueIndex;not null"`
	Attempts  int    `gorm:"not null;default:0"`
	LockUntil *time.Time
	UpdatedAt time.Time
}
