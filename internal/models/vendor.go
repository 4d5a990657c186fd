package models

import "time"

// Vendor es un vendedor ambulante de la distribuidora.
// Nunca se elimina: se desactiva con Active=false para conservar su historial.
type Vendor struct {
	ID         uint   `gorm:"primaryKey"`
	Name       string `gorm:"size:100;not null"`
	Code       string `gorm:"size:20;uniqueIndex;not null"`
	Active     bool   `gorm:"not null;default:true"`
	IsFavorite bool   `gorm:"not null;default:false"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
