package models

import "time"

type Product struct {
	ID           uint   `gorm:"primaryKey"`
	Name         string `gorm:"size:100;uniqueIndex;not null"`
	Active       bool   `gorm:"not null;default:true"`
	DisplayOrder int    `gorm:"not null;default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
