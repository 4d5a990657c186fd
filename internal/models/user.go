package models

import "time"

type UserRole string

const (
	RoleAdmin    UserRole = "ADMIN"
	RoleOperator UserRole = "OPERATOR"
)

type User struct {
	ID        uint     `gorm:"primaryKey"`
	Name      string   `gorm:"size:100;uniqueIndex;not null"`
	PinHash   string   `gorm:"size:255;not null"`
	Role      UserRole `gorm:"size:20;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
