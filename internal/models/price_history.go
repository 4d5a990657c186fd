package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceHistory registra cada precio de un producto con su fecha de vigencia.
// El historial es append-only: el precio vigente a una fecha es el último
// registro con valid_from <= fecha.
type PriceHistory struct {
	ID        uint `gorm:"primaryKey"`
	ProductID uint `gorm:"not null;uniqueIndex:idx_price_history_product_valid"`
	Product   Product
	ValidFrom string          `gorm:"size:10;not null;uniqueIndex:idx_price_history_product_valid"` // "YYYY-MM-DD"
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CreatedAt time.Time
}
