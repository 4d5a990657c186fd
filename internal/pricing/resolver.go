package pricing

import (
	"errors"

	"heladeria-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PriceFor devuelve el precio vigente de un producto a una fecha dada: el
// último registro del historial con valid_from <= fecha. Sin historial, el
// precio es cero. Solo lectura, sin efectos.
func PriceFor(db *gorm.DB, productID uint, date string) (decimal.Decimal, error) {
	var row models.PriceHistory
	err := db.
		Where("product_id = ? AND valid_from <= ?", productID, date).
		Order("valid_from DESC").
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	return row.Price, nil
}
