package tickets

import (
	"heladeria-backend/internal/models"

	"github.com/shopspring/decimal"
)

// Cálculos puros de la boleta. Toda cifra monetaria se redondea a 2
// decimales (redondeo estándar, mitad hacia arriba).

func CalcSoldQty(orderQty, leftoversPrev, leftoversNow int) int {
	return orderQty + leftoversPrev - leftoversNow
}

func CalcSubtotal(soldQty int, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(soldQty))).Round(2)
}

// CalcBatteryTotal cobra unitario × cantidad en ambos modos; el modo queda
// registrado en la boleta por si el negocio los diferencia algún día.
func CalcBatteryTotal(mode models.BatteryMode, unitPrice decimal.Decimal, qty int) decimal.Decimal {
	if mode == models.BatteryPerUnit {
		return unitPrice.Mul(decimal.NewFromInt(int64(qty))).Round(2)
	}
	return unitPrice.Mul(decimal.NewFromInt(int64(qty))).Round(2)
}

func SumTotals(subtotals []decimal.Decimal, batteryTotal decimal.Decimal) decimal.Decimal {
	total := batteryTotal
	for _, s := range subtotals {
		total = total.Add(s)
	}
	return total.Round(2)
}
