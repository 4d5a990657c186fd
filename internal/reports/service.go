package reports

import (
	"sort"

	"heladeria-backend/internal/models"
	"heladeria-backend/internal/tickets"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type DailyTotals struct {
	TotalProducts  decimal.Decimal `json:"totalProducts"`
	TotalBattery   decimal.Decimal `json:"totalBattery"`
	TotalGeneral   decimal.Decimal `json:"totalGeneral"`
	TicketsPaid    int             `json:"ticketsPaid"`
	TicketsCredit  int             `json:"ticketsCredit"`
	TicketsPartial int             `json:"ticketsPartial"`
}

type ProductTotal struct {
	Name   string          `json:"name"`
	Units  int             `json:"units"`
	Amount decimal.Decimal `json:"amount"`
}

type VendorTotal struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

type DailyReport struct {
	Totals      DailyTotals    `json:"totals"`
	TopProducts []ProductTotal `json:"topProducts"`
	TopVendors  []VendorTotal  `json:"topVendors"`
}

func closedTickets(db *gorm.DB, start, end string) ([]models.Ticket, error) {
	var result []models.Ticket
	err := db.
		Where("date >= ? AND date <= ? AND status = ?", start, end, models.TicketClosed).
		Preload("Vendor").
		Preload("Lines.Product").
		Order("date ASC").
		Find(&result).Error
	return result, err
}

// Daily recorre las boletas cerradas del día y arma los totales y los
// top-5 de productos y vendedores por monto.
func Daily(db *gorm.DB, date string) (*DailyReport, error) {
	closed, err := closedTickets(db, date, date)
	if err != nil {
		return nil, err
	}

	report := &DailyReport{
		Totals: DailyTotals{
			TotalProducts: decimal.Zero,
			TotalBattery:  decimal.Zero,
			TotalGeneral:  decimal.Zero,
		},
		TopProducts: []ProductTotal{},
		TopVendors:  []VendorTotal{},
	}

	productTotals := map[uint]*ProductTotal{}
	vendorTotals := map[uint]*VendorTotal{}

	for _, ticket := range closed {
		battery := tickets.CalcBatteryTotal(ticket.BatteryMode, ticket.BatteryUnitPrice, ticket.BatteryQty)
		report.Totals.TotalBattery = report.Totals.TotalBattery.Add(battery)
		report.Totals.TotalGeneral = report.Totals.TotalGeneral.Add(ticket.Total)

		switch ticket.PaymentStatus {
		case models.PaymentPaid:
			report.Totals.TicketsPaid++
		case models.PaymentCredit:
			report.Totals.TicketsCredit++
		case models.PaymentPartial:
			report.Totals.TicketsPartial++
		}

		for _, line := range ticket.Lines {
			report.Totals.TotalProducts = report.Totals.TotalProducts.Add(line.Subtotal)

			entry, ok := productTotals[line.ProductID]
			if !ok {
				entry = &ProductTotal{Name: line.Product.Name, Amount: decimal.Zero}
				productTotals[line.ProductID] = entry
			}
			entry.Units += line.SoldQty
			entry.Amount = entry.Amount.Add(line.Subtotal)
		}

		vendor, ok := vendorTotals[ticket.VendorID]
		if !ok {
			vendor = &VendorTotal{Name: ticket.Vendor.Name, Amount: decimal.Zero}
			vendorTotals[ticket.VendorID] = vendor
		}
		vendor.Amount = vendor.Amount.Add(ticket.Total)
	}

	for _, entry := range productTotals {
		report.TopProducts = append(report.TopProducts, *entry)
	}
	sort.Slice(report.TopProducts, func(i, j int) bool {
		return report.TopProducts[i].Amount.GreaterThan(report.TopProducts[j].Amount)
	})
	if len(report.TopProducts) > 5 {
		report.TopProducts = report.TopProducts[:5]
	}

	for _, entry := range vendorTotals {
		report.TopVendors = append(report.TopVendors, *entry)
	}
	sort.Slice(report.TopVendors, func(i, j int) bool {
		return report.TopVendors[i].Amount.GreaterThan(report.TopVendors[j].Amount)
	})
	if len(report.TopVendors) > 5 {
		report.TopVendors = report.TopVendors[:5]
	}

	return report, nil
}

// ExportRow es una línea de boleta cerrada aplanada para exportar.
type ExportRow struct {
	Date          string
	Vendor        string
	Product       string
	OrderQty      int
	LeftoversPrev int
	LeftoversNow  int
	SoldQty       int
	Price         decimal.Decimal
	Subtotal      decimal.Decimal
	Battery       decimal.Decimal
	TicketTotal   decimal.Decimal
	Status        models.PaymentStatus
}

// ExportRows aplana las boletas cerradas del rango inclusivo [start, end],
// ascendente por fecha, una fila por línea.
func ExportRows(db *gorm.DB, start, end string) ([]ExportRow, error) {
	closed, err := closedTickets(db, start, end)
	if err != nil {
		return nil, err
	}

	var rows []ExportRow
	for _, ticket := range closed {
		battery := tickets.CalcBatteryTotal(ticket.BatteryMode, ticket.BatteryUnitPrice, ticket.BatteryQty)
		for _, line := range ticket.Lines {
			rows = append(rows, ExportRow{
				Date:          ticket.Date,
				Vendor:        ticket.Vendor.Name,
				Product:       line.Product.Name,
				OrderQty:      line.OrderQty,
				LeftoversPrev: line.LeftoversPrev,
				LeftoversNow:  line.LeftoversNow,
				SoldQty:       line.SoldQty,
				Price:         line.UnitPriceUsed,
				Subtotal:      line.Subtotal,
				Battery:       battery,
				TicketTotal:   ticket.Total,
				Status:        ticket.PaymentStatus,
			})
		}
	}
	return rows, nil
}
