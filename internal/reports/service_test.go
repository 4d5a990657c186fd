package reports

import (
	"strings"
	"testing"

	"heladeria-backend/internal/database"
	"heladeria-backend/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	return db
}

func dec(t *testing.T, value string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(value)
	require.NoError(t, err)
	return d
}

type seededDay struct {
	losHelados models.Vendor
	pedro      models.Vendor
	paleta     models.Product
	cono       models.Product
}

// Dos boletas cerradas el 2024-03-01, una abierta ese día (se ignora) y una
// cerrada al día siguiente.
func seedReportData(t *testing.T, db *gorm.DB) seededDay {
	t.Helper()

	s := seededDay{
		losHelados: models.Vendor{Name: "Los, Helados", Code: "V01", Active: true},
		pedro:      models.Vendor{Name: "Pedro", Code: "V02", Active: true},
		paleta:     models.Product{Name: "Paleta de agua", Active: true, DisplayOrder: 1},
		cono:       models.Product{Name: "Cono doble", Active: true, DisplayOrder: 2},
	}
	require.NoError(t, db.Create(&s.losHelados).Error)
	require.NoError(t, db.Create(&s.pedro).Error)
	require.NoError(t, db.Create(&s.paleta).Error)
	require.NoError(t, db.Create(&s.cono).Error)

	t1 := models.Ticket{
		VendorID: s.losHelados.ID, Date: "2024-03-01", Status: models.TicketClosed,
		BatteryMode: models.BatteryPerDay, BatteryUnitPrice: dec(t, "3.00"), BatteryQty: 1,
		Total: dec(t, "12.00"), PaidAmount: dec(t, "12.00"), Balance: decimal.Zero,
		PaymentStatus: models.PaymentPaid,
		Lines: []models.TicketLine{
			{ProductID: s.paleta.ID, OrderQty: 10, LeftoversPrev: 2, LeftoversNow: 3,
				SoldQty: 9, UnitPriceUsed: dec(t, "1.00"), Subtotal: dec(t, "9.00")},
		},
	}
	require.NoError(t, db.Create(&t1).Error)

	t2 := models.Ticket{
		VendorID: s.pedro.ID, Date: "2024-03-01", Status: models.TicketClosed,
		BatteryMode: models.BatteryPerDay, BatteryUnitPrice: dec(t, "3.00"), BatteryQty: 0,
		Total: dec(t, "9.50"), PaidAmount: dec(t, "5.00"), Balance: dec(t, "4.50"),
		PaymentStatus: models.PaymentPartial,
		Lines: []models.TicketLine{
			{ProductID: s.paleta.ID, OrderQty: 2, SoldQty: 2,
				UnitPriceUsed: dec(t, "1.00"), Subtotal: dec(t, "2.00")},
			{ProductID: s.cono.ID, OrderQty: 3, SoldQty: 3,
				UnitPriceUsed: dec(t, "2.50"), Subtotal: dec(t, "7.50")},
		},
	}
	require.NoError(t, db.Create(&t2).Error)

	open := models.Ticket{
		VendorID: s.losHelados.ID, Date: "2024-03-02", Status: models.TicketOpen,
		BatteryMode: models.BatteryPerDay, BatteryUnitPrice: dec(t, "3.00"), BatteryQty: 1,
		Total: decimal.Zero, PaidAmount: decimal.Zero, Balance: decimal.Zero,
		PaymentStatus: models.PaymentCredit,
	}
	require.NoError(t, db.Create(&open).Error)

	t3 := models.Ticket{
		VendorID: s.pedro.ID, Date: "2024-03-02", Status: models.TicketClosed,
		BatteryMode: models.BatteryPerDay, BatteryUnitPrice: dec(t, "3.00"), BatteryQty: 1,
		Total: dec(t, "7.00"), PaidAmount: decimal.Zero, Balance: dec(t, "7.00"),
		PaymentStatus: models.PaymentCredit,
		Lines: []models.TicketLine{
			{ProductID: s.paleta.ID, OrderQty: 4, SoldQty: 4,
				UnitPriceUsed: dec(t, "1.00"), Subtotal: dec(t, "4.00")},
		},
	}
	require.NoError(t, db.Create(&t3).Error)

	return s
}

func TestDailyTotalsAndRanking(t *testing.T) {
	db := newTestDB(t)
	seedReportData(t, db)

	report, err := Daily(db, "2024-03-01")
	require.NoError(t, err)

	assert.True(t, report.Totals.TotalProducts.Equal(dec(t, "18.50")), "productos fue %s", report.Totals.TotalProducts)
	assert.True(t, report.Totals.TotalBattery.Equal(dec(t, "3.00")))
	assert.True(t, report.Totals.TotalGeneral.Equal(dec(t, "21.50")))
	assert.Equal(t, 1, report.Totals.TicketsPaid)
	assert.Equal(t, 1, report.Totals.TicketsPartial)
	assert.Equal(t, 0, report.Totals.TicketsCredit)

	require.Len(t, report.TopProducts, 2)
	assert.Equal(t, "Paleta de agua", report.TopProducts[0].Name)
	assert.Equal(t, 11, report.TopProducts[0].Units)
	assert.True(t, report.TopProducts[0].Amount.Equal(dec(t, "11.00")))
	assert.Equal(t, "Cono doble", report.TopProducts[1].Name)

	require.Len(t, report.TopVendors, 2)
	assert.Equal(t, "Los, Helados", report.TopVendors[0].Name)
	assert.True(t, report.TopVendors[0].Amount.Equal(dec(t, "12.00")))
	assert.Equal(t, "Pedro", report.TopVendors[1].Name)
}

func TestDailyEmptyDay(t *testing.T) {
	db := newTestDB(t)
	seedReportData(t, db)

	report, err := Daily(db, "2024-01-01")
	require.NoError(t, err)
	assert.True(t, report.Totals.TotalGeneral.IsZero())
	assert.Empty(t, report.TopProducts)
	assert.Empty(t, report.TopVendors)
}

func TestExportRowsFlattenRange(t *testing.T) {
	db := newTestDB(t)
	seedReportData(t, db)

	rows, err := ExportRows(db, "2024-03-01", "2024-03-02")
	require.NoError(t, err)
	// 3 líneas del primer día + 1 del segundo; la boleta abierta no entra
	require.Len(t, rows, 4)

	assert.Equal(t, "2024-03-01", rows[0].Date)
	assert.Equal(t, "Los, Helados", rows[0].Vendor)
	assert.Equal(t, "Paleta de agua", rows[0].Product)
	assert.Equal(t, 9, rows[0].SoldQty)
	assert.True(t, rows[0].Battery.Equal(dec(t, "3.00")))
	assert.True(t, rows[0].TicketTotal.Equal(dec(t, "12.00")))
	assert.Equal(t, models.PaymentPaid, rows[0].Status)

	assert.Equal(t, "2024-03-02", rows[3].Date)
	assert.Equal(t, "Pedro", rows[3].Vendor)

	// Rango acotado al primer día
	rows, err = ExportRows(db, "2024-03-01", "2024-03-01")
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestWriteCsvFormat(t *testing.T) {
	db := newTestDB(t)
	seedReportData(t, db)

	rows, err := ExportRows(db, "2024-03-01", "2024-03-01")
	require.NoError(t, err)
	out, err := WriteCsv(rows)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, strings.Join(CsvHeader, ","), lines[0])
	// Nombre con coma queda entre comillas
	assert.Contains(t, lines[1], `"Los, Helados"`)
	assert.Contains(t, lines[1], "PAID")
}

func TestWriteCsvEmpty(t *testing.T) {
	out, err := WriteCsv(nil)
	require.NoError(t, err)
	assert.Equal(t, strings.Join(CsvHeader, ",")+"\n", out)
}

func TestWriteXlsx(t *testing.T) {
	db := newTestDB(t)
	seedReportData(t, db)

	rows, err := ExportRows(db, "2024-03-01", "2024-03-02")
	require.NoError(t, err)
	buf, err := WriteXlsx(rows)
	require.NoError(t, err)
	assert.Greater(t, buf.Len(), 0)
}
