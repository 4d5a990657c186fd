package pricing

import (
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

func price(t *testing.T, value string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(value)
	require.NoError(t, err)
	return d
}

func TestPriceForPicksLatestValidFrom(t *testing.T) {
	db := newTestDB(t)
	product := models.Product{Name: "Paleta de agua"}
	require.NoError(t, db.Create(&product).Error)

	for _, row := range []models.PriceHistory{
		{ProductID: product.ID, ValidFrom: "2024-01-01", Price: price(t, "1.00")},
		{ProductID: product.ID, ValidFrom: "2024-03-15", Price: price(t, "1.25")},
		{ProductID: product.ID, ValidFrom: "2024-06-01", Price: price(t, "1.50")},
	} {
		require.NoError(t, db.Create(&row).Error)
	}

	cases := []struct {
		date string
		want string
	}{
		{"2024-01-01", "1.00"}, // vigencia inclusiva
		{"2024-03-14", "1.00"},
		{"2024-03-15", "1.25"},
		{"2024-05-31", "1.25"},
		{"2024-12-31", "1.50"},
	}
	for _, tc := range cases {
		got, err := PriceFor(db, product.ID, tc.date)
		require.NoError(t, err)
		assert.True(t, got.Equal(price(t, tc.want)), "fecha %s: esperaba %s, fue %s", tc.date, tc.want, got)
	}
}

func TestPriceForDefaultsToZero(t *testing.T) {
	db := newTestDB(t)
	product := models.Product{Name: "Cono doble"}
	require.NoError(t, db.Create(&product).Error)

	// Sin historial
	got, err := PriceFor(db, product.ID, "2024-06-01")
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	// Historial existe pero arranca después de la fecha pedida
	require.NoError(t, db.Create(&models.PriceHistory{
		ProductID: product.ID, ValidFrom: "2024-07-01", Price: price(t, "2.00"),
	}).Error)
	got, err = PriceFor(db, product.ID, "2024-06-30")
	require.NoError(t, err)
	assert.True(t, got.IsZero())
}
