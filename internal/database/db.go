package database

import (
	"errors"
	"log"

	"heladeria-backend/internal/config"
	"heladeria-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("No se pudo conectar a la base de datos: %v", err)
	}

	if err := Migrate(DB); err != nil {
		log.Fatalf("Error en AutoMigrate: %v", err)
	}

	// La fila de configuración global debe existir siempre
	if _, err := EnsureSettings(DB); err != nil {
		log.Fatalf("No se pudo inicializar la configuración global: %v", err)
	}

	log.Println("Conexión a la base de datos lista. Migración completada.")
}

// Migrate sincroniza el esquema. Los tests lo usan sobre SQLite en memoria.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Vendor{},
		&models.Product{},
		&models.PriceHistory{},
		&models.Settings{},
		&models.Ticket{},
		&models.TicketLine{},
		&models.PinAttempt{},
		&models.AuditLog{},
	)
}

// EnsureSettings devuelve la fila única de configuración, creándola con los
// valores por defecto del negocio si todavía no existe.
func EnsureSettings(db *gorm.DB) (models.Settings, error) {
	var settings models.Settings
	err := db.First(&settings, "id = ?", models.SettingsID).Error
	if err == nil {
		return settings, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return settings, err
	}

	settings = models.Settings{
		ID:               models.SettingsID,
		BatteryMode:      models.BatteryPerDay,
		BatteryUnitPrice: decimal.RequireFromString("3.00"),
		BatteryQty:       1,
	}
	if err := db.Create(&settings).Error; err != nil {
		return settings, err
	}
	return settings, nil
}
