package auth

import (
	"errors"
	"strings"
	"sync"
	"time"

	"heladeria-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const (
	maxPinAttempts = 5
	pinLockSeconds = 30
)

// PinLimiter aplica un bloqueo de ventana fija por clave de cliente:
// al quinto intento fallido la clave queda bloqueada 30 segundos.
type PinLimiter struct {
	db   *gorm.DB
	once sync.Once
}

func NewPinLimiter(db *gorm.DB) *PinLimiter {
	return &PinLimiter{db: db}
}

// ClientKey identifica al cliente por la primera entrada de X-Forwarded-For.
// Sin proxy delante todos comparten la clave "global": aceptable solo porque
// esto corre como kiosko de un único local.
func ClientKey(c *fiber.Ctx) string {
	forwarded := c.Get("X-Forwarded-For")
	if forwarded != "" {
		if first := strings.TrimSpace(strings.Split(forwarded, ",")[0]); first != "" {
			return first
		}
	}
	return "global"
}

// La tabla se provisiona sola en el primer uso, para que una instalación
// nueva no falle por tabla faltante.
func (l *PinLimiter) ensureTable() error {
	var err error
	l.once.Do(func() {
		if !l.db.Migrator().HasTable(&models.PinAttempt{}) {
			err = l.db.AutoMigrate(&models.PinAttempt{})
		}
	})
	return err
}

type PinLock struct {
	Locked    bool
	LockUntil *time.Time
}

// GetLock informa si la clave está bloqueada. Un bloqueo ya vencido se
// limpia aquí mismo y se reporta como desbloqueado.
func (l *PinLimiter) GetLock(key string) (PinLock, error) {
	if err := l.ensureTable(); err != nil {
		return PinLock{}, err
	}

	var record models.PinAttempt
	err := l.db.First(&record, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return PinLock{}, nil
	}
	if err != nil {
		return PinLock{}, err
	}
	if record.LockUntil == nil {
		return PinLock{}, nil
	}

	now := time.Now()
	if record.LockUntil.After(now) {
		return PinLock{Locked: true, LockUntil: record.LockUntil}, nil
	}

	// Bloqueo vencido: limpiar contador y bloqueo
	err = l.db.Model(&record).Updates(map[string]interface{}{
		"attempts":   0,
		"lock_until": nil,
	}).Error
	return PinLock{}, err
}

// RegisterFailure suma un intento fallido. Al llegar al máximo fija el
// bloqueo y reinicia el contador.
func (l *PinLimiter) RegisterFailure(key string) (PinLock, error) {
	if err := l.ensureTable(); err != nil {
		return PinLock{}, err
	}

	var record models.PinAttempt
	err := l.db.First(&record, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		record = models.PinAttempt{Key: key, Attempts: 1}
		if err := l.db.Create(&record).Error; err != nil {
			return PinLock{}, err
		}
	} else if err != nil {
		return PinLock{}, err
	} else {
		record.Attempts++
		if err := l.db.Model(&record).Update("attempts", record.Attempts).Error; err != nil {
			return PinLock{}, err
		}
	}

	if record.Attempts >= maxPinAttempts {
		lockUntil := time.Now().Add(pinLockSeconds * time.Second)
		err := l.db.Model(&record).Updates(map[string]interface{}{
			"attempts":   0,
			"lock_until": lockUntil,
		}).Error
		if err != nil {
			return PinLock{}, err
		}
		return PinLock{Locked: true, LockUntil: &lockUntil}, nil
	}

	return PinLock{}, nil
}

// Clear borra intentos y bloqueo sin condiciones (login exitoso).
func (l *PinLimiter) Clear(key string) error {
	if err := l.ensureTable(); err != nil {
		return err
	}

	var record models.PinAttempt
	err := l.db.First(&record, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return l.db.Create(&models.PinAttempt{Key: key, Attempts: 0}).Error
	}
	if err != nil {
		return err
	}
	return l.db.Model(&record).Updates(map[string]interface{}{
		"attempts":   0,
		"lock_until": nil,
	}).Error
}
