package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"

	"heladeria-backend/internal/models"
)

const (
	CookieName    = "pos_session"
	SessionMaxAge = 12 * time.Hour // la cookie expira; el token en sí no
)

type SessionPayload struct {
	UserID uint            `json:"userId"`
	Role   models.UserRole `json:"role"`
	Name   string          `json:"name"`
}

// El token es base64url(JSON) + "." + HMAC-SHA256(base64url, secret),
// ambos en base64url sin padding.

func signValue(secret, value string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(value))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func EncodeSession(secret string, payload SessionPayload) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	body := base64.RawURLEncoding.EncodeToString(raw)
	return body + "." + signValue(secret, body), nil
}

// DecodeSession verifica la firma en tiempo constante antes de parsear el
// JSON. Cualquier token malformado o adulterado devuelve nil, nunca un error.
func DecodeSession(secret, token string) *SessionPayload {
	if token == "" {
		return nil
	}
	parts := strings.SplitN(token, ".", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil
	}
	expected := signValue(secret, parts[0])
	if len(expected) != len(parts[1]) || !hmac.Equal([]byte(expected), []byte(parts[1])) {
		return nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil
	}
	var payload SessionPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil
	}
	return &payload
}
