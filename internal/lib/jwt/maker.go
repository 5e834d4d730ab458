package jwt

import (
	"time"
)

// Maker описывает интерфейс для генерации и парсинга JWT-токенов.
type Maker interface {
	// GenerateToken создает токен с uid, именем, почтой и ролью пользователя
	GenerateToken(uid, name, email, role string) (string, error)
	// ParseToken возвращает *CustomClaims, если токен валиден
	ParseToken(tokenStr string) (*CustomClaims, error)
}

// MakerImpl реализует Maker с использованием секретного ключа
// и времени жизни токена (TTL).
type MakerImpl struct {
	secretKey string
	tokenTTL  time.Duration
}

// NewJWTMaker создаёт новый MakerImpl на основе секретного ключа и TTL.
func NewJWTMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
	}
}
