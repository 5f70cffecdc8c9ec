// Package jwt реализует выпуск и проверку JWT токенов сессии.
//
// Maker описывает интерфейс для создания и проверки токенов с id пользователя
// и признаком провайдера. MakerImpl подписывает токены секретным ключом (HS256)
// и задает им срок жизни.
package jwt

import (
	"time"
)

// Maker описывает интерфейс для генерации и парсинга JWT токенов.
type Maker interface {
	// GenerateToken выпускает токен для пользователя
	GenerateToken(userID int, provider bool) (string, error)
	// ParseToken проверяет подпись и срок и возвращает claims
	ParseToken(tokenStr string) (*CustomClaims, error)
}

// MakerImpl реализует Maker с использованием секретного ключа и TTL.
type MakerImpl struct {
	secretKey string        // Секретный ключ для подписи токенов.
	tokenTTL  time.Duration // Время жизни токена.
}

// NewJWTMaker создаёт MakerImpl на основе секретного ключа и TTL.
func NewJWTMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
	}
}
