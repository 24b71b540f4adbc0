package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// ErrInvalidToken возвращается при невалидном или просроченном JWT
var ErrInvalidToken = errors.New("invalid token")

// jwtTTL - срок действия выдаваемого токена
const jwtTTL = 24 * time.Hour

// claims представляет полезную нагрузку JWT
type claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
}

// GenerateUserID создаёт новый идентификатор пользователя
func (s *Service) GenerateUserID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// GenerateJWT выдаёт подписанный токен для идентификатора пользователя
func (s *Service) GenerateJWT(userID string) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(jwtTTL)),
		},
		UserID: userID,
	})
	return token.SignedString([]byte(s.jwtSecret))
}

// ParseJWT проверяет подпись токена и возвращает идентификатор пользователя
func (s *Service) ParseJWT(tokenString string) (string, error) {
	var c claims
	token, err := jwt.ParseWithClaims(tokenString, &c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !token.Valid || c.UserID == "" {
		return "", ErrInvalidToken
	}
	return c.UserID, nil
}
