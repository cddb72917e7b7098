package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims - типизированная личность вызывающего, зашитая в токен
type Claims struct {
	UserID uuid.UUID
}

type tokenClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// TokenManager выпускает и проверяет bearer-токены, подписанные HS256.
// Секрет загружается один раз при старте процесса и больше не меняется.
// Срок жизни у токенов не ограничен, exp не выставляется.
type TokenManager struct {
	secret []byte
}

func NewTokenManager(secret string) *TokenManager {
	return &TokenManager{secret: []byte(secret)}
}

func (m *TokenManager) Issue(userID uuid.UUID) (string, error) {
	claims := tokenClaims{
		UserID: userID.String(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Verify проверяет подпись и структуру токена. Пустой или нечитаемый
// userId в claims - это тоже ErrInvalidToken, а не успех без личности.
func (m *TokenManager) Verify(tokenString string) (Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &tokenClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})
	if err != nil {
		return Claims{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid {
		return Claims{}, ErrInvalidToken
	}

	if claims.UserID == "" {
		return Claims{}, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil || userID == uuid.Nil {
		return Claims{}, ErrInvalidToken
	}

	return Claims{UserID: userID}, nil
}
