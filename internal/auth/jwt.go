package auth

import (
	"context"
	"errors"
	"time"

	"taskboard/internal/model"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrInvalidClaims = errors.New("invalid claims")
)

// Claims содержит анонимного принципала, которому выдан токен сессии
type Claims struct {
	Principal string `json:"principal"`
	jwt.RegisteredClaims
}

// Issuer подписывает и проверяет HS256 токены сессий
type Issuer struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

func NewIssuer(secret string, expiry time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), expiry: expiry, now: time.Now}
}

// Issue возвращает подписанный токен и время его истечения
func (i *Issuer) Issue(principal model.Principal) (string, time.Time, error) {
	issuedAt := i.now()
	expiresAt := issuedAt.Add(i.expiry)
	claims := Claims{
		Principal: string(principal),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   string(principal),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Verify парсит токен и возвращает принципала, которому он выдан
func (i *Issuer) Verify(_ context.Context, tokenStr string) (model.Principal, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(i.now))
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	// Принципал обязателен и должен совпадать с sub
	if claims.Principal == "" || claims.Subject != claims.Principal {
		return "", ErrInvalidClaims
	}
	return model.Principal(claims.Principal), nil
}
