package authenticator

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const issuer = "medalboard"

type claims[T any] struct {
	jwt.RegisteredClaims
	Object T `json:"obj,omitempty"`
}

type jwtTokenEngine[T any] struct {
	secret     []byte
	expiration time.Duration
}

// NewTokenEngine signs tokens with HS256. Every token carries a random id and
// expires after the given duration.
func NewTokenEngine[T any](secret string, expiration time.Duration) TokenEngine[T] {
	return &jwtTokenEngine[T]{
		secret:     []byte(secret),
		expiration: expiration,
	}
}

func (e *jwtTokenEngine[T]) Generate(sub string, obj T) (string, error) {
	now := time.Now()
	c := claims[T]{
		Object: obj,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    issuer,
			Subject:   sub,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(e.expiration)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(e.secret)
}

func (e *jwtTokenEngine[T]) Verify(token string) (T, error) {
	var c claims[T]
	_, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}

		return e.secret, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}

	if !c.VerifyIssuer(issuer, true) {
		var zero T
		return zero, errors.New("unexpected token issuer")
	}

	if c.Subject == "" {
		var zero T
		return zero, errors.New("token has no subject")
	}

	return c.Object, nil
}
