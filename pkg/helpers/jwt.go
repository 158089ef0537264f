package helpers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// VerifyTokenManager issues and validates the signed tokens embedded in
// email-verification links. These tokens never authenticate requests;
// request authentication is session-cookie based.
type VerifyTokenManager struct {
	Secret []byte
	TTL    time.Duration
}

func NewVerifyTokenManager(secret string, ttl time.Duration) *VerifyTokenManager {
	return &VerifyTokenManager{Secret: []byte(secret), TTL: ttl}
}

type verifyClaims struct {
	jwt.RegisteredClaims
}

// Generate returns a signed token whose subject is the user id.
func (m *VerifyTokenManager) Generate(userID string) (string, error) {
	now := time.Now()
	claims := &verifyClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.TTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(m.Secret)
}

// Parse validates signature and expiry and returns the user id subject.
func (m *VerifyTokenManager) Parse(tokenStr string) (string, error) {
	claims := &verifyClaims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.Secret, nil
	})
	if err != nil {
		return "", err
	}
	if !tkn.Valid {
		return "", errors.New("invalid token")
	}
	if claims.Subject == "" {
		return "", errors.New("missing subject")
	}
	return claims.Subject, nil
}
