package identity

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// Claims is the payload of an operator session token.
type Claims struct {
	UID     string `json:"uid"`
	Email   string `json:"email"`
	Name    string `json:"name,omitempty"`
	Version int64  `json:"ver"` // must match the operator's token version
	jwt.RegisteredClaims
}

// TokenManager issues and validates HS256 session tokens.
type TokenManager struct {
	secret   []byte
	issuer   string
	duration time.Duration
}

func NewTokenManager(secret, issuer string, duration time.Duration) *TokenManager {
	if duration <= 0 {
		duration = 12 * time.Hour
	}
	return &TokenManager{secret: []byte(secret), issuer: issuer, duration: duration}
}

func (m *TokenManager) Secret() []byte {
	return m.secret
}

// Generate returns a signed token for user and its expiry time.
func (m *TokenManager) Generate(user User) (string, time.Time, error) {
	now := time.Now()
	expires := now.Add(m.duration)
	claims := Claims{
		UID:     user.UID,
		Email:   user.Email,
		Name:    user.DisplayName,
		Version: user.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   user.UID,
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "sign token")
	}
	return signed, expires, nil
}

func (m *TokenManager) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	}, jwt.WithIssuer(m.issuer))
	if err != nil {
		return nil, errors.Wrap(ErrInvalidToken, err.Error())
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
