package security

import (
	"errors"
	"time"

	"carshare-escrow/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

const accessAudience = "carshare-api"

// PrincipalClaims carries the caller principal as the token subject.
type PrincipalClaims struct {
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

func (c *PrincipalClaims) Principal() (domain.Principal, error) {
	return domain.ParsePrincipal(c.Subject)
}

type TokenManager interface {
	GenerateAccessToken(principal domain.Principal, roles []domain.Role) (string, error)
	ValidateToken(tokenString string) (*PrincipalClaims, error)
}

type tokenManager struct {
	secret []byte
	issuer string
	expiry time.Duration
	now    func() time.Time
}

func NewTokenManager(secret, issuer string, expiry time.Duration) TokenManager {
	return &tokenManager{
		secret: []byte(secret),
		issuer: issuer,
		expiry: expiry,
		now:    time.Now,
	}
}

func (m *tokenManager) GenerateAccessToken(principal domain.Principal, roles []domain.Role) (string, error) {
	if principal.IsZero() {
		return "", domain.ErrInvalidPrincipal
	}
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, string(r))
	}
	now := m.now()
	claims := PrincipalClaims{
		Roles: names,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principal.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    m.issuer,
			Audience:  jwt.ClaimStrings{accessAudience},
			ID:        uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *tokenManager) ValidateToken(tokenString string) (*PrincipalClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &PrincipalClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	}, jwt.WithIssuer(m.issuer), jwt.WithAudience(accessAudience), jwt.WithTimeFunc(m.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*PrincipalClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if _, err := claims.Principal(); err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
