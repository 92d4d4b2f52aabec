// Package auth issues and validates the HS256 access tokens the salon apps
// present to every service.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/choiyeonggeon/DangDangSalon-sub000/pkg/middleware"
)

// Config is embedded by each service config under the JWT_ prefix.
type Config struct {
	Secret      string        `env:"SECRET,required"`
	Issuer      string        `env:"ISSUER" envDefault:"dangdang-auth"`
	AccessTTL   time.Duration `env:"ACCESS_TTL" envDefault:"1h"`
	ClockLeeway time.Duration `env:"CLOCK_LEEWAY" envDefault:"30s"`
}

type tokenClaims struct {
	Name string `json:"name,omitempty"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// JWTManager signs and verifies access tokens with a shared secret.
type JWTManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	parser *jwt.Parser
	now    func() time.Time
}

func NewJWTManager(cfg Config) *JWTManager {
	m := &JWTManager{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		ttl:    cfg.AccessTTL,
		now:    time.Now,
	}
	m.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithLeeway(cfg.ClockLeeway),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return m.now() }),
	)
	return m
}

// GenerateToken signs an access token for the given principal.
func (m *JWTManager) GenerateToken(userID, name, role string) (string, error) {
	if userID == "" {
		return "", errors.New("user id is required")
	}
	now := m.now().UTC()
	claims := &tokenClaims{
		Name: name,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

// Validate implements middleware.TokenValidator.
func (m *JWTManager) Validate(tokenString string) (*middleware.Claims, error) {
	var claims tokenClaims
	token, err := m.parser.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse access token: %w", err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, errors.New("invalid access token claims")
	}

	switch claims.Role {
	case middleware.RoleCustomer, middleware.RoleOwner, middleware.RoleAdmin:
	default:
		return nil, fmt.Errorf("unknown role %q", claims.Role)
	}

	return &middleware.Claims{
		UserID:      claims.Subject,
		DisplayName: claims.Name,
		Role:        claims.Role,
	}, nil
}
