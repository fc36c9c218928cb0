package session

import (
	"context"
	"errors"
	"fmt"
	"github.com/golang-jwt/jwt/v5"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"go.uber.org/zap"
	"strings"
	"time"
)

type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Probe verifies HS256 session tokens issued by the identity provider.
type Probe struct {
	secret []byte
	issuer string
	logger *zap.Logger
	now    func() time.Time
}

func NewProbe(secret, issuer string, logger *zap.Logger) *Probe {
	return &Probe{
		secret: []byte(secret),
		issuer: issuer,
		logger: logger,
		now:    time.Now,
	}
}

var _ port.SessionProbe = (*Probe)(nil)

// Resolve never fails: an unusable token simply yields a guest session.
func (p *Probe) Resolve(_ context.Context, token string) (domain.Identity, bool) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.Identity{}, false
	}

	claims, err := p.parse(token)
	if err != nil {
		p.logger.Debug("session token rejected", zap.Error(err))
		return domain.Identity{}, false
	}

	return domain.Identity{
		Email:    claims.Email,
		FullName: claims.Name,
	}, true
}

// Issue signs a token for identity valid for ttl.
func (p *Probe) Issue(identity domain.Identity, ttl time.Duration) (string, error) {
	if identity.Email == "" {
		return "", fmt.Errorf("email is empty")
	}

	now := p.now()
	claims := Claims{
		Email: identity.Email,
		Name:  identity.FullName,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    p.issuer,
			Subject:   identity.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("token.SignedString: %w", err)
	}

	return signed, nil
}

func (p *Probe) parse(token string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.now),
	}
	if p.issuer != "" {
		opts = append(opts, jwt.WithIssuer(p.issuer))
	}

	tok, err := jwt.ParseWithClaims(token, &Claims{}, func(*jwt.Token) (any, error) {
		return p.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("jwt.ParseWithClaims: %w", err)
	}

	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Email == "" {
		return nil, errors.New("email claim is empty")
	}

	return claims, nil
}
