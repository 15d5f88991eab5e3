package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/NEO-KLIZZERX/Anon-Messages-Bot/jwt"
)

var tracer = otel.Tracer("service")

// TokenSubject is the only subject accepted on relay tokens.
const TokenSubject = "anonrelay"

type AuthService struct {
	secret   []byte
	audience string
	now      func() time.Time
}

func NewAuthService(secret, audience string) *AuthService {
	return &AuthService{
		secret:   []byte(secret),
		audience: audience,
		now:      time.Now,
	}
}

// Enabled reports whether a signing secret is configured.
func (s *AuthService) Enabled() bool {
	return len(s.secret) > 0
}

type AuthResult struct {
	Issuer string
}

func (s *AuthService) AuthJwt(ctx context.Context, token string) (*AuthResult, error) {
	ctx, span := tracer.Start(ctx, "Auth.Service.AuthJwt")
	defer span.End()

	_, claims, err := jwt.Validate(token, s.secret, s.now())
	if err != nil {
		span.RecordError(errors.Wrap(err, "jwt validation failed"))
		return nil, err
	}

	if s.audience != "" && claims.Audience != s.audience {
		err := fmt.Errorf("jwt audience mismatch: expected %s, got %s", s.audience, claims.Audience)
		span.RecordError(err)
		return nil, err
	}

	if claims.Subject != TokenSubject {
		err := fmt.Errorf("invalid subject")
		span.RecordError(err)
		return nil, err
	}

	return &AuthResult{Issuer: claims.Issuer}, nil
}

// IssueToken signs a token for a transport gateway named issuer.
func (s *AuthService) IssueToken(issuer string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := jwt.Claims{
		Issuer:   issuer,
		Subject:  TokenSubject,
		Audience: s.audience,
		IssuedAt: strconv.FormatInt(now.Unix(), 10),
	}
	if ttl > 0 {
		claims.ExpirationTime = strconv.FormatInt(now.Add(ttl).Unix(), 10)
	}
	return jwt.Create(claims, s.secret)
}
