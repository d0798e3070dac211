package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jwalitptl/agenda-api/internal/model"
)

// TokenVerifier turns a bearer token into a session.
type TokenVerifier interface {
	VerifyToken(token string) (model.Session, error)
}

// JWTService verifies HS256 session tokens issued by the auth backend with a
// shared secret.
type JWTService struct {
	secret []byte
	issuer string
}

func NewJWTService(secret, issuer string) *JWTService {
	return &JWTService{secret: []byte(secret), issuer: issuer}
}

func (s *JWTService) VerifyToken(token string) (model.Session, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	var claims model.SessionClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		return model.Session{}, fmt.Errorf("invalid token: %w", err)
	}
	return claims.Session()
}

// SignToken signs claims with the shared secret. An empty issuer is filled in.
func (s *JWTService) SignToken(claims model.SessionClaims) (string, error) {
	if claims.Issuer == "" {
		claims.Issuer = s.issuer
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}
