package auth

import (
	"errors"
	"fmt"
	"time"

	"churchadmin/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

const (
	purposeAccess = "access"
	purposeReset  = "password_reset"
)

type jwtClaims struct {
	jwt.RegisteredClaims
	Email   string   `json:"email"`
	Roles   []string `json:"roles,omitempty"`
	Purpose string   `json:"purpose"`
}

// JWT signs and verifies HS256 tokens. Access and password reset tokens carry
// different purposes, so one cannot be used in place of the other.
type JWT struct {
	secret []byte
	now    func() time.Time
}

// NewJWT returns a token issuer and verifier using the given secret.
func NewJWT(secret string) *JWT {
	return &JWT{secret: []byte(secret), now: time.Now}
}

var (
	_ domain.TokenIssuer   = (*JWT)(nil)
	_ domain.TokenVerifier = (*JWT)(nil)
)

func (j *JWT) Issue(userID, email string, roles []string, expiry time.Duration) (string, error) {
	return j.sign(userID, email, roles, purposeAccess, expiry)
}

func (j *JWT) IssueReset(userID, email string, expiry time.Duration) (string, error) {
	return j.sign(userID, email, nil, purposeReset, expiry)
}

func (j *JWT) sign(userID, email string, roles []string, purpose string, expiry time.Duration) (string, error) {
	now := j.now()
	claims := jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
		Email:   email,
		Roles:   roles,
		Purpose: purpose,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

func (j *JWT) Verify(token string) (string, error) {
	return j.verify(token, purposeAccess)
}

func (j *JWT) VerifyReset(token string) (string, error) {
	return j.verify(token, purposeReset)
}

func (j *JWT) verify(token, purpose string) (string, error) {
	claims := &jwtClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return j.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil || !parsed.Valid {
		return "", errors.Join(domain.ErrInvalidToken, err)
	}
	if claims.Purpose != purpose || claims.Subject == "" {
		return "", domain.ErrInvalidToken
	}
	return claims.Subject, nil
}
