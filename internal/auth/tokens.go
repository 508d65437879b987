// Package auth provides the opaque token and password primitives consumed by
// the handlers and the invitation lifecycle: HMAC-signed JWTs with a default
// seven-day validity, and bcrypt password hashing.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTTL is the validity window applied when none is configured.
const DefaultTTL = 7 * 24 * time.Hour

var (
	// ErrInvalidToken covers bad signatures, expired tokens, and payloads
	// missing required fields.
	ErrInvalidToken = errors.New("invalid or expired token")
)

// AccessClaims is the payload of a user access token.
type AccessClaims struct {
	UserID uuid.UUID
	Email  string
}

// InvitationClaims is the payload of an invitation token.
type InvitationClaims struct {
	Email     string
	ProjectID uuid.UUID
}

// Tokens signs and verifies the two token shapes the service uses.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokens builds a token service around a shared HMAC secret.
func NewTokens(secret string, ttl time.Duration) *Tokens {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

type accessJWT struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

type invitationJWT struct {
	Email     string `json:"email"`
	ProjectID string `json:"projectId"`
	jwt.RegisteredClaims
}

// SignAccess issues an access token carrying the user's id and email.
func (t *Tokens) SignAccess(userID uuid.UUID, email string) (string, error) {
	now := t.now()
	claims := accessJWT{
		UserID: userID.String(),
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// VerifyAccess validates signature and expiry and returns the claims.
func (t *Tokens) VerifyAccess(token string) (*AccessClaims, error) {
	var claims accessJWT
	if err := t.parse(token, &claims); err != nil {
		return nil, err
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil || claims.Email == "" {
		return nil, ErrInvalidToken
	}
	return &AccessClaims{UserID: userID, Email: claims.Email}, nil
}

// SignInvitation issues an invitation token binding an email to a project.
func (t *Tokens) SignInvitation(email string, projectID uuid.UUID) (string, error) {
	now := t.now()
	claims := invitationJWT{
		Email:     email,
		ProjectID: projectID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// VerifyInvitation validates signature and expiry and returns the claims.
func (t *Tokens) VerifyInvitation(token string) (*InvitationClaims, error) {
	var claims invitationJWT
	if err := t.parse(token, &claims); err != nil {
		return nil, err
	}

	projectID, err := uuid.Parse(claims.ProjectID)
	if err != nil || claims.Email == "" {
		return nil, ErrInvalidToken
	}
	return &InvitationClaims{Email: claims.Email, ProjectID: projectID}, nil
}

func (t *Tokens) parse(token string, claims jwt.Claims) error {
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(t.now))
	if err != nil || !parsed.Valid {
		return ErrInvalidToken
	}
	return nil
}
