package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/webmaek/aventus/models"
)

// TokenTTL is the lifetime of an access token and of the cookie that carries it.
const TokenTTL = 30 * 24 * time.Hour

var ErrEmptySecret = errors.New("jwt secret must not be empty")

// Identity is the authenticated caller, as decoded from a verified token.
type Identity struct {
	ID     uuid.UUID   `json:"id"`
	Name   string      `json:"name"`
	Email  string      `json:"email"`
	Avatar string      `json:"avatar"`
	Role   models.Role `json:"role"`
}

// IsAdmin reports whether the identity carries the ADMIN role.
func (i Identity) IsAdmin() bool {
	return i.Role == models.RoleAdmin
}

// IdentityOf builds the token identity of a stored user.
func IdentityOf(u *models.User) Identity {
	return Identity{ID: u.ID, Name: u.Name, Email: u.Email, Avatar: u.Avatar, Role: u.Role}
}

type Claims struct {
	Identity
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 access tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string) (*TokenIssuer, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	return &TokenIssuer{secret: []byte(secret), ttl: TokenTTL, now: time.Now}, nil
}

// Issue signs a token for id that expires after the issuer's TTL.
func (ti *TokenIssuer) Issue(id Identity) (string, error) {
	now := ti.now()
	claims := Claims{
		Identity: id,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ti.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(ti.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, algorithm and expiry and returns the identity in the token.
func (ti *TokenIssuer) Verify(raw string) (Identity, error) {
	claims := &Claims{}
	keyFunc := func(*jwt.Token) (any, error) { return ti.secret, nil }
	_, err := jwt.ParseWithClaims(raw, claims, keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(ti.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return Identity{}, err
	}
	if claims.Identity.ID == uuid.Nil {
		return Identity{}, errors.New("token has no subject id")
	}
	return claims.Identity, nil
}
