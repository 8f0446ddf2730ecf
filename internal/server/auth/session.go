// Package auth mints the session identifiers handed out after a successful
// proof.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/zkpauth/internal/common"
)

// Session formats.
const (
	FormatOpaque = "opaque"
	FormatJWT    = "jwt"
)

// Issuer mints a new session identifier for a user. Callers must treat the
// result as opaque.
type Issuer interface {
	Issue(userID string) (string, error)
}

// OpaqueIssuer returns random hex tokens.
type OpaqueIssuer struct {
	src common.Source
}

func NewOpaqueIssuer(src common.Source) *OpaqueIssuer {
	return &OpaqueIssuer{src: src}
}

func (i *OpaqueIssuer) Issue(string) (string, error) {
	return i.src.Token()
}

// JWTIssuer returns HS256-signed tokens whose jti comes from the random source,
// so two sessions for the same user never collide.
type JWTIssuer struct {
	secret []byte
	ttl    time.Duration
	src    common.Source
	now    func() time.Time
}

func NewJWTIssuer(secret []byte, ttl time.Duration, src common.Source) (*JWTIssuer, error) {
	if len(secret) == 0 {
		return nil, errors.New("jwt session format requires a secret")
	}
	return &JWTIssuer{secret: secret, ttl: ttl, src: src, now: time.Now}, nil
}

func (i *JWTIssuer) Issue(userID string) (string, error) {
	jti, err := i.src.Token()
	if err != nil {
		return "", err
	}
	return GenerateToken(userID, jti, i.secret, i.now(), i.ttl)
}

// Verify checks a session minted by Issue and returns its user id. Failures
// wrap common.ErrorUnauthenticated.
func (i *JWTIssuer) Verify(session string) (string, error) {
	return GetUserIDFromToken(session, i.secret)
}

// NewIssuer builds the Issuer for the configured format.
func NewIssuer(format string, secret []byte, ttl time.Duration, src common.Source) (Issuer, error) {
	switch format {
	case "", FormatOpaque:
		return NewOpaqueIssuer(src), nil
	case FormatJWT:
		return NewJWTIssuer(secret, ttl, src)
	default:
		return nil, fmt.Errorf("unknown session format %q", format)
	}
}
