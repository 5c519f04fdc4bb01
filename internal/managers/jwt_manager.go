package managers

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"microblog/internal/schemas"
)

const (
	tokenIssuer        = "microblog"
	ResetPasswordScope = "reset_password"
)

// ErrInvalidToken is returned for every token that fails verification, whatever the cause.
var ErrInvalidToken = errors.New("invalid or expired token")

type JWTMgr interface {
	GenerateClaims(userId, audience, tokenId string, ttl time.Duration) jwt.Claims
	GenerateJWT(claims jwt.Claims) (string, error)
	ValidateJWT(tokenString, audience string) (*jwt.RegisteredClaims, error)
	IssueResetToken(user *schemas.User, ttl time.Duration) (string, error)
	VerifyResetToken(tokenString string) (*ResetToken, error)
}

// ResetToken is the verified content of a password reset token. Fingerprint identifies the password hash
// the token was issued against, so a token stops working once the password changed.
type ResetToken struct {
	UserID      uuid.UUID
	Fingerprint string
}

// JWTManager signs and validates HS256 tokens with the application secret.
type JWTManager struct {
	secret []byte
}

// NewJWTManager creates a new JWTManager signing with secret.
func NewJWTManager(secret string) (JWTMgr, error) {
	if secret == "" {
		return nil, errors.New("jwt secret must not be empty")
	}
	return &JWTManager{secret: []byte(secret)}, nil
}

// GenerateClaims generates the standard JWT claims.
func (jm *JWTManager) GenerateClaims(userId, audience, tokenId string, ttl time.Duration) jwt.Claims {
	now := time.Now()
	return &jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   userId,
		Audience:  jwt.ClaimStrings{audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		ID:        tokenId,
	}
}

// GenerateJWT generates a new JWT with the given claims.
func (jm *JWTManager) GenerateJWT(claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jm.secret)
}

// ValidateJWT validates the given JWT for audience and returns its claims.
// Tokens without an expiry or signed with anything but HS256 are rejected.
func (jm *JWTManager) ValidateJWT(tokenString, audience string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return jm.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(audience),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, jwt.ErrSignatureInvalid
	}

	return claims, nil
}

// IssueResetToken creates a token that allows user to reset the password once within ttl.
func (jm *JWTManager) IssueResetToken(user *schemas.User, ttl time.Duration) (string, error) {
	claims := jm.GenerateClaims(user.ID.String(), ResetPasswordScope, user.PasswordFingerprint(), ttl)
	return jm.GenerateJWT(claims)
}

// VerifyResetToken returns the user a reset token was issued for. All failures yield ErrInvalidToken.
func (jm *JWTManager) VerifyResetToken(tokenString string) (*ResetToken, error) {
	claims, err := jm.ValidateJWT(tokenString, ResetPasswordScope)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidToken, err.Error())
	}

	userId, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidToken, "malformed subject")
	}

	return &ResetToken{UserID: userId, Fingerprint: claims.ID}, nil
}
