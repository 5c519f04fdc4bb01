package managers

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"microblog/internal/schemas"
)

func newTestUser(t *testing.T) *schemas.User {
	t.Helper()
	user := &schemas.User{ID: uuid.New(), Username: "susan", Email: "susan@example.com"}
	require.NoError(t, user.SetPassword("cat"))
	return user
}

func newTestJWTManager(t *testing.T, secret string) JWTMgr {
	t.Helper()
	jm, err := NewJWTManager(secret)
	require.NoError(t, err)
	return jm
}

func TestResetTokenRoundTrip(t *testing.T) {
	jm := newTestJWTManager(t, "secret")
	user := newTestUser(t)

	token, err := jm.IssueResetToken(user, 10*time.Minute)
	require.NoError(t, err)

	verified, err := jm.VerifyResetToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, verified.UserID)
	assert.Equal(t, user.PasswordFingerprint(), verified.Fingerprint)
}

func TestResetTokenExpiry(t *testing.T) {
	jm := newTestJWTManager(t, "secret")
	user := newTestUser(t)

	for _, ttl := range []time.Duration{0, -time.Second, -time.Hour} {
		token, err := jm.IssueResetToken(user, ttl)
		require.NoError(t, err)

		_, err = jm.VerifyResetToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken, "ttl %s must be expired", ttl)
	}
}

func TestResetTokenRejectsTampering(t *testing.T) {
	jm := newTestJWTManager(t, "secret")
	user := newTestUser(t)

	token, err := jm.IssueResetToken(user, time.Minute)
	require.NoError(t, err)

	t.Run("OtherSecret", func(t *testing.T) {
		other := newTestJWTManager(t, "another secret")
		_, err := other.VerifyResetToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Garbage", func(t *testing.T) {
		for _, garbage := range []string{"", "abc", token + "x", "a.b.c"} {
			_, err := jm.VerifyResetToken(garbage)
			assert.ErrorIs(t, err, ErrInvalidToken)
		}
	})

	t.Run("WrongAudience", func(t *testing.T) {
		claims := jm.GenerateClaims(user.ID.String(), "login", "", time.Minute)
		other, err := jm.GenerateJWT(claims)
		require.NoError(t, err)

		_, err = jm.VerifyResetToken(other)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("MalformedSubject", func(t *testing.T) {
		claims := jm.GenerateClaims("not-a-uuid", ResetPasswordScope, "", time.Minute)
		other, err := jm.GenerateJWT(claims)
		require.NoError(t, err)

		_, err = jm.VerifyResetToken(other)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("MissingExpiry", func(t *testing.T) {
		claims := &jwt.RegisteredClaims{
			Issuer:   tokenIssuer,
			Subject:  user.ID.String(),
			Audience: jwt.ClaimStrings{ResetPasswordScope},
		}
		other, err := jm.GenerateJWT(claims)
		require.NoError(t, err)

		_, err = jm.VerifyResetToken(other)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("NoneAlgorithm", func(t *testing.T) {
		claims := jm.GenerateClaims(user.ID.String(), ResetPasswordScope, "", time.Minute)
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = jm.VerifyResetToken(unsigned)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestResetTokenFingerprintChangesWithPassword(t *testing.T) {
	jm := newTestJWTManager(t, "secret")
	user := newTestUser(t)

	token, err := jm.IssueResetToken(user, time.Minute)
	require.NoError(t, err)
	require.NoError(t, user.SetPassword("dog"))

	verified, err := jm.VerifyResetToken(token)
	require.NoError(t, err)
	assert.NotEqual(t, user.PasswordFingerprint(), verified.Fingerprint)
}

func TestNewJWTManagerRequiresSecret(t *testing.T) {
	_, err := NewJWTManager("")
	assert.Error(t, err)
}
