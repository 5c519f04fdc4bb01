package mocks

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/mock"
	"microblog/internal/managers"
	"microblog/internal/schemas"
)

// MockJwtManager is a mock of the JWTManager.
type MockJwtManager struct {
	mock.Mock
}

func (m *MockJwtManager) GenerateClaims(userId, audience, tokenId string, ttl time.Duration) jwt.Claims {
	args := m.Called(userId, audience, tokenId, ttl)
	return args.Get(0).(jwt.Claims)
}

func (m *MockJwtManager) GenerateJWT(claims jwt.Claims) (string, error) {
	args := m.Called(claims)
	return args.String(0), args.Error(1)
}

func (m *MockJwtManager) ValidateJWT(tokenString, audience string) (*jwt.RegisteredClaims, error) {
	args := m.Called(tokenString, audience)
	claims, _ := args.Get(0).(*jwt.RegisteredClaims)
	return claims, args.Error(1)
}

// IssueResetToken returns the mocked token for the user.
func (m *MockJwtManager) IssueResetToken(user *schemas.User, ttl time.Duration) (string, error) {
	args := m.Called(user, ttl)
	return args.String(0), args.Error(1)
}

func (m *MockJwtManager) VerifyResetToken(tokenString string) (*managers.ResetToken, error) {
	args := m.Called(tokenString)
	token, _ := args.Get(0).(*managers.ResetToken)
	return token, args.Error(1)
}
