package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockTranslationManager struct {
	mock.Mock
}

func (m *MockTranslationManager) Translate(ctx context.Context, text, sourceLanguage, destLanguage string) (string, error) {
	args := m.Called(ctx, text, sourceLanguage, destLanguage)
	return args.String(0), args.Error(1)
}
