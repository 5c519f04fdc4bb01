package mocks

import (
	"sync"

	"github.com/stretchr/testify/mock"
)

type MockMailManager struct {
	mock.Mock
}

func (m *MockMailManager) SendPasswordResetMail(email, username, resetURL string) error {
	args := m.Called(email, username, resetURL)
	return args.Error(0)
}

// RecordingMailManager remembers every reset link it was asked to deliver.
type RecordingMailManager struct {
	mu    sync.Mutex
	Links map[string]string
}

func NewRecordingMailManager() *RecordingMailManager {
	return &RecordingMailManager{Links: map[string]string{}}
}

func (r *RecordingMailManager) SendPasswordResetMail(email, _, resetURL string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Links[email] = resetURL
	return nil
}

// Link returns the last reset link sent to email.
func (r *RecordingMailManager) Link(email string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	link, ok := r.Links[email]
	return link, ok
}
