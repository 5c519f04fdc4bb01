package managers

import (
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"microblog/internal/metrics"
)

type fakeMailManager struct {
	mu      sync.Mutex
	sent    []string
	fail    bool
	release chan struct{}
}

func (f *fakeMailManager) SendPasswordResetMail(email, _, _ string) error {
	if f.release != nil {
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("mailgun unavailable")
	}
	f.sent = append(f.sent, email)
	return nil
}

func (f *fakeMailManager) recipients() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

func TestAsyncMailManagerDeliversOnClose(t *testing.T) {
	inner := &fakeMailManager{}
	m := metrics.InitMetrics(prometheus.NewRegistry())
	am := NewAsyncMailManager(inner, 2, 10, m)

	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		require.NoError(t, am.SendPasswordResetMail(email, "user", "http://localhost/reset_password/token"))
	}
	am.Close()

	assert.ElementsMatch(t, []string{"a@example.com", "b@example.com", "c@example.com"}, inner.recipients())
	assert.Equal(t, 3.0, testutil.ToFloat64(m.MailsSent.WithLabelValues("sent")))

	assert.Error(t, am.SendPasswordResetMail("d@example.com", "user", "link"), "closed manager accepts no mail")
	am.Close()
}

func TestAsyncMailManagerDropsWhenQueueIsFull(t *testing.T) {
	inner := &fakeMailManager{release: make(chan struct{})}
	am := NewAsyncMailManager(inner, 1, 0, nil)

	// The worker may or may not have picked up the first mail yet, so at most one of two is accepted
	// before the worker is released.
	var accepted, dropped int
	for i := 0; i < 2; i++ {
		err := am.SendPasswordResetMail("a@example.com", "user", "link")
		switch {
		case err == nil:
			accepted++
		case errors.Is(err, ErrMailQueueFull):
			dropped++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.LessOrEqual(t, accepted, 1)
	assert.GreaterOrEqual(t, dropped, 1)

	close(inner.release)
	am.Close()
	assert.Len(t, inner.recipients(), accepted)
}

func TestAsyncMailManagerCountsFailures(t *testing.T) {
	inner := &fakeMailManager{fail: true}
	m := metrics.InitMetrics(prometheus.NewRegistry())
	am := NewAsyncMailManager(inner, 1, 4, m)

	require.NoError(t, am.SendPasswordResetMail("a@example.com", "user", "link"))
	am.Close()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.MailsSent.WithLabelValues("failed")))
	assert.Empty(t, inner.recipients())
}
