package managers

import (
	"sync"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"microblog/internal/metrics"
)

// ErrMailQueueFull is returned when a mail cannot be queued because every worker is busy and the queue is full.
var ErrMailQueueFull = errors.New("mail queue is full")

type resetMail struct {
	email    string
	username string
	resetURL string
}

// AsyncMailManager hands mails to a fixed pool of workers so that request handlers never wait on delivery.
type AsyncMailManager struct {
	inner   MailMgr
	queue   chan resetMail
	metrics *metrics.Metrics

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewAsyncMailManager starts workers goroutines that deliver through inner. m may be nil.
func NewAsyncMailManager(inner MailMgr, workers, queueSize int, m *metrics.Metrics) *AsyncMailManager {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}

	am := &AsyncMailManager{
		inner:   inner,
		queue:   make(chan resetMail, queueSize),
		metrics: m,
	}
	for i := 0; i < workers; i++ {
		am.wg.Add(1)
		go am.work()
	}
	log.Infof("Started %d mail workers", workers)
	return am
}

func (am *AsyncMailManager) work() {
	defer am.wg.Done()
	for mail := range am.queue {
		if err := am.inner.SendPasswordResetMail(mail.email, mail.username, mail.resetURL); err != nil {
			log.WithError(err).WithField("to", mail.email).Error("Error delivering password reset mail")
			am.count("failed")
			continue
		}
		am.count("sent")
	}
}

func (am *AsyncMailManager) count(outcome string) {
	if am.metrics != nil {
		am.metrics.MailsSent.WithLabelValues(outcome).Inc()
	}
}

// SendPasswordResetMail queues the mail and returns immediately. A full queue drops the mail.
func (am *AsyncMailManager) SendPasswordResetMail(email, username, resetURL string) error {
	am.mu.RLock()
	defer am.mu.RUnlock()
	if am.closed {
		return errors.New("mail manager is closed")
	}

	select {
	case am.queue <- resetMail{email: email, username: username, resetURL: resetURL}:
		return nil
	default:
		log.WithField("to", email).Warn("Dropping password reset mail, queue is full")
		am.count("dropped")
		return ErrMailQueueFull
	}
}

// Close stops accepting mails and waits until the queued ones are delivered.
func (am *AsyncMailManager) Close() {
	am.mu.Lock()
	if am.closed {
		am.mu.Unlock()
		return
	}
	am.closed = true
	close(am.queue)
	am.mu.Unlock()

	am.wg.Wait()
	log.Info("Mail workers stopped")
}
