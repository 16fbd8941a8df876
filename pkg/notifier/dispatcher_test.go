package notifier

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingSender struct {
	mu       sync.Mutex
	failures int
	calls    int
	sent     []Message
	block    chan struct{}
	closed   bool
}

func (s *recordingSender) Send(ctx context.Context, msg Message) error {
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.failures > 0 {
		s.failures--
		return errors.New("smtp unavailable")
	}
	s.sent = append(s.sent, msg)
	return nil
}

func (s *recordingSender) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

func (s *recordingSender) snapshot() (int, []Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls, append([]Message(nil), s.sent...)
}

func fastOptions() DispatcherOptions {
	return DispatcherOptions{
		Workers:    2,
		QueueSize:  8,
		MaxRetries: 3,
		Timeout:    time.Second,
		BaseDelay:  time.Millisecond,
		MaxDelay:   5 * time.Millisecond,
	}
}

func TestDispatcherDelivers(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(sender, zap.NewNop(), fastOptions())
	d.Start()

	msg := NewMessage(KindOTP, "jane@example.com", "Your code", "<p>123456</p>")
	require.NoError(t, d.Enqueue(msg))
	require.NoError(t, d.Close(context.Background()))

	_, sent := sender.snapshot()
	require.Len(t, sent, 1)
	assert.Equal(t, msg.ID, sent[0].ID)
	assert.True(t, sender.closed)
	assert.Equal(t, Stats{Enqueued: 1, Sent: 1}, d.Stats())
}

func TestDispatcherRetries(t *testing.T) {
	sender := &recordingSender{failures: 2}
	d := NewDispatcher(sender, zap.NewNop(), fastOptions())
	d.Start()

	require.NoError(t, d.Enqueue(NewMessage(KindOTP, "jane@example.com", "s", "b")))
	require.NoError(t, d.Close(context.Background()))

	calls, sent := sender.snapshot()
	assert.Equal(t, 3, calls)
	assert.Len(t, sent, 1)
	assert.Equal(t, int64(1), d.Stats().Sent)
}

func TestDispatcherGivesUp(t *testing.T) {
	sender := &recordingSender{failures: 100}
	d := NewDispatcher(sender, zap.NewNop(), fastOptions())
	d.Start()

	require.NoError(t, d.Enqueue(NewMessage(KindOTP, "jane@example.com", "s", "b")))
	require.NoError(t, d.Close(context.Background()))

	calls, sent := sender.snapshot()
	assert.Equal(t, 4, calls, "first attempt plus three retries")
	assert.Empty(t, sent)
	assert.Equal(t, int64(1), d.Stats().Failed)
}

func TestDispatcherQueueFull(t *testing.T) {
	sender := &recordingSender{}
	opts := fastOptions()
	opts.QueueSize = 1
	// workers are not started so the queue cannot drain
	d := NewDispatcher(sender, zap.NewNop(), opts)

	require.NoError(t, d.Enqueue(NewMessage(KindOTP, "a@example.com", "s", "b")))
	assert.ErrorIs(t, d.Enqueue(NewMessage(KindOTP, "b@example.com", "s", "b")), ErrQueueFull)
	assert.Equal(t, int64(1), d.Stats().Dropped)
}

func TestDispatcherClosed(t *testing.T) {
	d := NewDispatcher(&recordingSender{}, zap.NewNop(), fastOptions())
	d.Start()
	require.NoError(t, d.Close(context.Background()))
	require.NoError(t, d.Close(context.Background()))

	assert.ErrorIs(t, d.Enqueue(NewMessage(KindOTP, "a@example.com", "s", "b")), ErrDispatcherClosed)
}

func TestDispatcherCloseDeadline(t *testing.T) {
	sender := &recordingSender{block: make(chan struct{})}
	d := NewDispatcher(sender, zap.NewNop(), fastOptions())
	d.Start()

	require.NoError(t, d.Enqueue(NewMessage(KindOTP, "a@example.com", "s", "b")))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, d.Close(ctx), context.DeadlineExceeded)
}

func TestBuildMIME(t *testing.T) {
	raw := string(buildMIME("noreply@example.com", Message{ID: "abc", To: "jane@example.com", Subject: "Hi", HTMLBody: "<p>x</p>"}))
	assert.Contains(t, raw, "From: noreply@example.com\r\n")
	assert.Contains(t, raw, "To: jane@example.com\r\n")
	assert.Contains(t, raw, "Subject: Hi\r\n")
	assert.Contains(t, raw, "Content-Type: text/html")
	assert.Contains(t, raw, "\r\n\r\n<p>x</p>")
}

func TestNewSMTPSenderValidation(t *testing.T) {
	_, err := NewSMTPSender(SMTPConfig{})
	assert.ErrorIs(t, err, ErrSMTPHostPortRequired)

	_, err = NewSMTPSender(SMTPConfig{Host: "localhost", Port: 2525})
	assert.ErrorIs(t, err, ErrSMTPNoSender)

	s, err := NewSMTPSender(SMTPConfig{Host: "localhost", Port: 2525, From: "noreply@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "localhost:2525", s.addr)
}

func TestNewNSQSenderValidation(t *testing.T) {
	_, err := NewNSQSender("", "topic")
	assert.ErrorIs(t, err, ErrNSQAddrRequired)

	_, err = NewNSQSender("127.0.0.1:4150", "")
	assert.ErrorIs(t, err, ErrNSQTopicRequired)
}
