package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/99minutos/auth-system/internal/core/domain"
)

var discardLogger = zerolog.Nop()

type recordingMailer struct {
	mu    sync.Mutex
	sent  []domain.VerificationMessage
	err   error
	block chan struct{}
}

func (m *recordingMailer) SendVerification(_ context.Context, msg domain.VerificationMessage) error {
	if m.block != nil {
		<-m.block
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return m.err
}

func (m *recordingMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func TestMailDispatcher_DeliversAndDrainsOnStop(t *testing.T) {
	transport := &recordingMailer{}
	d := NewMailDispatcher(3, transport, discardLogger)
	d.Start(context.Background())

	for i := 0; i < 20; i++ {
		msg := domain.VerificationMessage{UserID: fmt.Sprintf("user-%d", i), To: "a@x.com"}
		if err := d.SendVerification(context.Background(), msg); err != nil {
			t.Fatalf("SendVerification returned error: %v", err)
		}
	}
	d.Stop()

	if got := transport.count(); got != 20 {
		t.Fatalf("expected 20 deliveries, got %d", got)
	}
	if err := d.SendVerification(context.Background(), domain.VerificationMessage{UserID: "late"}); !errors.Is(err, ErrStopped) {
		t.Fatalf("expected ErrStopped after Stop, got %v", err)
	}
	d.Stop()
}

func TestMailDispatcher_PreservesPerUserOrder(t *testing.T) {
	transport := &recordingMailer{}
	d := NewMailDispatcher(4, transport, discardLogger)
	d.Start(context.Background())

	for i := 0; i < 10; i++ {
		_ = d.SendVerification(context.Background(), domain.VerificationMessage{UserID: "user-1", Token: fmt.Sprint(i)})
	}
	d.Stop()

	for i, msg := range transport.sent {
		if msg.Token != fmt.Sprint(i) {
			t.Fatalf("expected token %d at position %d, got %s", i, i, msg.Token)
		}
	}
}

func TestMailDispatcher_FullQueueDoesNotBlock(t *testing.T) {
	transport := &recordingMailer{block: make(chan struct{})}
	d := NewMailDispatcher(1, transport, discardLogger)
	d.Start(context.Background())

	var full error
	// One message is held by the blocked worker, channelBuffer more fill the buffer.
	for i := 0; i < channelBuffer+2; i++ {
		if err := d.SendVerification(context.Background(), domain.VerificationMessage{UserID: "user-1"}); err != nil {
			full = err
			break
		}
	}
	if !errors.Is(full, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", full)
	}

	close(transport.block)
	d.Stop()
}

func TestMailDispatcher_TransportErrorIsLogged(t *testing.T) {
	transport := &recordingMailer{err: errors.New("smtp down")}
	d := NewMailDispatcher(1, transport, discardLogger)
	d.Start(context.Background())

	if err := d.SendVerification(context.Background(), domain.VerificationMessage{UserID: "user-1"}); err != nil {
		t.Fatalf("transport errors must not surface at enqueue time, got %v", err)
	}
	d.Stop()

	if transport.count() != 1 {
		t.Fatalf("expected one delivery attempt")
	}
}
