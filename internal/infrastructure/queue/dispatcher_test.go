package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/pcp-logistica/tracking-portal/internal/core/domain"
)

type memRepo struct {
	mu     sync.Mutex
	events []domain.AuditEvent
	fail   bool
}

func (m *memRepo) InsertEvent(_ context.Context, e *domain.AuditEvent) error {
	if m.fail {
		return errors.New("mongo down")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, *e)
	return nil
}

func (m *memRepo) ListRecent(_ context.Context, _ int) ([]domain.AuditEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.AuditEvent(nil), m.events...), nil
}

func (m *memRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}

func TestDispatcher_ShardIndexIsStable(t *testing.T) {
	d := NewDispatcher(4, &memRepo{}, zerolog.Nop())
	first := d.shardIndex("AWB-123")
	for i := 0; i < 10; i++ {
		if got := d.shardIndex("AWB-123"); got != first {
			t.Fatalf("shard changed: %d vs %d", got, first)
		}
	}
	if first < 0 || first >= 4 {
		t.Fatalf("shard out of range: %d", first)
	}
}

func TestDispatcher_PersistsInOrderPerSubject(t *testing.T) {
	repo := &memRepo{}
	d := NewDispatcher(2, repo, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	for i := 0; i < 20; i++ {
		d.Record(domain.AuditEvent{Action: domain.AuditRecordSaved, Subject: "row-1", Detail: string(rune('a' + i))})
	}

	deadline := time.Now().Add(2 * time.Second)
	for repo.count() < 20 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	d.Wait()

	events, _ := repo.ListRecent(context.Background(), 0)
	if len(events) != 20 {
		t.Fatalf("expected 20 events, got %d", len(events))
	}
	for i, e := range events {
		if e.Detail != string(rune('a'+i)) {
			t.Fatalf("event %d out of order: %q", i, e.Detail)
		}
		if e.Timestamp.IsZero() {
			t.Fatalf("event %d has no timestamp", i)
		}
	}
}

func TestDispatcher_DrainsOnShutdown(t *testing.T) {
	repo := &memRepo{}
	d := NewDispatcher(1, repo, zerolog.Nop())

	for i := 0; i < 5; i++ {
		d.Record(domain.AuditEvent{Action: domain.AuditUserSaved, Subject: "u1"})
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.Start(ctx)
	d.Wait()

	if repo.count() != 5 {
		t.Fatalf("expected queued events to be drained, got %d", repo.count())
	}
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	repo := &memRepo{}
	d := NewDispatcher(1, repo, zerolog.Nop())

	// Workers not started: the buffer fills and further events are dropped.
	for i := 0; i < channelBuffer+10; i++ {
		d.Record(domain.AuditEvent{Subject: "x"})
	}
	if got := len(d.workers[0]); got != channelBuffer {
		t.Fatalf("expected full buffer of %d, got %d", channelBuffer, got)
	}
}

func TestDispatcher_FailedInsertDoesNotStopWorker(t *testing.T) {
	repo := &memRepo{fail: true}
	d := NewDispatcher(1, repo, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	d.Record(domain.AuditEvent{Subject: "x"})
	d.Record(domain.AuditEvent{Subject: "x"})
	time.Sleep(20 * time.Millisecond)
	cancel()
	d.Wait()

	if repo.count() != 0 {
		t.Fatalf("expected nothing stored, got %d", repo.count())
	}
}
