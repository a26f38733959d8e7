// Package poller drives the periodic re-fetch of the active chat channel.
package poller

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/pcp-logistica/tracking-portal/internal/api/metrics"
	"github.com/pcp-logistica/tracking-portal/internal/core/domain"
)

// DefaultInterval is the refresh period of the active channel.
const DefaultInterval = 3 * time.Second

// FetchFunc loads the full message list of a channel.
type FetchFunc func(ctx context.Context, sheet string) ([]domain.ChatMessage, error)

// Update is the message list of the active channel after one fetch.
type Update struct {
	Sheet    string               `json:"sheet"`
	Messages []domain.ChatMessage `json:"messages"`
}

// ChatLoop polls one channel at a time. Fetches run on a single goroutine, so
// they never overlap; ticks that fire during a slow fetch are dropped. Each
// fetch replaces the message list wholesale. A result that arrives after the
// loop was re-activated or stopped is discarded.
//
// onUpdate runs on the loop goroutine and must not call Activate or Stop.
type ChatLoop struct {
	fetch    FetchFunc
	interval time.Duration
	onUpdate func(Update)
	log      zerolog.Logger

	mu         sync.Mutex
	sheet      string
	generation uint64
	messages   []domain.ChatMessage
	lastRead   map[string]int
	cancel     context.CancelFunc
	done       chan struct{}
	refresh    chan struct{}
}

func NewChatLoop(fetch FetchFunc, interval time.Duration, onUpdate func(Update), log zerolog.Logger) *ChatLoop {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if onUpdate == nil {
		onUpdate = func(Update) {}
	}
	return &ChatLoop{
		fetch:    fetch,
		interval: interval,
		onUpdate: onUpdate,
		log:      log,
		lastRead: make(map[string]int),
	}
}

// Activate stops the current loop, if any, and starts polling sheet: one
// fetch right away, then one per interval.
func (l *ChatLoop) Activate(ctx context.Context, sheet string) {
	l.Stop()

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	refresh := make(chan struct{}, 1)

	l.mu.Lock()
	l.generation++
	gen := l.generation
	l.sheet = sheet
	l.messages = nil
	l.cancel = cancel
	l.done = done
	l.refresh = refresh
	l.mu.Unlock()

	l.log.Debug().Str("sheet", sheet).Msg("chat loop activated")
	go l.run(loopCtx, gen, sheet, refresh, done)
}

// Stop cancels the running loop and waits for it to exit.
func (l *ChatLoop) Stop() {
	l.mu.Lock()
	cancel, done := l.cancel, l.done
	l.cancel, l.done, l.refresh = nil, nil, nil
	l.generation++
	l.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Refresh requests an immediate fetch of the active channel. Requests made
// while one is already pending collapse into it.
func (l *ChatLoop) Refresh() {
	l.mu.Lock()
	ch := l.refresh
	l.mu.Unlock()
	if ch == nil {
		return
	}
	select {
	case ch <- struct{}{}:
	default:
	}
}

// Messages returns the active channel and a copy of its last fetched list.
func (l *ChatLoop) Messages() (string, []domain.ChatMessage) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sheet, append([]domain.ChatMessage(nil), l.messages...)
}

// MarkAsRead records that count messages of sheet have been seen.
func (l *ChatLoop) MarkAsRead(sheet string, count int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lastRead[sheet] = count
}

// Unread returns how many of total messages of sheet were not seen yet. The
// active channel is always fully read.
func (l *ChatLoop) Unread(sheet string, total int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if sheet == l.sheet && l.cancel != nil {
		return 0
	}
	if n := total - l.lastRead[sheet]; n > 0 {
		return n
	}
	return 0
}

func (l *ChatLoop) run(ctx context.Context, gen uint64, sheet string, refresh <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	l.poll(ctx, gen, sheet)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.poll(ctx, gen, sheet)
		case <-refresh:
			l.poll(ctx, gen, sheet)
		}
	}
}

func (l *ChatLoop) poll(ctx context.Context, gen uint64, sheet string) {
	msgs, err := l.fetch(ctx, sheet)
	if ctx.Err() != nil {
		metrics.ChatPollTicksTotal.WithLabelValues("stale").Inc()
		return
	}
	if err != nil {
		l.log.Warn().Err(err).Str("sheet", sheet).Msg("chat fetch failed")
		return
	}
	if msgs == nil {
		msgs = []domain.ChatMessage{}
	}

	l.mu.Lock()
	if gen != l.generation {
		l.mu.Unlock()
		metrics.ChatPollTicksTotal.WithLabelValues("stale").Inc()
		return
	}
	l.messages = msgs
	l.lastRead[sheet] = len(msgs)
	l.mu.Unlock()

	metrics.ChatPollTicksTotal.WithLabelValues("applied").Inc()
	l.onUpdate(Update{Sheet: sheet, Messages: append([]domain.ChatMessage(nil), msgs...)})
}
