package ratelimit

import (
	"context"
	"sync"
	"time"

	"account-service/pkg/clock"
)

type window struct {
	start time.Time
	count int
}

// Memory keeps fixed windows in process memory.
type Memory struct {
	opts  Options
	clock clock.Clocker

	mu        sync.Mutex
	windows   map[string]*window
	lastPrune time.Time
}

func NewMemory(opts Options, clk clock.Clocker) *Memory {
	if clk == nil {
		clk = clock.New()
	}
	return &Memory{
		opts:    opts.withDefaults(),
		clock:   clk,
		windows: make(map[string]*window),
	}
}

func (m *Memory) Allow(_ context.Context, key string) (Result, error) {
	now := m.clock.Now()
	key = m.opts.Prefix + key

	m.mu.Lock()
	defer m.mu.Unlock()

	m.pruneLocked(now)

	w, ok := m.windows[key]
	if !ok || now.Sub(w.start) >= m.opts.Window {
		w = &window{start: now}
		m.windows[key] = w
	}
	w.count++

	return decide(w.count, m.opts.MaxAttempts, w.start.Add(m.opts.Window)), nil
}

// Len returns the number of tracked keys.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.windows)
}

// pruneLocked drops elapsed windows at most once per window length.
func (m *Memory) pruneLocked(now time.Time) {
	if now.Sub(m.lastPrune) < m.opts.Window {
		return
	}
	for k, w := range m.windows {
		if now.Sub(w.start) >= m.opts.Window {
			delete(m.windows, k)
		}
	}
	m.lastPrune = now
}
