package service

import (
	"context"
	"sync"
	"time"
)

// Debouncer 按 key 防抖：同一 key 的新调用会取消尚未完成的旧调用
type Debouncer struct {
	quiet time.Duration

	mu      sync.Mutex
	pending map[string]*debounceEntry
}

type debounceEntry struct {
	cancel context.CancelFunc
}

func NewDebouncer(quiet time.Duration) *Debouncer {
	return &Debouncer{
		quiet:   quiet,
		pending: make(map[string]*debounceEntry),
	}
}

// Do 等待静默期后执行 fn；期间或执行中被同 key 新调用取代时返回 ErrLookupSuperseded
func (s *Debouncer) Do(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	runCtx, cancel := context.WithCancel(ctx)
	entry := &debounceEntry{cancel: cancel}

	s.mu.Lock()
	if prev, ok := s.pending[key]; ok {
		prev.cancel()
	}
	s.pending[key] = entry
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		if s.pending[key] == entry {
			delete(s.pending, key)
		}
		s.mu.Unlock()
		cancel()
	}()

	timer := time.NewTimer(s.quiet)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-runCtx.Done():
		return s.cause(ctx)
	}

	err := fn(runCtx)
	if s.superseded(ctx, runCtx) {
		return ErrLookupSuperseded
	}
	return err
}

// superseded 运行上下文被取消而调用方上下文仍有效，说明被新调用取代
func (s *Debouncer) superseded(parent, run context.Context) bool {
	return run.Err() != nil && parent.Err() == nil
}

func (s *Debouncer) cause(parent context.Context) error {
	if err := parent.Err(); err != nil {
		return err
	}
	return ErrLookupSuperseded
}
