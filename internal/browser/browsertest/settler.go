package browsertest

import (
	"context"
	"sync"

	"github.com/nao1215/catalogcrawl/internal/browser"
)

// Settler is a browser.Settler that returns immediately and counts calls.
// Hook, when set, is called with the 1-based call number and its error is
// returned.
type Settler struct {
	mu    sync.Mutex
	calls int
	Hook  func(call int) error
}

// Settle implements browser.Settler.
func (s *Settler) Settle(ctx context.Context, _ browser.Page) error {
	s.mu.Lock()
	s.calls++
	call := s.calls
	hook := s.Hook
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if hook != nil {
		return hook(call)
	}
	return nil
}

// Calls returns how many times Settle was called.
func (s *Settler) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}
