package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// ChangeCurrentFiat asks the ticker to switch the display currency.
const ChangeCurrentFiat = "ticker.changeCurrentFiat"

// ChangeCurrentFiatRequest is the payload of ChangeCurrentFiat.
type ChangeCurrentFiatRequest struct {
	Fiat string `json:"fiat"`
}

// ErrNoHandler is returned when an event has no registered handler.
var ErrNoHandler = errors.New("no handler registered")

// Handler processes one event payload.
type Handler func(ctx context.Context, payload json.RawMessage) error

// Bus delivers named events to their handlers.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

func NewBus() *Bus {
	return &Bus{handlers: make(map[string][]Handler)}
}

// On registers h for the named event.
func (b *Bus) On(name string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[name] = append(b.handlers[name], h)
}

// Emit runs the handlers of the named event in registration order on the
// calling goroutine and joins their errors.
func (b *Bus) Emit(ctx context.Context, name string, payload json.RawMessage) error {
	b.mu.RLock()
	handlers := append([]Handler(nil), b.handlers[name]...)
	b.mu.RUnlock()

	if len(handlers) == 0 {
		return fmt.Errorf("%w: %s", ErrNoHandler, name)
	}

	var errs []error
	for _, h := range handlers {
		if err := h(ctx, payload); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
