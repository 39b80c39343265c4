package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBus_Emit(t *testing.T) {
	bus := NewBus()
	ctx := context.Background()

	var calls []string
	bus.On(ChangeCurrentFiat, func(ctx context.Context, payload json.RawMessage) error {
		var req ChangeCurrentFiatRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return err
		}
		calls = append(calls, "first:"+req.Fiat)
		return nil
	})
	bus.On(ChangeCurrentFiat, func(ctx context.Context, payload json.RawMessage) error {
		calls = append(calls, "second")
		return errors.New("boom")
	})

	err := bus.Emit(ctx, ChangeCurrentFiat, json.RawMessage(`{"fiat": "eur"}`))
	assert.EqualError(t, err, "boom")
	assert.Equal(t, []string{"first:eur", "second"}, calls)
}

func TestBus_EmitWithoutHandler(t *testing.T) {
	err := NewBus().Emit(context.Background(), "unknown", nil)
	assert.ErrorIs(t, err, ErrNoHandler)
}
