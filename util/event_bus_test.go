package util

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventBus(t *testing.T) {
	bus := NewEventBus()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	bus.Start(ctx)

	var calls atomic.Int32
	var last atomic.Value
	bus.Subscribe("acl.updated", func(_ context.Context, e Event) error {
		calls.Add(1)
		last.Store(e.Payload)
		return nil
	})
	bus.Subscribe("acl.updated", func(context.Context, Event) error {
		calls.Add(1)
		return errors.New("handler failed")
	})

	reqCtx, reqCancel := context.WithCancel(context.Background())
	bus.Publish(reqCtx, "acl.updated", "sascontainer")
	reqCancel()
	bus.Publish(ctx, "container.created", "ignored")
	bus.Wait()

	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, "sascontainer", last.Load())
}
