package notify_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/moneynote/internal/notify"
)

func TestHub_PublishReachesOwnerOnly(t *testing.T) {
	h := notify.NewHub()
	ctx := context.Background()

	alice, cancelA := h.Subscribe("alice")
	defer cancelA()

	bob, cancelB := h.Subscribe("bob")
	defer cancelB()

	require.NoError(t, h.Publish(ctx, "alice"))

	assert.Len(t, alice, 1)
	assert.Len(t, bob, 0)
}

func TestHub_SignalsCoalesce(t *testing.T) {
	h := notify.NewHub()
	ctx := context.Background()

	ch, cancel := h.Subscribe("alice")
	defer cancel()

	for range 5 {
		require.NoError(t, h.Publish(ctx, "alice"))
	}

	assert.Len(t, ch, 1)
	<-ch
	assert.Len(t, ch, 0)
}

func TestHub_CancelClosesChannel(t *testing.T) {
	h := notify.NewHub()

	ch, cancel := h.Subscribe("alice")
	assert.Equal(t, 1, h.Subscribers("alice"))

	cancel()
	cancel()

	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, h.Subscribers("alice"))
	assert.NoError(t, h.Publish(context.Background(), "alice"))
}

func TestHub_PublishAll(t *testing.T) {
	h := notify.NewHub()

	a, cancelA := h.Subscribe("alice")
	defer cancelA()

	b, cancelB := h.Subscribe("bob")
	defer cancelB()

	h.PublishAll()

	assert.Len(t, a, 1)
	assert.Len(t, b, 1)
}
