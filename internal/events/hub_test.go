package events

import (
	"testing"
	"time"

	"carshare-escrow/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_FanOut(t *testing.T) {
	h := NewHub()
	a, cancelA := h.Subscribe()
	b, cancelB := h.Subscribe()
	defer cancelA()
	defer cancelB()

	e := domain.NewEvent(domain.EventListingCreated, time.Unix(0, 0))
	h.Publish(e)

	assert.Equal(t, e, <-a)
	assert.Equal(t, e, <-b)
}

func TestHub_CancelDetaches(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe()
	require.Equal(t, 1, h.Subscribers())

	cancel()
	cancel()
	assert.Equal(t, 0, h.Subscribers())
	_, open := <-ch
	assert.False(t, open)

	h.Publish(domain.NewEvent(domain.EventWithdrawal, time.Unix(0, 0)))
}

func TestHub_SlowSubscriberDoesNotBlock(t *testing.T) {
	h := NewHub()
	h.buffer = 1
	ch, cancel := h.Subscribe()
	defer cancel()

	h.Publish(
		domain.NewEvent(domain.EventBookingRequested, time.Unix(0, 0)),
		domain.NewEvent(domain.EventBookingRequested, time.Unix(1, 0)),
	)
	assert.Len(t, ch, 1)
}
