package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSubscriptionLatestWins(t *testing.T) {
	canceled := false
	sub := NewSubscription(func() { canceled = true })

	// nobody reading: only the latest snapshot survives
	sub.Publish([]Message{{Text: "one"}})
	sub.Publish([]Message{{Text: "one"}, {Text: "two"}})
	sub.Publish([]Message{{Text: "one"}, {Text: "two"}, {Text: "three"}})

	msgs := <-sub.Updates()
	assert.Len(t, msgs, 3)

	sub.Cancel()
	sub.Cancel() // idempotent
	assert.True(t, canceled)

	sub.CloseUpdates()
	_, ok := <-sub.Updates()
	assert.False(t, ok)
}

func TestSortMessages(t *testing.T) {
	t0 := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	msgs := []Message{
		{Text: "third", Timestamp: t0.Add(2 * time.Minute)},
		{Text: "pending"}, // server timestamp not resolved yet
		{Text: "first", Timestamp: t0},
		{Text: "second", Timestamp: t0.Add(time.Minute)},
	}

	SortMessages(msgs)

	assert.Equal(t, "first", msgs[0].Text)
	assert.Equal(t, "second", msgs[1].Text)
	assert.Equal(t, "third", msgs[2].Text)
	assert.Equal(t, "pending", msgs[3].Text) // pending messages sort last
}
