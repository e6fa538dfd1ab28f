package chat

import "sync"

// Subscription is a live feed of a chat's full message list: the backing store
// publishes a fresh, sorted snapshot on every change (not a delta feed).
// Consumers must call Cancel exactly once when done with it; an uncancelled
// subscription keeps its update channel live for the process lifetime.
type Subscription struct {
	updates chan []Message
	cancel  func()
	once    sync.Once
}

// NewSubscription is used by store implementations; `cancel` tears down the
// underlying listener. Store code publishes snapshots and closes the channel
// once the listener is fully stopped.
func NewSubscription(cancel func()) *Subscription {
	return &Subscription{
		updates: make(chan []Message, 1),
		cancel:  cancel,
	}
}

// Updates yields message-list snapshots. The channel is closed after Cancel
// once the underlying listener has stopped.
func (s *Subscription) Updates() <-chan []Message {
	return s.updates
}

// Publish hands a snapshot to the consumer. A slow consumer only ever sees the
// latest snapshot: stale ones are dropped, never queued.
func (s *Subscription) Publish(msgs []Message) {
	for {
		select {
		case s.updates <- msgs:
			return
		default:
			select {
			case <-s.updates: // drop the stale snapshot
			default:
			}
		}
	}
}

// CloseUpdates closes the update channel. Only the publishing side may call
// it, after its last Publish.
func (s *Subscription) CloseUpdates() {
	close(s.updates)
}

// Cancel releases the underlying listener. Safe to call once; the update
// channel closes shortly after.
func (s *Subscription) Cancel() {
	s.once.Do(s.cancel)
}
