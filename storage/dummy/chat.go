package dummydb

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/CooperDXSF9721/Homework-Helpers/core/chat"
)

type chatRepository struct {
	db *chatTable
}

var _ chat.Repository = (*chatRepository)(nil) // interface compliance check

func NewChatRepository(db *DB) chat.Repository {
	return &chatRepository{db: db.chats}
}

func (repo *chatRepository) CreateChat(_ context.Context, c chat.Chat) (chat.Chat, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	c.ID = uuid.NewString()
	repo.db.chats[c.ID] = &c
	return c, nil
}

func (repo *chatRepository) GetChat(_ context.Context, id string) (chat.Chat, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if c, ok := repo.db.chats[id]; ok {
		return *c, nil
	}
	return chat.Chat{}, chat.ErrNotFound
}

func (repo *chatRepository) QueryActiveChats(_ context.Context) ([]chat.Chat, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	chats := make([]chat.Chat, 0)
	for _, c := range repo.db.chats {
		if c.Status == chat.StatusActive {
			chats = append(chats, *c)
		}
	}
	return chats, nil
}

func (repo *chatRepository) QueryActiveChatsByClient(_ context.Context, clientID string) ([]chat.Chat, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	chats := make([]chat.Chat, 0)
	for _, c := range repo.db.chats {
		if c.Status == chat.StatusActive && c.ClientID == clientID {
			chats = append(chats, *c)
		}
	}
	return chats, nil
}

func (repo *chatRepository) CloseChat(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	c, ok := repo.db.chats[id]
	if !ok {
		return chat.ErrNotFound
	}
	c.Status = chat.StatusClosed
	c.ClosedAt = time.Now().UTC()
	return nil
}

func (repo *chatRepository) AppendMessage(_ context.Context, chatID string, msg chat.Message) (chat.Message, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	c, ok := repo.db.chats[chatID]
	if !ok {
		return chat.Message{}, chat.ErrNotFound
	}

	msg.ID = uuid.NewString()
	msg.Timestamp = time.Now().UTC() // stands in for the server-assigned timestamp
	repo.db.messages[chatID] = append(repo.db.messages[chatID], &msg)
	c.LastMessage = msg.Text
	c.LastMessageTime = msg.Timestamp

	repo.publishLocked(chatID)
	return msg, nil
}

// SubscribeMessages registers a live subscription and delivers the current
// snapshot immediately. Fan-out on writes follows the connection-hub pattern:
// a mutex-guarded registry of per-chat subscribers.
func (repo *chatRepository) SubscribeMessages(_ context.Context, chatID string) (*chat.Subscription, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.chats[chatID]; !ok {
		return nil, chat.ErrNotFound
	}

	repo.db.nextSubID++
	id := repo.db.nextSubID

	var sub *chat.Subscription
	sub = chat.NewSubscription(func() {
		repo.unsubscribe(chatID, id, sub)
	})

	if _, ok := repo.db.subs[chatID]; !ok {
		repo.db.subs[chatID] = make(map[int64]*chat.Subscription)
	}
	repo.db.subs[chatID][id] = sub

	sub.Publish(repo.snapshotLocked(chatID))
	return sub, nil
}

func (repo *chatRepository) unsubscribe(chatID string, id int64, sub *chat.Subscription) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if subs, ok := repo.db.subs[chatID]; ok {
		delete(subs, id)
		if len(subs) == 0 {
			delete(repo.db.subs, chatID)
		}
	}
	// closing under the lock: publishers also hold it, so no publish can race
	sub.CloseUpdates()
}

func (repo *chatRepository) snapshotLocked(chatID string) []chat.Message {
	msgs := make([]chat.Message, 0, len(repo.db.messages[chatID]))
	for _, m := range repo.db.messages[chatID] {
		msgs = append(msgs, *m)
	}
	chat.SortMessages(msgs)
	return msgs
}

func (repo *chatRepository) publishLocked(chatID string) {
	subs, ok := repo.db.subs[chatID]
	if !ok {
		return
	}
	snapshot := repo.snapshotLocked(chatID)
	for _, sub := range subs {
		sub.Publish(snapshot)
	}
}
