package firestoredb

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/CooperDXSF9721/Homework-Helpers/core/chat"
)

type chatRepository struct {
	client *firestore.Client
}

var _ chat.Repository = (*chatRepository)(nil) // interface compliance check

func NewChatRepository(db *DB) chat.Repository {
	return &chatRepository{client: db.client}
}

func (repo *chatRepository) coll() *firestore.CollectionRef {
	return repo.client.Collection(chatsCollection)
}

func (repo *chatRepository) messages(chatID string) *firestore.CollectionRef {
	return repo.coll().Doc(chatID).Collection(messagesCollection)
}

func (repo *chatRepository) CreateChat(ctx context.Context, c chat.Chat) (chat.Chat, error) {
	ref, _, err := repo.coll().Add(ctx, c)
	if err != nil {
		return chat.Chat{}, err
	}
	c.ID = ref.ID
	return c, nil
}

func (repo *chatRepository) GetChat(ctx context.Context, id string) (chat.Chat, error) {
	doc, err := repo.coll().Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return chat.Chat{}, chat.ErrNotFound
		}
		return chat.Chat{}, err
	}
	var c chat.Chat
	if err := doc.DataTo(&c); err != nil {
		return chat.Chat{}, err
	}
	c.ID = doc.Ref.ID
	return c, nil
}

func (repo *chatRepository) QueryActiveChats(ctx context.Context) ([]chat.Chat, error) {
	return repo.queryChats(repo.coll().Where("status", "==", chat.StatusActive).Documents(ctx))
}

func (repo *chatRepository) QueryActiveChatsByClient(ctx context.Context, clientID string) ([]chat.Chat, error) {
	return repo.queryChats(repo.coll().
		Where("clientId", "==", clientID).
		Where("status", "==", chat.StatusActive).
		Documents(ctx))
}

func (repo *chatRepository) queryChats(iter *firestore.DocumentIterator) ([]chat.Chat, error) {
	defer iter.Stop()

	chats := make([]chat.Chat, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			return chats, nil
		}
		if err != nil {
			return nil, err
		}
		var c chat.Chat
		if err := doc.DataTo(&c); err != nil {
			return nil, err
		}
		c.ID = doc.Ref.ID
		chats = append(chats, c)
	}
}

func (repo *chatRepository) CloseChat(ctx context.Context, id string) error {
	_, err := repo.coll().Doc(id).Update(ctx, []firestore.Update{
		{Path: "status", Value: chat.StatusClosed},
		{Path: "closedAt", Value: firestore.ServerTimestamp},
	})
	if isNotFound(err) {
		return chat.ErrNotFound
	}
	return err
}

// AppendMessage writes the message and the chat's last-message preview in one
// transaction, so the preview can never trail the message list. The timestamp
// is server-assigned (the struct tag requests it), so the returned Message
// still carries a zero Timestamp.
func (repo *chatRepository) AppendMessage(ctx context.Context, chatID string, msg chat.Message) (chat.Message, error) {
	chatRef := repo.coll().Doc(chatID)
	msgRef := repo.messages(chatID).NewDoc()

	err := repo.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(chatRef); err != nil {
			return err
		}
		if err := tx.Create(msgRef, msg); err != nil {
			return err
		}
		return tx.Update(chatRef, []firestore.Update{
			{Path: "lastMessage", Value: msg.Text},
			{Path: "lastMessageTime", Value: firestore.ServerTimestamp},
		})
	})
	if err != nil {
		if isNotFound(err) {
			return chat.Message{}, chat.ErrNotFound
		}
		return chat.Message{}, err
	}
	msg.ID = msgRef.ID
	return msg, nil
}

// SubscribeMessages listens to the chat's messages sub-collection and publishes
// the full sorted list on every snapshot. Cancelling the subscription stops the
// listener; the update channel closes once the listener goroutine exits.
func (repo *chatRepository) SubscribeMessages(ctx context.Context, chatID string) (*chat.Subscription, error) {
	ctx, cancel := context.WithCancel(ctx)
	snaps := repo.messages(chatID).Snapshots(ctx)

	sub := chat.NewSubscription(func() {
		cancel()
		snaps.Stop()
	})

	go func() {
		defer sub.CloseUpdates()
		for {
			snap, err := snaps.Next()
			if err != nil {
				return // cancelled or transport failure; either way the feed ends
			}
			msgs := make([]chat.Message, 0)
			for {
				doc, err := snap.Documents.Next()
				if err == iterator.Done {
					break
				}
				if err != nil {
					return
				}
				var msg chat.Message
				if err := doc.DataTo(&msg); err != nil {
					return
				}
				msg.ID = doc.Ref.ID
				msgs = append(msgs, msg)
			}
			chat.SortMessages(msgs)
			sub.Publish(msgs)
		}
	}()

	return sub, nil
}
