// Package firestoredb implements the repository interfaces on Cloud Firestore.
//
// Collections: users/{uid}, admins/{uid}, posts/{postId}, unlockedPosts/{autoId},
// chats/{chatId} with a nested messages/{autoId} sub-collection, and a single
// config/adminPassword document holding the shared admin secret.
package firestoredb

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/CooperDXSF9721/Homework-Helpers/core"
)

const (
	usersCollection    = "users"
	adminsCollection   = "admins"
	postsCollection    = "posts"
	grantsCollection   = "unlockedPosts"
	chatsCollection    = "chats"
	messagesCollection = "messages"

	configCollection = "config"
	passphraseDoc    = "adminPassword"
)

type DB struct {
	client *firestore.Client
}

func Open(ctx context.Context, conf *core.Config) (*DB, error) {
	client, err := firestore.NewClient(ctx, conf.GCPProjectID)
	if err != nil {
		return nil, err
	}
	return &DB{client: client}, nil
}

func (db *DB) Close() error {
	return db.client.Close()
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}
