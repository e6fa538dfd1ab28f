// Package dummydb is an in-memory store used in tests and local development.
// It implements the same repository interfaces as the firestore store.
package dummydb

import (
	"sync"

	"github.com/CooperDXSF9721/Homework-Helpers/core/access"
	"github.com/CooperDXSF9721/Homework-Helpers/core/chat"
	"github.com/CooperDXSF9721/Homework-Helpers/core/user"
)

type (
	DB struct {
		users  *userTable
		access *accessTable
		chats  *chatTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	accessTable struct {
		sync.RWMutex
		admins     map[string]*access.Admin
		posts      []*access.Post
		grants     []*access.UnlockGrant
		passphrase string
	}

	chatTable struct {
		sync.RWMutex
		chats    map[string]*chat.Chat
		messages map[string][]*chat.Message // keyed by chat id

		// live message subscriptions, keyed by chat id then subscription id
		subs      map[string]map[int64]*chat.Subscription
		nextSubID int64
	}
)

func Open() *DB {
	db := &DB{
		users: &userTable{table: make(map[string]*user.User)},
		access: &accessTable{
			admins: make(map[string]*access.Admin),
		},
		chats: &chatTable{
			chats:    make(map[string]*chat.Chat),
			messages: make(map[string][]*chat.Message),
			subs:     make(map[string]map[int64]*chat.Subscription),
		},
	}
	return db
}
