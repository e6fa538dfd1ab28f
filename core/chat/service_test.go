package chat_test

import (
	"context"
	"net/mail"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CooperDXSF9721/Homework-Helpers/core"
	"github.com/CooperDXSF9721/Homework-Helpers/core/access"
	"github.com/CooperDXSF9721/Homework-Helpers/core/chat"
	"github.com/CooperDXSF9721/Homework-Helpers/core/user"
	emailsvc "github.com/CooperDXSF9721/Homework-Helpers/services/email"
	dummydb "github.com/CooperDXSF9721/Homework-Helpers/storage/dummy"
)

type testEnv struct {
	conf      *core.Config
	usrSvc    user.Service
	accessSvc access.Service
	chatSvc   chat.Service
	repo      access.Repository
}

func setup(t *testing.T) *testEnv {
	t.Helper()
	conf := &core.Config{
		TestMode:         true,
		AppName:          "Homework Helpers",
		WorkDir:          core.Getwd(),
		FrontendBaseURL:  "http://localhost:5173",
		DefaultFromEmail: mail.Address{Name: "Homework Helpers", Address: "noreply@localhost"},
	}

	db := dummydb.Open()
	usrSvc := user.NewService(dummydb.NewUserRepository(db))
	accessRepo := dummydb.NewAccessRepository(db)
	accessSvc := access.NewService(accessRepo, usrSvc)
	mailSvc := emailsvc.NewConsoleService(conf, core.NopLogger{})
	chatSvc := chat.NewService(dummydb.NewChatRepository(db), accessSvc, mailSvc, core.NopLogger{}, conf)

	emailsvc.ClearSentMessages()

	return &testEnv{
		conf:      conf,
		usrSvc:    usrSvc,
		accessSvc: accessSvc,
		chatSvc:   chatSvc,
		repo:      accessRepo,
	}
}

func (env *testEnv) createUser(t *testing.T, name, email string) user.User {
	t.Helper()
	usr, err := env.usrSvc.Create(context.Background(), user.NewUser{Name: name, Email: email, Password: "secret"})
	require.NoError(t, err)
	return usr
}

func (env *testEnv) createAdmin(t *testing.T, name, email string) access.Admin {
	t.Helper()
	ctx := context.Background()
	usr := env.createUser(t, name, email)
	require.NoError(t, env.repo.SetPassphrase(ctx, "letmein"))
	adm, err := env.accessSvc.BecomeAdmin(ctx, usr.ID, access.BecomeAdmin{Name: name, Email: email, Passphrase: "letmein"})
	require.NoError(t, err)
	return adm
}

func TestRequest(t *testing.T) {
	ctx := context.Background()
	env := setup(t)

	adm := env.createAdmin(t, "Admin One", "adm1@test.cd")
	other := env.createAdmin(t, "Admin Two", "adm2@test.cd")
	client := env.createUser(t, "Client", "client@test.cd")

	t.Run("unknown admin", func(t *testing.T) {
		_, err := env.chatSvc.Request(ctx, client, "nobody")
		assert.ErrorIs(t, err, access.ErrAdminNotFound)
	})

	t.Run("away admin rejects the request", func(t *testing.T) {
		require.NoError(t, env.accessSvc.SetAvailability(ctx, adm.ID, access.StatusAway))
		defer func() {
			require.NoError(t, env.accessSvc.SetAvailability(ctx, adm.ID, access.StatusOpen))
		}()

		_, err := env.chatSvc.Request(ctx, client, adm.ID)
		assert.ErrorIs(t, err, chat.ErrAdminAway)

		chats, err := env.chatSvc.List(ctx, client.ID, false)
		require.NoError(t, err)
		assert.Empty(t, chats)
	})

	t.Run("open admin accepts and the full roster is notified", func(t *testing.T) {
		emailsvc.ClearSentMessages()

		c, err := env.chatSvc.Request(ctx, client, adm.ID)
		require.NoError(t, err)
		assert.Equal(t, chat.StatusActive, c.Status)
		assert.Equal(t, client.ID, c.ClientID)
		assert.Equal(t, adm.ID, c.AdminID)
		assert.Equal(t, adm.Name, c.AdminName)

		sent := emailsvc.GetSentMessages()
		require.Len(t, sent, 2)
		recipients := map[string]bool{}
		for _, msg := range sent {
			require.Len(t, msg.To, 1)
			recipients[msg.To[0].Address] = true
			assert.Contains(t, msg.TextContent, client.Name)
			assert.Contains(t, msg.TextContent, "?chat="+c.ID)
		}
		assert.True(t, recipients[adm.Email])
		assert.True(t, recipients[other.Email])
	})
}

func TestListVisibility(t *testing.T) {
	ctx := context.Background()
	env := setup(t)

	adm := env.createAdmin(t, "Admin", "adm@test.cd")
	alice := env.createUser(t, "Alice", "alice@test.cd")
	bob := env.createUser(t, "Bob", "bob@test.cd")

	aliceChat, err := env.chatSvc.Request(ctx, alice, adm.ID)
	require.NoError(t, err)
	_, err = env.chatSvc.Request(ctx, bob, adm.ID)
	require.NoError(t, err)

	// clients only see their own chats
	chats, err := env.chatSvc.List(ctx, alice.ID, false)
	require.NoError(t, err)
	require.Len(t, chats, 1)
	assert.Equal(t, alice.ID, chats[0].ClientID)

	// admins see every active chat
	chats, err = env.chatSvc.List(ctx, adm.ID, true)
	require.NoError(t, err)
	assert.Len(t, chats, 2)

	// closing is terminal and removes the chat from both lists
	require.NoError(t, env.chatSvc.Close(ctx, aliceChat.ID))
	c, err := env.chatSvc.Get(ctx, aliceChat.ID)
	require.NoError(t, err)
	assert.True(t, c.IsClosed())
	assert.False(t, c.ClosedAt.IsZero())

	chats, err = env.chatSvc.List(ctx, alice.ID, false)
	require.NoError(t, err)
	assert.Empty(t, chats)

	chats, err = env.chatSvc.List(ctx, adm.ID, true)
	require.NoError(t, err)
	assert.Len(t, chats, 1)
}

func TestSend(t *testing.T) {
	ctx := context.Background()
	env := setup(t)

	adm := env.createAdmin(t, "Admin", "adm@test.cd")
	client := env.createUser(t, "Client", "client@test.cd")

	c, err := env.chatSvc.Request(ctx, client, adm.ID)
	require.NoError(t, err)

	t.Run("empty text is rejected", func(t *testing.T) {
		assert.ErrorIs(t, env.chatSvc.Send(ctx, c.ID, client.ID, client.Name, "   "), chat.ErrEmptyMessage)
	})

	t.Run("unknown chat", func(t *testing.T) {
		assert.ErrorIs(t, env.chatSvc.Send(ctx, "nope", client.ID, client.Name, "hi"), chat.ErrNotFound)
	})

	t.Run("send updates the preview", func(t *testing.T) {
		require.NoError(t, env.chatSvc.Send(ctx, c.ID, client.ID, client.Name, "  hello there  "))

		refreshed, err := env.chatSvc.Get(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, "hello there", refreshed.LastMessage)
		assert.False(t, refreshed.LastMessageTime.IsZero())
	})
}

func TestOpenStreamsMessages(t *testing.T) {
	ctx := context.Background()
	env := setup(t)

	adm := env.createAdmin(t, "Admin", "adm@test.cd")
	client := env.createUser(t, "Client", "client@test.cd")

	c, err := env.chatSvc.Request(ctx, client, adm.ID)
	require.NoError(t, err)
	require.NoError(t, env.chatSvc.Send(ctx, c.ID, client.ID, client.Name, "hello"))

	t.Run("unknown chat", func(t *testing.T) {
		_, err := env.chatSvc.Open(ctx, "nope")
		assert.ErrorIs(t, err, chat.ErrNotFound)
	})

	sub, err := env.chatSvc.Open(ctx, c.ID)
	require.NoError(t, err)
	defer sub.Cancel()

	// initial snapshot
	msgs := waitForSnapshot(t, sub)
	require.Len(t, msgs, 1)
	assert.Equal(t, "hello", msgs[0].Text)
	assert.Equal(t, client.ID, msgs[0].SenderID)

	// live update on the next send, in order
	require.NoError(t, env.chatSvc.Send(ctx, c.ID, adm.ID, adm.Name, "hi, how can I help?"))
	msgs = waitForSnapshot(t, sub)
	require.Len(t, msgs, 2)
	assert.Equal(t, "hello", msgs[0].Text)
	assert.Equal(t, "hi, how can I help?", msgs[1].Text)

	// canceling closes the feed
	sub.Cancel()
	select {
	case _, ok := <-sub.Updates():
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("updates channel not closed after Cancel()")
	}
}

func waitForSnapshot(t *testing.T, sub *chat.Subscription) []chat.Message {
	t.Helper()
	select {
	case msgs, ok := <-sub.Updates():
		require.True(t, ok, "updates channel closed early")
		return msgs
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for snapshot")
		return nil
	}
}
