package access_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CooperDXSF9721/Homework-Helpers/core/access"
	"github.com/CooperDXSF9721/Homework-Helpers/core/user"
	dummydb "github.com/CooperDXSF9721/Homework-Helpers/storage/dummy"
)

func setup(t *testing.T) (access.Service, user.Service, access.Repository) {
	t.Helper()
	db := dummydb.Open()
	usrSvc := user.NewService(dummydb.NewUserRepository(db))
	repo := dummydb.NewAccessRepository(db)
	return access.NewService(repo, usrSvc), usrSvc, repo
}

func createUser(t *testing.T, svc user.Service, name, email string) user.User {
	t.Helper()
	usr, err := svc.Create(context.Background(), user.NewUser{Name: name, Email: email, Password: "secret"})
	require.NoError(t, err)
	return usr
}

func TestBecomeAdmin(t *testing.T) {
	ctx := context.Background()
	svc, usrSvc, repo := setup(t)
	usr := createUser(t, usrSvc, "Jane", "jane@test.cd")

	ba := access.BecomeAdmin{Name: usr.Name, Email: usr.Email, Passphrase: "letmein"}

	t.Run("unset passphrase denies everyone", func(t *testing.T) {
		_, err := svc.BecomeAdmin(ctx, usr.ID, ba)
		assert.ErrorIs(t, err, access.ErrDenied)
	})

	require.NoError(t, repo.SetPassphrase(ctx, "letmein"))

	t.Run("wrong passphrase has no side effects", func(t *testing.T) {
		bad := ba
		bad.Passphrase = "wrong"
		_, err := svc.BecomeAdmin(ctx, usr.ID, bad)
		assert.ErrorIs(t, err, access.ErrDenied)

		isAdmin, err := svc.IsAdmin(ctx, usr.ID)
		require.NoError(t, err)
		assert.False(t, isAdmin)

		refreshed, err := usrSvc.GetByID(ctx, usr.ID)
		require.NoError(t, err)
		assert.False(t, refreshed.IsAdmin)
	})

	t.Run("correct passphrase promotes", func(t *testing.T) {
		adm, err := svc.BecomeAdmin(ctx, usr.ID, ba)
		require.NoError(t, err)
		assert.Equal(t, usr.ID, adm.ID)
		assert.Equal(t, access.StatusOpen, adm.Status)

		isAdmin, err := svc.IsAdmin(ctx, usr.ID)
		require.NoError(t, err)
		assert.True(t, isAdmin)

		refreshed, err := usrSvc.GetByID(ctx, usr.ID)
		require.NoError(t, err)
		assert.True(t, refreshed.IsAdmin)
	})

	t.Run("repeat promotion is an upsert", func(t *testing.T) {
		_, err := svc.BecomeAdmin(ctx, usr.ID, ba)
		require.NoError(t, err)

		admins, err := svc.ListAdmins(ctx)
		require.NoError(t, err)
		assert.Len(t, admins, 1)
	})
}

func TestListAdminsSorted(t *testing.T) {
	ctx := context.Background()
	svc, usrSvc, repo := setup(t)
	require.NoError(t, repo.SetPassphrase(ctx, "letmein"))

	for _, name := range []string{"Zoe", "Al", "Mia"} {
		usr := createUser(t, usrSvc, name, name+"@test.cd")
		_, err := svc.BecomeAdmin(ctx, usr.ID, access.BecomeAdmin{Name: name, Email: usr.Email, Passphrase: "letmein"})
		require.NoError(t, err)
	}

	admins, err := svc.ListAdmins(ctx)
	require.NoError(t, err)
	require.Len(t, admins, 3)
	assert.Equal(t, "Al", admins[0].Name)
	assert.Equal(t, "Mia", admins[1].Name)
	assert.Equal(t, "Zoe", admins[2].Name)
}

func TestSetAvailability(t *testing.T) {
	ctx := context.Background()
	svc, usrSvc, repo := setup(t)
	require.NoError(t, repo.SetPassphrase(ctx, "letmein"))

	usr := createUser(t, usrSvc, "Jane", "jane@test.cd")
	_, err := svc.BecomeAdmin(ctx, usr.ID, access.BecomeAdmin{Name: usr.Name, Email: usr.Email, Passphrase: "letmein"})
	require.NoError(t, err)

	require.NoError(t, svc.SetAvailability(ctx, usr.ID, access.StatusAway))
	adm, err := svc.GetAdmin(ctx, usr.ID)
	require.NoError(t, err)
	assert.True(t, adm.IsAway())

	assert.ErrorIs(t, svc.SetAvailability(ctx, "nobody", access.StatusAway), access.ErrAdminNotFound)
}

func TestListPosts(t *testing.T) {
	ctx := context.Background()
	svc, usrSvc, repo := setup(t)
	require.NoError(t, repo.SetPassphrase(ctx, "letmein"))

	admUsr := createUser(t, usrSvc, "Admin", "admin@test.cd")
	adm, err := svc.BecomeAdmin(ctx, admUsr.ID, access.BecomeAdmin{Name: admUsr.Name, Email: admUsr.Email, Passphrase: "letmein"})
	require.NoError(t, err)

	client := createUser(t, usrSvc, "Client", "client@test.cd")

	algebra, err := svc.CreatePost(ctx, access.NewPost{
		Title:   "Algebra Notes",
		Price:   10,
		Content: "Full course notes",
		FileLinks: []access.FileLink{
			{Name: "Chapter 1", URL: "https://files.test/ch1.pdf"},
		},
	}, admUsr)
	require.NoError(t, err)

	_, err = svc.CreatePost(ctx, access.NewPost{Title: "Geometry Notes", Price: 5, Content: "Circles and angles"}, admUsr)
	require.NoError(t, err)

	t.Run("locked posts hide gated fields", func(t *testing.T) {
		listed, err := svc.ListPosts(ctx, client.ID)
		require.NoError(t, err)
		require.Len(t, listed, 2)

		// newest first
		assert.Equal(t, "Geometry Notes", listed[0].Title)
		assert.Equal(t, "Algebra Notes", listed[1].Title)

		for _, lp := range listed {
			assert.True(t, lp.Locked)
			assert.Empty(t, lp.Content)
			assert.Empty(t, lp.ImageURL)
			assert.Nil(t, lp.FileLinks)
			// non-gated fields stay visible
			assert.NotEmpty(t, lp.Title)
			assert.NotZero(t, lp.Price)
		}
	})

	t.Run("grant unlocks exactly one post for one user", func(t *testing.T) {
		require.NoError(t, svc.GrantUnlock(ctx, algebra.ID, client.ID, adm.ID))

		listed, err := svc.ListPosts(ctx, client.ID)
		require.NoError(t, err)
		require.Len(t, listed, 2)

		assert.True(t, listed[0].Locked) // Geometry stays locked
		assert.False(t, listed[1].Locked)
		assert.Equal(t, "Full course notes", listed[1].Content)
		require.Len(t, listed[1].FileLinks, 1)
		assert.Equal(t, "Chapter 1", listed[1].FileLinks[0].Name)

		// other users see it locked still
		other := createUser(t, usrSvc, "Other", "other@test.cd")
		listed, err = svc.ListPosts(ctx, other.ID)
		require.NoError(t, err)
		assert.True(t, listed[1].Locked)
	})

	t.Run("repeated grants are harmless", func(t *testing.T) {
		require.NoError(t, svc.GrantUnlock(ctx, algebra.ID, client.ID, adm.ID))

		listed, err := svc.ListPosts(ctx, client.ID)
		require.NoError(t, err)
		assert.False(t, listed[1].Locked)
	})

	t.Run("grant on unknown post fails", func(t *testing.T) {
		err := svc.GrantUnlock(ctx, "nope", client.ID, adm.ID)
		assert.ErrorIs(t, err, access.ErrPostNotFound)
	})
}

func TestSearchUsersByName(t *testing.T) {
	ctx := context.Background()
	svc, usrSvc, _ := setup(t)

	createUser(t, usrSvc, "Alice Smith", "alice@test.cd")
	createUser(t, usrSvc, "Bob Smith", "bob@test.cd")
	createUser(t, usrSvc, "Carol Jones", "carol@test.cd")

	users, err := svc.SearchUsersByName(ctx, "smith")
	require.NoError(t, err)
	assert.Len(t, users, 2)

	// blank search matches nobody
	users, err = svc.SearchUsersByName(ctx, "   ")
	require.NoError(t, err)
	assert.Empty(t, users)
}
