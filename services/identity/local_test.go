package identitysvc

import (
	"context"
	"net/mail"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CooperDXSF9721/Homework-Helpers/core"
	"github.com/CooperDXSF9721/Homework-Helpers/core/user"
	emailsvc "github.com/CooperDXSF9721/Homework-Helpers/services/email"
	dummydb "github.com/CooperDXSF9721/Homework-Helpers/storage/dummy"
)

func setup(t *testing.T) (user.Identity, user.Service, *core.Config) {
	t.Helper()
	conf := &core.Config{
		TestMode:         true,
		AppName:          "Homework Helpers",
		WorkDir:          core.Getwd(),
		SecretKey:        []byte("secret"),
		FrontendBaseURL:  "http://localhost:5173",
		DefaultFromEmail: mail.Address{Name: "Homework Helpers", Address: "noreply@localhost"},
		Server: core.ServerConfig{
			TokenExpiration:      7 * 24 * time.Hour,
			PasswordResetTimeout: 3 * 24 * time.Hour,
		},
	}

	db := dummydb.Open()
	usrSvc := user.NewService(dummydb.NewUserRepository(db))
	mailSvc := emailsvc.NewConsoleService(conf, core.NopLogger{})
	emailsvc.ClearSentMessages()

	return NewLocalIdentity(usrSvc, mailSvc, core.NopLogger{}, conf), usrSvc, conf
}

func TestSignUp(t *testing.T) {
	ctx := context.Background()
	idt, _, _ := setup(t)

	t.Run("weak password", func(t *testing.T) {
		_, err := idt.SignUp(ctx, user.NewUser{Name: "Jane", Email: "jane@test.cd", Password: "12345"})
		assert.ErrorIs(t, err, user.ErrWeakPassword)
	})

	t.Run("sign up", func(t *testing.T) {
		usr, err := idt.SignUp(ctx, user.NewUser{Name: "Jane", Email: "jane@test.cd", Password: "secret"})
		require.NoError(t, err)
		assert.NotEmpty(t, usr.ID)
		assert.Equal(t, "Jane", usr.Name)
		assert.False(t, usr.IsAdmin)
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := idt.SignUp(ctx, user.NewUser{Name: "Jane II", Email: "jane@test.cd", Password: "secret"})
		assert.ErrorIs(t, err, user.ErrEmailExists)
	})
}

func TestAuthenticateVerifyToken(t *testing.T) {
	ctx := context.Background()
	idt, _, conf := setup(t)

	usr, err := idt.SignUp(ctx, user.NewUser{Name: "Jane", Email: "jane@test.cd", Password: "secret"})
	require.NoError(t, err)

	t.Run("unknown email", func(t *testing.T) {
		_, _, err := idt.Authenticate(ctx, "nobody@test.cd", "secret")
		assert.ErrorIs(t, err, user.ErrInvalidCredentials)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := idt.Authenticate(ctx, usr.Email, "nope")
		assert.ErrorIs(t, err, user.ErrInvalidCredentials)
	})

	t.Run("valid credentials", func(t *testing.T) {
		token, authed, err := idt.Authenticate(ctx, usr.Email, "secret")
		require.NoError(t, err)
		assert.Equal(t, usr.ID, authed.ID)
		assert.False(t, authed.LastLogin.IsZero())

		verified, err := idt.VerifyToken(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, usr.ID, verified.ID)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := idt.VerifyToken(ctx, "lol.not.a.jwt")
		assert.ErrorIs(t, err, user.ErrInvalidToken)
	})

	t.Run("expired token", func(t *testing.T) {
		conf.Server.TokenExpiration = -time.Minute
		defer func() { conf.Server.TokenExpiration = 7 * 24 * time.Hour }()

		token, _, err := idt.Authenticate(ctx, usr.Email, "secret")
		require.NoError(t, err)
		_, err = idt.VerifyToken(ctx, token)
		assert.ErrorIs(t, err, user.ErrTokenExpired)
	})
}

func TestPasswordResetFlow(t *testing.T) {
	ctx := context.Background()
	idt, _, _ := setup(t)

	usr, err := idt.SignUp(ctx, user.NewUser{Name: "Jane", Email: "jane@test.cd", Password: "secret"})
	require.NoError(t, err)

	t.Run("unknown email is silently accepted", func(t *testing.T) {
		emailsvc.ClearSentMessages()
		require.NoError(t, idt.SendPasswordReset(ctx, "nobody@test.cd"))
		assert.Empty(t, emailsvc.GetSentMessages())
	})

	emailsvc.ClearSentMessages()
	require.NoError(t, idt.SendPasswordReset(ctx, usr.Email))

	sent := emailsvc.GetSentMessages()
	require.Len(t, sent, 1)
	require.Len(t, sent[0].To, 1)
	assert.Equal(t, usr.Email, sent[0].To[0].Address)

	uid, token := extractResetParams(t, sent[0].TextContent)

	t.Run("tampered token", func(t *testing.T) {
		err := idt.ConfirmPasswordReset(ctx, user.ConfirmPasswordReset{
			UID: uid, Token: token + "x", Password: "newsecret", PasswordConfirm: "newsecret",
		})
		assert.ErrorIs(t, err, user.ErrInvalidToken)
	})

	t.Run("bogus uid", func(t *testing.T) {
		err := idt.ConfirmPasswordReset(ctx, user.ConfirmPasswordReset{
			UID: "%%%", Token: token, Password: "newsecret", PasswordConfirm: "newsecret",
		})
		assert.ErrorIs(t, err, user.ErrInvalidToken)
	})

	t.Run("weak new password", func(t *testing.T) {
		err := idt.ConfirmPasswordReset(ctx, user.ConfirmPasswordReset{
			UID: uid, Token: token, Password: "123", PasswordConfirm: "123",
		})
		assert.ErrorIs(t, err, user.ErrWeakPassword)
	})

	t.Run("valid token resets the password once", func(t *testing.T) {
		require.NoError(t, idt.ConfirmPasswordReset(ctx, user.ConfirmPasswordReset{
			UID: uid, Token: token, Password: "newsecret", PasswordConfirm: "newsecret",
		}))

		_, _, err := idt.Authenticate(ctx, usr.Email, "secret")
		assert.ErrorIs(t, err, user.ErrInvalidCredentials)
		_, _, err = idt.Authenticate(ctx, usr.Email, "newsecret")
		assert.NoError(t, err)

		// the token is bound to the old password hash; it cannot be replayed
		err = idt.ConfirmPasswordReset(ctx, user.ConfirmPasswordReset{
			UID: uid, Token: token, Password: "another1", PasswordConfirm: "another1",
		})
		assert.ErrorIs(t, err, user.ErrInvalidToken)
	})
}

// extractResetParams pulls uid and token out of the reset link in the email body.
func extractResetParams(t *testing.T, body string) (uid, token string) {
	t.Helper()
	i := strings.Index(body, "?uid=")
	require.GreaterOrEqual(t, i, 0, "reset link not found in email body")
	rest := body[i+len("?uid="):]
	j := strings.Index(rest, "&token=")
	require.GreaterOrEqual(t, j, 0, "token param not found in reset link")
	uid = rest[:j]
	token = strings.TrimSpace(strings.Fields(rest[j+len("&token="):])[0])
	return uid, token
}
