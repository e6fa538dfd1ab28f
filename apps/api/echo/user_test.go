package echoapi

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CooperDXSF9721/Homework-Helpers/core/user"
)

func Test_userApi_signup(t *testing.T) {
	app := newTestApp(t)

	tests := []httpTest{
		{
			name:     "empty body",
			body:     []byte("{}"),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "weak password",
			body:     marshallObj(t, user.NewUser{Name: "Jane", Email: "jane@test.cd", Password: "123"}),
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"password": "Password should be at least 6 characters"}),
		},
		{
			name:     "invalid email",
			body:     marshallObj(t, user.NewUser{Name: "Jane", Email: "nope", Password: "secret"}),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "sign up",
			body:     marshallObj(t, user.NewUser{Name: "Jane", Email: "jane@test.cd", Password: "secret"}),
			wantCode: http.StatusCreated,
		},
		{
			name:     "duplicate email",
			body:     marshallObj(t, user.NewUser{Name: "Jane II", Email: "jane@test.cd", Password: "secret"}),
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"email": user.ErrEmailExists.Error()}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/signup", tt.body)
			app.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_login(t *testing.T) {
	app := newTestApp(t)
	usr := app.createUser(t, "Jane", "jane@test.cd")

	tests := []httpTest{
		{
			name:     "unknown email",
			body:     marshallObj(t, user.Credentials{Email: "nobody@test.cd", Password: "secret"}),
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, httpErr{Error: "Invalid email or password"}),
		},
		{
			name:     "wrong password",
			body:     marshallObj(t, user.Credentials{Email: usr.Email, Password: "nope"}),
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, httpErr{Error: "Invalid email or password"}),
		},
		{
			name:     "login",
			body:     marshallObj(t, user.Credentials{Email: usr.Email, Password: "secret"}),
			wantCode: http.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/login", tt.body)
			app.server.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
			}
			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
				return
			}

			var resp LoginResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Token)
			assert.Equal(t, usr.ID, resp.User.ID)
		})
	}
}

func Test_userApi_me(t *testing.T) {
	app := newTestApp(t)
	usr := app.createUser(t, "Jane", "jane@test.cd")
	token := app.getToken(t, usr)

	t.Run("no token", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/users/me")
		app.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("bad token", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/users/me", "lol.not.a.jwt")
		app.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("me", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/users/me", token)
		app.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var me user.User
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
		assert.Equal(t, usr.ID, me.ID)
		assert.Equal(t, usr.Email, me.Email)
	})
}

func Test_userApi_search(t *testing.T) {
	app := newTestApp(t)
	adm := app.createAdmin(t, "Admin", "adm@test.cd")
	app.createUser(t, "Alice Smith", "alice@test.cd")
	app.createUser(t, "Bob Smith", "bob@test.cd")
	client := app.createUser(t, "Carol Jones", "carol@test.cd")

	t.Run("requires admin", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/users?search=smith", app.getToken(t, client))
		app.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("substring match", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/users?search=smith", app.getToken(t, adm))
		app.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var users []user.User
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
		assert.Len(t, users, 2)
	})

	t.Run("blank search matches nobody", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/users?search=", app.getToken(t, adm))
		app.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, "[]", rec.Body.String())
	})
}

func Test_userApi_passwordReset(t *testing.T) {
	app := newTestApp(t)
	app.createUser(t, "Jane", "jane@test.cd")

	// the response never discloses whether the account exists
	for _, email := range []string{"jane@test.cd", "nobody@test.cd"} {
		req, rec := newRequest(http.MethodPost, "/v1/users/password-reset", marshallObj(t, user.PasswordReset{Email: email}))
		app.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}
