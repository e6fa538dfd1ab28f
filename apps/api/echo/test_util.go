package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CooperDXSF9721/Homework-Helpers/core"
	"github.com/CooperDXSF9721/Homework-Helpers/core/access"
	"github.com/CooperDXSF9721/Homework-Helpers/core/chat"
	"github.com/CooperDXSF9721/Homework-Helpers/core/user"
	emailsvc "github.com/CooperDXSF9721/Homework-Helpers/services/email"
	identitysvc "github.com/CooperDXSF9721/Homework-Helpers/services/identity"
	dummydb "github.com/CooperDXSF9721/Homework-Helpers/storage/dummy"
)

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

type testApp struct {
	server     Server
	conf       *core.Config
	identity   user.Identity
	usrSvc     user.Service
	accessSvc  access.Service
	chatSvc    chat.Service
	accessRepo access.Repository
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	conf := &core.Config{
		TestMode:         true,
		AppName:          "Homework Helpers",
		WorkDir:          core.Getwd(),
		SecretKey:        []byte("secret"),
		FrontendBaseURL:  "http://localhost:5173",
		DefaultFromEmail: mail.Address{Name: "Homework Helpers", Address: "noreply@localhost"},
		Server: core.ServerConfig{
			TokenExpiration:      10 * time.Minute,
			PasswordResetTimeout: 3 * 24 * time.Hour,
		},
	}

	db := dummydb.Open()
	usrSvc := user.NewService(dummydb.NewUserRepository(db))
	accessRepo := dummydb.NewAccessRepository(db)
	accessSvc := access.NewService(accessRepo, usrSvc)
	mailSvc := emailsvc.NewConsoleService(conf, core.NopLogger{})
	chatSvc := chat.NewService(dummydb.NewChatRepository(db), accessSvc, mailSvc, core.NopLogger{}, conf)
	identity := identitysvc.NewLocalIdentity(usrSvc, mailSvc, core.NopLogger{}, conf)

	validate := validator.New()
	translator := newTestTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	access.InitValidators(validate, translator)

	emailsvc.ClearSentMessages()

	server := NewServer(ServerDeps{
		Conf:           conf,
		Logger:         core.NopLogger{},
		DisableReqLogs: true,
		Identity:       identity,
		UserSvc:        usrSvc,
		AccessSvc:      accessSvc,
		ChatSvc:        chatSvc,
		Validate:       validate,
		Translator:     translator,
	})

	return &testApp{
		server:     server,
		conf:       conf,
		identity:   identity,
		usrSvc:     usrSvc,
		accessSvc:  accessSvc,
		chatSvc:    chatSvc,
		accessRepo: accessRepo,
	}
}

func newTestTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

func (app *testApp) createUser(t *testing.T, name, email string) user.User {
	t.Helper()
	usr, err := app.identity.SignUp(context.Background(), user.NewUser{Name: name, Email: email, Password: "secret"})
	require.NoError(t, err)
	return usr
}

func (app *testApp) createAdmin(t *testing.T, name, email string) user.User {
	t.Helper()
	ctx := context.Background()
	usr := app.createUser(t, name, email)
	require.NoError(t, app.accessRepo.SetPassphrase(ctx, "letmein"))
	_, err := app.accessSvc.BecomeAdmin(ctx, usr.ID, access.BecomeAdmin{Name: name, Email: email, Passphrase: "letmein"})
	require.NoError(t, err)
	return usr
}

func (app *testApp) getToken(t *testing.T, usr user.User) string {
	t.Helper()
	token, _, err := app.identity.Authenticate(context.Background(), usr.Email, "secret")
	require.NoError(t, err)
	return token
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	return assert.ObjectsAreEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
