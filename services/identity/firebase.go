package identitysvc

import (
	"context"
	"net/mail"
	"strings"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"github.com/pkg/errors"

	"github.com/CooperDXSF9721/Homework-Helpers/core"
	"github.com/CooperDXSF9721/Homework-Helpers/core/user"
)

// firebaseIdentity delegates credential storage and token issuance to the
// Firebase Auth backend. Password sign-in happens on the client against the
// Identity Toolkit API; the server only ever verifies ID tokens.
type firebaseIdentity struct {
	client  *fbauth.Client
	users   user.Service
	mailSvc core.EmailService
	logger  core.Logger
	conf    *core.Config
}

var _ user.Identity = (*firebaseIdentity)(nil)

func NewFirebaseIdentity(ctx context.Context, users user.Service, mailSvc core.EmailService, logger core.Logger, conf *core.Config) (user.Identity, error) {
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: conf.GCPProjectID})
	if err != nil {
		return nil, errors.Wrap(err, "initializing firebase app")
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "getting firebase auth client")
	}
	return &firebaseIdentity{
		client:  client,
		users:   users,
		mailSvc: mailSvc,
		logger:  logger,
		conf:    conf,
	}, nil
}

func (idt *firebaseIdentity) SignUp(ctx context.Context, nu user.NewUser) (user.User, error) {
	params := (&fbauth.UserToCreate{}).
		DisplayName(nu.Name).
		Email(nu.Email).
		Password(nu.Password)

	rec, err := idt.client.CreateUser(ctx, params)
	if err != nil {
		switch {
		case fbauth.IsEmailAlreadyExists(err):
			return user.User{}, user.ErrEmailExists
		case strings.Contains(err.Error(), "password"):
			return user.User{}, user.ErrWeakPassword
		}
		return user.User{}, errors.Wrap(err, "creating firebase user")
	}

	// mirror the provider account into our own users collection, keyed by uid
	return idt.users.Create(ctx, user.NewUser{Name: nu.Name, Email: nu.Email}, rec.UID)
}

// Authenticate is not available server-side: password sign-in goes through
// the provider's own API and the server receives the resulting ID token.
func (idt *firebaseIdentity) Authenticate(ctx context.Context, email, password string) (string, user.User, error) {
	return "", user.User{}, user.ErrNotSupported
}

func (idt *firebaseIdentity) VerifyToken(ctx context.Context, token string) (user.User, error) {
	tok, err := idt.client.VerifyIDToken(ctx, token)
	if err != nil {
		return user.User{}, user.ErrInvalidToken
	}

	usr, err := idt.users.GetByID(ctx, tok.UID)
	if err == nil {
		return usr, nil
	}
	if !errors.Is(err, user.ErrNotFound) {
		return user.User{}, err
	}

	// account exists with the provider but not in our store yet
	rec, err := idt.client.GetUser(ctx, tok.UID)
	if err != nil {
		return user.User{}, errors.Wrap(err, "fetching firebase user")
	}
	return idt.users.Create(ctx, user.NewUser{Name: rec.DisplayName, Email: rec.Email}, tok.UID)
}

func (idt *firebaseIdentity) SendPasswordReset(ctx context.Context, email string) error {
	link, err := idt.client.PasswordResetLink(ctx, email)
	if err != nil {
		if fbauth.IsUserNotFound(err) {
			// no account enumeration
			return nil
		}
		return errors.Wrap(err, "generating reset link")
	}

	idt.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Address: email}},
		Subject:      "Password Reset",
		TemplateName: passwordResetTemplate,
		TemplateData: struct {
			User     user.User
			UID      string
			Token    string
			ResetURL string
		}{
			ResetURL: link,
		},
	})
	return nil
}

// ConfirmPasswordReset is handled by the provider's hosted reset page.
func (idt *firebaseIdentity) ConfirmPasswordReset(ctx context.Context, cp user.ConfirmPasswordReset) error {
	return user.ErrNotSupported
}
