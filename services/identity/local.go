package identitysvc

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	"github.com/CooperDXSF9721/Homework-Helpers/core"
	"github.com/CooperDXSF9721/Homework-Helpers/core/user"
)

const passwordResetTemplate = "password-reset"

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.RegisteredClaims
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	IsAdmin bool   `json:"is_admin,omitempty"`
}

// localIdentity keeps credentials in the application's own store: bcrypt
// password hashes on the User record and HS256 session tokens.
type localIdentity struct {
	users   user.Service
	mailSvc core.EmailService
	logger  core.Logger
	conf    *core.Config
}

var _ user.Identity = (*localIdentity)(nil)

func NewLocalIdentity(users user.Service, mailSvc core.EmailService, logger core.Logger, conf *core.Config) user.Identity {
	return &localIdentity{
		users:   users,
		mailSvc: mailSvc,
		logger:  logger,
		conf:    conf,
	}
}

func (idt *localIdentity) SignUp(ctx context.Context, nu user.NewUser) (user.User, error) {
	if len(nu.Password) < 6 {
		return user.User{}, user.ErrWeakPassword
	}
	if err := idt.users.CheckEmailUniqueness(ctx, nu.Email); err != nil {
		if errors.Is(err, user.ErrEmailExists) {
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, err
	}
	return idt.users.Create(ctx, nu)
}

func (idt *localIdentity) Authenticate(ctx context.Context, email, password string) (string, user.User, error) {
	usr, err := idt.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return "", user.User{}, user.ErrInvalidCredentials
		}
		return "", user.User{}, err
	}
	if err = usr.CheckPassword(password); err != nil {
		return "", user.User{}, user.ErrInvalidCredentials
	}

	usr, err = idt.users.SetLastLogin(ctx, usr)
	if err != nil {
		return "", user.User{}, errors.Wrap(err, "updating last login")
	}

	token, err := idt.generateToken(usr)
	if err != nil {
		return "", user.User{}, err
	}
	return token, usr, nil
}

func (idt *localIdentity) VerifyToken(ctx context.Context, token string) (user.User, error) {
	claims := new(Claims)
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return idt.conf.SecretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return user.User{}, user.ErrTokenExpired
		}
		return user.User{}, user.ErrInvalidToken
	}
	if !parsed.Valid {
		return user.User{}, user.ErrInvalidToken
	}

	usr, err := idt.users.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, user.ErrInvalidToken
		}
		return user.User{}, err
	}
	return usr, nil
}

func (idt *localIdentity) SendPasswordReset(ctx context.Context, email string) error {
	usr, err := idt.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			// no account enumeration
			return nil
		}
		return err
	}

	token, err := user.MakeToken(usr, idt.conf)
	if err != nil {
		return errors.Wrap(err, "generating reset token")
	}
	uid := user.EncodeUID(usr)

	idt.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      "Password Reset",
		TemplateName: passwordResetTemplate,
		TemplateData: struct {
			User     user.User
			UID      string
			Token    string
			ResetURL string
		}{
			User:     usr,
			UID:      uid,
			Token:    token,
			ResetURL: fmt.Sprintf("%s/password-reset?uid=%s&token=%s", idt.conf.FrontendBaseURL, uid, token),
		},
	})
	return nil
}

func (idt *localIdentity) ConfirmPasswordReset(ctx context.Context, cp user.ConfirmPasswordReset) error {
	id, err := user.DecodeUID(cp.UID)
	if err != nil {
		return user.ErrInvalidToken
	}
	usr, err := idt.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.ErrInvalidToken
		}
		return err
	}
	if err = user.VerifyToken(usr, cp.Token, idt.conf); err != nil {
		return err
	}
	if len(cp.Password) < 6 {
		return user.ErrWeakPassword
	}
	_, err = idt.users.SetPassword(ctx, usr, cp.Password)
	return err
}

func (idt *localIdentity) generateToken(usr user.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    idt.conf.AppName,
			Subject:   usr.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(idt.conf.Server.TokenExpiration)),
		},
		Name:    usr.Name,
		Email:   usr.Email,
		IsAdmin: usr.IsAdmin,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString([]byte(idt.conf.SecretKey))
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}
