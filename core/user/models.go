package user

import (
	"context"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/CooperDXSF9721/Homework-Helpers/core"
)

type User struct {
	ID           string    `json:"id" firestore:"-"`
	Name         string    `json:"name" firestore:"name"`
	Email        string    `json:"email" firestore:"email"`
	IsAdmin      bool      `json:"is_admin" firestore:"isAdmin"`
	PasswordHash []byte    `json:"-" firestore:"passwordHash"`
	CreatedAt    time.Time `json:"created_at" firestore:"createdAt"` // UTC
	LastLogin    time.Time `json:"last_login" firestore:"lastLogin"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

// NewUser contains information needed to sign a new User up.
type NewUser struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,pwdminlen"`
}

func (nu *NewUser) Validate(ctx context.Context, validate *validator.Validate, svc Service) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email, true /* lower */)

	if err := validate.Struct(nu); err != nil {
		return err
	}
	return svc.CheckEmailUniqueness(ctx, nu.Email)
}

// Credentials is an email/password sign-in request.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (c *Credentials) Validate(validate *validator.Validate) error {
	c.Email = core.CleanString(c.Email, true /* lower */)
	return validate.Struct(c)
}

// PasswordReset requests a reset email for the given address.
type PasswordReset struct {
	Email string `json:"email" validate:"required,email"`
}

func (pr *PasswordReset) Validate(validate *validator.Validate) error {
	pr.Email = core.CleanString(pr.Email, true /* lower */)
	return validate.Struct(pr)
}

// ConfirmPasswordReset carries the signed token from the reset email plus the new password.
type ConfirmPasswordReset struct {
	UID             string `json:"uid" validate:"required"`
	Token           string `json:"token" validate:"required"`
	Password        string `json:"password" validate:"required,pwdminlen"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (cp *ConfirmPasswordReset) Validate(validate *validator.Validate) error {
	return validate.Struct(cp)
}

// password policy: the provider rejects anything under 6 characters
var (
	pwdMinLen     = 6
	pwdMinLenTag  = "pwdminlen"
	pwdMinLenText = "Password should be at least 6 characters"
)

// InitValidators registers user-specific validation tags.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(pwdMinLenTag, func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) >= pwdMinLen
	})
	core.RegisterCustomTranslation(validate, translator, pwdMinLenTag, pwdMinLenText)
}
