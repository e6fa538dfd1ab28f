package user

import (
	"context"
	"errors"
	"time"

	"github.com/CooperDXSF9721/Homework-Helpers/core"
)

var (
	// errors
	ErrNotFound    = errors.New("user not found")
	ErrEmailExists = errors.New("a user with this email already exists")
)

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...User) error
		CreateUser(ctx context.Context, usr User) (User, error)
		QueryAllUsers(ctx context.Context) ([]User, error)
		GetUserByID(ctx context.Context, id string) (User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)
		// SearchUsersByName does a case-insensitive substring match on User.Name.
		SearchUsersByName(ctx context.Context, substr string) ([]User, error)
		UpdateUser(ctx context.Context, usr User) (User, error)
		SetAdminFlag(ctx context.Context, id string, isAdmin bool) error
	}

	Service interface {
		CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...User) error
		// Create persists a new User. An optional id keys the record to an
		// identity-provider account instead of a generated one.
		Create(ctx context.Context, nu NewUser, id ...string) (User, error)
		QueryAll(ctx context.Context) ([]User, error)
		GetByID(ctx context.Context, id string) (User, error)
		GetByEmail(ctx context.Context, email string) (User, error)
		SearchByName(ctx context.Context, substr string) ([]User, error)
		SetAdminFlag(ctx context.Context, id string, isAdmin bool) error
		SetLastLogin(ctx context.Context, usr User) (User, error)
		SetPassword(ctx context.Context, usr User, pwd string) (User, error)
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) CheckEmailUniqueness(ctx context.Context, email string, exclUsers ...User) error {
	if err := svc.repo.CheckEmailUniqueness(ctx, email, exclUsers...); err != nil {
		if errors.Is(err, ErrEmailExists) {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *service) Create(ctx context.Context, nu NewUser, id ...string) (User, error) {
	usr := User{
		Name:      nu.Name,
		Email:     nu.Email,
		CreatedAt: time.Now().UTC(),
	}
	if len(id) > 0 {
		usr.ID = id[0]
	}
	if nu.Password != "" {
		if err := usr.SetPassword(nu.Password); err != nil {
			return User{}, err
		}
	}
	return svc.repo.CreateUser(ctx, usr)
}

func (svc *service) QueryAll(ctx context.Context) ([]User, error) {
	return svc.repo.QueryAllUsers(ctx)
}

func (svc *service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *service) SearchByName(ctx context.Context, substr string) ([]User, error) {
	substr = core.CleanString(substr)
	if substr == "" {
		return []User{}, nil
	}
	return svc.repo.SearchUsersByName(ctx, substr)
}

func (svc *service) SetAdminFlag(ctx context.Context, id string, isAdmin bool) error {
	return svc.repo.SetAdminFlag(ctx, id, isAdmin)
}

func (svc *service) SetLastLogin(ctx context.Context, usr User) (User, error) {
	usr.LastLogin = time.Now().UTC()
	return svc.repo.UpdateUser(ctx, usr)
}

func (svc *service) SetPassword(ctx context.Context, usr User, pwd string) (User, error) {
	if err := usr.SetPassword(pwd); err != nil {
		return User{}, err
	}
	return svc.repo.UpdateUser(ctx, usr)
}
