package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/CooperDXSF9721/Homework-Helpers/core/user"
)

type (
	userApi struct {
		identity   user.Identity
		svc        user.Service
		validate   *validator.Validate
		translator ut.Translator
	}

	LoginResponse struct {
		Token string    `json:"token"`
		User  user.User `json:"user"`
	}

	SuccessResponse struct {
		Success string `json:"success"`
	}
)

func registerUserAPI(g *echo.Group, auth, admin echo.MiddlewareFunc, deps ServerDeps) {
	api := userApi{
		identity:   deps.Identity,
		svc:        deps.UserSvc,
		validate:   deps.Validate,
		translator: deps.Translator,
	}

	ug := g.Group("/users")

	// un-authed endpoints
	// TODO: rate limit `/password-reset` & `/password-reset-confirm`
	ug.POST("/signup", api.signup)
	ug.POST("/login", api.login)
	ug.POST("/password-reset", api.resetPassword)
	ug.POST("/password-reset-confirm", api.confirmPasswordReset)

	// authed endpoints
	ag := ug.Group("", auth)
	ag.GET("/me", api.me)
	ag.GET("", api.search, admin)
}

// Handlers

func (api *userApi) signup(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	if err := data.Validate(ctx.Request().Context(), api.validate, api.svc); err != nil {
		return err
	}

	usr, err := api.identity.SignUp(ctx.Request().Context(), data)
	if err != nil {
		if errors.Is(err, user.ErrEmailExists) || errors.Is(err, user.ErrWeakPassword) {
			return err
		}
		return errors.Wrap(err, "signing user up")
	}
	return ctx.JSON(http.StatusCreated, usr)
}

func (api *userApi) login(ctx echo.Context) error {
	var data user.Credentials
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Credentials")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	token, usr, err := api.identity.Authenticate(ctx.Request().Context(), data.Email, data.Password)
	if err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) || errors.Is(err, user.ErrNotSupported) {
			return err
		}
		return errors.Wrap(err, "authenticating")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token, User: usr})
}

func (api *userApi) resetPassword(ctx echo.Context) error {
	var data user.PasswordReset
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PasswordReset")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if err := api.identity.SendPasswordReset(ctx.Request().Context(), data.Email); err != nil {
		// do not return errors to attackers
		ctx.Logger().Errorf("%+v", errors.Wrap(err, "requesting password reset"))
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{
		Success: "If the email address supplied is associated with an account on this system, " +
			"an email will arrive in your inbox shortly with instructions to reset your password.",
	})
}

func (api *userApi) confirmPasswordReset(ctx echo.Context) error {
	var data user.ConfirmPasswordReset
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ConfirmPasswordReset")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if err := api.identity.ConfirmPasswordReset(ctx.Request().Context(), data); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Password has been reset with the new password."})
}

func (api *userApi) me(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, usr)
}

// search does a case-insensitive substring match on user names; admins use it
// to pick the account to grant an unlock to.
func (api *userApi) search(ctx echo.Context) error {
	users, err := api.svc.SearchByName(ctx.Request().Context(), ctx.QueryParam("search"))
	if err != nil {
		return errors.Wrap(err, "searching users")
	}
	if users == nil {
		users = []user.User{}
	}
	return ctx.JSON(http.StatusOK, users)
}
