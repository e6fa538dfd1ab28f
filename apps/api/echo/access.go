package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/CooperDXSF9721/Homework-Helpers/core/access"
)

type (
	accessApi struct {
		svc      access.Service
		validate *validator.Validate
	}

	GrantUnlockRequest struct {
		UserID string `json:"user_id" validate:"required"`
	}
)

func registerAccessAPI(g *echo.Group, auth, admin echo.MiddlewareFunc, deps ServerDeps) {
	api := accessApi{
		svc:      deps.AccessSvc,
		validate: deps.Validate,
	}

	pg := g.Group("/posts", auth)
	pg.GET("", api.listPosts)
	pg.POST("", api.createPost, admin)
	pg.POST("/:id/unlock", api.grantUnlock, admin)

	ag := g.Group("/admins", auth)
	ag.GET("", api.listAdmins)
	ag.POST("", api.becomeAdmin)
	ag.GET("/me", api.adminMe)
	ag.PUT("/me/status", api.updateStatus)
}

// Handlers

// listPosts returns every post with gated fields cleared on the ones the
// caller has not unlocked. Admins see everything unlocked.
func (api *accessApi) listPosts(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	posts, err := api.svc.ListPosts(ctx.Request().Context(), usr.ID)
	if err != nil {
		return errors.Wrap(err, "listing posts")
	}
	if posts == nil {
		posts = []access.ListedPost{}
	}
	return ctx.JSON(http.StatusOK, posts)
}

func (api *accessApi) createPost(ctx echo.Context) error {
	var data access.NewPost
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPost")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	post, err := api.svc.CreatePost(ctx.Request().Context(), data, usr)
	if err != nil {
		return errors.Wrap(err, "creating post")
	}
	return ctx.JSON(http.StatusCreated, post)
}

func (api *accessApi) grantUnlock(ctx echo.Context) error {
	var data GrantUnlockRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GrantUnlockRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	adm, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	if err := api.svc.GrantUnlock(ctx.Request().Context(), ctx.Param("id"), data.UserID, adm.ID); err != nil {
		if errors.Is(err, access.ErrPostNotFound) {
			return err
		}
		return errors.Wrap(err, "granting unlock")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Post unlocked for user."})
}

func (api *accessApi) listAdmins(ctx echo.Context) error {
	admins, err := api.svc.ListAdmins(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing admins")
	}
	if admins == nil {
		admins = []access.Admin{}
	}
	return ctx.JSON(http.StatusOK, admins)
}

// becomeAdmin self-promotes the caller, gated by the shared passphrase.
func (api *accessApi) becomeAdmin(ctx echo.Context) error {
	var data access.BecomeAdmin
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to BecomeAdmin")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	adm, err := api.svc.BecomeAdmin(ctx.Request().Context(), usr.ID, data)
	if err != nil {
		if errors.Is(err, access.ErrDenied) {
			return err
		}
		return errors.Wrap(err, "becoming admin")
	}
	return ctx.JSON(http.StatusCreated, adm)
}

func (api *accessApi) adminMe(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	adm, err := api.svc.GetAdmin(ctx.Request().Context(), usr.ID)
	if err != nil {
		if errors.Is(err, access.ErrAdminNotFound) {
			return err
		}
		return errors.Wrap(err, "getting admin record")
	}
	return ctx.JSON(http.StatusOK, adm)
}

func (api *accessApi) updateStatus(ctx echo.Context) error {
	var data access.UpdateStatus
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStatus")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	if err := api.svc.SetAvailability(ctx.Request().Context(), usr.ID, data.Status); err != nil {
		if errors.Is(err, access.ErrAdminNotFound) {
			return err
		}
		return errors.Wrap(err, "updating availability")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Availability updated."})
}
