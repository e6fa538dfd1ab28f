package echoapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/CooperDXSF9721/Homework-Helpers/core/access"
	"github.com/CooperDXSF9721/Homework-Helpers/core/chat"
	"github.com/CooperDXSF9721/Homework-Helpers/core/user"
)

type chatApi struct {
	svc       chat.Service
	accessSvc access.Service
	validate  *validator.Validate
}

func registerChatAPI(g *echo.Group, auth echo.MiddlewareFunc, deps ServerDeps) {
	api := chatApi{
		svc:       deps.ChatSvc,
		accessSvc: deps.AccessSvc,
		validate:  deps.Validate,
	}

	cg := g.Group("/chats", auth)
	cg.GET("", api.list)
	cg.POST("", api.request)
	cg.GET("/:id/messages", api.stream)
	cg.POST("/:id/messages", api.send)
	cg.PUT("/:id/close", api.close)
}

// Handlers

// list returns the caller's active chats; admins see every active chat.
func (api *chatApi) list(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	isAdmin, err := api.accessSvc.IsAdmin(ctx.Request().Context(), usr.ID)
	if err != nil {
		return errors.Wrap(err, "checking admin status")
	}

	chats, err := api.svc.List(ctx.Request().Context(), usr.ID, isAdmin)
	if err != nil {
		return errors.Wrap(err, "listing chats")
	}
	if chats == nil {
		chats = []chat.Chat{}
	}
	return ctx.JSON(http.StatusOK, chats)
}

func (api *chatApi) request(ctx echo.Context) error {
	var data chat.NewChat
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewChat")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	c, err := api.svc.Request(ctx.Request().Context(), usr, data.AdminID)
	if err != nil {
		if errors.Is(err, chat.ErrAdminAway) || errors.Is(err, access.ErrAdminNotFound) {
			return err
		}
		return errors.Wrap(err, "requesting chat")
	}
	return ctx.JSON(http.StatusCreated, c)
}

// stream serves the chat's message feed as server-sent events: each event
// carries the full, sorted message list. The feed stays open until the client
// disconnects.
func (api *chatApi) stream(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	if err = api.checkParticipant(ctx, usr); err != nil {
		return err
	}

	reqCtx := ctx.Request().Context()
	sub, err := api.svc.Open(reqCtx, ctx.Param("id"))
	if err != nil {
		if errors.Is(err, chat.ErrNotFound) {
			return err
		}
		return errors.Wrap(err, "opening chat")
	}
	defer sub.Cancel()

	resp := ctx.Response()
	resp.Header().Set(echo.HeaderContentType, "text/event-stream")
	resp.Header().Set("Cache-Control", "no-cache")
	resp.Header().Set("Connection", "keep-alive")
	resp.WriteHeader(http.StatusOK)
	resp.Flush()

	for {
		select {
		case <-reqCtx.Done():
			return nil
		case msgs, ok := <-sub.Updates():
			if !ok {
				return nil
			}
			data, err := json.Marshal(msgs)
			if err != nil {
				return errors.Wrap(err, "marshaling messages")
			}
			if _, err = fmt.Fprintf(resp, "data: %s\n\n", data); err != nil {
				return nil // client gone
			}
			resp.Flush()
		}
	}
}

func (api *chatApi) send(ctx echo.Context) error {
	var data chat.NewMessage
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMessage")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	if err = api.checkParticipant(ctx, usr); err != nil {
		return err
	}

	if err := api.svc.Send(ctx.Request().Context(), ctx.Param("id"), usr.ID, usr.Name, data.Text); err != nil {
		if errors.Is(err, chat.ErrNotFound) || errors.Is(err, chat.ErrEmptyMessage) {
			return err
		}
		return errors.Wrap(err, "sending message")
	}
	return ctx.JSON(http.StatusCreated, SuccessResponse{Success: "Message sent."})
}

func (api *chatApi) close(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	if err = api.checkParticipant(ctx, usr); err != nil {
		return err
	}

	if err := api.svc.Close(ctx.Request().Context(), ctx.Param("id")); err != nil {
		if errors.Is(err, chat.ErrNotFound) {
			return err
		}
		return errors.Wrap(err, "closing chat")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Chat closed."})
}

// checkParticipant allows the chat's client and any admin through.
func (api *chatApi) checkParticipant(ctx echo.Context, usr user.User) error {
	c, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Is(err, chat.ErrNotFound) {
			return err
		}
		return errors.Wrap(err, "getting chat")
	}
	if c.ClientID == usr.ID {
		return nil
	}
	isAdmin, err := api.accessSvc.IsAdmin(ctx.Request().Context(), usr.ID)
	if err != nil {
		return errors.Wrap(err, "checking admin status")
	}
	if !isAdmin {
		return errHttpForbidden
	}
	return nil
}
