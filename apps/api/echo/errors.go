package echoapi

import (
	"net/http"
	"reflect"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/CooperDXSF9721/Homework-Helpers/core"
	"github.com/CooperDXSF9721/Homework-Helpers/core/access"
	"github.com/CooperDXSF9721/Homework-Helpers/core/chat"
	"github.com/CooperDXSF9721/Homework-Helpers/core/user"
)

var (
	errUnauthorized  = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errHttpForbidden = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHttpNotFound  = echo.NewHTTPError(http.StatusNotFound, "not found")
)

// sentinel service errors mapped to user-facing status codes and copy
var errStatusMap = map[error]*echo.HTTPError{
	user.ErrInvalidCredentials: echo.NewHTTPError(http.StatusBadRequest, "Invalid email or password"),
	user.ErrWeakPassword:       echo.NewHTTPError(http.StatusBadRequest, "Password should be at least 6 characters"),
	user.ErrInvalidToken:       echo.NewHTTPError(http.StatusBadRequest, "invalid or already-used token"),
	user.ErrTokenExpired:       echo.NewHTTPError(http.StatusBadRequest, "token expired"),
	user.ErrNotSupported:       echo.NewHTTPError(http.StatusNotImplemented, "not supported by this identity provider"),
	user.ErrNotFound:           errHttpNotFound,
	access.ErrAdminNotFound:    errHttpNotFound,
	access.ErrPostNotFound:     errHttpNotFound,
	access.ErrDenied:           echo.NewHTTPError(http.StatusForbidden, access.ErrDenied.Error()),
	chat.ErrNotFound:           errHttpNotFound,
	chat.ErrAdminAway:          echo.NewHTTPError(http.StatusConflict, chat.ErrAdminAway.Error()),
	chat.ErrEmptyMessage:       echo.NewHTTPError(http.StatusBadRequest, chat.ErrEmptyMessage.Error()),
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		cause := errors.Cause(err)
		// uncomparable error types (e.g. validator.ValidationErrors, a slice)
		// cannot be used as map keys; they are handled by the type switch below
		if cause != nil && reflect.TypeOf(cause).Comparable() {
			if herr, ok := errStatusMap[cause]; ok {
				cause = herr
			}
		}

		switch origErr := cause.(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(translator)
			}
			code = http.StatusBadRequest
			message = fldErrs
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		default: // any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg

			args := []interface{}{errors.Wrap(err, msg)}
			if usr, ok := ctx.Get(contextUserKey).(user.User); ok {
				args = append(args, usr)
			}
			logger.Error(msg, args...)

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if ctx.Echo().Debug {
			message = err.Error()
		}
		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
