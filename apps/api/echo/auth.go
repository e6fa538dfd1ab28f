package echoapi

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/CooperDXSF9721/Homework-Helpers/core/access"
	"github.com/CooperDXSF9721/Homework-Helpers/core/user"
)

const contextUserKey = "user"

// authMiddleware resolves the Bearer token to a User via the identity
// provider and stores it in the request context.
func authMiddleware(identity user.Identity) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			token, err := bearerToken(ctx)
			if err != nil {
				return err
			}
			usr, err := identity.VerifyToken(ctx.Request().Context(), token)
			if err != nil {
				if errors.Is(err, user.ErrInvalidToken) || errors.Is(err, user.ErrTokenExpired) {
					return errUnauthorized
				}
				return errors.Wrap(err, "verifying token")
			}
			ctx.Set(contextUserKey, usr)
			return next(ctx)
		}
	}
}

// adminMiddleware gates a route on the caller having an Admin record. The
// roster is authoritative; the token's claims are not trusted for this.
func adminMiddleware(accessSvc access.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			usr, err := getContextUser(ctx)
			if err != nil {
				return err
			}
			isAdmin, err := accessSvc.IsAdmin(ctx.Request().Context(), usr.ID)
			if err != nil {
				return errors.Wrap(err, "checking admin status")
			}
			if !isAdmin {
				return errHttpForbidden
			}
			return next(ctx)
		}
	}
}

func bearerToken(ctx echo.Context) (string, error) {
	header := ctx.Request().Header.Get(echo.HeaderAuthorization)
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", errUnauthorized
	}
	return strings.TrimSpace(header[len(prefix):]), nil
}

func getContextUser(ctx echo.Context) (user.User, error) {
	if usr, ok := ctx.Get(contextUserKey).(user.User); ok {
		return usr, nil
	}
	return user.User{}, errUnauthorized
}
