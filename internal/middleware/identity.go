package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"photogram/internal/domain/models"
	jwtlib "photogram/internal/lib/jwt"
	"photogram/internal/lib/logger/sl"
	"photogram/internal/storage"
	"photogram/internal/transport/http/dto/response"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

const (
	TokenKey  = "token"
	CallerKey = "caller"
)

type UserProvider interface {
	GetUserById(ctx context.Context, userID uuid.UUID) (models.User, error)
}

// RequireToken rejects requests without a valid bearer token with 401.
func RequireToken(secret string) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(secret),
		ContextKey: TokenKey,
		ErrorHandler: func(c echo.Context, err error) error {
			var missing *echojwt.TokenExtractionError
			if errors.As(err, &missing) {
				return c.JSON(http.StatusUnauthorized, response.ErrorResponseWithDetails("not_authorized", "Not Authorized"))
			}
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired jwt").SetInternal(err)
		},
	})
}

// OptionalToken lets anonymous requests through but still rejects a bad token.
func OptionalToken(secret string) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey:             []byte(secret),
		ContextKey:             TokenKey,
		ContinueOnIgnoredError: true,
		ErrorHandler: func(c echo.Context, err error) error {
			var missing *echojwt.TokenExtractionError
			if errors.As(err, &missing) {
				return nil
			}
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired jwt").SetInternal(err)
		},
	})
}

// Identity loads the user named by the token's uid claim into CallerKey.
// Requests without a token pass through with no caller.
func Identity(log *slog.Logger, users UserProvider) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			const op = "middleware.Identity"

			token, ok := c.Get(TokenKey).(*jwt.Token)
			if !ok {
				return next(c)
			}

			userID, err := jwtlib.UserID(token)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token claims").SetInternal(err)
			}

			user, err := users.GetUserById(c.Request().Context(), userID)
			if err != nil {
				if errors.Is(err, storage.ErrUserNotFound) {
					return echo.NewHTTPError(http.StatusUnauthorized, "unknown user")
				}
				log.Error("caller lookup failed",
					slog.String("op", op),
					slog.String("user_id", userID.String()),
					sl.Err(err),
				)
				return echo.NewHTTPError(http.StatusInternalServerError)
			}

			c.Set(CallerKey, &user)

			return next(c)
		}
	}
}

// Caller returns the authenticated user or nil.
func Caller(c echo.Context) *models.User {
	user, _ := c.Get(CallerKey).(*models.User)
	return user
}
