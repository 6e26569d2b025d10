package middleware

import (
	"context"
	"net/http"
	"strings"

	"stocklink/internal/common"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// JWTMiddleware validates the bearer token and puts the owner id (sub)
// and the acting identity (name) into the request context. The ledger
// core trusts these values; authentication itself lives outside.
func JWTMiddleware(jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing token")
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token format")
			}

			token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
				return []byte(jwtSecret), nil
			})
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			if !token.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "Token not valid")
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid claims")
			}

			sub, ok := claims["sub"].(string)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing owner_id in token")
			}

			ownerID, err := uuid.Parse(sub)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid owner_id format")
			}

			actor := ownerID.String()
			if name, ok := claims["name"].(string); ok && name != "" {
				actor = name
			}

			ctx := context.WithValue(c.Request().Context(), common.OwnerIDKey, ownerID)
			ctx = context.WithValue(ctx, common.ActorKey, actor)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// GetOwnerIDFromContext extracts the owner ID from the request context
func GetOwnerIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	return common.GetOwnerIDFromContext(ctx)
}

// GetActorFromContext extracts the acting identity from the request context
func GetActorFromContext(ctx context.Context) (string, bool) {
	return common.GetActorFromContext(ctx)
}
