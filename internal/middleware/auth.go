package middleware

import (
	"net/http"
	"strings"

	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/tawasol-app/backend/internal/models"
	"github.com/tawasol-app/backend/internal/repositories"
)

// ContextUserID is the echo context key the resolved user id is stored under.
const ContextUserID = "userID"

// AuthMiddleware verifies a bearer token, either a locally issued JWT or a
// Firebase ID token, and stores the resolved user id in the context.
// Ownership decisions downstream compare this id directly; nothing else.
// The signing secret comes from the loaded configuration and must match the
// one the auth handler signs with.
func AuthMiddleware(jwtSecret string, firebaseClient *firebaseauth.Client, userRepo repositories.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing Authorization header")
			}

			// Expecting "Bearer <token>"
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Authorization header format")
			}
			tokenString := parts[1]

			if userID, ok := parseLocalJWT(tokenString, jwtSecret); ok {
				c.Set(ContextUserID, userID)
				return next(c)
			}

			if firebaseClient != nil {
				token, err := firebaseClient.VerifyIDToken(c.Request().Context(), tokenString)
				if err == nil {
					user, err := userRepo.GetUserByFirebaseUID(token.UID)
					if err != nil {
						return echo.NewHTTPError(http.StatusUnauthorized, "Authenticated user not registered")
					}
					c.Set(ContextUserID, user.ID)
					return next(c)
				}
			}

			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
		}
	}
}

func parseLocalJWT(tokenString, secret string) (uint, bool) {
	claims := &models.JwtCustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return 0, false
	}
	return claims.UserID, true
}

// UserID extracts the authenticated user id stored by AuthMiddleware.
func UserID(c echo.Context) uint {
	if id, ok := c.Get(ContextUserID).(uint); ok {
		return id
	}
	return 0
}
