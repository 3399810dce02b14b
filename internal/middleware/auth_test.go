package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/tawasol-app/backend/internal/models"
)

func signToken(t *testing.T, userID uint, secret string, expiresAt time.Time) string {
	t.Helper()
	claims := &models.JwtCustomClaims{
		UserID: userID,
		Email:  "user@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

const testSecret = "test-signing-secret"

func invoke(t *testing.T, authHeader string) (*echo.HTTPError, uint) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	c := e.NewContext(req, httptest.NewRecorder())

	var seenID uint
	handler := AuthMiddleware(testSecret, nil, nil)(func(c echo.Context) error {
		seenID = UserID(c)
		return c.NoContent(http.StatusOK)
	})
	err := handler(c)
	if err == nil {
		return nil, seenID
	}
	return err.(*echo.HTTPError), seenID
}

func TestAuthMiddlewareValidToken(t *testing.T) {
	token := signToken(t, 42, testSecret, time.Now().Add(time.Hour))

	httpErr, userID := invoke(t, "Bearer "+token)
	if httpErr != nil {
		t.Fatalf("valid token rejected: %v", httpErr)
	}
	if userID != 42 {
		t.Fatalf("expected user id 42 in context, got %d", userID)
	}
}

func TestAuthMiddlewareRejectsExpiredToken(t *testing.T) {
	token := signToken(t, 42, testSecret, time.Now().Add(-time.Hour))

	httpErr, _ := invoke(t, "Bearer "+token)
	if httpErr == nil || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for expired token, got %v", httpErr)
	}
}

func TestAuthMiddlewareRejectsWrongSecret(t *testing.T) {
	token := signToken(t, 42, "some-other-secret", time.Now().Add(time.Hour))

	httpErr, _ := invoke(t, "Bearer "+token)
	if httpErr == nil || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad signature, got %v", httpErr)
	}
}

func TestAuthMiddlewareRejectsMissingHeader(t *testing.T) {
	httpErr, _ := invoke(t, "")
	if httpErr == nil || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for missing header, got %v", httpErr)
	}
}

func TestAuthMiddlewareRejectsMalformedHeader(t *testing.T) {
	httpErr, _ := invoke(t, "Token abc")
	if httpErr == nil || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for malformed header, got %v", httpErr)
	}
}
