package handlers

import (
	"errors"
	"net/http"
	"time"

	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/tawasol-app/backend/internal/models"
	"github.com/tawasol-app/backend/internal/repositories"
	"golang.org/x/crypto/bcrypt"
)

type AuthHandler struct {
	userRepo       repositories.UserRepository
	firebaseClient *firebaseauth.Client
	jwtSecret      []byte
}

func NewAuthHandler(userRepo repositories.UserRepository, firebaseClient *firebaseauth.Client, jwtSecret string) *AuthHandler {
	return &AuthHandler{
		userRepo:       userRepo,
		firebaseClient: firebaseClient,
		jwtSecret:      []byte(jwtSecret),
	}
}

// RegisterAuthRoutes mounts the unauthenticated auth endpoints.
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/signup", h.Signup)
	g.POST("/signin", h.SignIn)
	g.POST("/firebase", h.FirebaseLogin)
}

// Signup registers a local account with a bcrypt-hashed password.
func (h *AuthHandler) Signup(c echo.Context) error {
	req := new(models.CreateLocalUserRequest)
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	if _, err := h.userRepo.GetUserByEmail(req.Email); err == nil {
		return echo.NewHTTPError(http.StatusConflict, "Email already registered")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to hash password")
	}

	user := &models.User{
		Username: req.Username,
		FullName: req.FullName,
		Email:    req.Email,
		Password: string(hashed),
	}
	if err := h.userRepo.CreateUser(user); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create user")
	}

	token, err := h.issueToken(user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to issue token")
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"token": token,
		"user":  user.PublicProfile(),
	})
}

// SignIn exchanges email+password for a signed JWT.
func (h *AuthHandler) SignIn(c echo.Context) error {
	req := new(models.SignInRequest)
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	user, err := h.userRepo.GetUserByEmail(req.Email)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
	}

	token, err := h.issueToken(user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to issue token")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  user.PublicProfile(),
	})
}

// FirebaseLogin verifies a Firebase ID token and provisions the user row
// on first login.
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	if h.firebaseClient == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Firebase auth is not configured")
	}

	req := new(models.FirebaseLoginRequest)
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	token, err := h.firebaseClient.VerifyIDToken(c.Request().Context(), req.IDToken)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Firebase token")
	}

	user, err := h.userRepo.GetUserByFirebaseUID(token.UID)
	if errors.Is(err, repositories.ErrNotFound) {
		email, _ := token.Claims["email"].(string)
		name, _ := token.Claims["name"].(string)
		user = &models.User{
			Username:    token.UID,
			FullName:    name,
			Email:       email,
			FirebaseUID: token.UID,
		}
		if err := h.userRepo.CreateUser(user); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create user")
		}
	} else if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to look up user")
	}

	jwtToken, err := h.issueToken(user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to issue token")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"token": jwtToken,
		"user":  user.PublicProfile(),
	})
}

func (h *AuthHandler) issueToken(user *models.User) (string, error) {
	claims := &models.JwtCustomClaims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(72 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(h.jwtSecret)
}
