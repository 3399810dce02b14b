package validators

import (
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/tawasol-app/backend/internal/models"
)

func TestValidateSignupRequest(t *testing.T) {
	v := NewValidator()

	valid := &models.CreateLocalUserRequest{
		Username: "amira",
		FullName: "Amira Hassan",
		Email:    "amira@example.com",
		Password: "longenough",
	}
	if err := v.Validate(valid); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}

	invalid := &models.CreateLocalUserRequest{
		Username: "x",
		FullName: "Amira Hassan",
		Email:    "not-an-email",
		Password: "short",
	}
	err := v.Validate(invalid)
	if err == nil {
		t.Fatal("invalid request accepted")
	}
	if _, ok := err.(*echo.HTTPError); !ok {
		t.Fatalf("expected *echo.HTTPError, got %T", err)
	}
}

func TestValidateSendMessageRequest(t *testing.T) {
	v := NewValidator()

	if err := v.Validate(&models.SendMessageRequest{ReceiverID: 2, Content: "hi"}); err != nil {
		t.Fatalf("valid message rejected: %v", err)
	}
	if err := v.Validate(&models.SendMessageRequest{ReceiverID: 2}); err == nil {
		t.Fatal("empty message content accepted")
	}
}
