package validators

import (
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/jordanvelez/shopcore-backend/pkg/errors"
)

type samplePayload struct {
	Email    string `json:"email" validate:"required,email"`
	Quantity int    `json:"quantity" validate:"min=1"`
}

func decode(t *testing.T, body string, dest any) error {
	t.Helper()
	req := httptest.NewRequest("POST", "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return DecodeJSONBody(req, dest)
}

func TestDecodeJSONBodyAcceptsValidPayload(t *testing.T) {
	t.Parallel()

	var payload samplePayload
	if err := decode(t, `{"email":"buyer@example.com","quantity":2}`, &payload); err != nil {
		t.Fatalf("DecodeJSONBody: %v", err)
	}
	if payload.Email != "buyer@example.com" || payload.Quantity != 2 {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestDecodeJSONBodyRejectsMalformedJSON(t *testing.T) {
	t.Parallel()

	var payload samplePayload
	err := decode(t, `{"email":`, &payload)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	t.Parallel()

	var payload samplePayload
	err := decode(t, `{"email":"buyer@example.com","quantity":1,"extra":true}`, &payload)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for unknown field, got %v", err)
	}
}

func TestDecodeJSONBodyReportsFieldErrorsByJSONTag(t *testing.T) {
	t.Parallel()

	var payload samplePayload
	err := decode(t, `{"email":"not-an-email","quantity":0}`, &payload)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("unexpected details type: %T", typed.Details())
	}
	if details["email"] != "must be a valid email" {
		t.Fatalf("unexpected email detail: %q", details["email"])
	}
	if details["quantity"] != "must be at least 1" {
		t.Fatalf("unexpected quantity detail: %q", details["quantity"])
	}
}
