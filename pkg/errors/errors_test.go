package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestNewCarriesCodeAndMessage(t *testing.T) {
	t.Parallel()

	err := New(CodeNotFound, "cart not found")
	if err.Code() != CodeNotFound {
		t.Fatalf("unexpected code: %s", err.Code())
	}
	if err.Message() != "cart not found" {
		t.Fatalf("unexpected message: %s", err.Message())
	}
	if err.Error() != "NOT_FOUND: cart not found" {
		t.Fatalf("unexpected Error(): %s", err.Error())
	}
}

func TestWrapPreservesCause(t *testing.T) {
	t.Parallel()

	cause := stdErrors.New("connection refused")
	err := Wrap(CodeDependency, cause, "redis unavailable")
	if !stdErrors.Is(err, cause) {
		t.Fatal("expected cause to survive unwrapping")
	}
	if err.Code() != CodeDependency {
		t.Fatalf("unexpected code: %s", err.Code())
	}
}

func TestWrapNilCause(t *testing.T) {
	t.Parallel()

	err := Wrap(CodeInternal, nil, "boom")
	if err.Unwrap() != nil {
		t.Fatal("expected no cause")
	}
}

func TestAsFindsTypedErrorInChain(t *testing.T) {
	t.Parallel()

	inner := New(CodeConflict, "already converted")
	wrapped := fmt.Errorf("place order: %w", inner)

	typed := As(wrapped)
	if typed == nil {
		t.Fatal("expected typed error in chain")
	}
	if typed.Code() != CodeConflict {
		t.Fatalf("unexpected code: %s", typed.Code())
	}
}

func TestAsReturnsNilForPlainError(t *testing.T) {
	t.Parallel()

	if As(stdErrors.New("plain")) != nil {
		t.Fatal("expected nil for untyped error")
	}
	if As(nil) != nil {
		t.Fatal("expected nil for nil error")
	}
}

func TestWithDetails(t *testing.T) {
	t.Parallel()

	err := New(CodeValidation, "validation failed").WithDetails(map[string]string{"quantity": "must be at least 1"})
	details, ok := err.Details().(map[string]string)
	if !ok {
		t.Fatalf("unexpected details type: %T", err.Details())
	}
	if details["quantity"] != "must be at least 1" {
		t.Fatalf("unexpected details: %v", details)
	}
}

func TestMetadataFor(t *testing.T) {
	t.Parallel()

	if got := MetadataFor(CodeTimeout); got.HTTPStatus != http.StatusGatewayTimeout || !got.Retryable {
		t.Fatalf("unexpected timeout metadata: %+v", got)
	}
	if got := MetadataFor(CodeValidation); got.HTTPStatus != http.StatusBadRequest || !got.DetailsAllowed {
		t.Fatalf("unexpected validation metadata: %+v", got)
	}

	// Unknown codes fall back to the internal error mapping.
	if got := MetadataFor(Code("NO_SUCH_CODE")); got.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("unexpected fallback metadata: %+v", got)
	}
}

func TestNilErrorDefaults(t *testing.T) {
	t.Parallel()

	var err *Error
	if err.Code() != CodeInternal {
		t.Fatalf("expected internal code for nil error, got %s", err.Code())
	}
	if err.Message() != "" || err.Details() != nil || err.Unwrap() != nil {
		t.Fatal("expected zero values for nil error")
	}
}
