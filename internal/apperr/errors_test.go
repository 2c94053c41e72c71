package apperr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/dkovac/dno-radar/internal/apperr"
)

func TestNewValidation(t *testing.T) {
	err := apperr.NewValidation("field is required")

	if err.Error() != "field is required" {
		t.Errorf("expected 'field is required', got %q", err.Error())
	}
	if err.Unwrap() != nil {
		t.Errorf("expected nil unwrap, got %v", err.Unwrap())
	}
}

func TestNewValidationWrap(t *testing.T) {
	inner := fmt.Errorf("parse failed")
	err := apperr.NewValidationWrap("invalid response", inner)

	if err.Error() != "invalid response: parse failed" {
		t.Errorf("expected 'invalid response: parse failed', got %q", err.Error())
	}
	if !errors.Is(err, inner) {
		t.Error("expected Unwrap to return inner error")
	}
}

func TestValidationError_SurvivesFmtWrapping(t *testing.T) {
	original := apperr.NewValidation("empty payload")

	wrapped := fmt.Errorf("failed to ingest: %w", original)
	doubleWrapped := fmt.Errorf("storage error: %w", wrapped)

	var ve *apperr.ValidationError
	if !errors.As(doubleWrapped, &ve) {
		t.Fatal("errors.As should find ValidationError through double wrapping")
	}
	if ve.Message != "empty payload" {
		t.Errorf("expected 'empty payload', got %q", ve.Message)
	}
}

func TestNotFoundError(t *testing.T) {
	err := apperr.NewNotFound("raw document", "abc123")

	if err.Error() != "raw document not found: abc123" {
		t.Errorf("unexpected message: %q", err.Error())
	}

	wrapped := fmt.Errorf("lookup failed: %w", err)
	var nf *apperr.NotFoundError
	if !errors.As(wrapped, &nf) {
		t.Fatal("errors.As should find NotFoundError through wrapping")
	}
}

func TestValidationError_NotFoundForPlainErrors(t *testing.T) {
	plain := fmt.Errorf("database connection failed")
	wrapped := fmt.Errorf("storage error: %w", plain)

	var ve *apperr.ValidationError
	if errors.As(wrapped, &ve) {
		t.Fatal("errors.As should NOT find ValidationError in plain error chain")
	}
}
