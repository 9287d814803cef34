package services_test

import (
	"errors"
	"strings"
	"testing"

	"gavel/internal/services"
)

func TestWrapTagsMarker(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrValidation, "draft-opinion", "submit", "missing holding", base)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation marker, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
	if !strings.Contains(err.Error(), "draft-opinion: submit: missing holding") {
		t.Fatalf("unexpected detail: %v", err)
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "transcribe", "poll", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
}

func TestRetryable(t *testing.T) {
	cases := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"nil", nil, false},
		{"transient", services.Wrap(services.ErrTransient, "s", "o", "", nil), true},
		{"external", services.Wrap(services.ErrExternalService, "s", "o", "", nil), true},
		{"timeout", services.Wrap(services.ErrTimeout, "s", "o", "", nil), true},
		{"not found", services.Wrap(services.ErrNotFound, "s", "o", "", nil), true},
		{"validation", services.Wrap(services.ErrValidation, "s", "o", "", nil), false},
		{"configuration", services.Wrap(services.ErrConfiguration, "s", "o", "", nil), false},
	}
	for _, tc := range cases {
		if got := services.Retryable(tc.err); got != tc.retryable {
			t.Fatalf("%s: Retryable = %v, want %v", tc.name, got, tc.retryable)
		}
	}
}
