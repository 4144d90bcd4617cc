package services_test

import (
	"errors"
	"io/fs"
	"strings"
	"testing"

	"murmur/internal/services"
)

func TestWrapTagsMarkerAndCause(t *testing.T) {
	cause := fs.ErrNotExist
	err := services.Wrap(services.ErrNotFound, "signature", "stat", "file vanished", cause)

	if !errors.Is(err, services.ErrNotFound) {
		t.Fatal("expected marker to survive wrapping")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatal("expected cause to survive wrapping")
	}
	for _, want := range []string{"signature", "stat", "file vanished"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q missing %q", err, want)
		}
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatal("nil marker should default to transient")
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err)
	}
}

func TestIsDeferrable(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{services.Wrap(services.ErrTransient, "signature", "sample", "still growing", nil), true},
		{services.Wrap(services.ErrNotFound, "signature", "stat", "", nil), true},
		{services.Wrap(services.ErrExternalTool, "whisper", "transcribe", "", errors.New("boom")), false},
		{services.Wrap(services.ErrStorage, "ledger", "record", "", errors.New("disk full")), false},
	}
	for _, tc := range cases {
		if got := services.IsDeferrable(tc.err); got != tc.want {
			t.Fatalf("IsDeferrable(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}
