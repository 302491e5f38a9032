package domain

import (
	"errors"
	"testing"
)

func TestParseSubdirectory(t *testing.T) {
	for _, s := range Subdirectories() {
		got, err := ParseSubdirectory(string(s))
		if err != nil {
			t.Fatalf("ParseSubdirectory(%q) error: %v", s, err)
		}
		if got != s {
			t.Fatalf("ParseSubdirectory(%q) = %q", s, got)
		}
	}
	if got, err := ParseSubdirectory(" Upscale "); err != nil || got != SubdirUpscale {
		t.Fatalf("expected case-insensitive match, got %q, %v", got, err)
	}
	if _, err := ParseSubdirectory("../etc"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSubdirectoriesReturnsCopy(t *testing.T) {
	list := Subdirectories()
	list[0] = "mutated"
	if Subdirectories()[0] != SubdirOriginals {
		t.Fatalf("catalog mutated through returned slice")
	}
}

func TestCanonicalTheme(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "studio", want: "Studio"},
		{in: "  SURPRISE ME ", want: "Surprise me"},
		{in: "Pebbles", want: "Pebbles"},
		{in: "Moonbase", want: "Moonbase"},
		{in: "   ", want: ""},
	}
	for _, tc := range tests {
		if got := CanonicalTheme(tc.in); got != tc.want {
			t.Fatalf("CanonicalTheme(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
	if len(Themes()) != 16 {
		t.Fatalf("expected 16 themes, got %d", len(Themes()))
	}
}
