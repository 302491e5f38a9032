package processing

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"pebblely/internal/domain"
)

func ptr[T any](v T) *T { return &v }

func TestBuildBackgroundOmitsBlankTheme(t *testing.T) {
	proc, _ := newTestProcessor(t, &fakeVendor{})

	tests := []struct {
		name  string
		theme *string
		want  *string
	}{
		{name: "absent", theme: nil, want: nil},
		{name: "empty", theme: ptr(""), want: nil},
		{name: "set", theme: ptr("Studio"), want: ptr("Studio")},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req, err := proc.BuildCreateBackgroundRequest(context.Background(), BackgroundParams{Theme: tc.theme}, nil, nil)
			if err != nil {
				t.Fatalf("build: %v", err)
			}
			switch {
			case tc.want == nil && req.Theme != nil:
				t.Fatalf("theme should be omitted, got %q", *req.Theme)
			case tc.want != nil && (req.Theme == nil || *req.Theme != *tc.want):
				t.Fatalf("theme = %v, want %q", req.Theme, *tc.want)
			}

			raw, _ := json.Marshal(req)
			var payload map[string]any
			_ = json.Unmarshal(raw, &payload)
			_, present := payload["theme"]
			if present != (tc.want != nil) {
				t.Fatalf("theme key present = %v, payload %s", present, raw)
			}
		})
	}
}

func TestBuildBackgroundStyleColorRule(t *testing.T) {
	proc, _ := newTestProcessor(t, &fakeVendor{})

	req, err := proc.BuildCreateBackgroundRequest(context.Background(), BackgroundParams{StyleColor: ptr("")}, nil, nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if req.StyleColor != nil {
		t.Fatalf("empty style color should be omitted")
	}
	req, _ = proc.BuildCreateBackgroundRequest(context.Background(), BackgroundParams{StyleColor: ptr("#112233")}, nil, nil)
	if req.StyleColor == nil || *req.StyleColor != "#112233" {
		t.Fatalf("style color = %v", req.StyleColor)
	}
}

func TestBuildBackgroundCopiesDescriptionAndNegative(t *testing.T) {
	proc, _ := newTestProcessor(t, &fakeVendor{})
	params := BackgroundParams{Description: ptr("on a wooden deck"), Negative: ptr("people")}

	req, err := proc.BuildCreateBackgroundRequest(context.Background(), params, nil, nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if req.Description == nil || *req.Description != "on a wooden deck" {
		t.Fatalf("description = %v", req.Description)
	}
	if req.Negative == nil || *req.Negative != "people" {
		t.Fatalf("negative = %v", req.Negative)
	}

	req, _ = proc.BuildCreateBackgroundRequest(context.Background(), BackgroundParams{}, nil, nil)
	if req.Description != nil || req.Negative != nil {
		t.Fatalf("absent description and negative should stay nil")
	}
}

func TestBuildBackgroundNeverSerializesEmptyStrings(t *testing.T) {
	proc, _ := newTestProcessor(t, &fakeVendor{})
	params := BackgroundParams{Theme: ptr(""), Description: ptr(""), StyleColor: ptr(""), Negative: ptr("")}

	created, err := proc.BuildCreateBackgroundRequest(context.Background(), params, nil, nil)
	if err != nil {
		t.Fatalf("build create: %v", err)
	}
	inpaint, err := proc.BuildInpaintRequest(context.Background(), Upload{Filename: "mask.png", Data: []byte("m")}, params)
	if err != nil {
		t.Fatalf("build inpaint: %v", err)
	}

	for name, req := range map[string]any{"create": created, "inpaint": inpaint} {
		raw, err := json.Marshal(req)
		if err != nil {
			t.Fatalf("%s: marshal: %v", name, err)
		}
		var payload map[string]any
		if err := json.Unmarshal(raw, &payload); err != nil {
			t.Fatalf("%s: unmarshal: %v", name, err)
		}
		for _, key := range []string{"theme", "description", "style_color", "negative"} {
			if _, ok := payload[key]; ok {
				t.Fatalf("%s: %s should be omitted: %s", name, key, raw)
			}
		}
	}
}

func TestBuildCreateBackgroundDimensions(t *testing.T) {
	proc, _ := newTestProcessor(t, &fakeVendor{})

	req, err := proc.BuildCreateBackgroundRequest(context.Background(), BackgroundParams{}, ptr(100), nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if req.Height == nil || *req.Height != 100 {
		t.Fatalf("height = %v", req.Height)
	}
	if req.Width != nil {
		t.Fatalf("width should be unset")
	}
	raw, _ := json.Marshal(req)
	var payload map[string]any
	_ = json.Unmarshal(raw, &payload)
	if _, ok := payload["width"]; ok {
		t.Fatalf("width key should be absent: %s", raw)
	}
}

func TestBuildBackgroundStyleImage(t *testing.T) {
	proc, store := newTestProcessor(t, &fakeVendor{})

	req, err := proc.BuildCreateBackgroundRequest(context.Background(), BackgroundParams{StyleImage: &Upload{Filename: "empty.png"}}, nil, nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if req.StyleImage != nil {
		t.Fatalf("empty style image should be ignored")
	}
	if _, err := os.Stat(filepath.Join(store.BasePath(), "originals", "empty.png")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("empty style image should not be stored")
	}

	style := Upload{Filename: "style.jpg", Data: []byte("style bytes")}
	req, err = proc.BuildCreateBackgroundRequest(context.Background(), BackgroundParams{StyleImage: &style}, nil, nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if req.StyleImage == nil || *req.StyleImage != base64.StdEncoding.EncodeToString(style.Data) {
		t.Fatalf("style image = %v", req.StyleImage)
	}
	if got := readStored(t, store, domain.SubdirOriginals, "style.jpg"); string(got) != "style bytes" {
		t.Fatalf("stored style image = %q", got)
	}
}

func TestBuildInpaintRequestStoresMask(t *testing.T) {
	proc, store := newTestProcessor(t, &fakeVendor{})
	mask := Upload{Filename: "mask.png", Data: []byte{0, 0, 255}}

	req, err := proc.BuildInpaintRequest(context.Background(), mask, BackgroundParams{Theme: ptr("Silk")})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if req.Mask != base64.StdEncoding.EncodeToString(mask.Data) {
		t.Fatalf("mask = %q", req.Mask)
	}
	if req.Theme == nil || *req.Theme != "Silk" {
		t.Fatalf("theme = %v", req.Theme)
	}
	if req.Image != "" {
		t.Fatalf("image is set per file, got %q", req.Image)
	}
	if got := readStored(t, store, domain.SubdirOriginals, "mask.png"); len(got) != 3 {
		t.Fatalf("stored mask = %v", got)
	}
}

func TestBuildInpaintRequestMaskFailure(t *testing.T) {
	proc, _ := newTestProcessor(t, &fakeVendor{})
	_, err := proc.BuildInpaintRequest(context.Background(), Upload{Filename: "", Data: []byte("m")}, BackgroundParams{})
	if !errors.Is(err, domain.ErrStorage) {
		t.Fatalf("expected storage error, got %v", err)
	}
}
