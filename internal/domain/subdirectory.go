package domain

import (
	"fmt"
	"strings"
)

// Subdirectory names one of the fixed storage buckets under the storage root.
type Subdirectory string

const (
	SubdirOriginals Subdirectory = "originals"
	SubdirUpscale   Subdirectory = "upscale"
	SubdirRemoved   Subdirectory = "removed"
	SubdirCreated   Subdirectory = "created"
	SubdirInpaint   Subdirectory = "inpaint"
)

var subdirectories = []Subdirectory{
	SubdirOriginals,
	SubdirUpscale,
	SubdirRemoved,
	SubdirCreated,
	SubdirInpaint,
}

// Subdirectories returns every storage bucket in display order.
func Subdirectories() []Subdirectory {
	out := make([]Subdirectory, len(subdirectories))
	copy(out, subdirectories)
	return out
}

// ParseSubdirectory maps a path segment onto a known bucket.
func ParseSubdirectory(raw string) (Subdirectory, error) {
	candidate := Subdirectory(strings.ToLower(strings.TrimSpace(raw)))
	for _, s := range subdirectories {
		if s == candidate {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: unknown subdirectory %q", ErrNotFound, raw)
}

func (s Subdirectory) String() string {
	return string(s)
}
