package domain

import (
	"strings"

	"golang.org/x/text/cases"
)

// Theme is a named background preset understood by the vendor.
type Theme string

const (
	ThemeSurpriseMe Theme = "Surprise me"
	ThemeStudio     Theme = "Studio"
	ThemeOutdoors   Theme = "Outdoors"
	ThemeSilk       Theme = "Silk"
	ThemeCafe       Theme = "Cafe"
	ThemeTabletop   Theme = "Tabletop"
	ThemeKitchen    Theme = "Kitchen"
	ThemeFlowers    Theme = "Flowers"
	ThemeNature     Theme = "Nature"
	ThemeBeach      Theme = "Beach"
	ThemeBathroom   Theme = "Bathroom"
	ThemeFurniture  Theme = "Furniture"
	ThemePaint      Theme = "Paint"
	ThemeWater      Theme = "Water"
	ThemePebbles    Theme = "Pebbles"
	ThemeSnow       Theme = "Snow"
)

var themes = []Theme{
	ThemeSurpriseMe,
	ThemeStudio,
	ThemeOutdoors,
	ThemeSilk,
	ThemeCafe,
	ThemeTabletop,
	ThemeKitchen,
	ThemeFlowers,
	ThemeNature,
	ThemeBeach,
	ThemeBathroom,
	ThemeFurniture,
	ThemePaint,
	ThemeWater,
	ThemePebbles,
	ThemeSnow,
}

// Themes returns the theme catalog names in presentation order.
func Themes() []string {
	out := make([]string, 0, len(themes))
	for _, t := range themes {
		out = append(out, string(t))
	}
	return out
}

// CanonicalTheme maps free-form input onto the catalog spelling when it matches
// case-insensitively. Unknown values are returned trimmed but otherwise untouched.
func CanonicalTheme(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	fold := cases.Fold()
	key := fold.String(trimmed)
	for _, t := range themes {
		if fold.String(string(t)) == key {
			return string(t)
		}
	}
	return trimmed
}
