package domain

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Theme selects the badge palette.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

const (
	MinScale     = 0.5
	MaxScale     = 2.0
	DefaultScale = 1.0
)

// RawQuery carries the query string values exactly as received.
type RawQuery struct {
	PageID string
	Theme  string
	Scale  string
	Glow   string
}

// Params are the resolved options of one badge request.
type Params struct {
	PageID string
	Theme  Theme
	Scale  float64
	GlowOn bool
}

// Resolve applies defaults and coercion rules to raw.
func Resolve(raw RawQuery, defaultPageID string) Params {
	pageID := raw.PageID
	if pageID == "" {
		pageID = defaultPageID
	}
	return Params{
		PageID: pageID,
		Theme:  ParseTheme(raw.Theme),
		Scale:  ParseScale(raw.Scale),
		GlowOn: ParseGlow(raw.Glow),
	}
}

// ParseTheme is a two-way branch: "dark" in any case (or nothing) is dark,
// every other value is light.
func ParseTheme(s string) Theme {
	if s == "" || strings.ToLower(s) == string(ThemeDark) {
		return ThemeDark
	}
	return ThemeLight
}

// ParseScale returns DefaultScale for empty or non-numeric input and clamps
// everything else to [MinScale, MaxScale]. Accepted: decimals with optional
// exponent, "Infinity" and unsigned 0x/0o/0b integers. "inf", "nan" and digit
// separators are not numbers here.
func ParseScale(s string) float64 {
	v, ok := parseNumber(strings.TrimSpace(s))
	if !ok || math.IsNaN(v) {
		return DefaultScale
	}
	return math.Max(MinScale, math.Min(MaxScale, v))
}

var decimalNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

func parseNumber(s string) (float64, bool) {
	switch s {
	case "":
		return 0, false
	case "Infinity", "+Infinity":
		return math.Inf(1), true
	case "-Infinity":
		return math.Inf(-1), true
	}

	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			n, err := strconv.ParseUint(s[2:], base, 64)
			if err != nil {
				if isRangeError(err) {
					return math.Inf(1), true
				}
				return 0, false
			}
			return float64(n), true
		}
	}

	if !decimalNumber.MatchString(s) {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil && !isRangeError(err) {
		return 0, false
	}
	return v, true
}

func isRangeError(err error) bool {
	ne, ok := err.(*strconv.NumError)
	return ok && ne.Err == strconv.ErrRange
}

// ParseGlow reports whether the glow layer is drawn. Only "off" disables it.
func ParseGlow(s string) bool {
	return strings.ToLower(s) != "off"
}
