package badge

import "neonvisitors/internal/domain"

const (
	neonCyan   = "#22d3ee"
	neonPurple = "#8b5cf6"
)

type palette struct {
	LeftColor string // upstream left_color, no leading '#'
	BgStart   string
	BgEnd     string
	Panel     string
}

var (
	darkPalette = palette{
		LeftColor: "0b0f1a",
		BgStart:   "#060b16",
		BgEnd:     "#0b1224",
		Panel:     "#0b0f1a",
	}
	lightPalette = palette{
		LeftColor: "e6f0ff",
		BgStart:   "#eef2ff",
		BgEnd:     "#e0e7ff",
		Panel:     "#ffffff",
	}
)

func paletteFor(t domain.Theme) palette {
	if t == domain.ThemeDark {
		return darkPalette
	}
	return lightPalette
}
