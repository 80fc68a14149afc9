package badge

import (
	"bytes"
	"embed"
	"encoding/base64"
	"math"
	"text/template"

	"neonvisitors/internal/domain"
)

const (
	baseWidth   = 360
	baseHeight  = 100
	imageWidth  = 140
	imageHeight = 24

	maxMessageRunes = 200
	unknownMessage  = "Unknown error"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

type badgeView struct {
	Width, Height           int
	BaseWidth, BaseHeight   int
	PanelX, PanelY          int
	PanelWidth, PanelHeight int
	ScanWidth, ScanHeight   int
	ImageX, ImageY          int
	ImageWidth, ImageHeight int
	Palette                 palette
	Neon1, Neon2            string
	DataHref                string
	GlowOn                  bool
}

type fallbackView struct {
	Width, Height int
	Background    string
	Foreground    string
	Message       string
}

// Dimensions returns the rendered pixel size for scale.
func Dimensions(scale float64) (width, height int) {
	return int(math.Round(baseWidth * scale)), int(math.Round(baseHeight * scale))
}

// DataURI embeds an SVG document as a base64 data URI.
func DataURI(svg []byte) string {
	return "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString(svg)
}

// Render wraps the upstream badge in the neon panel. Output is a pure function
// of p and upstreamSVG.
func Render(p domain.Params, upstreamSVG []byte) ([]byte, error) {
	w, h := Dimensions(p.Scale)
	view := badgeView{
		Width:       w,
		Height:      h,
		BaseWidth:   baseWidth,
		BaseHeight:  baseHeight,
		PanelX:      20,
		PanelY:      14,
		PanelWidth:  baseWidth - 40,
		PanelHeight: baseHeight - 28,
		ScanWidth:   baseWidth - 42,
		ScanHeight:  baseHeight - 30,
		ImageX:      baseWidth/2 - imageWidth/2,
		ImageY:      baseHeight/2 - imageHeight/2,
		ImageWidth:  imageWidth,
		ImageHeight: imageHeight,
		Palette:     paletteFor(p.Theme),
		Neon1:       neonCyan,
		Neon2:       neonPurple,
		DataHref:    DataURI(upstreamSVG),
		GlowOn:      p.GlowOn,
	}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "badge.svg.tmpl", view); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RenderFallback returns the error badge for err.
func RenderFallback(err error) []byte {
	return RenderMessage(FallbackMessage(err))
}

// RenderMessage returns the fixed-size error badge showing msg.
func RenderMessage(msg string) []byte {
	view := fallbackView{
		Width:      baseWidth,
		Height:     baseHeight,
		Background: darkPalette.Panel,
		Foreground: neonCyan,
		Message:    truncate(msg, maxMessageRunes),
	}
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "fallback.svg.tmpl", view); err != nil {
		// the template only prints strings and ints
		panic(err)
	}
	return buf.Bytes()
}

// FallbackMessage is the text shown for err: its message truncated to 200
// characters, or "Unknown error".
func FallbackMessage(err error) string {
	if err == nil || err.Error() == "" {
		return unknownMessage
	}
	return truncate(err.Error(), maxMessageRunes)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
