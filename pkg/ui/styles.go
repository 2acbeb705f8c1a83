// Package ui provides the Bubble Tea page hosting the mempool overlay.
package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// Colors
var (
	ColorPrimary = lipgloss.Color("#F7931A") // Bitcoin orange
	ColorMuted   = lipgloss.Color("#6B7280") // Gray
	ColorBorder  = lipgloss.Color("#374151") // Dark gray
	ColorText    = lipgloss.Color("#E5E7EB")
)

// Palette holds the overlay colors in a blendable space.
type Palette struct {
	Backdrop  colorful.Color
	Page      colorful.Color
	Shadow    colorful.Color
	Block     colorful.Color
	BlockTop  colorful.Color
	BlockSide colorful.Color
	Text      colorful.Color
	Muted     colorful.Color
}

// DefaultPalette returns the dark overlay palette.
func DefaultPalette() Palette {
	return Palette{
		Backdrop:  mustHex("#0B0B0F"),
		Page:      mustHex("#E5E7EB"),
		Shadow:    mustHex("#000000"),
		Block:     mustHex("#F7931A"),
		BlockTop:  mustHex("#FBB454"),
		BlockSide: mustHex("#B8660B"),
		Text:      mustHex("#1A1206"),
		Muted:     mustHex("#5C3A0C"),
	}
}

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Styles are the page styles bound to one lipgloss renderer, so SSH sessions get their own color profile.
type Styles struct {
	Title      lipgloss.Style
	Heading    lipgloss.Style
	Body       lipgloss.Style
	Muted      lipgloss.Style
	HomeSquare lipgloss.Style
	Notice     lipgloss.Style
	Modal      lipgloss.Style
	Help       lipgloss.Style
}

// NewStyles builds the page styles on r.
func NewStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		Title: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(ColorPrimary).
			Padding(0, 2),
		Heading: r.NewStyle().
			Bold(true).
			Foreground(ColorPrimary),
		Body: r.NewStyle().
			Foreground(ColorText),
		Muted: r.NewStyle().
			Foreground(ColorMuted),
		HomeSquare: r.NewStyle().
			Background(ColorPrimary),
		Notice: r.NewStyle().
			Foreground(lipgloss.Color("#10B981")),
		Modal: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(1, 2),
		Help: r.NewStyle().
			Foreground(ColorMuted).
			Padding(0, 1),
	}
}
