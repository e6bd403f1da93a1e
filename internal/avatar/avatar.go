// Package avatar derives display initials from names and renders the
// circular SVG avatars stored on contacts.
package avatar

import (
	"fmt"
	"html"
	"math/rand"
	"strconv"
	"strings"
	"unicode"
)

// NoInitials is returned by Initials when a name has no usable tokens.
const NoInitials = "N/A"

const (
	DefaultWidth  = 120
	DefaultHeight = 120
)

// Palette is the fixed set of avatar fill colors.
var Palette = []string{
	"#0038FF",
	"#00BEE8",
	"#1FD7C1",
	"#6E52FF",
	"#9327FF",
	"#C3FF2B",
	"#FC71FF",
	"#FF4646",
	"#FF5EB3",
	"#FF745E",
	"#FF7A00",
	"#FFA35E",
	"#FFBB2B",
	"#FFC701",
	"#FFE62B",
}

// Initials returns up to two uppercase initials for name: the first letter of
// a single token, or the first letters of the first and last tokens.
func Initials(name string) string {
	parts := strings.Fields(name)
	switch len(parts) {
	case 0:
		return NoInitials
	case 1:
		return upperFirst(parts[0])
	default:
		return upperFirst(parts[0]) + upperFirst(parts[len(parts)-1])
	}
}

func upperFirst(token string) string {
	for _, r := range token {
		return string(unicode.ToUpper(r))
	}
	return ""
}

// Generator renders avatars with a color picked from Palette.
type Generator struct {
	pick func(n int) int
}

// NewGenerator creates a Generator. pick must return a value in [0, n);
// nil selects uniformly at random.
func NewGenerator(pick func(n int) int) *Generator {
	if pick == nil {
		pick = rand.Intn
	}
	return &Generator{pick: pick}
}

// Generate renders a DefaultWidth x DefaultHeight avatar for name.
func (g *Generator) Generate(name string) string {
	return g.GenerateSize(name, DefaultWidth, DefaultHeight)
}

// GenerateSize renders a width x height avatar for name.
func (g *Generator) GenerateSize(name string, width, height int) string {
	color := Palette[g.pick(len(Palette))]
	return render(color, Initials(name), width, height)
}

func render(color, initials string, width, height int) string {
	w := float64(width)
	h := float64(height)
	radius := min(w, h)/2 - 5

	var b strings.Builder
	fmt.Fprintf(&b, `<svg class="profilePic" width="%d" height="%d" viewBox="0 0 %d %d" fill="none" xmlns="http://www.w3.org/2000/svg">`,
		width, height, width, height)
	fmt.Fprintf(&b, `<circle cx="%s" cy="%s" r="%s" stroke="white" stroke-width="3" fill="%s"/>`,
		num(w/2), num(h/2), num(radius), color)
	fmt.Fprintf(&b, `<text x="50%%" y="52%%" dominant-baseline="middle" text-anchor="middle" fill="white" font-size="48px">%s</text>`,
		html.EscapeString(initials))
	b.WriteString(`</svg>`)
	return b.String()
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

var defaultGenerator = NewGenerator(nil)

// Generate renders a default-size avatar with a random palette color.
func Generate(name string) string {
	return defaultGenerator.Generate(name)
}
