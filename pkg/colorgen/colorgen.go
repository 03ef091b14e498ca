// Package colorgen deterministically assigns visually distinct background
// colors to groups of related nodes. A Generator walks a fixed ladder of
// hue families; each family hands out lightness variants so every group in
// one family stays recognizably related while remaining tellable apart.
//
// Determinism is the point: the same sequence of requests always produces
// the same colors, so highlights are stable across repaints and testable.
package colorgen

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is an opaque background color. The zero value is "no color".
type Color struct {
	R, G, B uint8
	set     bool
}

// RGB builds a color from components.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, set: true}
}

// IsZero reports whether the color is unset.
func (c Color) IsZero() bool {
	return !c.set
}

// Hex returns the #rrggbb form, or the empty string for the zero color.
func (c Color) Hex() string {
	if !c.set {
		return ""
	}
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Default ladder geometry. Hues are spaced far enough apart that adjacent
// families never read as shades of each other; lightness starts high so
// dark foreground text stays legible, and steps down per variant.
const (
	defaultHueStep   = 47.0 // degrees; coprime-ish with 360 for long cycles
	defaultBaseLight = 0.78
	defaultLightStep = -0.06
	defaultVariants  = 5
	defaultSat       = 0.55
)

// Generator walks hue families. Not safe for concurrent use; sessions own
// their generator.
type Generator struct {
	// LightStep is the per-variant lightness increment. Negative values
	// darken successive variants (-0.15 in percent terms matches the
	// usual "L_INT" tuning).
	LightStep float64

	hue      float64
	families int
}

// New returns a generator starting at the first hue family.
func New() *Generator {
	return &Generator{LightStep: defaultLightStep}
}

// NextFamily advances to a fresh hue family and returns its variant
// generator.
func (g *Generator) NextFamily() *VarGenerator {
	hue := g.hue
	g.hue += defaultHueStep
	for g.hue >= 360 {
		g.hue -= 360
	}
	g.families++
	return &VarGenerator{gen: g, hue: hue}
}

// Families returns how many hue families have been handed out.
func (g *Generator) Families() int {
	return g.families
}

// VarGenerator hands out variants within one hue family.
type VarGenerator struct {
	gen  *Generator
	hue  float64
	next int
}

// NextColor returns the family's next lightness variant. When the ladder
// is exhausted it recycles from the top rather than failing; callers that
// need more distinct colors than one family holds should start a new
// family per group.
func (v *VarGenerator) NextColor() Color {
	idx := v.next % defaultVariants
	v.next++

	light := defaultBaseLight + float64(idx)*v.gen.lightStep()
	c := colorful.Hsl(v.hue, defaultSat, light).Clamped()
	r, g, b := c.RGB255()
	return RGB(r, g, b)
}

func (g *Generator) lightStep() float64 {
	if g.LightStep != 0 {
		return g.LightStep
	}
	return defaultLightStep
}
