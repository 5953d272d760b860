// SPDX-License-Identifier: MIT
package visualizer

import (
	"fmt"
	"math"

	"neonviz/internal/config"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is a 16-bit RGB565 value, the native format of the target display.
type Color uint16

// RGB565 packs 8-bit channels into a Color, dropping the low bits.
func RGB565(r, g, b uint8) Color {
	return Color(uint16(r>>3)<<11 | uint16(g>>2)<<5 | uint16(b>>3))
}

// ParseColor reads a "#RRGGBB" string.
func ParseColor(hex string) (Color, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return 0, fmt.Errorf("parse color %q: %w", hex, err)
	}
	return FromColorful(c), nil
}

// FromColorful converts a go-colorful color, clamping out of gamut values.
func FromColorful(c colorful.Color) Color {
	r, g, b := c.Clamped().RGB255()
	return RGB565(r, g, b)
}

// RGB expands the channels back to 8 bits, replicating the high bits into the
// dropped low bits so that white stays 0xFF.
func (c Color) RGB() (r, g, b uint8) {
	r5 := uint8(c>>11) & 0x1F
	g6 := uint8(c>>5) & 0x3F
	b5 := uint8(c) & 0x1F
	return r5<<3 | r5>>2, g6<<2 | g6>>4, b5<<3 | b5>>2
}

// Colorful returns the color in go-colorful's float representation.
func (c Color) Colorful() colorful.Color {
	r, g, b := c.RGB()
	return colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
}

// Hex returns the "#rrggbb" form of the expanded color.
func (c Color) Hex() string {
	return c.Colorful().Hex()
}

// String implements fmt.Stringer.
func (c Color) String() string {
	return c.Hex()
}

// MarshalText encodes the color as its hex string, so JSON frames carry
// "#rrggbb" rather than the packed integer.
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.Hex()), nil
}

// UnmarshalText parses a hex string.
func (c *Color) UnmarshalText(text []byte) error {
	v, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Palette holds the named colors used by the mapper and the renderers.
type Palette struct {
	Cool          Color
	MidPrimary    Color
	MidSecondary  Color
	HighPrimary   Color
	HighSecondary Color
	Background    Color
	Text          Color
}

// NewPalette parses the configured hex colors.
func NewPalette(cfg config.ColorsConfig) (Palette, error) {
	var p Palette
	for _, entry := range []struct {
		dst *Color
		hex string
	}{
		{&p.Cool, cfg.Cool},
		{&p.MidPrimary, cfg.MidPrimary},
		{&p.MidSecondary, cfg.MidSecondary},
		{&p.HighPrimary, cfg.HighPrimary},
		{&p.HighSecondary, cfg.HighSecondary},
		{&p.Background, cfg.Background},
		{&p.Text, cfg.Text},
	} {
		c, err := ParseColor(entry.hex)
		if err != nil {
			return Palette{}, err
		}
		*entry.dst = c
	}
	return p, nil
}

// ColorMapper picks a bar color from its height ratio, its driving bin and a
// phase that travels across the bars over time.
type ColorMapper struct {
	palette  Palette
	low      float32
	high     float32
	barCount int
}

// NewColorMapper creates a mapper for barCount bars with the given tier
// thresholds.
func NewColorMapper(p Palette, low, high float32, barCount int) *ColorMapper {
	return &ColorMapper{palette: p, low: low, high: high, barCount: barCount}
}

// Palette returns the mapper's colors.
func (m *ColorMapper) Palette() Palette {
	return m.palette
}

// Color returns the color of bar i. ratio is height/max height and bins are
// the current frequency bins; bars past len(bins) get no audio influence.
//
//	cycle = sin(2π(i/bars + frame*0.02))*0.5 + 0.5
//	audio = bins[i]*2
//	total = (ratio + audio)/2
//
// total below the low threshold is Cool. Between the thresholds the bar is
// MidPrimary when cycle+audio > 0.5, else MidSecondary. Above the high
// threshold it is HighPrimary when cycle+audio > 0.3, else HighSecondary.
func (m *ColorMapper) Color(i int, ratio float32, bins []float32, frame uint32) Color {
	phase := float64(i)/float64(m.barCount) + float64(frame)*0.02
	cycle := float32(math.Sin(phase*2*math.Pi)*0.5 + 0.5)

	var audio float32
	if i < len(bins) {
		audio = bins[i] * 2
	}

	total := (ratio + audio) * 0.5
	switch {
	case total < m.low:
		return m.palette.Cool
	case total < m.high:
		if cycle+audio > 0.5 {
			return m.palette.MidPrimary
		}
		return m.palette.MidSecondary
	default:
		if cycle+audio > 0.3 {
			return m.palette.HighPrimary
		}
		return m.palette.HighSecondary
	}
}
