package tui

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// gradientText colours each rune of a single-line text, interpolating from
// start to end. Invalid hex colours leave the text unstyled.
func gradientText(text, start, end string) string {
	runes := []rune(text)
	if len(runes) == 0 {
		return text
	}

	from, err := hexToRGB(start)
	if err != nil {
		return text
	}
	to, err := hexToRGB(end)
	if err != nil {
		return text
	}

	var b strings.Builder
	for i, r := range runes {
		t := 0.0
		if len(runes) > 1 {
			t = float64(i) / float64(len(runes)-1)
		}
		c := rgb{
			r: uint8(math.Round(lerp(float64(from.r), float64(to.r), t))),
			g: uint8(math.Round(lerp(float64(from.g), float64(to.g), t))),
			b: uint8(math.Round(lerp(float64(from.b), float64(to.b), t))),
		}
		b.WriteString(LogoStyle.Foreground(lipgloss.Color(c.hex())).Render(string(r)))
	}
	return b.String()
}

type rgb struct {
	r, g, b uint8
}

func (c rgb) hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.r, c.g, c.b)
}

func hexToRGB(hex string) (rgb, error) {
	hex = strings.TrimPrefix(hex, "#")

	// Short form, e.g. "FFF"
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return rgb{}, fmt.Errorf("invalid hex color: %s", hex)
	}

	val, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return rgb{}, err
	}
	return rgb{
		r: uint8(val >> 16),
		g: uint8((val >> 8) & 0xFF),
		b: uint8(val & 0xFF),
	}, nil
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
