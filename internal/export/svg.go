package export

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// Palette is cycled over bodies in order.
var Palette = []string{"#ffcc00", "#00aaff", "#ff5566", "#66ff99", "#cc88ff", "#ff9933"}

type bounds struct {
	minX, maxX, minY, maxY float64
}

func extent(series [][]r3.Vec) (bounds, bool) {
	var b bounds
	seen := false
	for _, s := range series {
		for _, p := range s {
			if !seen {
				b = bounds{p.X, p.X, p.Y, p.Y}
				seen = true
				continue
			}
			b.minX, b.maxX = min(b.minX, p.X), max(b.maxX, p.X)
			b.minY, b.maxY = min(b.minY, p.Y), max(b.maxY, p.Y)
		}
	}
	if !seen {
		return b, false
	}

	rangeX := b.maxX - b.minX
	rangeY := b.maxY - b.minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	// square the box so circular orbits stay circular
	r := max(rangeX, rangeY)
	cx, cy := (b.minX+b.maxX)/2, (b.minY+b.maxY)/2
	half := r * 0.6
	return bounds{cx - half, cx + half, cy - half, cy + half}, true
}

// OrbitsToSVG draws the x-y projection of each series as one path. names
// labels the legend and may be shorter than series.
func OrbitsToSVG(series [][]r3.Vec, names []string, width, height int) string {
	b, ok := extent(series)
	if !ok {
		return ""
	}
	rangeX := b.maxX - b.minX
	rangeY := b.maxY - b.minY

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	for i, s := range series {
		if len(s) == 0 {
			continue
		}
		color := Palette[i%len(Palette)]

		if len(s) == 1 {
			x, y := project(s[0], b, rangeX, rangeY, width, height)
			sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="3" fill="%s"/>
`, x, y, color))
		} else {
			sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, color))
			for k, p := range s {
				x, y := project(p, b, rangeX, rangeY, width, height)
				if k == 0 {
					sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
				} else {
					sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
				}
			}
			sb.WriteString("\"/>\n")
		}

		if i < len(names) {
			sb.WriteString(fmt.Sprintf(`<text x="10" y="%d" fill="%s" font-family="monospace" font-size="12">%s</text>
`, 20+16*i, color, escape(names[i])))
		}
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}

func project(p r3.Vec, b bounds, rangeX, rangeY float64, width, height int) (float64, float64) {
	x := (p.X - b.minX) / rangeX * float64(width)
	y := float64(height) - (p.Y-b.minY)/rangeY*float64(height)
	return x, y
}

var escaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

func escape(s string) string { return escaper.Replace(s) }

func WriteSVG(w io.Writer, series [][]r3.Vec, names []string, width, height int) error {
	svg := OrbitsToSVG(series, names, width, height)
	if svg == "" {
		return fmt.Errorf("nothing to draw")
	}
	_, err := io.WriteString(w, svg)
	return err
}

func SaveSVG(path string, series [][]r3.Vec, names []string, width, height int) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return WriteSVG(file, series, names, width, height)
}
