package analysis

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// OrbitPlot renders the XY projection of one or more position series as
// ASCII art, with the origin marked by '+' when it is in view. Each series
// is drawn with its own glyph, cycling through '•', 'o', '*', 'x'.
func OrbitPlot(series [][]r3.Vec, width, height int) string {
	if width < 2 || height < 2 {
		return ""
	}

	first := true
	var minX, maxX, minY, maxY float64
	for _, s := range series {
		for _, p := range s {
			if first {
				minX, maxX, minY, maxY = p.X, p.X, p.Y, p.Y
				first = false
				continue
			}
			minX = math.Min(minX, p.X)
			maxX = math.Max(maxX, p.X)
			minY = math.Min(minY, p.Y)
			maxY = math.Max(maxY, p.Y)
		}
	}
	if first {
		return ""
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
		for j := range canvas[i] {
			canvas[i][j] = ' '
		}
	}

	cell := func(x, y float64) (int, int, bool) {
		col := int((x - minX) / rangeX * float64(width-1))
		row := height - 1 - int((y-minY)/rangeY*float64(height-1))
		return row, col, row >= 0 && row < height && col >= 0 && col < width
	}

	glyphs := []rune{'•', 'o', '*', 'x'}
	for n, s := range series {
		g := glyphs[n%len(glyphs)]
		for _, p := range s {
			if row, col, ok := cell(p.X, p.Y); ok {
				canvas[row][col] = g
			}
		}
	}

	if row, col, ok := cell(0, 0); ok {
		canvas[row][col] = '+'
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}

// Crossings returns the interpolated times at which a relative position
// series passes counter-clockwise through the +X half-plane (y changes sign
// from negative to non-negative while x > 0).
func Crossings(series []r3.Vec, dt float64) []float64 {
	times := make([]float64, 0)
	for k := 1; k < len(series); k++ {
		prev, curr := series[k-1], series[k]
		if !(prev.Y < 0 && curr.Y >= 0) || curr.X <= 0 {
			continue
		}

		frac := prev.Y / (prev.Y - curr.Y)
		if math.IsNaN(frac) || math.IsInf(frac, 0) {
			frac = 0.5
		}
		times = append(times, (float64(k-1)+frac)*dt)
	}
	return times
}

// CrossingPeriod is the mean interval between successive crossings. At
// least two crossings are needed.
func CrossingPeriod(series []r3.Vec, dt float64) (float64, error) {
	times := Crossings(series, dt)
	if len(times) < 2 {
		return 0, ErrShortSeries
	}
	return (times[len(times)-1] - times[0]) / float64(len(times)-1), nil
}
