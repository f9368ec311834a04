package export

import (
	"bytes"
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestOrbitsToSVG(t *testing.T) {
	orbit := []r3.Vec{{X: 1}, {Y: 1}, {X: -1}, {Y: -1}, {X: 1}}
	sun := []r3.Vec{{}}

	svg := OrbitsToSVG([][]r3.Vec{sun, orbit}, []string{"Sun", "Earth <1>"}, 200, 200)

	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>\n") {
		t.Fatalf("not an svg document:\n%s", svg)
	}
	if got := strings.Count(svg, "<path"); got != 1 {
		t.Errorf("paths = %d, want 1", got)
	}
	if got := strings.Count(svg, "<circle"); got != 1 {
		t.Errorf("circles = %d, want 1", got)
	}
	if got := strings.Count(svg, " L"); got != len(orbit)-1 {
		t.Errorf("segments = %d, want %d", got, len(orbit)-1)
	}
	if !strings.Contains(svg, "Earth &lt;1&gt;") {
		t.Error("legend label not escaped")
	}
	// centre of a symmetric orbit maps to the middle of the canvas
	if !strings.Contains(svg, `cx="100.0" cy="100.0"`) {
		t.Errorf("sun not centred:\n%s", svg)
	}
}

func TestOrbitsToSVGEmpty(t *testing.T) {
	if svg := OrbitsToSVG(nil, nil, 100, 100); svg != "" {
		t.Errorf("expected empty output, got %q", svg)
	}

	var buf bytes.Buffer
	if err := WriteSVG(&buf, [][]r3.Vec{{}}, nil, 100, 100); err == nil {
		t.Error("expected error for empty series")
	}
}

func TestWriteSVGStaysInCanvas(t *testing.T) {
	line := []r3.Vec{{X: -5, Y: 2}, {X: 5, Y: 2}}

	var buf bytes.Buffer
	if err := WriteSVG(&buf, [][]r3.Vec{line}, nil, 300, 300); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if strings.Contains(out, "M-") || strings.Contains(out, ",-") || strings.Contains(out, " L-") {
		t.Errorf("projected coordinates left the canvas:\n%s", out)
	}
}
