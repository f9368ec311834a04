package ephemeris

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

const sampleDocument = `
epoch: "2025-01-01"
bodies:
  Earth:
    - position: [1.496e8, 0, 0]
      velocity: [0, 29.78, 0]
  Moon:
    - position: [1.499844e8, 0, 0]
      velocity: [0, 30.798, 0]
`

func TestParseDocument(t *testing.T) {
	samples, err := ParseDocument(strings.NewReader(sampleDocument))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	earth, ok := samples.First("Earth")
	if !ok {
		t.Fatal("Earth missing")
	}
	if earth.Position.X != 1.496e8 || earth.Velocity.Y != 29.78 {
		t.Errorf("unexpected Earth sample: %+v", earth)
	}
}

func TestParseDocumentJSON(t *testing.T) {
	doc := `{"bodies": {"Mars": [{"position": [1, 2, 3], "velocity": [4, 5, 6]}]}}`
	samples, err := ParseDocument(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	mars, _ := samples.First("Mars")
	if mars.Velocity != (r3.Vec{X: 4, Y: 5, Z: 6}) {
		t.Errorf("unexpected Mars sample: %+v", mars)
	}
}

func TestParseDocumentRejectsShortVectors(t *testing.T) {
	doc := "bodies:\n  Mars:\n    - position: [1, 2]\n      velocity: [4, 5, 6]\n"
	if _, err := ParseDocument(strings.NewReader(doc)); err == nil {
		t.Error("expected error for two-component position")
	}
}

func TestEncodeDocumentRoundTrip(t *testing.T) {
	in := Samples{"Venus": {{Position: r3.Vec{X: 1.0821e8}, Velocity: r3.Vec{Y: 35.02}}}}

	var buf bytes.Buffer
	if err := EncodeDocument(&buf, "2025-01-01", in); err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	out, err := ParseDocument(&buf)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if v, _ := out.First("Venus"); v != in["Venus"][0] {
		t.Errorf("round trip mismatch: %+v", v)
	}
}

func TestFileProviderFiltersIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ephem.yaml")
	if err := os.WriteFile(path, []byte(sampleDocument), 0644); err != nil {
		t.Fatal(err)
	}

	p := NewFileProvider(path)
	samples, err := p.Samples(context.Background(), []string{"Earth", "Sun"})
	if err != nil {
		t.Fatalf("samples failed: %v", err)
	}
	if _, ok := samples["Moon"]; ok {
		t.Error("unrequested body returned")
	}
	if _, ok := samples["Sun"]; ok {
		t.Error("body absent from file should be absent from result")
	}
	if _, ok := samples["Earth"]; !ok {
		t.Error("Earth missing")
	}
}

func TestFileProviderMissingFile(t *testing.T) {
	p := NewFileProvider(filepath.Join(t.TempDir(), "nope.yaml"))
	if _, err := p.Samples(context.Background(), []string{"Earth"}); err == nil {
		t.Error("expected error for missing file")
	}
}
