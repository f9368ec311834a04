package ephemeris

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"
)

// Provider supplies initial samples for the requested bodies. Bodies the
// provider knows nothing about are simply absent from the result.
type Provider interface {
	Samples(ctx context.Context, ids []string) (Samples, error)
}

// Static serves samples from memory.
type Static Samples

func (s Static) Samples(ctx context.Context, ids []string) (Samples, error) {
	out := make(Samples, len(ids))
	for _, id := range ids {
		if list, ok := s[id]; ok && len(list) > 0 {
			out[id] = list
		}
	}
	return out, nil
}

// Document is the on-disk ephemeris format. JSON documents decode as well
// since the decoder accepts YAML flow style.
//
//	epoch: 2025-01-01
//	bodies:
//	  Earth:
//	    - position: [1.496e8, 0, 0]
//	      velocity: [0, 29.78, 0]
type Document struct {
	Epoch  string                    `yaml:"epoch,omitempty"`
	Frame  string                    `yaml:"frame,omitempty"`
	Bodies map[string][]VectorRecord `yaml:"bodies"`
}

type VectorRecord struct {
	Position []float64 `yaml:"position"`
	Velocity []float64 `yaml:"velocity"`
}

// ToSample validates the record and converts it.
func (r VectorRecord) ToSample() (Sample, error) {
	if len(r.Position) != 3 || len(r.Velocity) != 3 {
		return Sample{}, fmt.Errorf("position and velocity need 3 components, got %d and %d", len(r.Position), len(r.Velocity))
	}
	return Sample{
		Position: r3.Vec{X: r.Position[0], Y: r.Position[1], Z: r.Position[2]},
		Velocity: r3.Vec{X: r.Velocity[0], Y: r.Velocity[1], Z: r.Velocity[2]},
	}, nil
}

// ParseDocument decodes a Document into Samples.
func ParseDocument(r io.Reader) (Samples, error) {
	var doc Document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return Samples{}, nil
		}
		return nil, fmt.Errorf("decode ephemeris document: %w", err)
	}

	out := make(Samples, len(doc.Bodies))
	for body, records := range doc.Bodies {
		list := make([]Sample, 0, len(records))
		for i, rec := range records {
			s, err := rec.ToSample()
			if err != nil {
				return nil, fmt.Errorf("body %s record %d: %w", body, i, err)
			}
			list = append(list, s)
		}
		out[body] = list
	}
	return out, nil
}

// EncodeDocument writes samples in the Document format.
func EncodeDocument(w io.Writer, epoch string, samples Samples) error {
	doc := Document{Epoch: epoch, Bodies: make(map[string][]VectorRecord, len(samples))}
	for body, list := range samples {
		recs := make([]VectorRecord, len(list))
		for i, s := range list {
			recs[i] = VectorRecord{
				Position: []float64{s.Position.X, s.Position.Y, s.Position.Z},
				Velocity: []float64{s.Velocity.X, s.Velocity.Y, s.Velocity.Z},
			}
		}
		doc.Bodies[body] = recs
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(doc)
}

// FileProvider reads a Document from disk on first use.
type FileProvider struct {
	Path string

	once    sync.Once
	samples Samples
	err     error
}

func NewFileProvider(path string) *FileProvider {
	return &FileProvider{Path: path}
}

func (f *FileProvider) Samples(ctx context.Context, ids []string) (Samples, error) {
	f.once.Do(func() {
		file, err := os.Open(f.Path)
		if err != nil {
			f.err = err
			return
		}
		defer file.Close()
		f.samples, f.err = ParseDocument(file)
	})
	if f.err != nil {
		return nil, f.err
	}
	return Static(f.samples).Samples(ctx, ids)
}
