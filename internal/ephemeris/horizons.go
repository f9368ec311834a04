package ephemeris

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	startOfEphemeris = "$$SOE"
	endOfEphemeris   = "$$EOE"
)

// ErrNoVectorData indicates a Horizons table without usable vector rows.
var ErrNoVectorData = errors.New("ephemeris: no vector data in table")

// ParseVectorTable reads a saved JPL Horizons VECTORS result in CSV form
// (VEC_TABLE=3, OUT_UNITS=KM-S). Either the raw text or the JSON API
// envelope with a "result" field is accepted. Rows between $$SOE and $$EOE
// carry X,Y,Z in columns 2-4 and VX,VY,VZ in columns 5-7; malformed rows are
// skipped and logged.
func ParseVectorTable(r io.Reader, logger log.Logger) ([]Sample, error) {
	if logger == nil {
		logger = log.NewNopLogger()
	}

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	text := string(raw)
	if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && trimmed[0] == '{' {
		var envelope struct {
			Result string `json:"result"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, fmt.Errorf("decode horizons response: %w", err)
		}
		text = envelope.Result
	}

	start := strings.Index(text, startOfEphemeris)
	if start < 0 {
		return nil, ErrNoVectorData
	}
	body := text[start+len(startOfEphemeris):]
	if end := strings.Index(body, endOfEphemeris); end >= 0 {
		body = body[:end]
	}

	var samples []Sample
	for _, line := range strings.Split(strings.TrimSpace(body), "\n") {
		fields := strings.Split(strings.TrimSpace(line), ",")
		if len(fields) < 8 {
			continue
		}
		var v [6]float64
		ok := true
		for k := 0; k < 6; k++ {
			v[k], err = strconv.ParseFloat(strings.TrimSpace(fields[k+2]), 64)
			if err != nil {
				ok = false
				break
			}
		}
		if !ok {
			level.Warn(logger).Log("msg", "malformed vector row skipped", "row", line)
			continue
		}
		samples = append(samples, Sample{
			Position: r3.Vec{X: v[0], Y: v[1], Z: v[2]},
			Velocity: r3.Vec{X: v[3], Y: v[4], Z: v[5]},
		})
	}

	if len(samples) == 0 {
		return nil, ErrNoVectorData
	}
	return samples, nil
}

// HorizonsDir serves samples from a directory holding one saved Horizons
// table per body, named <body>.txt. Missing files or empty tables leave the
// body absent.
type HorizonsDir struct {
	Dir    string
	Logger log.Logger
}

func (h *HorizonsDir) Samples(ctx context.Context, ids []string) (Samples, error) {
	logger := h.Logger
	if logger == nil {
		logger = log.NewNopLogger()
	}

	out := make(Samples, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		path := filepath.Join(h.Dir, id+".txt")
		f, err := os.Open(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		samples, err := ParseVectorTable(f, log.With(logger, "body", id))
		f.Close()
		if err != nil {
			if errors.Is(err, ErrNoVectorData) {
				level.Warn(logger).Log("msg", "no vector data in horizons table", "body", id, "path", path)
				continue
			}
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		out[id] = samples
	}
	return out, nil
}
