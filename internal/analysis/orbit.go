package analysis

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/astroprop/internal/dynamo"
)

var (
	ErrUnknownBody = errors.New("analysis: body not in trajectory")
	ErrShortSeries = errors.New("analysis: series too short")
)

// RelativeSeries returns the position of body relative to center at every
// snapshot. An empty center gives positions in the propagation frame.
func RelativeSeries(traj *dynamo.Trajectory, body, center string) ([]r3.Vec, error) {
	i := traj.Index(body)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBody, body)
	}

	series := traj.Series(i)
	if center == "" {
		return series, nil
	}

	c := traj.Index(center)
	if c < 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBody, center)
	}

	for k := range series {
		series[k] = r3.Sub(series[k], traj.Positions[k][c])
	}
	return series, nil
}

// Component extracts one axis (0, 1 or 2) from a vector series.
func Component(series []r3.Vec, axis int) []float64 {
	out := make([]float64, len(series))
	for k, v := range series {
		switch axis {
		case 0:
			out[k] = v.X
		case 1:
			out[k] = v.Y
		default:
			out[k] = v.Z
		}
	}
	return out
}

func Radii(series []r3.Vec) []float64 {
	out := make([]float64, len(series))
	for k, v := range series {
		out[k] = r3.Norm(v)
	}
	return out
}

type OrbitStats struct {
	MinRadius  float64
	MaxRadius  float64
	MeanRadius float64
	// Eccentricity is estimated from the radial extremes as
	// (max-min)/(max+min).
	Eccentricity float64
}

func Orbit(series []r3.Vec) (OrbitStats, error) {
	if len(series) == 0 {
		return OrbitStats{}, ErrShortSeries
	}

	radii := Radii(series)
	stats := OrbitStats{
		MinRadius:  floats.Min(radii),
		MaxRadius:  floats.Max(radii),
		MeanRadius: floats.Sum(radii) / float64(len(radii)),
	}
	if sum := stats.MaxRadius + stats.MinRadius; sum > 0 {
		stats.Eccentricity = (stats.MaxRadius - stats.MinRadius) / sum
	}
	return stats, nil
}
