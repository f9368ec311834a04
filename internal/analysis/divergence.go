package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/astroprop/internal/dynamo"
)

// Separation returns the distance between the positions of body in two
// trajectories at every shared snapshot.
func Separation(a, b *dynamo.Trajectory, body string) ([]float64, error) {
	ia, ib := a.Index(body), b.Index(body)
	if ia < 0 || ib < 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBody, body)
	}

	n := a.Len()
	if b.Len() < n {
		n = b.Len()
	}

	sep := make([]float64, n)
	for k := 0; k < n; k++ {
		sep[k] = r3.Norm(r3.Sub(a.Positions[k][ia], b.Positions[k][ib]))
	}
	return sep, nil
}

// DivergenceRate fits ln(separation) against time and returns the slope in
// 1/s. Zero separations are skipped. A positive rate means the runs drift
// apart exponentially.
func DivergenceRate(sep []float64, dt float64) (float64, error) {
	ts := make([]float64, 0, len(sep))
	logs := make([]float64, 0, len(sep))
	for k, d := range sep {
		if d <= 0 {
			continue
		}
		ts = append(ts, float64(k)*dt)
		logs = append(logs, math.Log(d))
	}
	if len(ts) < 2 {
		return 0, ErrShortSeries
	}

	_, beta := stat.LinearRegression(ts, logs, nil, false)
	return beta, nil
}
