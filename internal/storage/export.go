package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"strconv"

	"github.com/san-kum/astroprop/internal/dynamo"
)

var csvHeader = []string{"step", "time", "body", "x", "y", "z"}

// ExportData is the JSON document handed to external consumers.
type ExportData struct {
	Bodies       []string       `json:"bodies"`
	Trajectories [][][3]float64 `json:"trajectories"`
}

func ExportJSON(path string, traj *dynamo.Trajectory) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return WriteJSON(file, traj)
}

func WriteJSON(w io.Writer, traj *dynamo.Trajectory) error {
	data := ExportData{
		Bodies:       traj.Bodies,
		Trajectories: traj.Flatten(),
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// WriteCSV writes one row per body per snapshot. Values are formatted with
// the shortest representation that parses back to the same float64.
func WriteCSV(w io.Writer, traj *dynamo.Trajectory) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	times := traj.Times()
	for k, snap := range traj.Positions {
		step := strconv.Itoa(k)
		t := strconv.FormatFloat(times[k], 'g', -1, 64)
		for i, p := range snap {
			row := []string{
				step,
				t,
				traj.Bodies[i],
				strconv.FormatFloat(p.X, 'g', -1, 64),
				strconv.FormatFloat(p.Y, 'g', -1, 64),
				strconv.FormatFloat(p.Z, 'g', -1, 64),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}
