package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/astroprop/internal/dynamo"
)

const (
	metadataFile   = "metadata.json"
	trajectoryFile = "trajectory.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// RunInfo describes how a run was configured.
type RunInfo struct {
	Label      string
	Integrator string
	StepSize   float64
	RunTime    float64
	Start      string
	End        string
	Workers    int
}

type RunMetadata struct {
	ID          string             `json:"id"`
	Label       string             `json:"label"`
	Bodies      []string           `json:"bodies"`
	Timestamp   time.Time          `json:"timestamp"`
	StepSize    float64            `json:"step_size"`
	RunTime     float64            `json:"run_time"`
	Steps       int                `json:"steps"`
	Start       string             `json:"start,omitempty"`
	End         string             `json:"end,omitempty"`
	Integrator  string             `json:"integrator"`
	Workers     int                `json:"workers,omitempty"`
	EnergyDrift float64            `json:"energy_drift"`
	Metrics     map[string]float64 `json:"metrics"`
}

func (s *Store) Save(info RunInfo, result *dynamo.Result) (string, error) {
	if result == nil || result.Trajectory == nil {
		return "", fmt.Errorf("save run: no trajectory")
	}

	now := time.Now()
	label := info.Label
	if label == "" {
		label = "run"
	}
	runID := fmt.Sprintf("%s_%d", label, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	traj := result.Trajectory
	meta := RunMetadata{
		ID:          runID,
		Label:       label,
		Bodies:      traj.Bodies,
		Timestamp:   now,
		StepSize:    info.StepSize,
		RunTime:     info.RunTime,
		Steps:       result.StepsTaken,
		Start:       info.Start,
		End:         info.End,
		Integrator:  info.Integrator,
		Workers:     info.Workers,
		EnergyDrift: result.EnergyDrift,
		Metrics:     result.Metrics,
	}

	// metadata goes last so an interrupted save is never listed
	err := writeFile(filepath.Join(runDir, trajectoryFile), func(w io.Writer) error {
		return WriteCSV(w, traj)
	})
	if err == nil {
		err = writeFile(filepath.Join(runDir, metadataFile), func(w io.Writer) error {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(meta)
		})
	}
	if err != nil {
		os.RemoveAll(runDir)
		return "", fmt.Errorf("save run %s: %w", runID, err)
	}

	return runID, nil
}

func writeFile(path string, write func(w io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// List returns the metadata of every stored run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}

		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadTrajectory rebuilds the trajectory of a stored run.
func (s *Store) LoadTrajectory(runID string) (*dynamo.Trajectory, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filepath.Join(s.baseDir, runID, trajectoryFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	traj := dynamo.NewTrajectory(meta.Bodies, meta.StepSize, meta.Steps)
	n := len(meta.Bodies)

	rows := records
	if len(rows) > 0 && rows[0][0] == "step" {
		rows = rows[1:]
	}
	if len(rows) != traj.Len()*n {
		return nil, fmt.Errorf("run %s: expected %d rows, got %d", runID, traj.Len()*n, len(rows))
	}

	for _, record := range rows {
		if len(record) != len(csvHeader) {
			return nil, fmt.Errorf("run %s: malformed row %v", runID, record)
		}

		k, err := strconv.Atoi(record[0])
		if err != nil || k < 0 || k >= traj.Len() {
			return nil, fmt.Errorf("run %s: bad step %q", runID, record[0])
		}
		i := traj.Index(record[2])
		if i < 0 {
			return nil, fmt.Errorf("run %s: unknown body %q", runID, record[2])
		}

		var xyz [3]float64
		for c := range xyz {
			xyz[c], err = strconv.ParseFloat(record[3+c], 64)
			if err != nil {
				return nil, fmt.Errorf("run %s: %w", runID, err)
			}
		}
		traj.Positions[k][i] = r3.Vec{X: xyz[0], Y: xyz[1], Z: xyz[2]}
	}

	return traj, nil
}
