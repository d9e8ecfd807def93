package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/san-kum/rovsim/internal/orient"
	"github.com/san-kum/rovsim/internal/setpoint"
	"github.com/san-kum/rovsim/internal/sim"
)

const (
	metadataFile = "metadata.json"
	samplesFile  = "samples.csv"
)

var ErrRunNotFound = errors.New("storage: run not found")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

// RunInfo describes how a run was configured.
type RunInfo struct {
	Preset     string  `json:"preset"`
	Integrator string  `json:"integrator"`
	Pilot      string  `json:"pilot"`
	Dt         float64 `json:"dt"`
	Duration   float64 `json:"duration"`
}

type RunMetadata struct {
	RunInfo
	ID        string             `json:"id"`
	Timestamp time.Time          `json:"timestamp"`
	Steps     int                `json:"steps"`
	Skipped   int                `json:"skipped"`
	Metrics   map[string]float64 `json:"metrics"`
}

func newRunID(preset string) string {
	if preset == "" {
		preset = "run"
	}
	return fmt.Sprintf("%s_%s", preset, uuid.NewString()[:8])
}

// Save writes result under a fresh run directory and returns its id.
func (s *Store) Save(info RunInfo, result *sim.Result) (string, error) {
	runID := newRunID(info.Preset)
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		RunInfo:   info,
		ID:        runID,
		Timestamp: time.Now().UTC(),
		Steps:     result.StepsTaken,
		Skipped:   result.Skipped,
		Metrics:   result.Metrics,
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", fmt.Errorf("write metadata: %w", err)
	}

	f, err := os.Create(filepath.Join(runDir, samplesFile))
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := WriteSamples(f, result.Samples); err != nil {
		return "", fmt.Errorf("write samples: %w", err)
	}
	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// List returns every readable run, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0, len(entries))
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
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parse metadata %s: %w", runID, err)
	}
	return &meta, nil
}

func (s *Store) LoadSamples(runID string) ([]sim.Sample, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, samplesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer f.Close()
	return ReadSamples(f)
}

// time, position, orientation (w x y z), linear and angular velocity, power
// per thruster, kinetic energy.
const sampleColumns = 1 + 3 + 4 + 3 + 3 + setpoint.Count + 1

func header() []string {
	h := []string{"time", "px", "py", "pz", "qw", "qx", "qy", "qz", "vx", "vy", "vz", "wx", "wy", "wz"}
	for _, name := range setpoint.Names {
		h = append(h, "p_"+name)
	}
	return append(h, "ke")
}

func WriteSamples(w io.Writer, samples []sim.Sample) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header()); err != nil {
		return err
	}

	row := make([]string, 0, sampleColumns)
	for _, s := range samples {
		row = row[:0]
		row = appendFloats(row, s.Time)
		row = appendFloats(row, s.Position[:]...)
		q := s.Orientation
		row = appendFloats(row, q.W, q.V[0], q.V[1], q.V[2])
		row = appendFloats(row, s.LinearVelocity[:]...)
		row = appendFloats(row, s.AngularVelocity[:]...)
		row = appendFloats(row, s.Power[:]...)
		row = appendFloats(row, s.KineticEnergy)
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func appendFloats(row []string, vs ...float64) []string {
	for _, v := range vs {
		row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
	}
	return row
}

// ReadSamples parses what WriteSamples wrote. Rows with the wrong width or an
// unparsable field are rejected.
func ReadSamples(r io.Reader) ([]sim.Sample, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = sampleColumns

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []sim.Sample{}, nil
	}

	samples := make([]sim.Sample, 0, len(records)-1)
	vals := make([]float64, sampleColumns)
	for line, record := range records[1:] {
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d column %d: %w", line+1, j, err)
			}
			vals[j] = v
		}
		samples = append(samples, decodeRow(vals))
	}
	return samples, nil
}

func decodeRow(v []float64) sim.Sample {
	s := sim.Sample{
		Time:            v[0],
		Position:        mgl64.Vec3{v[1], v[2], v[3]},
		Orientation:     mgl64.Quat{W: v[4], V: mgl64.Vec3{v[5], v[6], v[7]}},
		LinearVelocity:  mgl64.Vec3{v[8], v[9], v[10]},
		AngularVelocity: mgl64.Vec3{v[11], v[12], v[13]},
		KineticEnergy:   v[sampleColumns-1],
	}
	copy(s.Power[:], v[14:14+setpoint.Count])
	x, y, z := orient.EulerDeg(s.Orientation)
	s.Euler = [3]float64{x, y, z}
	return s
}
