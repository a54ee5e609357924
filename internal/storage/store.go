package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/san-kum/pmsim/internal/metrics"
	"github.com/san-kum/pmsim/internal/particles"
)

const (
	metadataFile = "metadata.json"
	metricsFile  = "metrics.csv"
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

func (s *Store) BaseDir() string { return s.baseDir }

type RunMetadata struct {
	ID         string             `json:"id"`
	Figure     string             `json:"figure"`
	Solver     string             `json:"solver"`
	Boundary   string             `json:"boundary"`
	Timestamp  time.Time          `json:"timestamp"`
	Seed       int64              `json:"seed"`
	Dt         float64            `json:"dt"`
	G          float64            `json:"g"`
	Grid       [3]int             `json:"grid"`
	Extent     [3]float64         `json:"extent"`
	Particles  int                `json:"particles"`
	Ticks      int                `json:"ticks"`
	WallTimeMs int64              `json:"wall_time_ms"`
	Metrics    map[string]float64 `json:"metrics"`
	Snapshots  []int              `json:"snapshots,omitempty"`
	Error      string             `json:"error,omitempty"`
}

// ParticleRow is one line of a snapshot file.
type ParticleRow struct {
	Index  int     `csv:"index"`
	X      float64 `csv:"x"`
	Y      float64 `csv:"y"`
	Z      float64 `csv:"z"`
	VX     float64 `csv:"vx"`
	VY     float64 `csv:"vy"`
	VZ     float64 `csv:"vz"`
	Mass   float64 `csv:"mass"`
	Radius float64 `csv:"radius"`
}

// Run is an open run directory. Samples are appended to metrics.csv as they
// arrive; metadata is written by Finish.
type Run struct {
	meta          RunMetadata
	dir           string
	metrics       *os.File
	headerWritten bool
}

// Create opens a fresh run directory named after the figure, the solver and
// the current time.
func (s *Store) Create(meta RunMetadata) (*Run, error) {
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	meta.ID = fmt.Sprintf("%s_%s_%d", sanitize(meta.Figure), sanitize(meta.Solver), meta.Timestamp.UnixNano())
	dir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating run directory: %w", err)
	}
	f, err := os.Create(filepath.Join(dir, metricsFile))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", metricsFile, err)
	}
	return &Run{meta: meta, dir: dir, metrics: f}, nil
}

func sanitize(name string) string {
	if name == "" {
		return "run"
	}
	return strings.NewReplacer("/", "-", " ", "-", "_", "-").Replace(strings.ToLower(name))
}

func (r *Run) ID() string  { return r.meta.ID }
func (r *Run) Dir() string { return r.dir }

func (r *Run) WriteSample(sample metrics.Sample) error {
	records := []metrics.Sample{sample}
	if !r.headerWritten {
		if err := gocsv.Marshal(records, r.metrics); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
		r.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, r.metrics); err != nil {
		return fmt.Errorf("writing metrics: %w", err)
	}
	return nil
}

// WriteSnapshot dumps the whole particle store for the given tick.
func (r *Run) WriteSnapshot(tick int, s *particles.Store) error {
	rows := make([]ParticleRow, s.Len())
	for i := range rows {
		rows[i] = ParticleRow{
			Index: i,
			X:     s.X[i], Y: s.Y[i], Z: s.Z[i],
			VX: s.VX[i], VY: s.VY[i], VZ: s.VZ[i],
			Mass: s.M[i], Radius: s.R[i],
		}
	}
	f, err := os.Create(filepath.Join(r.dir, snapshotName(tick)))
	if err != nil {
		return err
	}
	defer f.Close()
	if err := gocsv.Marshal(rows, f); err != nil {
		return fmt.Errorf("writing snapshot %d: %w", tick, err)
	}
	r.meta.Snapshots = append(r.meta.Snapshots, tick)
	return nil
}

func snapshotName(tick int) string {
	return fmt.Sprintf("snapshot_%06d.csv", tick)
}

// Finish records the outcome and writes metadata.json. runErr may be nil.
func (r *Run) Finish(ticks int, wall time.Duration, final map[string]float64, runErr error) error {
	r.meta.Ticks = ticks
	r.meta.WallTimeMs = wall.Milliseconds()
	r.meta.Metrics = final
	if runErr != nil {
		r.meta.Error = runErr.Error()
	}
	f, err := os.Create(filepath.Join(r.dir, metadataFile))
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(r.meta)
}

func (r *Run) Close() error {
	return r.metrics.Close()
}

// List returns the metadata of every finished run, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.LoadMetadata(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) LoadMetadata(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

func (s *Store) LoadMetrics(runID string) ([]metrics.Sample, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, metricsFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var samples []metrics.Sample
	if err := gocsv.UnmarshalFile(f, &samples); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return []metrics.Sample{}, nil
		}
		return nil, fmt.Errorf("run %s metrics: %w", runID, err)
	}
	return samples, nil
}

func (s *Store) LoadSnapshot(runID string, tick int) ([]ParticleRow, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, snapshotName(tick)))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var rows []ParticleRow
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("run %s snapshot %d: %w", runID, tick, err)
	}
	return rows, nil
}

// SnapshotStore rebuilds a particle store from snapshot rows.
func SnapshotStore(rows []ParticleRow) *particles.Store {
	s := particles.New(len(rows))
	for _, r := range rows {
		s.X = append(s.X, r.X)
		s.Y = append(s.Y, r.Y)
		s.Z = append(s.Z, r.Z)
		s.VX = append(s.VX, r.VX)
		s.VY = append(s.VY, r.VY)
		s.VZ = append(s.VZ, r.VZ)
		s.M = append(s.M, r.Mass)
		s.R = append(s.R, r.Radius)
	}
	return s
}
