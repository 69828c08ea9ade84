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
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/forcegraph/internal/graph"
	"github.com/san-kum/forcegraph/internal/sim"
)

var (
	ErrRunNotFound  = errors.New("storage: run not found")
	ErrAmbiguousRun = errors.New("storage: run id prefix matches several runs")
)

const (
	metadataFile = "metadata.json"
	traceFile    = "energy.csv"
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

// RunMetadata describes a stored run. The graph itself is not stored.
type RunMetadata struct {
	ID         string             `json:"id"`
	Preset     string             `json:"preset,omitempty"`
	Timestamp  time.Time          `json:"timestamp"`
	Backend    string             `json:"backend"`
	Topology   string             `json:"topology"`
	Seed       int64              `json:"seed"`
	Nodes      int                `json:"nodes"`
	Edges      int                `json:"edges"`
	Params     graph.Params       `json:"params"`
	Steps      int                `json:"steps"`
	Skipped    int                `json:"skipped"`
	Abandoned  int                `json:"abandoned"`
	MeanStepMS float64            `json:"mean_step_ms"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Trace is the per-step record of a run. Step 0 is the initial state and
// has no step time.
type Trace struct {
	Steps  []int     `json:"steps"`
	Energy []float64 `json:"energy"`
	StepMS []float64 `json:"step_ms"`
}

func newRunID(now time.Time) string {
	return fmt.Sprintf("%s_%s", now.Format("20060102-150405"), uuid.NewString()[:8])
}

// Save writes meta and the result's energy trace under a new run id, which
// is returned. ID, Timestamp, Steps, Skipped, Abandoned, MeanStepMS and
// Metrics are filled from result.
func (s *Store) Save(meta RunMetadata, result *sim.Result) (string, error) {
	now := time.Now()
	meta.ID = newRunID(now)
	meta.Timestamp = now
	meta.Steps = result.Steps
	meta.Skipped = result.Skipped
	meta.Abandoned = result.Abandoned
	meta.MeanStepMS = ms(result.MeanStepTime())
	meta.Metrics = result.Metrics

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeTrace(filepath.Join(runDir, traceFile), result); err != nil {
		return "", err
	}
	return meta.ID, nil
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

func writeTrace(path string, result *sim.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"step", "kinetic_energy", "step_ms"}); err != nil {
		return err
	}
	for i, e := range result.Energy {
		stepMS := ""
		if i > 0 && i-1 < len(result.StepTimes) {
			stepMS = strconv.FormatFloat(ms(result.StepTimes[i-1]), 'f', 4, 64)
		}
		row := []string{strconv.Itoa(i), strconv.FormatFloat(e, 'g', 10, 64), stepMS}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
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

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.readMetadata(entry.Name())
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

// Resolve expands a unique prefix of a run id to the full id.
func (s *Store) Resolve(prefix string) (string, error) {
	if prefix == "" {
		return "", ErrRunNotFound
	}
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%s: %w", prefix, ErrRunNotFound)
		}
		return "", err
	}

	var match string
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}
		if entry.Name() == prefix {
			return prefix, nil
		}
		if match != "" {
			return "", fmt.Errorf("%s: %w", prefix, ErrAmbiguousRun)
		}
		match = entry.Name()
	}
	if match == "" {
		return "", fmt.Errorf("%s: %w", prefix, ErrRunNotFound)
	}
	return match, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	id, err := s.Resolve(runID)
	if err != nil {
		return nil, err
	}
	return s.readMetadata(id)
}

func (s *Store) readMetadata(id string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, id, metadataFile))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadTrace(runID string) (*Trace, error) {
	id, err := s.Resolve(runID)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(filepath.Join(s.baseDir, id, traceFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = 3
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	trace := &Trace{}
	if len(records) < 2 {
		return trace, nil
	}
	for i, rec := range records[1:] {
		step, err := strconv.Atoi(rec[0])
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", traceFile, i+2, err)
		}
		energy, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", traceFile, i+2, err)
		}
		trace.Steps = append(trace.Steps, step)
		trace.Energy = append(trace.Energy, energy)
		if rec[2] != "" {
			d, err := strconv.ParseFloat(rec[2], 64)
			if err != nil {
				return nil, fmt.Errorf("%s line %d: %w", traceFile, i+2, err)
			}
			trace.StepMS = append(trace.StepMS, d)
		}
	}
	return trace, nil
}

type ExportData struct {
	Run   *RunMetadata `json:"run"`
	Trace *Trace       `json:"trace"`
}

// ExportJSON writes a stored run and its trace as one JSON document.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	trace, err := s.LoadTrace(meta.ID)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ExportData{Run: meta, Trace: trace})
}
