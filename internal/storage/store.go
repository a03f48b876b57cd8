package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/san-kum/pbdsim/internal/config"
	"github.com/san-kum/pbdsim/internal/sim"
)

const (
	metadataFile = "metadata.json"
	framesFile   = "frames.csv"
	configFile   = "config.yaml"
)

var ErrUnknownAxis = errors.New("storage: unknown axis")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID          string             `json:"id"`
	Scene       string             `json:"scene"`
	Timestamp   time.Time          `json:"timestamp"`
	Seed        int64              `json:"seed"`
	Delta       float64            `json:"delta"`
	Frames      int                `json:"frames"`
	FramesRun   int                `json:"frames_run"`
	Iterations  int                `json:"iterations"`
	Particles   int                `json:"particles"`
	SampleEvery int                `json:"sample_every"`
	Metrics     map[string]float64 `json:"metrics"`
	Errors      []string           `json:"errors,omitempty"`
}

// FrameRow is one particle position in frames.csv.
type FrameRow struct {
	Frame    int     `csv:"frame"`
	Time     float64 `csv:"time"`
	Particle int     `csv:"particle"`
	X        float64 `csv:"x"`
	Y        float64 `csv:"y"`
	Z        float64 `csv:"z"`
}

// Save writes a run directory named <scene>_<unix seconds>. A numeric suffix
// is added when that name is taken.
func (s *Store) Save(cfg *config.Config, result *sim.Result) (string, error) {
	now := time.Now()
	runID, runDir, err := s.createRunDir(cfg.Scene, now)
	if err != nil {
		return "", err
	}

	particles := 0
	if len(result.Frames) > 0 {
		particles = len(result.Frames[0].Positions) / 3
	}

	meta := RunMetadata{
		ID:          runID,
		Scene:       cfg.Scene,
		Timestamp:   now,
		Seed:        cfg.Seed,
		Delta:       cfg.Delta,
		Frames:      cfg.Frames,
		FramesRun:   result.FramesRun,
		Iterations:  cfg.Iterations,
		Particles:   particles,
		SampleEvery: cfg.SampleEvery,
		Metrics:     result.Metrics,
	}
	for _, e := range result.Errors {
		meta.Errors = append(meta.Errors, e.Error())
	}

	if err := writeMetadata(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}

	if err := config.Save(filepath.Join(runDir, configFile), cfg); err != nil {
		return "", fmt.Errorf("writing %s: %w", configFile, err)
	}

	f, err := os.Create(filepath.Join(runDir, framesFile))
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", framesFile, err)
	}
	if err := writeFrames(f, frameRows(result, particles)); err != nil {
		return "", fmt.Errorf("writing %s: %w", framesFile, err)
	}

	return runID, nil
}

func frameRows(result *sim.Result, particles int) []*FrameRow {
	rows := make([]*FrameRow, 0, len(result.Frames)*particles)
	for _, fr := range result.Frames {
		for i := 0; i+2 < len(fr.Positions); i += 3 {
			rows = append(rows, &FrameRow{
				Frame:    fr.Index,
				Time:     fr.Time,
				Particle: i / 3,
				X:        fr.Positions[i],
				Y:        fr.Positions[i+1],
				Z:        fr.Positions[i+2],
			})
		}
	}
	return rows
}

// writeFrames marshals rows to w and closes it. A failed close is reported
// since buffered data may not have reached disk.
func writeFrames(w io.WriteCloser, rows []*FrameRow) error {
	if err := gocsv.Marshal(rows, w); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func (s *Store) createRunDir(scene string, now time.Time) (string, string, error) {
	if err := s.Init(); err != nil {
		return "", "", err
	}
	base := fmt.Sprintf("%s_%d", scene, now.Unix())
	runID := base
	for n := 1; ; n++ {
		runDir := filepath.Join(s.baseDir, runID)
		err := os.Mkdir(runDir, 0755)
		if err == nil {
			return runID, runDir, nil
		}
		if !os.IsExist(err) {
			return "", "", err
		}
		runID = fmt.Sprintf("%s_%d", base, n)
	}
}

func writeMetadata(path string, meta RunMetadata) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", metadataFile, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

// List returns every readable run, oldest first.
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

	sort.SliceStable(runs, func(i, j int) bool {
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
		return nil, fmt.Errorf("parsing %s metadata: %w", runID, err)
	}
	return &meta, nil
}

// LoadConfig returns the config a run was started with.
func (s *Store) LoadConfig(runID string) (*config.Config, error) {
	return config.Load(filepath.Join(s.baseDir, runID, configFile))
}

func (s *Store) loadRows(runID string) ([]*FrameRow, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, framesFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rows []*FrameRow
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("parsing %s frames: %w", runID, err)
	}
	return rows, nil
}

// LoadFrames rebuilds the sampled frames of a run in file order.
func (s *Store) LoadFrames(runID string) ([]sim.Frame, error) {
	rows, err := s.loadRows(runID)
	if err != nil {
		return nil, err
	}

	frames := make([]sim.Frame, 0)
	for _, r := range rows {
		n := len(frames)
		if n == 0 || frames[n-1].Index != r.Frame {
			frames = append(frames, sim.Frame{Index: r.Frame, Time: r.Time})
			n++
		}
		fr := &frames[n-1]
		need := (r.Particle + 1) * 3
		for len(fr.Positions) < need {
			fr.Positions = append(fr.Positions, 0)
		}
		fr.Positions[r.Particle*3] = r.X
		fr.Positions[r.Particle*3+1] = r.Y
		fr.Positions[r.Particle*3+2] = r.Z
	}
	return frames, nil
}

// Series returns the times and one coordinate of a particle across the
// sampled frames of a run.
func (s *Store) Series(runID string, particle int, axis string) ([]float64, []float64, error) {
	var pick func(*FrameRow) float64
	switch axis {
	case "x":
		pick = func(r *FrameRow) float64 { return r.X }
	case "y":
		pick = func(r *FrameRow) float64 { return r.Y }
	case "z":
		pick = func(r *FrameRow) float64 { return r.Z }
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownAxis, axis)
	}

	rows, err := s.loadRows(runID)
	if err != nil {
		return nil, nil, err
	}

	times := make([]float64, 0)
	values := make([]float64, 0)
	for _, r := range rows {
		if r.Particle != particle {
			continue
		}
		times = append(times, r.Time)
		values = append(values, pick(r))
	}
	return times, values, nil
}
