package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/san-kum/simscat/internal/config"
	"github.com/san-kum/simscat/internal/experiment"
	_ "modernc.org/sqlite"
)

var (
	ErrNotFound  = errors.New("run not found")
	ErrAmbiguous = errors.New("run id prefix is ambiguous")
)

const (
	metadataFile   = "metadata.json"
	thermoFile     = "thermo.csv"
	trajectoryFile = "trajectory.xyz"
	indexFile      = "index.db"
)

// Store keeps one directory per run under baseDir and a SQLite catalogue of
// their metadata in baseDir/index.db.
type Store struct {
	baseDir string
	db      *sql.DB
}

type RunMetadata struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Timestamp   time.Time          `json:"timestamp"`
	Seed        int64              `json:"seed"`
	Dt          float64            `json:"dt"`
	Duration    float64            `json:"duration"`
	Integrator  string             `json:"integrator"`
	Thermostat  string             `json:"thermostat"`
	Particles   int                `json:"particles"`
	Temperature float64            `json:"temperature"`
	Mass        float64            `json:"mass"`
	Box         [3]float64         `json:"box"`
	Steps       int                `json:"steps"`
	Frames      int                `json:"frames"`
	EnergyDrift float64            `json:"energy_drift"`
	Metrics     map[string]float64 `json:"metrics"`
	Config      *config.Config     `json:"config,omitempty"`
}

const schema = `CREATE TABLE IF NOT EXISTS runs (
	id           TEXT PRIMARY KEY,
	name         TEXT NOT NULL,
	created_at   INTEGER NOT NULL,
	seed         INTEGER NOT NULL,
	integrator   TEXT NOT NULL,
	thermostat   TEXT NOT NULL,
	particles    INTEGER NOT NULL,
	temperature  REAL NOT NULL,
	steps        INTEGER NOT NULL,
	energy_drift REAL NOT NULL
)`

// Open creates baseDir if needed and opens its run catalogue.
func Open(baseDir string) (*Store, error) {
	if strings.TrimSpace(baseDir) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}
	dsn := filepath.Join(filepath.Clean(baseDir), indexFile) + "?_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{baseDir: baseDir, db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Dir(runID string) string {
	return filepath.Join(s.baseDir, runID)
}

// NewID returns "<name>_<8 hex>" with slashes in the name replaced.
func NewID(name string) string {
	slug := strings.NewReplacer("/", "-", " ", "-").Replace(strings.ToLower(name))
	if slug == "" {
		slug = "run"
	}
	return slug + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// Save writes a finished run to a new directory and records it in the
// catalogue.
func (s *Store) Save(ctx context.Context, out *experiment.Output) (string, error) {
	cfg := out.Config
	runID := NewID(cfg.Name)
	runDir := s.Dir(runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:          runID,
		Name:        cfg.Name,
		Timestamp:   time.Now().UTC(),
		Seed:        cfg.Seed,
		Dt:          cfg.Dt,
		Duration:    cfg.Duration,
		Integrator:  cfg.Integrator,
		Thermostat:  cfg.Thermostat.Name,
		Particles:   out.System.N,
		Temperature: cfg.Temperature,
		Mass:        out.System.Mass,
		Box:         out.System.Box.L,
		Steps:       out.Steps,
		Frames:      len(out.Frames),
		EnergyDrift: out.Drift,
		Metrics:     out.Metrics,
		Config:      cfg,
	}
	if meta.Thermostat == "" {
		meta.Thermostat = "none"
	}

	if err := s.write(ctx, runDir, meta, out); err != nil {
		_ = os.RemoveAll(runDir)
		return "", err
	}
	return runID, nil
}

// write fills runDir and catalogues the run.
func (s *Store) write(ctx context.Context, runDir string, meta RunMetadata, out *experiment.Output) error {
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return err
	}
	if err := writeThermo(filepath.Join(runDir, thermoFile), out.Times, out.Thermo); err != nil {
		return err
	}
	traj := Trajectory{
		Box:        out.System.Box.L,
		Times:      out.Times,
		Positions:  out.Positions(),
		Velocities: out.Velocities(),
	}
	if err := writeXYZ(filepath.Join(runDir, trajectoryFile), traj); err != nil {
		return err
	}
	return s.index(ctx, meta)
}

func (s *Store) index(ctx context.Context, meta RunMetadata) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO runs (
		   id, name, created_at, seed, integrator, thermostat,
		   particles, temperature, steps, energy_drift
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		meta.ID,
		meta.Name,
		meta.Timestamp.UTC().UnixMilli(),
		meta.Seed,
		meta.Integrator,
		meta.Thermostat,
		meta.Particles,
		meta.Temperature,
		meta.Steps,
		meta.EnergyDrift,
	)
	if err != nil {
		return fmt.Errorf("index run %s: %w", meta.ID, err)
	}
	return nil
}

// RunSummary is one catalogue row.
type RunSummary struct {
	ID          string
	Name        string
	Timestamp   time.Time
	Seed        int64
	Integrator  string
	Thermostat  string
	Particles   int
	Temperature float64
	Steps       int
	EnergyDrift float64
}

// List returns catalogued runs, newest first.
func (s *Store) List(ctx context.Context) ([]RunSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, created_at, seed, integrator, thermostat,
		        particles, temperature, steps, energy_drift
		   FROM runs ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	runs := make([]RunSummary, 0)
	for rows.Next() {
		var r RunSummary
		var created int64
		if err := rows.Scan(&r.ID, &r.Name, &created, &r.Seed, &r.Integrator, &r.Thermostat,
			&r.Particles, &r.Temperature, &r.Steps, &r.EnergyDrift); err != nil {
			return nil, err
		}
		r.Timestamp = time.UnixMilli(created).UTC()
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Resolve expands a unique id prefix into a full run id.
func (s *Store) Resolve(ctx context.Context, prefix string) (string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM runs WHERE substr(id, 1, length(?)) = ? ORDER BY id`, prefix, prefix)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", err
		}
		if id == prefix {
			return id, nil
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	switch len(ids) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrNotFound, prefix)
	case 1:
		return ids[0], nil
	}
	return "", fmt.Errorf("%w: %s matches %s", ErrAmbiguous, prefix, strings.Join(ids, ", "))
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir(runID), metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("metadata for %s: %w", runID, err)
	}
	return &meta, nil
}

// Delete removes a run directory and its catalogue row.
func (s *Store) Delete(ctx context.Context, runID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, runID)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	dir := s.Dir(runID)
	if _, statErr := os.Stat(dir); statErr != nil {
		if n == 0 {
			return fmt.Errorf("%w: %s", ErrNotFound, runID)
		}
		return nil
	}
	return os.RemoveAll(dir)
}

// Reindex rebuilds the catalogue from the run directories on disk. It
// returns the number of runs indexed.
func (s *Store) Reindex(ctx context.Context) (int, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return 0, err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM runs`); err != nil {
		return 0, err
	}
	count := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		if err := s.index(ctx, *meta); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

func writeJSON(path string, v any) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer closeFile(f, &err)

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// closeFile closes a file opened for writing and reports the close error
// unless an earlier one is already set.
func closeFile(f *os.File, err *error) {
	if cerr := f.Close(); cerr != nil && *err == nil {
		*err = cerr
	}
}
