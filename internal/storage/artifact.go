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

	"github.com/trendscout-agent/internal/models"
	"github.com/trendscout-agent/internal/platform"
)

// ErrInvalidArtifact marks a persisted file that is not a valid
// artifact or record list. Fatal for the run that tried to read it.
var ErrInvalidArtifact = errors.New("invalid artifact")

// Store persists run artifacts as flat JSON files, one per run, under
// a single directory. There is no database; files are the system of
// record.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir, creating it if needed
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create runs dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory the store writes into
func (s *Store) Dir() string {
	return s.dir
}

// SaveArtifact writes one platform run artifact. The write is atomic
// (temp file + rename) so a failed run never leaves a partial file.
func (s *Store) SaveArtifact(a *models.Artifact) (string, error) {
	name := fmt.Sprintf("%s_%s.json", a.Metadata.Platform, a.Metadata.GeneratedAt.UTC().Format("20060102T150405Z"))
	path := filepath.Join(s.dir, name)
	if err := s.writeJSON(path, a); err != nil {
		return "", err
	}
	return path, nil
}

// SavePlan writes a content-plan artifact
func (s *Store) SavePlan(p *models.ContentPlan) (string, error) {
	name := fmt.Sprintf("plan_%s.json", p.GeneratedAt.UTC().Format("20060102T150405Z"))
	path := filepath.Join(s.dir, name)
	if err := s.writeJSON(path, p); err != nil {
		return "", err
	}
	return path, nil
}

// SaveArtifactAs writes an artifact to an explicit path, atomically
func (s *Store) SaveArtifactAs(a *models.Artifact, path string) error {
	return s.writeJSON(path, a)
}

func (s *Store) writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal artifact: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".artifact-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close artifact: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to move artifact into place: %w", err)
	}
	return nil
}

// LoadArtifact reads one artifact file
func (s *Store) LoadArtifact(path string) (*models.Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact: %w", err)
	}

	var a models.Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidArtifact, path, err)
	}
	if a.Metadata.Platform == "" {
		return nil, fmt.Errorf("%w: %s: missing platform", ErrInvalidArtifact, path)
	}
	return &a, nil
}

// List returns all artifact paths for a platform, newest first. An
// empty platform lists every platform run (plans excluded).
func (s *Store) List(p platform.Platform) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read runs dir: %w", err)
	}

	var paths []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") || strings.HasPrefix(name, "plan_") {
			continue
		}
		if p != "" && !strings.HasPrefix(name, string(p)+"_") {
			continue
		}
		paths = append(paths, filepath.Join(s.dir, name))
	}

	// timestamped names sort chronologically
	sort.Sort(sort.Reverse(sort.StringSlice(paths)))
	return paths, nil
}

// Latest returns the newest artifact for a platform, or nil when the
// platform has no runs yet
func (s *Store) Latest(p platform.Platform) (*models.Artifact, error) {
	paths, err := s.List(p)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, nil
	}
	return s.LoadArtifact(paths[0])
}

// LoadRecords reads an already-fetched raw record collection from a
// JSON file, for runs that skip the network fetch
func LoadRecords(path string) ([]*models.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}

	var records []*models.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %s: not a record list: %v", ErrInvalidArtifact, path, err)
	}
	return records, nil
}

// ParseRunTime extracts the timestamp from an artifact filename,
// falling back to the zero time when the name does not match
func ParseRunTime(path string) time.Time {
	name := strings.TrimSuffix(filepath.Base(path), ".json")
	idx := strings.LastIndex(name, "_")
	if idx < 0 {
		return time.Time{}
	}
	ts, err := time.Parse("20060102T150405Z", name[idx+1:])
	if err != nil {
		return time.Time{}
	}
	return ts
}
