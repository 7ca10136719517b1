// Package results persists build and fleet outcomes as timestamped
// JSON files for later inspection.
package results

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-faster/errors"

	"github.com/mirandola/podforge/internal/builder"
	"github.com/mirandola/podforge/internal/fleet"
)

// Store writes result records into a directory, one file per record.
type Store struct {
	dir string
	now func() time.Time
}

// NewStore creates a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir, now: time.Now}
}

// SaveBuild persists a single build result and returns the file path.
func (s *Store) SaveBuild(res builder.BuildResult) (string, error) {
	name := fmt.Sprintf("build_%s_%s.json", res.ProductKey, s.stamp())
	return s.write(name, res)
}

// SaveAggregate persists a fleet run summary and returns the file path.
func (s *Store) SaveAggregate(agg fleet.Aggregate) (string, error) {
	name := fmt.Sprintf("fleet_%s_%s.json", agg.Mode, s.stamp())
	return s.write(name, agg)
}

func (s *Store) stamp() string {
	return s.now().Format("20060102_150405")
}

func (s *Store) write(name string, v any) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", errors.Wrapf(err, "create results dir %s", s.dir)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "encode result")
	}

	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", errors.Wrapf(err, "write %s", path)
	}
	return path, nil
}
