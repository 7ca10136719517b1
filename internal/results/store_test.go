package results

import (
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirandola/podforge/internal/builder"
	"github.com/mirandola/podforge/internal/fleet"
)

func TestSaveBuild(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	s.now = func() time.Time { return time.Date(2026, 8, 28, 12, 30, 45, 0, time.UTC) }

	res := builder.BuildResult{
		ID:              uuid.New(),
		ProductKey:      "gildan_5000",
		Outcome:         builder.OutcomePartial,
		VariantsCreated: 12,
	}

	path, err := s.SaveBuild(res)
	require.NoError(t, err)
	assert.Contains(t, path, "build_gildan_5000_20260828_123045.json")

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var loaded builder.BuildResult
	require.NoError(t, json.Unmarshal(data, &loaded))
	assert.Equal(t, res.ID, loaded.ID)
	assert.Equal(t, builder.OutcomePartial, loaded.Outcome)
	assert.Equal(t, 12, loaded.VariantsCreated)
}

func TestSaveAggregateCreatesDir(t *testing.T) {
	dir := t.TempDir() + "/nested/results"
	s := NewStore(dir)

	agg := fleet.Aggregate{
		ID:        uuid.New(),
		Mode:      fleet.ModeMatrix,
		Attempted: 4,
		Succeeded: 3,
	}

	path, err := s.SaveAggregate(agg)
	require.NoError(t, err)
	assert.FileExists(t, path)

	var loaded fleet.Aggregate
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &loaded))
	assert.Equal(t, fleet.ModeMatrix, loaded.Mode)
	assert.Equal(t, 3, loaded.Succeeded)
}
