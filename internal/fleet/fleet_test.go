package fleet

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirandola/podforge/internal/builder"
	"github.com/mirandola/podforge/internal/clock"
)

// scriptedBuilder records build calls and fails the keys listed in
// failOn.
type scriptedBuilder struct {
	calls  [][2]string
	failOn map[string]bool
}

func (b *scriptedBuilder) Build(_ context.Context, designFile, productKey string) (builder.BuildResult, error) {
	b.calls = append(b.calls, [2]string{designFile, productKey})

	res := builder.BuildResult{
		DesignFile:        designFile,
		ProductKey:        productKey,
		VariantsRequested: 10,
	}
	if b.failOn[productKey] || b.failOn[designFile] {
		res.Outcome = builder.OutcomeFailed
		res.Error = "scripted failure"
		return res, errors.New("scripted failure")
	}
	res.Outcome = builder.OutcomeSucceeded
	res.VariantsCreated = 10
	return res, nil
}

func newOrchestrator(b ProductBuilder) (*Orchestrator, *clock.Fake) {
	ck := clock.NewFake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	return New(b, 3*time.Second, ck), ck
}

func TestRunSingle(t *testing.T) {
	b := &scriptedBuilder{}
	o, ck := newOrchestrator(b)

	agg, err := o.RunSingle(context.Background(), "skull.png", "gildan_5000")
	require.NoError(t, err)

	assert.Equal(t, ModeSingle, agg.Mode)
	assert.Equal(t, 1, agg.Attempted)
	assert.Equal(t, 1, agg.Succeeded)
	assert.Equal(t, 10, agg.TotalVariantsCreated)
	assert.True(t, agg.Success())
	assert.Empty(t, ck.Slept())
}

func TestAllProductsContinuesPastFailures(t *testing.T) {
	b := &scriptedBuilder{failOn: map[string]bool{"gildan_18000": true}}
	o, ck := newOrchestrator(b)

	agg, err := o.AllProducts(context.Background(), "skull.png",
		[]string{"gildan_5000", "gildan_18000", "gildan_18500"})
	require.NoError(t, err)

	assert.Equal(t, 3, agg.Attempted)
	assert.Equal(t, 2, agg.Succeeded)
	assert.Equal(t, 20, agg.TotalVariantsCreated)
	assert.Equal(t, []string{"scripted failure"}, agg.Errors)
	assert.True(t, agg.Success())
	assert.Len(t, agg.Results, 3)

	// A pause between each consecutive build.
	assert.Equal(t, []time.Duration{3 * time.Second, 3 * time.Second}, ck.Slept())
}

func TestAllFailuresIsNotSuccess(t *testing.T) {
	b := &scriptedBuilder{failOn: map[string]bool{"gildan_5000": true}}
	o, _ := newOrchestrator(b)

	agg, err := o.AllDesigns(context.Background(), []string{"a.png", "b.png"}, "gildan_5000")
	require.NoError(t, err)

	assert.Equal(t, 2, agg.Attempted)
	assert.Equal(t, 0, agg.Succeeded)
	assert.False(t, agg.Success())
	assert.Len(t, agg.Errors, 2)
}

func TestMatrixOrderAndPacing(t *testing.T) {
	b := &scriptedBuilder{}
	o, ck := newOrchestrator(b)

	agg, err := o.Matrix(context.Background(),
		[]string{"a.png", "b.png"},
		[]string{"p1", "p2"})
	require.NoError(t, err)

	assert.Equal(t, 4, agg.Attempted)
	assert.Equal(t, [][2]string{
		{"a.png", "p1"},
		{"a.png", "p2"},
		{"b.png", "p1"},
		{"b.png", "p2"},
	}, b.calls)

	// Between builds 3s; between designs an extra doubled pause.
	assert.Equal(t, []time.Duration{
		3 * time.Second,
		6 * time.Second,
		3 * time.Second,
		3 * time.Second,
	}, ck.Slept())
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	b := &scriptedBuilder{}
	o, _ := newOrchestrator(b)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := o.AllProducts(ctx, "skull.png", []string{"p1", "p2", "p3"})
	require.Error(t, err)
	// The first build runs before any pause; cancellation surfaces at
	// the pause before the second.
	assert.LessOrEqual(t, len(b.calls), 2)
}
