// Package fleet runs product builds in bulk: one design across every
// product, one product across every design, or the full matrix. A
// failed build never stops the run; it is recorded and the fleet moves
// on.
package fleet

import (
	"context"
	"time"

	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mirandola/podforge/internal/builder"
	"github.com/mirandola/podforge/internal/clock"
)

// Mode names a fleet run shape.
type Mode string

const (
	ModeSingle      Mode = "single"
	ModeAllProducts Mode = "all-products"
	ModeAllDesigns  Mode = "all-designs"
	ModeMatrix      Mode = "matrix"
)

// ProductBuilder builds one remote product.
type ProductBuilder interface {
	Build(ctx context.Context, designFile, productKey string) (builder.BuildResult, error)
}

// Aggregate summarizes a fleet run.
type Aggregate struct {
	ID                   uuid.UUID             `json:"id"`
	Mode                 Mode                  `json:"mode"`
	Attempted            int                   `json:"attempted"`
	Succeeded            int                   `json:"succeeded"`
	TotalVariantsCreated int                   `json:"total_variants_created"`
	Results              []builder.BuildResult `json:"results"`
	Errors               []string              `json:"errors,omitempty"`
	StartedAt            time.Time             `json:"started_at"`
	FinishedAt           time.Time             `json:"finished_at"`
}

// Success reports whether the run produced at least one usable product.
func (a Aggregate) Success() bool {
	return a.Succeeded > 0
}

// Orchestrator sequences builds with pacing between them.
type Orchestrator struct {
	builder ProductBuilder
	pause   time.Duration
	clock   clock.Clock
}

// New creates an orchestrator. pause is the wait between consecutive
// builds; matrix runs double it between designs. A nil clock gets the
// system clock.
func New(b ProductBuilder, pause time.Duration, ck clock.Clock) *Orchestrator {
	if ck == nil {
		ck = clock.System{}
	}
	return &Orchestrator{builder: b, pause: pause, clock: ck}
}

// RunSingle builds one design on one product.
func (o *Orchestrator) RunSingle(ctx context.Context, designFile, productKey string) (Aggregate, error) {
	return o.run(ctx, ModeSingle, []string{designFile}, []string{productKey}, 0)
}

// AllProducts builds one design across every product key.
func (o *Orchestrator) AllProducts(ctx context.Context, designFile string, productKeys []string) (Aggregate, error) {
	return o.run(ctx, ModeAllProducts, []string{designFile}, productKeys, 0)
}

// AllDesigns builds every design on one product key.
func (o *Orchestrator) AllDesigns(ctx context.Context, designFiles []string, productKey string) (Aggregate, error) {
	return o.run(ctx, ModeAllDesigns, designFiles, []string{productKey}, 0)
}

// Matrix builds every design across every product key. The pause
// between designs is doubled to give the vendor API room on the
// largest runs.
func (o *Orchestrator) Matrix(ctx context.Context, designFiles, productKeys []string) (Aggregate, error) {
	return o.run(ctx, ModeMatrix, designFiles, productKeys, 2*o.pause)
}

// run walks the design and product lists in order. Context cancellation
// is the only thing that ends a run early.
func (o *Orchestrator) run(ctx context.Context, mode Mode, designs, products []string, designPause time.Duration) (Aggregate, error) {
	agg := Aggregate{
		ID:        uuid.New(),
		Mode:      mode,
		StartedAt: o.clock.Now(),
	}
	lg := zctx.From(ctx).With(zap.String("mode", string(mode)))
	lg.Info("Fleet run started",
		zap.Int("designs", len(designs)),
		zap.Int("products", len(products)),
	)

	first := true
	for di, design := range designs {
		if di > 0 && designPause > 0 {
			if err := o.clock.Sleep(ctx, designPause); err != nil {
				return o.finish(lg, agg), err
			}
		}
		for _, product := range products {
			if !first {
				if err := o.clock.Sleep(ctx, o.pause); err != nil {
					return o.finish(lg, agg), err
				}
			}
			first = false

			agg.Attempted++
			res, err := o.builder.Build(ctx, design, product)
			agg.Results = append(agg.Results, res)
			if err != nil {
				if ctx.Err() != nil {
					agg.Errors = append(agg.Errors, res.Error)
					return o.finish(lg, agg), ctx.Err()
				}
				agg.Errors = append(agg.Errors, res.Error)
				continue
			}
			if res.Success() {
				agg.Succeeded++
			}
			agg.TotalVariantsCreated += res.VariantsCreated
		}
	}

	return o.finish(lg, agg), nil
}

func (o *Orchestrator) finish(lg *zap.Logger, agg Aggregate) Aggregate {
	agg.FinishedAt = o.clock.Now()
	lg.Info("Fleet run finished",
		zap.Int("attempted", agg.Attempted),
		zap.Int("succeeded", agg.Succeeded),
		zap.Int("variants_created", agg.TotalVariantsCreated),
		zap.Int("errors", len(agg.Errors)),
	)
	return agg
}
