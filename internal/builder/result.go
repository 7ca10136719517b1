package builder

import (
	"time"

	"github.com/google/uuid"
)

// Outcome classifies how a build ended.
type Outcome string

const (
	// OutcomeSucceeded means every requested variant exists remotely.
	OutcomeSucceeded Outcome = "succeeded"
	// OutcomePartial means the product exists with some variants
	// missing. The product is usable and the run counts as a success.
	OutcomePartial Outcome = "partial"
	// OutcomeFailed means no remote product or no variants were created.
	OutcomeFailed Outcome = "failed"
)

// BuildResult records one product build for reporting and persistence.
type BuildResult struct {
	ID                uuid.UUID `json:"id"`
	DesignFile        string    `json:"design_file"`
	ProductKey        string    `json:"product_key"`
	ProductName       string    `json:"product_name,omitempty"`
	ProductID         int64     `json:"product_id,omitempty"`
	Outcome           Outcome   `json:"outcome"`
	VariantsRequested int       `json:"variants_requested"`
	VariantsCreated   int       `json:"variants_created"`
	Error             string    `json:"error,omitempty"`
	StartedAt         time.Time `json:"started_at"`
	FinishedAt        time.Time `json:"finished_at"`
}

// Success reports whether the build produced a usable product. Partial
// builds count: the product exists and sells, it just misses variants.
func (r BuildResult) Success() bool {
	return r.Outcome != OutcomeFailed
}

// Duration is the wall time the build took.
func (r BuildResult) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
