// Package builder drives the multi-phase creation of one remote
// product: create with an initial variant batch, then append the rest
// in fixed-size batches with verification reads between phases.
package builder

import "github.com/mirandola/podforge/internal/catalog"

// Plan splits a variant list into the initial creation batch and the
// append batches that follow. Original catalog order is preserved
// across the whole plan.
type Plan struct {
	Initial []catalog.Variant
	Appends [][]catalog.Variant
}

// Total returns the number of variants across all phases.
func (p Plan) Total() int {
	n := len(p.Initial)
	for _, b := range p.Appends {
		n += len(b)
	}
	return n
}

// PlanBatches builds the batch plan for a variant list. The first
// initialSize variants go into the creation call; the remainder is
// split into append batches of at most appendSize, the last one
// possibly short.
func PlanBatches(variants []catalog.Variant, initialSize, appendSize int) Plan {
	if initialSize <= 0 {
		initialSize = 1
	}
	if appendSize <= 0 {
		appendSize = 1
	}

	var plan Plan
	if len(variants) <= initialSize {
		plan.Initial = variants
		return plan
	}

	plan.Initial = variants[:initialSize]
	rest := variants[initialSize:]
	for len(rest) > 0 {
		n := appendSize
		if n > len(rest) {
			n = len(rest)
		}
		plan.Appends = append(plan.Appends, rest[:n])
		rest = rest[n:]
	}
	return plan
}
