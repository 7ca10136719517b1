package printful

import (
	"fmt"

	"github.com/go-faster/errors"
)

// PositionBox places artwork inside a print area. All values are
// dimensionless ratios relative to the native print-area size, as the
// vendor expects; they are not pixels.
type PositionBox struct {
	AreaWidth        float64 `json:"area_width"`
	AreaHeight       float64 `json:"area_height"`
	Width            float64 `json:"width"`
	Height           float64 `json:"height"`
	Top              float64 `json:"top"`
	Left             float64 `json:"left"`
	LimitToPrintArea bool    `json:"limit_to_print_area"`
}

// Validate checks that the artwork box fits inside the print area. The
// vendor accepts out-of-range values and clips or misrenders silently,
// so invalid boxes are rejected here before any network call.
func (p PositionBox) Validate() error {
	if p.AreaWidth <= 0 || p.AreaHeight <= 0 {
		return errors.Errorf("print area must be positive, got %gx%g", p.AreaWidth, p.AreaHeight)
	}
	if p.Width <= 0 || p.Height <= 0 {
		return errors.Errorf("artwork size must be positive, got %gx%g", p.Width, p.Height)
	}
	if p.Top < 0 || p.Left < 0 {
		return errors.Errorf("offsets must be non-negative, got top=%g left=%g", p.Top, p.Left)
	}
	if p.Top+p.Height > p.AreaHeight {
		return errors.Errorf("artwork overflows print area vertically: top %g + height %g > area height %g",
			p.Top, p.Height, p.AreaHeight)
	}
	if p.Left+p.Width > p.AreaWidth {
		return errors.Errorf("artwork overflows print area horizontally: left %g + width %g > area width %g",
			p.Left, p.Width, p.AreaWidth)
	}
	return nil
}

// FileOption is a per-file print option, e.g. automatic embroidery
// thread color selection.
type FileOption struct {
	ID    string `json:"id"`
	Value any    `json:"value"`
}

// AutoThreadColor enables automatic embroidery thread color matching.
func AutoThreadColor() FileOption {
	return FileOption{ID: "auto_thread_color", Value: true}
}

// FileConfig attaches one artwork file to a placement on a variant.
type FileConfig struct {
	Type     string       `json:"type"`
	URL      string       `json:"url"`
	Options  []FileOption `json:"options,omitempty"`
	Position *PositionBox `json:"position,omitempty"`
}

// SyncProductInfo is the product header sent on create and update calls.
type SyncProductInfo struct {
	Name      string `json:"name"`
	Thumbnail string `json:"thumbnail"`
}

// SyncVariantEntry is one element of the sync_variants array in a
// create or update payload. It is either a reference to an existing
// remote variant (only ID set) or a full new variant payload.
//
// The vendor's update call replaces the variant set with exactly what
// is sent, so updates must carry references to every variant that
// should survive alongside the new payloads.
type SyncVariantEntry struct {
	ID          int64        `json:"id,omitempty"`
	RetailPrice string       `json:"retail_price,omitempty"`
	VariantID   int64        `json:"variant_id,omitempty"`
	Files       []FileConfig `json:"files,omitempty"`
}

// VariantRef builds an entry that references an existing remote variant.
func VariantRef(id int64) SyncVariantEntry {
	return SyncVariantEntry{ID: id}
}

// ProductPayload is the request body for product create and update calls.
type ProductPayload struct {
	SyncProduct  SyncProductInfo    `json:"sync_product"`
	SyncVariants []SyncVariantEntry `json:"sync_variants"`
}

// SyncProduct is the vendor-side product header.
type SyncProduct struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Thumbnail string `json:"thumbnail"`
	Variants  int    `json:"variants"`
	Synced    int    `json:"synced"`
}

// SyncVariant is one vendor-side variant of a sync product. Its ID is
// assigned by the vendor and is distinct from the catalog VariantID.
type SyncVariant struct {
	ID          int64  `json:"id"`
	SyncProductID int64 `json:"sync_product_id"`
	Name        string `json:"name"`
	VariantID   int64  `json:"variant_id"`
	RetailPrice string `json:"retail_price"`
	Synced      bool   `json:"synced"`
}

// Product is the full vendor-side product state returned by reads.
type Product struct {
	SyncProduct  SyncProduct   `json:"sync_product"`
	SyncVariants []SyncVariant `json:"sync_variants"`
}

// StoreInfo describes the remote store, used for connection validation.
type StoreInfo struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// APIError is an application-level failure: the vendor answered with a
// well-formed error body. It is terminal and never retried.
type APIError struct {
	StatusCode int
	Code       int
	Message    string
	Reason     string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("printful api error %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("printful api error: status %d", e.StatusCode)
}
