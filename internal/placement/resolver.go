// Package placement maps product types and available asset URLs to the
// per-placement file configurations sent to the vendor. Resolvers are
// pure: the same product type and assets always produce structurally
// identical output, and the static position catalog is never mutated.
package placement

import (
	"fmt"

	"github.com/go-faster/errors"

	"github.com/mirandola/podforge/internal/catalog"
	"github.com/mirandola/podforge/internal/printful"
)

// AssetURLs holds the remote URLs available to a build. Design is
// always set; the rest are optional and resolvers skip slots whose
// asset is absent, except where noted.
type AssetURLs struct {
	// Design is the uploaded primary artwork.
	Design string
	// Logo is the uploaded universal logo for secondary embroidery slots.
	Logo string
	// Upscaled is the uploaded high-resolution artwork for DTG back prints.
	Upscaled string
	// FrontComposite is the left-aligned enlarged composite used on the
	// cap's front slot. Falls back to Design when empty.
	FrontComposite string
	// SideLogo is the dedicated alternate logo for the cap's side slot.
	SideLogo string
	// Preprocessed is the beanie's pre-processed artwork. Required for
	// the beanie product; its absence is a hard failure.
	Preprocessed string
}

// MissingAssetError indicates a required local asset was absent for a
// product that has no fallback. It is raised before any remote state
// is created.
type MissingAssetError struct {
	ProductKey string
	Asset      string
}

func (e *MissingAssetError) Error() string {
	return fmt.Sprintf("product %s requires asset %q and there is no fallback", e.ProductKey, e.Asset)
}

// Resolver turns available assets into the ordered file configurations
// for one variant of a product type.
type Resolver interface {
	Resolve(assets AssetURLs) ([]printful.FileConfig, error)
}

// ForProduct selects the resolver strategy for a product type. Products
// without bespoke logic get the generic positional rules.
func ForProduct(pt catalog.ProductType) Resolver {
	switch pt.Key {
	case catalog.KeyCap:
		return capResolver{product: pt}
	case catalog.KeyBeanie:
		return beanieResolver{product: pt}
	default:
		return genericResolver{product: pt}
	}
}

// genericResolver applies positional rules: the first slot takes the
// primary design, the second the logo when present, and any "back"
// slot the upscaled artwork when present. Slots without an asset are
// omitted.
type genericResolver struct {
	product catalog.ProductType
}

func (r genericResolver) Resolve(assets AssetURLs) ([]printful.FileConfig, error) {
	if assets.Design == "" {
		return nil, errors.Errorf("product %s: primary design URL is required", r.product.Key)
	}

	var out []printful.FileConfig
	for i, slot := range r.product.Placements {
		var url string
		switch {
		case i == 0:
			url = assets.Design
		case i == 1 && assets.Logo != "":
			url = assets.Logo
		case slot.Type == "back" && assets.Upscaled != "":
			url = assets.Upscaled
		default:
			continue
		}

		fc, err := newFileConfig(slot, url)
		if err != nil {
			return nil, err
		}
		out = append(out, fc)
	}
	return out, nil
}

// capResolver handles the two-slot embroidered cap: the front slot uses
// the left-aligned composite (or the plain design if composition was
// not possible), the side slot the dedicated alternate logo, skipped
// when absent.
type capResolver struct {
	product catalog.ProductType
}

func (r capResolver) Resolve(assets AssetURLs) ([]printful.FileConfig, error) {
	if assets.Design == "" {
		return nil, errors.Errorf("product %s: primary design URL is required", r.product.Key)
	}

	var out []printful.FileConfig
	for _, slot := range r.product.Placements {
		var url string
		switch slot.Type {
		case "embroidery_front":
			url = assets.FrontComposite
			if url == "" {
				url = assets.Design
			}
		case "embroidery_left":
			url = assets.SideLogo
			if url == "" {
				url = assets.Logo
			}
			if url == "" {
				continue
			}
		default:
			continue
		}

		fc, err := newFileConfig(slot, url)
		if err != nil {
			return nil, err
		}
		out = append(out, fc)
	}
	return out, nil
}

// beanieResolver handles the single-slot beanie, which takes only the
// pre-processed artwork. A missing source is a precondition failure,
// not a skip.
type beanieResolver struct {
	product catalog.ProductType
}

func (r beanieResolver) Resolve(assets AssetURLs) ([]printful.FileConfig, error) {
	if assets.Preprocessed == "" {
		return nil, &MissingAssetError{ProductKey: r.product.Key, Asset: "preprocessed artwork"}
	}

	var out []printful.FileConfig
	for _, slot := range r.product.Placements {
		if slot.Type != "embroidery_front" {
			continue
		}
		fc, err := newFileConfig(slot, assets.Preprocessed)
		if err != nil {
			return nil, err
		}
		out = append(out, fc)
	}
	return out, nil
}

// newFileConfig assembles the wire config for a slot: embroidery slots
// get the automatic thread color option, and slots with a configured
// position get a private copy of the catalog box.
func newFileConfig(slot catalog.PlacementSlot, url string) (printful.FileConfig, error) {
	fc := printful.FileConfig{
		Type: slot.Type,
		URL:  url,
	}
	if slot.Category == catalog.Embroidery {
		fc.Options = []printful.FileOption{printful.AutoThreadColor()}
	}
	if box, ok := catalog.PositionFor(slot.Type); ok {
		if err := box.Validate(); err != nil {
			return printful.FileConfig{}, errors.Wrapf(err, "placement %s position", slot.Type)
		}
		fc.Position = &box
	}
	return fc, nil
}
