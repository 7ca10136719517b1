// Package catalog holds the static product and placement configuration
// and the per-product variant lists loaded from JSON files. Everything
// here is immutable after process start; builds only read it.
package catalog

import (
	"sort"
	"strings"

	"github.com/go-faster/errors"
)

// DesignCategory tells how artwork is applied to a placement.
type DesignCategory string

const (
	// Embroidery placements get automatic thread color options.
	Embroidery DesignCategory = "embroidery"
	// DTG is direct-to-garment printing.
	DTG DesignCategory = "dtg"
)

// Well-known product keys with bespoke placement logic.
const (
	// KeyCap is the two-slot embroidered cap: the front slot takes a
	// left-aligned enlarged composite of the primary design, the side
	// slot a dedicated alternate logo.
	KeyCap = "yupoong_6089m"
	// KeyBeanie is the single-slot beanie. Its front slot requires a
	// pre-processed artwork file; there is no fallback.
	KeyBeanie = "as_colour_1120"
)

// PlacementSlot is one printable or embroiderable location on a product.
type PlacementSlot struct {
	Type        string
	Description string
	Category    DesignCategory
	Order       int
}

// ProductType binds a catalog key to a display name, category, and an
// ordered list of placement slots.
type ProductType struct {
	Key        string
	Name       string
	Category   string
	Placements []PlacementSlot
}

// EmbroiderySlots returns the product's embroidery placements in order.
func (p ProductType) EmbroiderySlots() []PlacementSlot {
	var out []PlacementSlot
	for _, s := range p.Placements {
		if s.Category == Embroidery {
			out = append(out, s)
		}
	}
	return out
}

// RequiresLogo reports whether the product has a secondary embroidery
// slot that takes the universal logo.
func (p ProductType) RequiresLogo() bool {
	return len(p.EmbroiderySlots()) > 1
}

// RequiresUpscaled reports whether the product has a DTG placement that
// takes the upscaled artwork.
func (p ProductType) RequiresUpscaled() bool {
	for _, s := range p.Placements {
		if s.Category == DTG {
			return true
		}
	}
	return false
}

// Catalog is the closed set of supported product types.
type Catalog struct {
	products map[string]ProductType
	keys     []string
}

// Default returns the built-in product catalog.
func Default() *Catalog {
	return newCatalog(
		ProductType{
			Key:      "gildan_5000",
			Name:     "Gildan 5000 - T-shirt",
			Category: "tshirt",
			Placements: []PlacementSlot{
				{Type: "embroidery_chest_left", Description: "Left chest embroidery", Category: Embroidery, Order: 1},
				{Type: "embroidery_sleeve_left_top", Description: "Left sleeve embroidery", Category: Embroidery, Order: 2},
				{Type: "back", Description: "DTG back print", Category: DTG, Order: 3},
			},
		},
		ProductType{
			Key:      "gildan_18000",
			Name:     "Gildan 18000 - Sweatshirt",
			Category: "sweatshirt",
			Placements: []PlacementSlot{
				{Type: "embroidery_chest_left", Description: "Left chest embroidery", Category: Embroidery, Order: 1},
				{Type: "embroidery_wrist_left", Description: "Left wrist embroidery", Category: Embroidery, Order: 2},
				{Type: "back", Description: "DTG back print", Category: DTG, Order: 3},
			},
		},
		ProductType{
			Key:      "gildan_18500",
			Name:     "Gildan 18500 - Hoodie",
			Category: "hoodie",
			Placements: []PlacementSlot{
				{Type: "embroidery_chest_left", Description: "Left chest embroidery", Category: Embroidery, Order: 1},
				{Type: "embroidery_wrist_left", Description: "Left wrist embroidery", Category: Embroidery, Order: 2},
				{Type: "back", Description: "DTG back print", Category: DTG, Order: 3},
			},
		},
		ProductType{
			Key:      KeyBeanie,
			Name:     "AS Colour 1120 - Beanie",
			Category: "hat",
			Placements: []PlacementSlot{
				{Type: "embroidery_front", Description: "Front embroidery", Category: Embroidery, Order: 1},
			},
		},
		ProductType{
			Key:      KeyCap,
			Name:     "Yupoong 6089M - Cap",
			Category: "hat",
			Placements: []PlacementSlot{
				{Type: "embroidery_front", Description: "Front embroidery", Category: Embroidery, Order: 1},
				{Type: "embroidery_left", Description: "Left side embroidery", Category: Embroidery, Order: 2},
			},
		},
	)
}

func newCatalog(products ...ProductType) *Catalog {
	c := &Catalog{products: make(map[string]ProductType, len(products))}
	for _, p := range products {
		c.products[p.Key] = p
		c.keys = append(c.keys, p.Key)
	}
	sort.Strings(c.keys)
	return c
}

// Get returns the product type for a key. Unknown keys produce an error
// naming the available products.
func (c *Catalog) Get(key string) (ProductType, error) {
	p, ok := c.products[key]
	if !ok {
		return ProductType{}, errors.Errorf("product %q is not configured, available: %s",
			key, strings.Join(c.keys, ", "))
	}
	return p, nil
}

// Keys returns all product keys in stable order.
func (c *Catalog) Keys() []string {
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out
}

// ByCategory returns the keys of all products in the given category.
func (c *Catalog) ByCategory(category string) []string {
	var out []string
	for _, k := range c.keys {
		if c.products[k].Category == category {
			out = append(out, k)
		}
	}
	return out
}
