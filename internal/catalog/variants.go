package catalog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// DefaultPrice is applied to catalog entries that carry no price.
var DefaultPrice = decimal.NewFromInt(25)

// Variant is one purchasable SKU of a product type.
type Variant struct {
	VariantID int64
	Size      string
	Color     string
	Price     decimal.Decimal
}

// rawVariant tolerates the field variations seen across variant files:
// the id may be named variant_id or id, and the price may be absent.
type rawVariant struct {
	VariantID int64            `json:"variant_id"`
	ID        int64            `json:"id"`
	Size      string           `json:"size"`
	Color     string           `json:"color"`
	Price     *decimal.Decimal `json:"price"`
}

// VariantLoader reads per-product variant lists from JSON files named
// <product key>_data.json in a single directory. Loaded lists are
// cached for the loader's lifetime; variants are never mutated.
type VariantLoader struct {
	dir string

	mu    sync.Mutex
	cache map[string][]Variant
}

// NewVariantLoader creates a loader rooted at dir.
func NewVariantLoader(dir string) *VariantLoader {
	return &VariantLoader{
		dir:   dir,
		cache: make(map[string][]Variant),
	}
}

// Load returns the variant list for a product key, reading and caching
// the backing file on first use.
func (l *VariantLoader) Load(productKey string) ([]Variant, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if cached, ok := l.cache[productKey]; ok {
		return cached, nil
	}

	path := filepath.Join(l.dir, productKey+"_data.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, errors.Errorf("no variant file for product %q: %s", productKey, path)
		}
		return nil, errors.Wrapf(err, "read variant file for %q", productKey)
	}

	variants, err := parseVariants(data)
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	if len(variants) == 0 {
		return nil, errors.Errorf("variant file %s contains no variants", path)
	}

	l.cache[productKey] = variants
	return variants, nil
}

// Available lists the product keys that have a variant file on disk.
func (l *VariantLoader) Available() ([]string, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, errors.Wrapf(err, "read variants dir %s", l.dir)
	}

	var keys []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, "_data.json") {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, "_data.json"))
	}
	sort.Strings(keys)
	return keys, nil
}

// parseVariants accepts either a bare JSON array of variants or an
// object wrapping the array under a variants, data, or result key.
func parseVariants(data []byte) ([]Variant, error) {
	var raws []rawVariant
	if err := json.Unmarshal(data, &raws); err == nil {
		return standardize(raws)
	}

	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, errors.Wrap(err, "decode variant list")
	}
	for _, key := range []string{"variants", "data", "result"} {
		raw, ok := wrapped[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, &raws); err != nil {
			return nil, errors.Wrapf(err, "decode %q array", key)
		}
		return standardize(raws)
	}

	keys := make([]string, 0, len(wrapped))
	for k := range wrapped {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return nil, errors.Errorf("unrecognized variant file shape, top-level keys: %s", strings.Join(keys, ", "))
}

func standardize(raws []rawVariant) ([]Variant, error) {
	out := make([]Variant, 0, len(raws))
	for i, r := range raws {
		id := r.VariantID
		if id == 0 {
			id = r.ID
		}
		if id == 0 {
			return nil, errors.Errorf("variant %d has no variant_id", i)
		}

		price := DefaultPrice
		if r.Price != nil {
			price = *r.Price
		}

		out = append(out, Variant{
			VariantID: id,
			Size:      r.Size,
			Color:     r.Color,
			Price:     price,
		})
	}
	return out, nil
}

// Summary aggregates a variant list for display.
type Summary struct {
	Count  int
	Colors int
	Sizes  []string
}

// Summarize computes display statistics for a variant list.
func Summarize(variants []Variant) Summary {
	colors := make(map[string]struct{})
	sizes := make(map[string]struct{})
	for _, v := range variants {
		if v.Color != "" {
			colors[v.Color] = struct{}{}
		}
		if v.Size != "" {
			sizes[v.Size] = struct{}{}
		}
	}

	sizeList := make([]string, 0, len(sizes))
	for s := range sizes {
		sizeList = append(sizeList, s)
	}
	sort.Strings(sizeList)

	return Summary{
		Count:  len(variants),
		Colors: len(colors),
		Sizes:  sizeList,
	}
}
