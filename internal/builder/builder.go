package builder

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mirandola/podforge/internal/catalog"
	"github.com/mirandola/podforge/internal/clock"
	"github.com/mirandola/podforge/internal/placement"
	"github.com/mirandola/podforge/internal/printful"
)

// Gateway is the slice of the vendor API a build needs.
type Gateway interface {
	CreateProduct(ctx context.Context, payload printful.ProductPayload) (int64, error)
	UpdateProduct(ctx context.Context, productID int64, payload printful.ProductPayload) error
	GetProduct(ctx context.Context, productID int64) (*printful.Product, error)
}

// AssetPreparer hosts the local artwork a product build needs.
type AssetPreparer interface {
	Prepare(ctx context.Context, designFile string, pt catalog.ProductType) (placement.AssetURLs, error)
}

// Config sets the batch sizes and pacing for builds.
type Config struct {
	// InitialBatchSize is the variant count sent with the create call.
	InitialBatchSize int
	// AppendBatchSize is the variant count added per update call.
	AppendBatchSize int
	// BatchPause is the wait between consecutive append batches.
	BatchPause time.Duration
}

// DefaultConfig returns the batch settings the vendor API tolerates.
func DefaultConfig() Config {
	return Config{
		InitialBatchSize: 8,
		AppendBatchSize:  10,
		BatchPause:       2 * time.Second,
	}
}

// Builder creates one remote product per Build call.
type Builder struct {
	gateway  Gateway
	preparer AssetPreparer
	catalog  *catalog.Catalog
	variants *catalog.VariantLoader
	cfg      Config
	clock    clock.Clock
}

// New wires a builder. A nil clock gets the system clock.
func New(gateway Gateway, preparer AssetPreparer, cat *catalog.Catalog, variants *catalog.VariantLoader, cfg Config, ck clock.Clock) *Builder {
	if ck == nil {
		ck = clock.System{}
	}
	return &Builder{
		gateway:  gateway,
		preparer: preparer,
		catalog:  cat,
		variants: variants,
		cfg:      cfg,
		clock:    ck,
	}
}

// Build creates the remote product for one design and product type,
// appending variants in batches until the full catalog list exists.
// The returned result is always populated, error or not; a non-nil
// error means the build produced nothing usable.
func (b *Builder) Build(ctx context.Context, designFile, productKey string) (BuildResult, error) {
	res := BuildResult{
		ID:         uuid.New(),
		DesignFile: designFile,
		ProductKey: productKey,
		Outcome:    OutcomeFailed,
		StartedAt:  b.clock.Now(),
	}
	lg := zctx.From(ctx).With(
		zap.String("design", designFile),
		zap.String("product", productKey),
	)

	err := b.build(ctx, lg, &res)
	res.FinishedAt = b.clock.Now()
	if err != nil {
		res.Error = err.Error()
		lg.Error("Build failed", zap.Error(err))
		return res, err
	}

	lg.Info("Build finished",
		zap.String("outcome", string(res.Outcome)),
		zap.Int64("product_id", res.ProductID),
		zap.Int("created", res.VariantsCreated),
		zap.Int("requested", res.VariantsRequested),
	)
	return res, nil
}

func (b *Builder) build(ctx context.Context, lg *zap.Logger, res *BuildResult) error {
	pt, err := b.catalog.Get(res.ProductKey)
	if err != nil {
		return err
	}

	variants, err := b.variants.Load(res.ProductKey)
	if err != nil {
		return err
	}
	res.VariantsRequested = len(variants)
	res.ProductName = productName(res.DesignFile, pt)

	assets, err := b.preparer.Prepare(ctx, res.DesignFile, pt)
	if err != nil {
		return errors.Wrap(err, "prepare assets")
	}

	files, err := placement.ForProduct(pt).Resolve(assets)
	if err != nil {
		return errors.Wrap(err, "resolve placements")
	}
	if len(files) == 0 {
		return errors.Errorf("product %s resolved to no placements", res.ProductKey)
	}

	plan := PlanBatches(variants, b.cfg.InitialBatchSize, b.cfg.AppendBatchSize)

	productID, err := b.gateway.CreateProduct(ctx, printful.ProductPayload{
		SyncProduct: printful.SyncProductInfo{
			Name:      res.ProductName,
			Thumbnail: assets.Design,
		},
		SyncVariants: newEntries(plan.Initial, files),
	})
	if err != nil {
		return errors.Wrap(err, "create product")
	}
	res.ProductID = productID
	res.VariantsCreated = len(plan.Initial)
	lg.Info("Product created",
		zap.Int64("product_id", productID),
		zap.Int("initial_variants", len(plan.Initial)),
		zap.Int("append_batches", len(plan.Appends)),
	)

	for i, batch := range plan.Appends {
		if err := b.clock.Sleep(ctx, b.cfg.BatchPause); err != nil {
			return err
		}
		b.appendBatch(ctx, lg, res, i, batch, files)
	}

	// Verification read. When it fails the last known count stands.
	if current, err := b.gateway.GetProduct(ctx, productID); err != nil {
		lg.Warn("Final verification read failed, keeping last known count", zap.Error(err))
	} else {
		res.VariantsCreated = len(current.SyncVariants)
	}

	switch {
	case res.VariantsCreated >= res.VariantsRequested:
		res.Outcome = OutcomeSucceeded
	case res.VariantsCreated > 0:
		res.Outcome = OutcomePartial
	default:
		return errors.New("no variants were created")
	}
	return nil
}

// appendBatch adds one batch through a read-modify-write cycle. The
// update call replaces the remote variant set, so the current variants
// are read first and sent back as references. A failed read skips the
// batch outright: updating blind would wipe what already exists.
// Failures here never abort the build.
func (b *Builder) appendBatch(ctx context.Context, lg *zap.Logger, res *BuildResult, idx int, batch []catalog.Variant, files []printful.FileConfig) {
	blg := lg.With(zap.Int("batch", idx+1), zap.Int("size", len(batch)))

	current, err := b.gateway.GetProduct(ctx, res.ProductID)
	if err != nil {
		blg.Warn("Read before append failed, skipping batch", zap.Error(err))
		return
	}

	entries := make([]printful.SyncVariantEntry, 0, len(current.SyncVariants)+len(batch))
	for _, v := range current.SyncVariants {
		entries = append(entries, printful.VariantRef(v.ID))
	}
	entries = append(entries, newEntries(batch, files)...)

	err = b.gateway.UpdateProduct(ctx, res.ProductID, printful.ProductPayload{
		SyncProduct: printful.SyncProductInfo{
			Name:      res.ProductName,
			Thumbnail: current.SyncProduct.Thumbnail,
		},
		SyncVariants: entries,
	})
	if err != nil {
		blg.Warn("Append failed, continuing with next batch", zap.Error(err))
		return
	}

	if after, err := b.gateway.GetProduct(ctx, res.ProductID); err == nil {
		res.VariantsCreated = len(after.SyncVariants)
	} else {
		res.VariantsCreated += len(batch)
		blg.Warn("Read after append failed, assuming batch landed", zap.Error(err))
	}
	blg.Debug("Batch appended", zap.Int("variants_created", res.VariantsCreated))
}

// newEntries builds full variant payloads sharing one resolved file set.
func newEntries(variants []catalog.Variant, files []printful.FileConfig) []printful.SyncVariantEntry {
	out := make([]printful.SyncVariantEntry, 0, len(variants))
	for _, v := range variants {
		out = append(out, printful.SyncVariantEntry{
			VariantID:   v.VariantID,
			RetailPrice: v.Price.StringFixed(2),
			Files:       files,
		})
	}
	return out
}

// productName joins the design name and the product display name.
func productName(designFile string, pt catalog.ProductType) string {
	base := filepath.Base(designFile)
	design := strings.TrimSuffix(base, filepath.Ext(base))
	return design + " - " + pt.Name
}
