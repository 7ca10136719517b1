// Package app wires configuration, the vendor gateway, asset pipeline,
// builder, and fleet orchestrator into the operations the command line
// exposes.
package app

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/mirandola/podforge/internal/assets"
	"github.com/mirandola/podforge/internal/builder"
	"github.com/mirandola/podforge/internal/catalog"
	"github.com/mirandola/podforge/internal/clock"
	"github.com/mirandola/podforge/internal/fleet"
	"github.com/mirandola/podforge/internal/printful"
	"github.com/mirandola/podforge/internal/results"
)

// App is the assembled application.
type App struct {
	cfg      *Config
	client   *printful.Client
	catalog  *catalog.Catalog
	variants *catalog.VariantLoader
	fleet    *fleet.Orchestrator
	results  *results.Store
}

// New builds the full dependency graph from configuration.
func New(cfg *Config) (*App, error) {
	client := printful.NewClient(cfg.PrintfulToken, cfg.PrintfulStoreID,
		printful.WithBaseURL(cfg.API.BaseURL),
		printful.WithHTTPClient(&http.Client{Timeout: cfg.API.Timeout}),
		printful.WithRetryPolicy(printful.RetryPolicy{
			MaxAttempts: cfg.API.MaxAttempts,
			Backoff:     printful.DefaultRetryPolicy().Backoff,
		}),
		printful.WithMinInterval(cfg.API.MinInterval),
	)

	uploader, err := assets.NewCloudinary(assets.CloudinaryConfig{
		CloudName: cfg.Cloudinary.CloudName,
		APIKey:    cfg.Cloudinary.APIKey,
		APISecret: cfg.Cloudinary.APISecret,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create uploader")
	}

	preparer := assets.NewPreparer(
		assets.NewStore(uploader),
		assets.NewCompositor(cfg.Paths.WorkDir),
		assets.PreparerConfig{
			LogoPath:      cfg.Paths.LogoPath,
			SideLogoPath:  cfg.Paths.SideLogoPath,
			EmbroideryDir: cfg.Paths.EmbroideryDir,
			UpscaledDir:   cfg.Paths.UpscaledDir,
		},
	)

	cat := catalog.Default()
	loader := catalog.NewVariantLoader(cfg.Paths.VariantsDir)
	b := builder.New(
		client,
		preparer,
		cat,
		loader,
		builder.Config{
			InitialBatchSize: cfg.Batch.InitialSize,
			AppendBatchSize:  cfg.Batch.AppendSize,
			BatchPause:       cfg.Batch.Pause,
		},
		clock.System{},
	)

	return &App{
		cfg:      cfg,
		client:   client,
		catalog:  cat,
		variants: loader,
		fleet:    fleet.New(b, cfg.Batch.FleetPause, clock.System{}),
		results:  results.NewStore(cfg.Paths.ResultsDir),
	}, nil
}

// ValidateStore checks the API credentials by reading the store record.
func (a *App) ValidateStore(ctx context.Context) error {
	info, err := a.client.GetStore(ctx)
	if err != nil {
		return errors.Wrap(err, "validate store connection")
	}
	zctx.From(ctx).Info("Store connection validated",
		zap.Int64("store_id", info.ID),
		zap.String("store_name", info.Name),
	)
	return nil
}

// ProductKeys lists the configured product keys.
func (a *App) ProductKeys() []string {
	return a.catalog.Keys()
}

// VariantSummary loads a product's variant list and summarizes it for
// display.
func (a *App) VariantSummary(productKey string) (catalog.Summary, error) {
	variants, err := a.variants.Load(productKey)
	if err != nil {
		return catalog.Summary{}, err
	}
	return catalog.Summarize(variants), nil
}

// Designs lists the design files found in the designs directory.
func (a *App) Designs() ([]string, error) {
	entries, err := os.ReadDir(a.cfg.Paths.DesignsDir)
	if err != nil {
		return nil, errors.Wrapf(err, "read designs dir %s", a.cfg.Paths.DesignsDir)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".png", ".jpg", ".jpeg":
			files = append(files, filepath.Join(a.cfg.Paths.DesignsDir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// BuildSingle builds one design on one product and persists the result.
func (a *App) BuildSingle(ctx context.Context, designFile, productKey string) (fleet.Aggregate, error) {
	agg, err := a.fleet.RunSingle(ctx, designFile, productKey)
	a.save(ctx, agg)
	return agg, err
}

// BuildAllProducts builds one design across every configured product.
func (a *App) BuildAllProducts(ctx context.Context, designFile string) (fleet.Aggregate, error) {
	agg, err := a.fleet.AllProducts(ctx, designFile, a.catalog.Keys())
	a.save(ctx, agg)
	return agg, err
}

// BuildAllDesigns builds every design on one product.
func (a *App) BuildAllDesigns(ctx context.Context, productKey string) (fleet.Aggregate, error) {
	designs, err := a.Designs()
	if err != nil {
		return fleet.Aggregate{}, err
	}
	if len(designs) == 0 {
		return fleet.Aggregate{}, errors.Errorf("no design files in %s", a.cfg.Paths.DesignsDir)
	}

	agg, err := a.fleet.AllDesigns(ctx, designs, productKey)
	a.save(ctx, agg)
	return agg, err
}

// BuildMatrix builds every design across every configured product.
func (a *App) BuildMatrix(ctx context.Context) (fleet.Aggregate, error) {
	designs, err := a.Designs()
	if err != nil {
		return fleet.Aggregate{}, err
	}
	if len(designs) == 0 {
		return fleet.Aggregate{}, errors.Errorf("no design files in %s", a.cfg.Paths.DesignsDir)
	}

	agg, err := a.fleet.Matrix(ctx, designs, a.catalog.Keys())
	a.save(ctx, agg)
	return agg, err
}

// save persists each build result and the run summary. Persistence
// failures are logged, not fatal: the build work already happened.
func (a *App) save(ctx context.Context, agg fleet.Aggregate) {
	if agg.Attempted == 0 {
		return
	}
	lg := zctx.From(ctx)

	for _, res := range agg.Results {
		if _, err := a.results.SaveBuild(res); err != nil {
			lg.Warn("Failed to persist build result",
				zap.String("product", res.ProductKey),
				zap.Error(err),
			)
		}
	}

	path, err := a.results.SaveAggregate(agg)
	if err != nil {
		lg.Warn("Failed to persist run results", zap.Error(err))
		return
	}
	lg.Info("Run results saved", zap.String("path", path))
}
