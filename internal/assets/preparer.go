package assets

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mirandola/podforge/internal/catalog"
	"github.com/mirandola/podforge/internal/placement"
)

// Cap front composite parameters, tuned against live embroidery
// previews.
const (
	capCanvasMultiplier = 2.5
	capMarginPercent    = 0.05
	capScaleFactor      = 1.5
)

// beanieScaleFactor enlarges the beanie's pre-processed artwork.
const beanieScaleFactor = 1.5

// PreparerConfig points the preparer at the local asset directories and
// shared logo files.
type PreparerConfig struct {
	// LogoPath is the universal logo used on secondary embroidery slots.
	LogoPath string
	// SideLogoPath is the alternate logo used on the cap's side slot.
	SideLogoPath string
	// EmbroideryDir holds pre-processed artwork, keyed by design name.
	EmbroideryDir string
	// UpscaledDir holds high-resolution artwork for DTG back prints,
	// keyed by design name.
	UpscaledDir string
}

// Preparer turns a local design file into the set of hosted URLs a
// product build needs, running the bespoke image transforms along the
// way.
type Preparer struct {
	store      *Store
	compositor *Compositor
	cfg        PreparerConfig
}

// NewPreparer wires the upload cache and compositor into a preparer.
func NewPreparer(store *Store, compositor *Compositor, cfg PreparerConfig) *Preparer {
	return &Preparer{
		store:      store,
		compositor: compositor,
		cfg:        cfg,
	}
}

// Prepare uploads the design and every supporting asset the product
// type needs and returns their hosted URLs. The primary design upload
// is mandatory; optional assets that are absent on disk are skipped.
// Bespoke products may fail here before any remote product exists.
func (p *Preparer) Prepare(ctx context.Context, designFile string, pt catalog.ProductType) (placement.AssetURLs, error) {
	var urls placement.AssetURLs
	lg := zctx.From(ctx)

	designURL, err := p.store.UploadPreservingAlpha(ctx, designFile)
	if err != nil {
		return urls, errors.Wrapf(err, "upload design %s", designFile)
	}
	urls.Design = designURL

	g, gctx := errgroup.WithContext(ctx)

	if pt.RequiresLogo() && fileExists(p.cfg.LogoPath) {
		g.Go(func() error {
			u, err := p.store.UploadPreservingAlpha(gctx, p.cfg.LogoPath)
			if err != nil {
				return errors.Wrap(err, "upload logo")
			}
			urls.Logo = u
			return nil
		})
	}

	if pt.RequiresUpscaled() {
		if path := p.derivedPath(p.cfg.UpscaledDir, designFile); fileExists(path) {
			g.Go(func() error {
				u, err := p.store.Upload(gctx, path)
				if err != nil {
					return errors.Wrap(err, "upload upscaled artwork")
				}
				urls.Upscaled = u
				return nil
			})
		} else {
			lg.Debug("No upscaled artwork, back print will be skipped",
				zap.String("design", designFile),
			)
		}
	}

	if err := g.Wait(); err != nil {
		return urls, err
	}

	switch pt.Key {
	case catalog.KeyCap:
		if err := p.prepareCap(ctx, designFile, &urls); err != nil {
			return urls, err
		}
	case catalog.KeyBeanie:
		if err := p.prepareBeanie(ctx, designFile, &urls); err != nil {
			return urls, err
		}
	}

	return urls, nil
}

// prepareCap builds the left-aligned front composite and uploads the
// side logo. A failed composition falls back to the plain design; a
// missing side logo just skips the slot.
func (p *Preparer) prepareCap(ctx context.Context, designFile string, urls *placement.AssetURLs) error {
	lg := zctx.From(ctx)

	src := p.derivedPath(p.cfg.EmbroideryDir, designFile)
	if !fileExists(src) {
		src = designFile
	}

	composite, err := p.compositor.LeftAligned(src, capCanvasMultiplier, capMarginPercent, capScaleFactor)
	if err != nil {
		lg.Warn("Front composite failed, using plain design",
			zap.String("design", designFile),
			zap.Error(err),
		)
	} else {
		u, err := p.store.UploadPreservingAlpha(ctx, composite)
		if err != nil {
			return errors.Wrap(err, "upload front composite")
		}
		urls.FrontComposite = u
	}

	if fileExists(p.cfg.SideLogoPath) {
		u, err := p.store.UploadPreservingAlpha(ctx, p.cfg.SideLogoPath)
		if err != nil {
			return errors.Wrap(err, "upload side logo")
		}
		urls.SideLogo = u
	}

	return nil
}

// prepareBeanie scales and uploads the pre-processed artwork. Unlike
// the cap there is no fallback: a missing source or failed transform
// aborts the build.
func (p *Preparer) prepareBeanie(ctx context.Context, designFile string, urls *placement.AssetURLs) error {
	src := p.derivedPath(p.cfg.EmbroideryDir, designFile)
	if !fileExists(src) {
		return &placement.MissingAssetError{
			ProductKey: catalog.KeyBeanie,
			Asset:      src,
		}
	}

	scaled, err := p.compositor.Scaled(src, beanieScaleFactor)
	if err != nil {
		return errors.Wrapf(err, "scale %s", src)
	}

	u, err := p.store.UploadPreservingAlpha(ctx, scaled)
	if err != nil {
		return errors.Wrap(err, "upload pre-processed artwork")
	}
	urls.Preprocessed = u
	return nil
}

// derivedPath locates the companion file for a design in dir, matching
// by design name with a png extension.
func (p *Preparer) derivedPath(dir, designFile string) string {
	if dir == "" {
		return ""
	}
	base := filepath.Base(designFile)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, name+".png")
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
