package assets

import (
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/go-faster/errors"
)

// Compositor produces derived artwork files in a scratch directory.
// Outputs are PNG so transparency survives.
type Compositor struct {
	workDir string
}

// NewCompositor creates a compositor writing into workDir. An empty
// workDir falls back to the system temp directory.
func NewCompositor(workDir string) *Compositor {
	if workDir == "" {
		workDir = os.TempDir()
	}
	return &Compositor{workDir: workDir}
}

// LeftAligned renders the source onto a wider transparent canvas with
// the artwork scaled up and pinned to the left edge. Used for cap front
// embroidery, where centered artwork reads too small.
//
// canvasMultiplier widens the canvas relative to the source width,
// marginPercent insets the artwork from the left edge, and scaleFactor
// enlarges the artwork itself.
func (c *Compositor) LeftAligned(srcPath string, canvasMultiplier, marginPercent, scaleFactor float64) (string, error) {
	src, err := imaging.Open(srcPath)
	if err != nil {
		return "", errors.Wrapf(err, "open %s", srcPath)
	}

	bounds := src.Bounds()
	scaledW := int(float64(bounds.Dx()) * scaleFactor)
	scaledH := int(float64(bounds.Dy()) * scaleFactor)
	scaled := imaging.Resize(src, scaledW, scaledH, imaging.Lanczos)

	canvasW := int(float64(scaledW) * canvasMultiplier)
	canvasH := scaledH
	canvas := imaging.New(canvasW, canvasH, image.Transparent.C)

	left := int(float64(canvasW) * marginPercent)
	out := imaging.Paste(canvas, scaled, image.Pt(left, 0))

	return c.save(out, srcPath, "left_aligned")
}

// Scaled enlarges the source by factor, keeping aspect ratio.
func (c *Compositor) Scaled(srcPath string, factor float64) (string, error) {
	src, err := imaging.Open(srcPath)
	if err != nil {
		return "", errors.Wrapf(err, "open %s", srcPath)
	}

	bounds := src.Bounds()
	w := int(float64(bounds.Dx()) * factor)
	h := int(float64(bounds.Dy()) * factor)
	out := imaging.Resize(src, w, h, imaging.Lanczos)

	return c.save(out, srcPath, "scaled")
}

func (c *Compositor) save(img image.Image, srcPath, suffix string) (string, error) {
	if err := os.MkdirAll(c.workDir, 0o755); err != nil {
		return "", errors.Wrapf(err, "create work dir %s", c.workDir)
	}

	base := filepath.Base(srcPath)
	name := base[:len(base)-len(filepath.Ext(base))] + "_" + suffix + ".png"
	outPath := filepath.Join(c.workDir, name)

	if err := imaging.Save(img, outPath); err != nil {
		return "", errors.Wrapf(err, "save %s", outPath)
	}
	return outPath, nil
}
