package ocr

import (
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
)

// contrastBoost is the relative contrast change applied after grayscale.
const contrastBoost = 0.5

// Preprocess converts img to grayscale and stretches its contrast, which
// helps tesseract on low-contrast screenshots.
func Preprocess(img image.Image) *image.RGBA {
	return adjust.Contrast(effect.Grayscale(img), contrastBoost)
}

// preprocessFile writes a preprocessed PNG copy of src to dst.
func preprocessFile(src, dst string) error {
	img, err := imaging.Open(src, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("decode image: %w", err)
	}
	if err := imaging.Save(Preprocess(img), dst); err != nil {
		return fmt.Errorf("write preprocessed image: %w", err)
	}
	return nil
}
