package dedup

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/corona10/goimagehash"
	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"photomigrate/internal/models"
)

// thumbSize is the side of the square thumbnail features are computed
// over.
const thumbSize = 64

// ExtractFeatures loads an image, corrects its orientation, downscales
// it to a fixed square thumbnail with a bilinear filter, and computes
// the perception hash and color histogram of the thumbnail.
func ExtractFeatures(path string) (*models.ImageFeatures, error) {
	orientation := readOrientation(path)

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	img = applyOrientation(img, orientation)

	thumb := image.NewRGBA(image.Rect(0, 0, thumbSize, thumbSize))
	draw.BiLinear.Scale(thumb, thumb.Bounds(), img, img.Bounds(), draw.Src, nil)

	hash, err := goimagehash.PerceptionHash(thumb)
	if err != nil {
		return nil, fmt.Errorf("failed to compute perception hash: %w", err)
	}

	return &models.ImageFeatures{
		Path:      path,
		Hash:      hash.GetHash(),
		Histogram: colorHistogram(thumb),
	}, nil
}

// readOrientation reads the EXIF orientation tag; 1 (upright) when
// the tag is absent or unreadable.
func readOrientation(path string) int {
	f, err := os.Open(path)
	if err != nil {
		return 1
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil || tag.Type != tiff.DTShort {
		return 1
	}
	v, err := tag.Int(0)
	if err != nil || v < 1 || v > 8 {
		return 1
	}
	return v
}

// applyOrientation normalizes a decoded image to upright per the EXIF
// orientation values 1-8.
func applyOrientation(img image.Image, orientation int) image.Image {
	if orientation <= 1 || orientation > 8 {
		return img
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	var out *image.RGBA
	if orientation >= 5 {
		// Orientations 5-8 transpose the axes.
		out = image.NewRGBA(image.Rect(0, 0, h, w))
	} else {
		out = image.NewRGBA(image.Rect(0, 0, w, h))
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := img.At(b.Min.X+x, b.Min.Y+y)
			switch orientation {
			case 2: // mirror horizontal
				out.Set(w-1-x, y, c)
			case 3: // rotate 180
				out.Set(w-1-x, h-1-y, c)
			case 4: // mirror vertical
				out.Set(x, h-1-y, c)
			case 5: // mirror horizontal + rotate 270 CW
				out.Set(y, x, c)
			case 6: // rotate 90 CW
				out.Set(h-1-y, x, c)
			case 7: // mirror horizontal + rotate 90 CW
				out.Set(h-1-y, w-1-x, c)
			case 8: // rotate 270 CW
				out.Set(y, w-1-x, c)
			}
		}
	}
	return out
}

// colorHistogram computes a normalized 4x4x4 RGB histogram over the
// thumbnail's pixels. It is carried as diagnostic data alongside the
// perception hash and does not gate matching.
func colorHistogram(img *image.RGBA) [64]float64 {
	var hist [64]float64
	b := img.Bounds()
	total := float64(b.Dx() * b.Dy())
	if total == 0 {
		return hist
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			// 16-bit channels down to 2 bits each.
			bin := (r>>14)<<4 | (g>>14)<<2 | bl>>14
			hist[bin]++
		}
	}
	for i := range hist {
		hist[i] /= total
	}
	return hist
}
