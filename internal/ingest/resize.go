package ingest

import (
	"bytes"
	"image"
	"image/jpeg"
	"math"

	"golang.org/x/image/draw"
)

// jpegQualities is the re-encode ladder, walked top down until the budget fits.
var jpegQualities = []int{90, 80, 70, 60, 50, 40, 30}

const (
	// minLongSide keeps the first-pass scale from shrinking the longer side
	// below a size OCR can still read.
	minLongSide = 200
	// minShrinkSide stops the iterative shrink rounds.
	minShrinkSide = 300
	shrinkFactor  = 0.9
)

// reduceToBudget re-encodes img as JPEG within maxBytes, preserving aspect
// ratio. First pass scales by sqrt(budget/actual) clamped to [0.2, 0.98],
// then walks the quality ladder; if still over, shrinks 10% per round at the
// lowest quality until the longer side reaches minShrinkSide. On a stubborn
// image the smallest rendition produced is returned rather than failing.
func reduceToBudget(img image.Image, actualBytes, maxBytes int64) ([]byte, int, int, error) {
	scale := math.Sqrt(float64(maxBytes) / float64(actualBytes))
	if scale < 0.2 {
		scale = 0.2
	}
	if scale > 0.98 {
		scale = 0.98
	}
	if longer := longSide(img); longer > minLongSide && float64(longer)*scale < minLongSide {
		scale = float64(minLongSide) / float64(longer)
	}

	cur := scaleImage(img, scale)

	var best []byte
	bestW, bestH := cur.Bounds().Dx(), cur.Bounds().Dy()
	keepBest := func(buf []byte, im image.Image) {
		if best == nil || len(buf) < len(best) {
			best = buf
			bestW, bestH = im.Bounds().Dx(), im.Bounds().Dy()
		}
	}

	for _, q := range jpegQualities {
		buf, err := encodeJPEG(cur, q)
		if err != nil {
			return nil, 0, 0, err
		}
		keepBest(buf, cur)
		if int64(len(buf)) <= maxBytes {
			return buf, cur.Bounds().Dx(), cur.Bounds().Dy(), nil
		}
	}

	minQuality := jpegQualities[len(jpegQualities)-1]
	for longSide(cur) > minShrinkSide {
		cur = scaleImage(cur, shrinkFactor)
		buf, err := encodeJPEG(cur, minQuality)
		if err != nil {
			return nil, 0, 0, err
		}
		keepBest(buf, cur)
		if int64(len(buf)) <= maxBytes {
			return buf, cur.Bounds().Dx(), cur.Bounds().Dy(), nil
		}
	}

	return best, bestW, bestH, nil
}

func scaleImage(src image.Image, scale float64) image.Image {
	b := src.Bounds()
	w := int(math.Round(float64(b.Dx()) * scale))
	h := int(math.Round(float64(b.Dy()) * scale))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func longSide(img image.Image) int {
	b := img.Bounds()
	if b.Dx() > b.Dy() {
		return b.Dx()
	}
	return b.Dy()
}
