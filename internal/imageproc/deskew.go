package imageproc

import (
	"image"
	"image/color"
	"math"
	"sort"

	"github.com/disintegration/imaging"
)

type deskewStep struct {
	minAngle float64
	maxAngle float64
}

// Process estimates the dominant skew of printed text and rotates the
// image upright. Corrections below minAngle are skipped, estimates beyond
// maxAngle are treated as unreliable and ignored.
func (s *deskewStep) Process(img image.Image) (image.Image, error) {
	angle := s.estimateSkew(img)
	if math.Abs(angle) < s.minAngle || math.Abs(angle) > s.maxAngle {
		return img, nil
	}
	return imaging.Rotate(img, angle, color.White), nil
}

// estimateSkew measures how far text lines tilt from horizontal. For each
// sampled column it takes the centroid of the dark pixels; tilted text
// shifts the centroids linearly across the image, so the median slope over
// well-separated centroid pairs gives the tilt. The returned angle is the
// rotation that straightens the image.
func (s *deskewStep) estimateSkew(img image.Image) float64 {
	gray := imaging.Grayscale(img)
	bounds := gray.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w < 3 || h < 3 {
		return 0
	}

	const darkLimit = 128
	const minDarkPerColumn = 2

	step := w / 400
	if step < 1 {
		step = 1
	}
	var xs, ys []float64
	for x := 0; x < w; x += step {
		sum, count := 0, 0
		for y := 0; y < h; y++ {
			v := color.GrayModel.Convert(gray.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.Gray).Y
			if v < darkLimit {
				sum += y
				count++
			}
		}
		if count < minDarkPerColumn {
			continue
		}
		xs = append(xs, float64(x))
		ys = append(ys, float64(sum)/float64(count))
	}
	if len(xs) < 8 {
		return 0
	}

	// Median of pairwise slopes. Restricting to pairs at least a quarter
	// of the width apart keeps centroid noise from blowing up the slope,
	// and the median shrugs off the clipped columns near the edges.
	minDX := float64(w) / 4
	var slopes []float64
	for i := 0; i < len(xs); i++ {
		for j := i + 1; j < len(xs); j++ {
			if xs[j]-xs[i] < minDX {
				continue
			}
			slopes = append(slopes, (ys[j]-ys[i])/(xs[j]-xs[i]))
		}
	}
	if len(slopes) == 0 {
		return 0
	}
	sort.Float64s(slopes)
	return math.Atan(slopes[len(slopes)/2]) * 180 / math.Pi
}
