package imageproc

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/disintegration/imaging"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// Preprocessor is one step of the OCR preparation pipeline.
type Preprocessor interface {
	Process(img image.Image) (image.Image, error)
}

// Options controls how images are prepared before decoding.
type Options struct {
	// MaxDimension caps the longer image edge; larger images are scaled
	// down, preserving aspect ratio. Zero disables resizing.
	MaxDimension int
	// BlurSigma is the Gaussian blur applied for noise reduction.
	BlurSigma float64
	// ThresholdBlockSize is the neighborhood size for adaptive
	// binarization. Must be odd.
	ThresholdBlockSize int
	// ThresholdConstant is subtracted from the local mean before
	// comparing a pixel against it.
	ThresholdConstant float64
	// DeskewMinAngle is the smallest rotation worth correcting, in
	// degrees. Smaller estimated angles are ignored.
	DeskewMinAngle float64
	// DeskewMaxAngle bounds the correction; wildly skewed estimates are
	// more likely to be wrong than real.
	DeskewMaxAngle float64
}

// DefaultOptions mirrors the settings that work well for printed back
// covers: cap at 2000px, light blur, 11px adaptive threshold blocks.
func DefaultOptions() Options {
	return Options{
		MaxDimension:       2000,
		BlurSigma:          1.0,
		ThresholdBlockSize: 11,
		ThresholdConstant:  2,
		DeskewMinAngle:     0.5,
		DeskewMaxAngle:     15,
	}
}

// Pipeline prepares book cover images for barcode decoding and OCR.
type Pipeline struct {
	steps []Preprocessor
}

// New builds the standard pipeline: resize, grayscale, blur, deskew,
// adaptive threshold.
func New(opts Options) *Pipeline {
	return &Pipeline{
		steps: []Preprocessor{
			&resizeStep{maxDimension: opts.MaxDimension},
			&grayscaleStep{},
			&blurStep{sigma: opts.BlurSigma},
			&deskewStep{minAngle: opts.DeskewMinAngle, maxAngle: opts.DeskewMaxAngle},
			&thresholdStep{blockSize: opts.ThresholdBlockSize, constant: opts.ThresholdConstant},
		},
	}
}

// Load decodes an image file. JPEG, PNG, GIF, BMP and TIFF are supported.
func Load(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}
	return img, nil
}

// Run applies every step in order.
func (p *Pipeline) Run(img image.Image) (image.Image, error) {
	if img == nil {
		return nil, fmt.Errorf("input image is nil")
	}

	result := img
	for _, step := range p.steps {
		var err error
		result, err = step.Process(result)
		if err != nil {
			return nil, fmt.Errorf("preprocessing failed: %w", err)
		}
		if result == nil {
			return nil, fmt.Errorf("preprocessor returned nil image")
		}
	}
	return result, nil
}

type resizeStep struct {
	maxDimension int
}

func (s *resizeStep) Process(img image.Image) (image.Image, error) {
	if s.maxDimension <= 0 {
		return img, nil
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= s.maxDimension && h <= s.maxDimension {
		return img, nil
	}
	if w >= h {
		return imaging.Resize(img, s.maxDimension, 0, imaging.Lanczos), nil
	}
	return imaging.Resize(img, 0, s.maxDimension, imaging.Lanczos), nil
}

type grayscaleStep struct{}

func (s *grayscaleStep) Process(img image.Image) (image.Image, error) {
	return imaging.Grayscale(img), nil
}

type blurStep struct {
	sigma float64
}

func (s *blurStep) Process(img image.Image) (image.Image, error) {
	if s.sigma <= 0 {
		return img, nil
	}
	return imaging.Blur(img, s.sigma), nil
}

type thresholdStep struct {
	blockSize int
	constant  float64
}

// Process binarizes with a local mean threshold. Uses a summed-area table
// so the cost stays linear in the pixel count regardless of block size.
func (s *thresholdStep) Process(img image.Image) (image.Image, error) {
	if s.blockSize < 3 {
		return nil, fmt.Errorf("threshold block size must be at least 3, got %d", s.blockSize)
	}
	if s.blockSize%2 == 0 {
		return nil, fmt.Errorf("threshold block size must be odd, got %d", s.blockSize)
	}

	gray := imaging.Grayscale(img)
	bounds := gray.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("image has no pixels")
	}

	// Integral image, one row and column of zero padding.
	integral := make([]int64, (w+1)*(h+1))
	for y := 0; y < h; y++ {
		var rowSum int64
		for x := 0; x < w; x++ {
			v := color.GrayModel.Convert(gray.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.Gray).Y
			rowSum += int64(v)
			integral[(y+1)*(w+1)+x+1] = integral[y*(w+1)+x+1] + rowSum
		}
	}

	half := s.blockSize / 2
	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		y0, y1 := maxInt(0, y-half), minInt(h-1, y+half)
		for x := 0; x < w; x++ {
			x0, x1 := maxInt(0, x-half), minInt(w-1, x+half)
			count := int64((x1 - x0 + 1) * (y1 - y0 + 1))
			sum := integral[(y1+1)*(w+1)+x1+1] -
				integral[y0*(w+1)+x1+1] -
				integral[(y1+1)*(w+1)+x0] +
				integral[y0*(w+1)+x0]
			mean := float64(sum) / float64(count)

			v := color.GrayModel.Convert(gray.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.Gray).Y
			if float64(v) < mean-s.constant {
				out.SetGray(x, y, color.Gray{Y: 0})
			} else {
				out.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return out, nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
