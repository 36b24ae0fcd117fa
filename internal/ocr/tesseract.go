package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// TesseractOptions configures the local Tesseract engine.
type TesseractOptions struct {
	// Languages joined with "+" for multi-language models.
	Languages []string
	// Whitelist restricts recognition to these characters. ISBN digits,
	// the X check digit, and hyphens are all that matters on a back
	// cover, and restricting the alphabet cuts misreads considerably.
	Whitelist string
	// PageSegMode controls Tesseract's layout analysis.
	PageSegMode gosseract.PageSegMode
}

// DefaultTesseractOptions matches the settings tuned for back-cover
// scans: English, digit whitelist, single uniform block of text.
func DefaultTesseractOptions() TesseractOptions {
	return TesseractOptions{
		Languages:   []string{"eng"},
		Whitelist:   "0123456789X- ",
		PageSegMode: gosseract.PSM_SINGLE_BLOCK,
	}
}

// TesseractEngine runs OCR through a local Tesseract installation.
type TesseractEngine struct {
	opts TesseractOptions
}

// NewTesseractEngine creates an engine with the given options, filling in
// defaults for zero values.
func NewTesseractEngine(opts TesseractOptions) *TesseractEngine {
	if len(opts.Languages) == 0 {
		opts.Languages = []string{"eng"}
	}
	return &TesseractEngine{opts: opts}
}

// ExtractText runs Tesseract over img and returns the raw recognized
// text. A fresh client is created per call; gosseract clients are not
// safe for concurrent use.
func (e *TesseractEngine) ExtractText(img image.Image) (string, error) {
	if img == nil {
		return "", fmt.Errorf("input image is nil")
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(strings.Join(e.opts.Languages, "+")); err != nil {
		return "", fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetPageSegMode(e.opts.PageSegMode); err != nil {
		return "", fmt.Errorf("failed to set page segmentation mode: %w", err)
	}
	if e.opts.Whitelist != "" {
		if err := client.SetWhitelist(e.opts.Whitelist); err != nil {
			return "", fmt.Errorf("failed to set character whitelist: %w", err)
		}
	}

	// PNG keeps the binarized pixels exact; JPEG artifacts reintroduce
	// the noise the preprocessing just removed.
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("failed to extract text: %w", err)
	}
	return text, nil
}
