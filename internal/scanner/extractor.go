package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lehigh-university-libraries/shelfscan/internal/barcode"
	"github.com/lehigh-university-libraries/shelfscan/internal/imageproc"
	"github.com/lehigh-university-libraries/shelfscan/internal/isbn"
	"github.com/lehigh-university-libraries/shelfscan/internal/ocr"
)

// Detection is one ISBN recovered from one image.
type Detection struct {
	ISBN   string // canonical ISBN-13
	Raw    string // identifier as it appeared in the image
	Method string // "barcode" or "ocr"
}

// Extractor recovers ISBNs from a single image file.
type Extractor interface {
	ExtractISBNs(ctx context.Context, path string) ([]Detection, error)
}

// ImageExtractor is the production Extractor: barcode decode first, OCR
// as fallback.
type ImageExtractor struct {
	pipeline *imageproc.Pipeline
	decoder  *barcode.Decoder
	ocr      *ocr.Service
	provider string
	model    string
}

// NewImageExtractor wires the preprocessing pipeline, barcode decoder and
// OCR service together. provider and model select the OCR backend; empty
// values fall back to environment configuration and then to tesseract.
func NewImageExtractor(preprocess imageproc.Options, tesseract ocr.TesseractOptions, provider, model string) *ImageExtractor {
	return &ImageExtractor{
		pipeline: imageproc.New(preprocess),
		decoder:  barcode.NewDecoder(),
		ocr:      ocr.NewService(tesseract),
		provider: provider,
		model:    model,
	}
}

// ExtractISBNs decodes the EAN-13 barcode when one is readable, otherwise
// preprocesses the image and extracts ISBNs from OCR text. The barcode
// path wins because it is cheaper and effectively error-free; covers with
// an unreadable or missing barcode get the full OCR treatment.
func (e *ImageExtractor) ExtractISBNs(ctx context.Context, path string) ([]Detection, error) {
	img, err := imageproc.Load(path)
	if err != nil {
		return nil, err
	}

	if code, err := e.decoder.Decode(img); err == nil {
		canonical, err := isbn.ToISBN13(code)
		if err == nil {
			slog.Debug("Barcode decoded", "file", path, "isbn", canonical)
			return []Detection{{ISBN: canonical, Raw: code, Method: "barcode"}}, nil
		}
		slog.Debug("Barcode failed ISBN checksum", "file", path, "code", code, "error", err)
	}

	processed, err := e.pipeline.Run(img)
	if err != nil {
		return nil, fmt.Errorf("failed to preprocess %s: %w", path, err)
	}

	text, err := e.ocr.ExtractText(ctx, processed, path, e.provider, e.model)
	if err != nil {
		return nil, fmt.Errorf("OCR failed for %s: %w", path, err)
	}
	if strings.TrimSpace(text) == "" {
		slog.Debug("No text extracted", "file", path)
		return nil, nil
	}

	var detections []Detection
	for _, raw := range isbn.ExtractFromText(text) {
		canonical, err := isbn.ToISBN13(raw)
		if err != nil {
			continue
		}
		detections = append(detections, Detection{ISBN: canonical, Raw: raw, Method: "ocr"})
	}
	return detections, nil
}
