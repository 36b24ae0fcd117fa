// Package ocr extracts text from book cover images. Tesseract is the
// default engine; vision-capable LLM providers (Gemini, Ollama) are
// available for covers where classic OCR struggles.
package ocr

import (
	"context"
	"fmt"
	"image"
	"os"
)

// Service routes OCR requests to the configured provider.
type Service struct {
	tesseract *TesseractEngine
}

// NewService creates a new OCR service.
func NewService(tesseractOpts TesseractOptions) *Service {
	return &Service{
		tesseract: NewTesseractEngine(tesseractOpts),
	}
}

// ExtractText extracts text from a cover image using the given provider.
// img is used by the tesseract path and should be preprocessed; imagePath
// is read by the LLM providers, which send the original file to the
// vision model.
func (s *Service) ExtractText(ctx context.Context, img image.Image, imagePath, provider, model string) (string, error) {
	provider = ResolveProvider(provider)

	if model == "" {
		model = defaultModel(provider)
	}

	switch provider {
	case "tesseract":
		return s.tesseract.ExtractText(img)
	case "gemini":
		return extractWithGemini(ctx, imagePath, model)
	case "ollama":
		return extractWithOllama(ctx, imagePath, model)
	default:
		return "", fmt.Errorf("unsupported OCR provider: %s", provider)
	}
}

// ResolveProvider returns the effective provider name: the given value,
// else SHELFSCAN_OCR_PROVIDER, else tesseract.
func ResolveProvider(provider string) string {
	if provider != "" {
		return provider
	}
	if env := os.Getenv("SHELFSCAN_OCR_PROVIDER"); env != "" {
		return env
	}
	return "tesseract"
}

func defaultModel(provider string) string {
	switch provider {
	case "gemini":
		model := os.Getenv("GEMINI_MODEL")
		if model == "" {
			return "gemini-1.5-flash"
		}
		return model
	case "ollama":
		model := os.Getenv("OLLAMA_MODEL")
		if model == "" {
			return "mistral-small3.2:24b"
		}
		return model
	default:
		return ""
	}
}

func buildOCRPrompt() string {
	return `You are performing OCR (Optical Character Recognition) on a book cover image.

Your task is to extract ALL visible text from the image exactly as it appears, with special attention to the ISBN and the digits printed near the barcode.

INSTRUCTIONS:
1. Read the image carefully from top to bottom
2. Transcribe every piece of visible text
3. Transcribe ISBN numbers digit by digit, keeping hyphens where printed
4. Do not add any interpretation, commentary, or explanations
5. If text is partially obscured or unclear, transcribe what you can see and use [?] for illegible portions

OUTPUT FORMAT:
Provide ONLY the extracted text. Do not include phrases like "Here is the text:" or "The image contains:".

Example output:
THE ADVENTURES OF
TOM SAWYER

Mark Twain

ISBN 978-0-14-303956-3`
}
