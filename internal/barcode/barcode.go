// Package barcode decodes the EAN-13 barcode printed on the back cover of
// most books. Bookland EAN-13 codes carry the ISBN directly, so a clean
// barcode read is both cheaper and more reliable than OCR.
package barcode

import (
	"fmt"
	"image"
	"strings"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/oned"
)

var hints = map[gozxing.DecodeHintType]interface{}{
	gozxing.DecodeHintType_TRY_HARDER: true,
}

// Decoder reads EAN-13 barcodes from book cover images.
type Decoder struct {
	reader gozxing.Reader
}

// NewDecoder returns a Decoder configured for the EAN family.
func NewDecoder() *Decoder {
	return &Decoder{reader: oned.NewEAN13Reader()}
}

// Decode attempts to read an EAN-13 code from img. Only Bookland codes
// (978/979 prefixes) are returned; other retail barcodes on the cover, a
// price add-on for example, are rejected.
func (d *Decoder) Decode(img image.Image) (string, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", fmt.Errorf("failed to build bitmap: %w", err)
	}

	result, err := d.reader.Decode(bmp, hints)
	if err != nil {
		return "", fmt.Errorf("no EAN-13 barcode found: %w", err)
	}

	code := result.GetText()
	if !IsBookland(code) {
		return "", fmt.Errorf("barcode %s is not a Bookland EAN", code)
	}
	return code, nil
}

// IsBookland reports whether code looks like an ISBN carried in an EAN-13
// barcode: 13 digits with a 978 or 979 prefix.
func IsBookland(code string) bool {
	if len(code) != 13 {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return strings.HasPrefix(code, "978") || strings.HasPrefix(code, "979")
}
