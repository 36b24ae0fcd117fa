package isbn

import (
	"fmt"
	"regexp"
	"strings"
)

// Patterns for recognizing ISBNs in OCR output. OCR text is noisy, so the
// patterns tolerate hyphens and spaces between digit groups and an optional
// "ISBN", "ISBN-10" or "ISBN-13" prefix.
var patterns = []*regexp.Regexp{
	// ISBN-13: 978-0-306-40615-7 and variants
	regexp.MustCompile(`(?i)(?:ISBN[-\s]?(?:13)?[-\s]?:?[-\s]?)?(\d{3}[-\s]?\d{1}[-\s]?\d{3}[-\s]?\d{5}[-\s]?\d{1})`),
	// ISBN-10: 0-306-40615-2 and variants, check digit may be X
	regexp.MustCompile(`(?i)(?:ISBN[-\s]?(?:10)?[-\s]?:?[-\s]?)?(\d{1}[-\s]?\d{3}[-\s]?\d{5}[-\s]?[\dXx])`),
}

var separators = regexp.MustCompile(`[-\s]`)

// Normalize strips hyphens and whitespace and upcases a trailing X so that
// checksum validation and deduplication see one canonical form.
func Normalize(raw string) string {
	return strings.ToUpper(separators.ReplaceAllString(strings.TrimSpace(raw), ""))
}

// Valid reports whether s is a checksummed ISBN-10 or ISBN-13.
// The input must already be normalized.
func Valid(s string) bool {
	switch len(s) {
	case 10:
		return validISBN10(s)
	case 13:
		return validISBN13(s)
	default:
		return false
	}
}

func validISBN10(s string) bool {
	total := 0
	for i := 0; i < 9; i++ {
		d := s[i]
		if d < '0' || d > '9' {
			return false
		}
		total += int(d-'0') * (10 - i)
	}
	switch check := s[9]; {
	case check == 'X':
		total += 10
	case check >= '0' && check <= '9':
		total += int(check - '0')
	default:
		return false
	}
	return total%11 == 0
}

func validISBN13(s string) bool {
	total := 0
	for i := 0; i < 12; i++ {
		d := s[i]
		if d < '0' || d > '9' {
			return false
		}
		if i%2 == 0 {
			total += int(d - '0')
		} else {
			total += 3 * int(d-'0')
		}
	}
	check := (10 - total%10) % 10
	return s[12] >= '0' && s[12] <= '9' && check == int(s[12]-'0')
}

// ToISBN13 converts a normalized ISBN-10 to its Bookland ISBN-13 form.
// A valid ISBN-13 is returned unchanged. This is what makes deduplication
// form-insensitive: the same book printed with both identifiers collapses
// into one entry.
func ToISBN13(s string) (string, error) {
	switch len(s) {
	case 13:
		if !validISBN13(s) {
			return "", fmt.Errorf("invalid ISBN-13 checksum: %s", s)
		}
		return s, nil
	case 10:
		if !validISBN10(s) {
			return "", fmt.Errorf("invalid ISBN-10 checksum: %s", s)
		}
		body := "978" + s[:9]
		total := 0
		for i := 0; i < 12; i++ {
			if i%2 == 0 {
				total += int(body[i] - '0')
			} else {
				total += 3 * int(body[i]-'0')
			}
		}
		check := (10 - total%10) % 10
		return body + string(rune('0'+check)), nil
	default:
		return "", fmt.Errorf("ISBN must be 10 or 13 characters, got %d", len(s))
	}
}

// ExtractFromText scans OCR output for candidate ISBNs, validates their
// checksums, and returns the unique survivors in normalized form.
// ISBN-13 candidates are matched first so that a 13-digit identifier is not
// claimed piecemeal by the shorter pattern.
func ExtractFromText(text string) []string {
	seen := make(map[string]struct{})
	var found []string

	for _, pattern := range patterns {
		for _, match := range pattern.FindAllStringSubmatch(text, -1) {
			candidate := Normalize(match[1])
			if !Valid(candidate) {
				continue
			}
			if _, dup := seen[candidate]; dup {
				continue
			}
			seen[candidate] = struct{}{}
			found = append(found, candidate)
		}
	}

	return found
}
