package isbn

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "strips hyphens",
			input:    "978-0-306-40615-7",
			expected: "9780306406157",
		},
		{
			name:     "strips spaces",
			input:    "0 306 40615 2",
			expected: "0306406152",
		},
		{
			name:     "upcases check digit",
			input:    "080442957x",
			expected: "080442957X",
		},
		{
			name:     "trims surrounding whitespace",
			input:    "  9780306406157  ",
			expected: "9780306406157",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.expected {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestValid(t *testing.T) {
	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{name: "valid ISBN-13", input: "9780306406157", valid: true},
		{name: "valid ISBN-13 979 prefix", input: "9791090636071", valid: true},
		{name: "ISBN-13 bad checksum", input: "9780306406158", valid: false},
		{name: "valid ISBN-10", input: "0306406152", valid: true},
		{name: "valid ISBN-10 X check digit", input: "080442957X", valid: true},
		{name: "ISBN-10 bad checksum", input: "0306406153", valid: false},
		{name: "X in body rejected", input: "030640615X", valid: false},
		{name: "non-digit rejected", input: "03064O6152", valid: false},
		{name: "wrong length", input: "123456789", valid: false},
		{name: "empty", input: "", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Valid(tt.input); got != tt.valid {
				t.Errorf("Valid(%q) = %v, want %v", tt.input, got, tt.valid)
			}
		})
	}
}

func TestToISBN13(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		wantErr  bool
	}{
		{
			name:     "converts ISBN-10",
			input:    "0306406152",
			expected: "9780306406157",
		},
		{
			name:     "converts ISBN-10 with X check digit",
			input:    "080442957X",
			expected: "9780804429573",
		},
		{
			name:     "passes through valid ISBN-13",
			input:    "9780306406157",
			expected: "9780306406157",
		},
		{
			name:    "rejects invalid ISBN-10",
			input:   "0306406153",
			wantErr: true,
		},
		{
			name:    "rejects invalid ISBN-13",
			input:   "9780306406158",
			wantErr: true,
		},
		{
			name:    "rejects wrong length",
			input:   "12345",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToISBN13(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ToISBN13(%q) expected error, got %q", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ToISBN13(%q) returned error: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("ToISBN13(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestExtractFromText(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected []string
	}{
		{
			name:     "hyphenated ISBN-13 with prefix",
			text:     "ISBN-13: 978-0-306-40615-7",
			expected: []string{"9780306406157"},
		},
		{
			name:     "bare ISBN-10",
			text:     "0-306-40615-2",
			expected: []string{"0306406152"},
		},
		{
			name:     "ignores invalid checksum",
			text:     "ISBN 978-0-306-40615-8",
			expected: nil,
		},
		{
			name:     "deduplicates repeated ISBN",
			text:     "9780306406157 appears twice 978-0-306-40615-7",
			expected: []string{"9780306406157"},
		},
		{
			name:     "multiple ISBNs in noisy text",
			text:     "front 978-0-306-40615-7 back\nISBN 0-8044-2957-X",
			expected: []string{"9780306406157", "080442957X"},
		},
		{
			name:     "no ISBN in text",
			text:     "just a title and an author",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractFromText(tt.text)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("ExtractFromText(%q) = %v, want %v", tt.text, got, tt.expected)
			}
		})
	}
}
