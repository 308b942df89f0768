package extractor

import "testing"

func TestPDFTextGarbageInput(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"not a pdf", []byte("hello world")},
		{"truncated header", []byte("%PDF-1.7\n")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PDFText(tt.data); got != "" {
				t.Errorf("PDFText(%q) = %q, want empty", tt.data, got)
			}
		})
	}
}

func TestIsPDF(t *testing.T) {
	if !IsPDF([]byte("%PDF-1.4 something")) {
		t.Error("expected PDF header to be recognized")
	}
	if IsPDF([]byte("plain text")) {
		t.Error("plain text should not be recognized as PDF")
	}
}
