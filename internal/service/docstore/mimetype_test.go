package docstore

import "testing"

func TestMimeRegistry_Lookup(t *testing.T) {
	registry, err := NewMimeRegistry()
	if err != nil {
		t.Fatalf("NewMimeRegistry() error = %v", err)
	}

	tests := []struct {
		filename string
		expected string
	}{
		{"contract.pdf", "application/pdf"},
		{"CONTRACT.PDF", "application/pdf"},
		{"brief.docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
		{"notes.txt", "text/plain"},
		{"exhibit.unknownext", "application/octet-stream"},
		{"no_extension", "application/octet-stream"},
		{"trailing.", "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			if got := registry.Lookup(tt.filename); got != tt.expected {
				t.Errorf("Lookup(%q) = %q, want %q", tt.filename, got, tt.expected)
			}
		})
	}
}
