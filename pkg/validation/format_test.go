package validation

import (
	"strings"
	"testing"
)

func TestValidateExportFormat(t *testing.T) {
	tests := []struct {
		name      string
		format    string
		expectErr bool
	}{
		{
			name:      "Valid xlsx format",
			format:    "xlsx",
			expectErr: false,
		},
		{
			name:      "Valid csv format",
			format:    "csv",
			expectErr: false,
		},
		{
			name:      "Valid pretty format",
			format:    "pretty",
			expectErr: false,
		},
		{
			name:      "Invalid format",
			format:    "json",
			expectErr: true,
		},
		{
			name:      "Empty format",
			format:    "",
			expectErr: true,
		},
		{
			name:      "Case sensitive - uppercase",
			format:    "XLSX",
			expectErr: true,
		},
		{
			name:      "Leading/trailing spaces",
			format:    " csv ",
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateExportFormat(tt.format)
			if tt.expectErr && err == nil {
				t.Errorf("Expected error for format %q, got nil", tt.format)
			}
			if !tt.expectErr && err != nil {
				t.Errorf("Expected no error for format %q, got %v", tt.format, err)
			}
		})
	}
}

func TestValidateExportFormatErrorMessage(t *testing.T) {
	err := ValidateExportFormat("docx")
	if err == nil {
		t.Fatal("Expected error for unsupported format")
	}
	for _, want := range []string{"xlsx", "csv", "pretty", "docx"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Error message %q should mention %q", err.Error(), want)
		}
	}
}
