package validation

import (
	"fmt"

	"github.com/iwvelando/sixsigma-portal/pkg/constants"
)

// ValidateExportFormat checks if the export format is one of the supported formats.
func ValidateExportFormat(format string) error {
	switch format {
	case constants.ExportFormatXLSX, constants.ExportFormatCSV, constants.ExportFormatPretty:
		return nil
	}
	return fmt.Errorf("expected export format of %s, %s or %s, got %s",
		constants.ExportFormatXLSX, constants.ExportFormatCSV, constants.ExportFormatPretty, format)
}
