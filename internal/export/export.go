// Package export turns portal collections into spreadsheets and tables.
package export

import (
	"context"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/iwvelando/sixsigma-portal/internal/portal"
	"github.com/iwvelando/sixsigma-portal/pkg/constants"
	"github.com/iwvelando/sixsigma-portal/pkg/output"
	"github.com/iwvelando/sixsigma-portal/pkg/validation"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// Exporter reads the portal collections for export.
type Exporter struct {
	collections *portal.Collections
	logger      *zap.Logger
}

// NewExporter returns an Exporter over collections.
func NewExporter(collections *portal.Collections, logger *zap.Logger) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exporter{collections: collections, logger: logger}
}

// Table loads the named collection as a table. Columns are the JSON keys of
// the record type; fields tagged export:"-" are left out.
func (e *Exporter) Table(ctx context.Context, collection string) (output.Table, error) {
	var table output.Table
	switch collection {
	case constants.CustomerCollection:
		table = TableOf(e.collections.Customers.Load(ctx))
	case constants.EmployeeCollection:
		table = TableOf(e.collections.Employees.Load(ctx))
	case constants.EmployeeCustomerCollection:
		table = TableOf(e.collections.EmployeeCustomers.Load(ctx))
	default:
		return output.Table{}, fmt.Errorf("unknown collection %q", collection)
	}
	table.Title = collection
	return table, nil
}

// Export writes the named collection to w in the given format.
func (e *Exporter) Export(ctx context.Context, collection, format string, w io.Writer) error {
	if err := validation.ValidateExportFormat(format); err != nil {
		return err
	}

	table, err := e.Table(ctx, collection)
	if err != nil {
		return err
	}

	e.logger.Debug("exporting collection",
		zap.String("op", "export.Exporter.Export"),
		zap.String("collection", collection),
		zap.String("format", format),
		zap.Int("records", len(table.Rows)),
	)

	switch format {
	case constants.ExportFormatXLSX:
		return WriteXLSX(w, table)
	case constants.ExportFormatCSV:
		return output.CsvFormat(w, table)
	default:
		return output.PrettyFormat(w, table)
	}
}

// TableOf builds a table from records, which must be structs or pointers to
// structs. Nil records are skipped.
func TableOf[T any](records []T) output.Table {
	typ := reflect.TypeOf((*T)(nil)).Elem()
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}

	var columns []int
	var header []string
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() || field.Tag.Get("export") == "-" {
			continue
		}
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			continue
		}
		if name == "" {
			name = field.Name
		}
		columns = append(columns, i)
		header = append(header, name)
	}

	table := output.Table{Header: header, Rows: make([][]string, 0, len(records))}
	for _, record := range records {
		value := reflect.ValueOf(record)
		for value.Kind() == reflect.Pointer {
			if value.IsNil() {
				break
			}
			value = value.Elem()
		}
		if value.Kind() != reflect.Struct {
			continue
		}

		row := make([]string, len(columns))
		for j, index := range columns {
			row[j] = fmt.Sprint(value.Field(index).Interface())
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

// WriteXLSX writes table to w as a workbook with a single sheet named after
// the table title.
func WriteXLSX(w io.Writer, table output.Table) error {
	file := excelize.NewFile()
	defer func() { _ = file.Close() }()

	sheet := table.Title
	if sheet == "" {
		sheet = "Sheet1"
	}
	if sheet != "Sheet1" {
		if err := file.SetSheetName("Sheet1", sheet); err != nil {
			return fmt.Errorf("name sheet: %w", err)
		}
	}

	if err := file.SetSheetRow(sheet, "A1", &table.Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, row := range table.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := file.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if len(table.Header) > 0 {
		last, err := excelize.CoordinatesToCellName(len(table.Header), 1)
		if err != nil {
			return err
		}
		if err := file.SetPanes(sheet, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		}); err != nil {
			return fmt.Errorf("freeze header: %w", err)
		}
		if err := file.AutoFilter(sheet, "A1:"+last, nil); err != nil {
			return fmt.Errorf("filter header: %w", err)
		}
	}

	if _, err := file.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
