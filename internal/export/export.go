// Package export renders lead rows as CSV or XLSX downloads.
package export

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/xuri/excelize/v2"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/adeshyearanty/crm-lead-service/internal/query"
)

// Format is an export file format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ContentType returns the MIME type of the format
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}

// ParseFormat maps a query value to a Format, defaulting to CSV
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "csv":
		return FormatCSV, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("unsupported export format: %s", s)
}

// DefaultColumns are exported when the caller does not pick columns
var DefaultColumns = []string{
	"_id",
	"leadOwner",
	"fullName",
	"salutation",
	"email",
	"website",
	"contactNumber",
	"contactExtension",
	"alternateNumber",
	"alternateExtension",
	"companyName",
	"designation",
	"companySize",
	"industryType",
	"status",
	"source",
	"score",
	"scoreTrend",
	"preferredChannel",
	"lastActivityDate",
	"createdDate",
	"nextStage",
	"description",
	"linkedinUrl",
	"twitterUrl",
	"createdAt",
	"updatedAt",
}

// Columns returns requested, or DefaultColumns when it is empty
func Columns(requested []string) []string {
	if len(requested) > 0 {
		return requested
	}
	return DefaultColumns
}

// HeaderName turns a camelCase field name into Title Case words,
// e.g. "leadOwner" -> "Lead Owner".
func HeaderName(field string) string {
	var b strings.Builder
	for i, r := range field {
		switch {
		case i == 0:
			b.WriteRune(unicode.ToUpper(r))
		case unicode.IsUpper(r):
			b.WriteByte(' ')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// FormatValue renders a field value as text. Missing values are empty and
// times use ISO 8601 in UTC with milliseconds.
func FormatValue(v any, ok bool) string {
	if !ok || v == nil {
		return ""
	}
	switch x := v.(type) {
	case string:
		return x
	case bson.ObjectID:
		return x.Hex()
	case time.Time:
		return x.UTC().Format("2006-01-02T15:04:05.000Z")
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	}
	// named string types such as domain.Salutation
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.String {
		return rv.String()
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}

// WriteCSV writes a header line of Title Case names followed by one line per
// row. Every row value is double quoted with embedded quotes doubled.
func WriteCSV(w io.Writer, columns []string, rows []query.Document) error {
	bw := bufio.NewWriter(w)

	headers := make([]string, len(columns))
	for i, c := range columns {
		headers[i] = HeaderName(c)
	}
	if _, err := bw.WriteString(strings.Join(headers, ",") + "\n"); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	cells := make([]string, len(columns))
	for _, row := range rows {
		for i, c := range columns {
			cells[i] = `"` + strings.ReplaceAll(FormatValue(row.FieldValue(c)), `"`, `""`) + `"`
		}
		if _, err := bw.WriteString(strings.Join(cells, ",") + "\n"); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	return bw.Flush()
}

const sheetName = "Leads"

// WriteXLSX writes a single-sheet workbook with a bold header row. Numbers
// and booleans keep their native cell types.
func WriteXLSX(w io.Writer, columns []string, rows []query.Document) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to remove default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	for i, c := range columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, HeaderName(c)); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			return fmt.Errorf("failed to style header: %w", err)
		}
	}

	for r, row := range rows {
		for i, c := range columns {
			cell, err := excelize.CoordinatesToCellName(i+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheetName, cell, cellValue(row.FieldValue(c))); err != nil {
				return fmt.Errorf("failed to write row %d: %w", r+1, err)
			}
		}
	}

	if len(columns) > 0 {
		last, _ := excelize.ColumnNumberToName(len(columns))
		if err := f.SetColWidth(sheetName, "A", last, 18); err != nil {
			return fmt.Errorf("failed to size columns: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func cellValue(v any, ok bool) any {
	if !ok || v == nil {
		return ""
	}
	switch x := v.(type) {
	case int, int64, float64, bool:
		return x
	}
	return FormatValue(v, ok)
}

// Write renders rows in the given format
func Write(w io.Writer, format Format, columns []string, rows []query.Document) error {
	if format == FormatXLSX {
		return WriteXLSX(w, columns, rows)
	}
	return WriteCSV(w, columns, rows)
}
