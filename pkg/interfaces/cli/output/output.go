package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/xuri/excelize/v2"
)

// Supported output formats
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// Formats lists the accepted values of the --format flag
var Formats = []string{FormatText, FormatJSON, FormatCSV, FormatXLSX}

// Table is a titled grid of already formatted cells
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// Report is what a command prints. Data is the raw value encoded by the json
// format; the other formats render Summary and Tables.
type Report struct {
	Title   string
	Icon    string
	Summary []SummaryLine
	Tables  []Table
	Data    interface{}
}

// SummaryLine is a labelled figure shown above the tables
type SummaryLine struct {
	Label string
	Value string
}

// Config holds configuration for output generation
type Config struct {
	Format string
	// OutputFile is written instead of the writer when set; required for xlsx
	OutputFile string
}

// ValidFormat reports whether format is one of Formats
func ValidFormat(format string) bool {
	for _, f := range Formats {
		if f == format {
			return true
		}
	}
	return false
}

// Generate renders the report in the configured format to w, or to
// config.OutputFile when one is given.
func Generate(w io.Writer, report Report, config Config) error {
	if config.Format == FormatXLSX {
		if config.OutputFile == "" {
			return fmt.Errorf("output file required for xlsx format")
		}
		return writeExcel(report, config.OutputFile)
	}

	if config.OutputFile != "" {
		if err := os.MkdirAll(filepath.Dir(config.OutputFile), 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		f, err := os.Create(config.OutputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	switch config.Format {
	case FormatText, "":
		return writeText(w, report)
	case FormatJSON:
		return writeJSON(w, report)
	case FormatCSV:
		return writeCSV(w, report)
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

func writeText(w io.Writer, report Report) error {
	title := report.Title
	if report.Icon != "" {
		title = report.Icon + " " + title
	}
	fmt.Fprintf(w, "%s\n%s\n\n", title, strings.Repeat("=", len([]rune(title))))

	if len(report.Summary) > 0 {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, line := range report.Summary {
			fmt.Fprintf(tw, "%s:\t%s\n", line.Label, line.Value)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}

	for _, table := range report.Tables {
		if table.Title != "" {
			fmt.Fprintf(w, "%s:\n", table.Title)
		}
		if len(table.Rows) == 0 {
			fmt.Fprintf(w, "  (none)\n\n")
			continue
		}
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, strings.Join(table.Headers, "\t"))
		dashes := make([]string, len(table.Headers))
		for i, h := range table.Headers {
			dashes[i] = strings.Repeat("-", len([]rune(h)))
		}
		fmt.Fprintln(tw, strings.Join(dashes, "\t"))
		for _, row := range table.Rows {
			fmt.Fprintln(tw, strings.Join(row, "\t"))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}
	return nil
}

func writeJSON(w io.Writer, report Report) error {
	data := report.Data
	if data == nil {
		data = report.Tables
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return nil
}

// writeCSV emits the summary as a two-column table followed by every table,
// separated by blank lines.
func writeCSV(w io.Writer, report Report) error {
	tables := report.Tables
	if len(report.Summary) > 0 {
		tables = append([]Table{summaryTable(report.Summary)}, tables...)
	}

	for i, table := range tables {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		writer := csv.NewWriter(w)
		if err := writer.Write(table.Headers); err != nil {
			return fmt.Errorf("failed to write CSV headers: %w", err)
		}
		if err := writer.WriteAll(table.Rows); err != nil {
			return fmt.Errorf("failed to write CSV rows: %w", err)
		}
	}
	return nil
}

// writeExcel writes one sheet per table, plus a Summary sheet when the
// report has summary lines.
func writeExcel(report Report, filename string) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D3D3D3"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	tables := report.Tables
	if len(report.Summary) > 0 {
		tables = append([]Table{summaryTable(report.Summary)}, tables...)
	}
	if len(tables) == 0 {
		tables = []Table{{Title: report.Title}}
	}

	used := make(map[string]bool, len(tables))
	for i, table := range tables {
		sheet := sheetName(table.Title, i, used)
		index, err := f.NewSheet(sheet)
		if err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
		}
		if i == 0 {
			f.SetActiveSheet(index)
		}

		for col, header := range table.Headers {
			cell, err := excelize.CoordinatesToCellName(col+1, 1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, header); err != nil {
				return err
			}
			if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
				return err
			}
		}
		for rowIdx, row := range table.Rows {
			for colIdx, value := range row {
				cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
				if err != nil {
					return err
				}
				if err := f.SetCellValue(sheet, cell, value); err != nil {
					return err
				}
			}
		}
		if len(table.Headers) > 0 {
			last, _ := excelize.ColumnNumberToName(len(table.Headers))
			if err := f.SetColWidth(sheet, "A", last, 18); err != nil {
				return err
			}
		}
	}

	if !used["Sheet1"] {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := f.SaveAs(filename); err != nil {
		return fmt.Errorf("failed to write Excel file: %w", err)
	}
	return nil
}

func summaryTable(lines []SummaryLine) Table {
	rows := make([][]string, len(lines))
	for i, line := range lines {
		rows[i] = []string{line.Label, line.Value}
	}
	return Table{Title: "Summary", Headers: []string{"Field", "Value"}, Rows: rows}
}

// sheetName derives a unique Excel sheet name (max 31 chars, no []:*?/\)
func sheetName(title string, index int, used map[string]bool) string {
	name := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '-'
		}
		return r
	}, title)
	if name == "" {
		name = fmt.Sprintf("Sheet%d", index+1)
	}
	if runes := []rune(name); len(runes) > 31 {
		name = string(runes[:31])
	}
	base := name
	for n := 2; used[name]; n++ {
		suffix := fmt.Sprintf(" %d", n)
		runes := []rune(base)
		if len(runes)+len(suffix) > 31 {
			runes = runes[:31-len(suffix)]
		}
		name = string(runes) + suffix
	}
	used[name] = true
	return name
}
