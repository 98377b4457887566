package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/vsinha/gestionale/pkg/application/dto"
	"github.com/vsinha/gestionale/pkg/domain/entities"
)

func sampleProducibility() *dto.ProducibilityReport {
	return &dto.ProducibilityReport{
		ProductID:         "SCIARPA",
		ProductName:       "Sciarpa lana",
		ProducibleUnits:   12,
		UnitCost:          decimal.RequireFromString("4.5"),
		LimitingMaterials: []entities.MaterialID{"FODERA"},
		Lines: []dto.LineDetail{
			{
				MaterialID:       "LANA",
				MaterialName:     "Lana merino",
				UnitOfMeasure:    "mt",
				QuantityRequired: decimal.RequireFromString("2.5"),
				Available:        decimal.NewFromInt(40),
				LineCost:         decimal.NewFromInt(3),
				UnitsSupported:   16,
			},
			{
				MaterialID:       "FODERA",
				MaterialName:     "Fodera",
				UnitOfMeasure:    "mt",
				QuantityRequired: decimal.RequireFromString("0.5"),
				Available:        decimal.NewFromInt(6),
				LineCost:         decimal.RequireFromString("1.5"),
				UnitsSupported:   12,
				Limiting:         true,
			},
		},
	}
}

func TestGenerate_Text(t *testing.T) {
	var buf bytes.Buffer
	err := Generate(&buf, ProducibilityReport(sampleProducibility()), Config{Format: FormatText})
	if err != nil {
		t.Fatalf("Failed to render text: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"Producibility: Sciarpa lana (SCIARPA)",
		"Producible units:",
		"12",
		"4.50",
		"FODERA",
		"limiting",
		"2.5 mt",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected text output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestGenerate_TextEmptyTable(t *testing.T) {
	var buf bytes.Buffer
	report := ShortageReport(&dto.ShortageReport{ProductID: "P", DesiredUnits: 3, PurchaseCost: decimal.Zero})
	if err := Generate(&buf, report, Config{Format: FormatText}); err != nil {
		t.Fatalf("Failed to render text: %v", err)
	}
	if !strings.Contains(buf.String(), "(none)") {
		t.Errorf("Expected empty table marker, got:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "0.00") {
		t.Errorf("Expected zero purchase cost with two decimals, got:\n%s", buf.String())
	}
}

func TestGenerate_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Generate(&buf, ProducibilityReport(sampleProducibility()), Config{Format: FormatJSON}); err != nil {
		t.Fatalf("Failed to render JSON: %v", err)
	}

	var decoded dto.ProducibilityReport
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Expected valid JSON, got %v:\n%s", err, buf.String())
	}
	if decoded.ProducibleUnits != 12 || len(decoded.Lines) != 2 {
		t.Errorf("Expected 12 units and 2 lines, got %d and %d", decoded.ProducibleUnits, len(decoded.Lines))
	}
	if !decoded.UnitCost.Equal(decimal.RequireFromString("4.5")) {
		t.Errorf("Expected unit cost 4.5, got %s", decoded.UnitCost)
	}
}

func TestGenerate_CSV(t *testing.T) {
	var buf bytes.Buffer
	if err := Generate(&buf, ProducibilityReport(sampleProducibility()), Config{Format: FormatCSV}); err != nil {
		t.Fatalf("Failed to render CSV: %v", err)
	}

	blocks := strings.Split(strings.TrimSpace(buf.String()), "\n\n")
	if len(blocks) != 2 {
		t.Fatalf("Expected summary and recipe blocks, got %d:\n%s", len(blocks), buf.String())
	}

	records, err := csv.NewReader(strings.NewReader(blocks[1])).ReadAll()
	if err != nil {
		t.Fatalf("Expected valid CSV, got %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("Expected header and 2 rows, got %d", len(records))
	}
	if records[0][0] != "Material" || records[2][0] != "FODERA" || records[2][6] != "limiting" {
		t.Errorf("Unexpected CSV records: %v", records)
	}
}

func TestGenerate_Excel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "producibility.xlsx")
	err := Generate(nil, ProducibilityReport(sampleProducibility()), Config{Format: FormatXLSX, OutputFile: path})
	if err != nil {
		t.Fatalf("Failed to render Excel: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("Failed to open workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 2 || sheets[0] != "Summary" || sheets[1] != "Recipe" {
		t.Fatalf("Expected sheets [Summary Recipe], got %v", sheets)
	}
	rows, err := f.GetRows("Recipe")
	if err != nil {
		t.Fatalf("Failed to read rows: %v", err)
	}
	if len(rows) != 3 || rows[1][0] != "LANA" || rows[2][5] != "1.50" {
		t.Errorf("Unexpected recipe sheet rows: %v", rows)
	}
}

func TestGenerate_Errors(t *testing.T) {
	var buf bytes.Buffer
	if err := Generate(&buf, Report{}, Config{Format: "pdf"}); err == nil {
		t.Error("Expected error for unsupported format")
	}
	if err := Generate(&buf, Report{}, Config{Format: FormatXLSX}); err == nil {
		t.Error("Expected error for xlsx without output file")
	}
}

func TestGenerate_OutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.json")
	report := SummaryReport(&dto.InventorySummary{MaterialCount: 4, WarehouseValue: decimal.RequireFromString("70.8")})
	if err := Generate(nil, report, Config{Format: FormatJSON, OutputFile: path}); err != nil {
		t.Fatalf("Failed to write output file: %v", err)
	}
}

func TestValidFormat(t *testing.T) {
	tests := []struct {
		format string
		valid  bool
	}{
		{"text", true},
		{"json", true},
		{"csv", true},
		{"xlsx", true},
		{"html", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := ValidFormat(tt.format); got != tt.valid {
			t.Errorf("ValidFormat(%q): expected %v, got %v", tt.format, tt.valid, got)
		}
	}
}

func TestSheetName(t *testing.T) {
	used := make(map[string]bool)

	tests := []struct {
		title    string
		expected string
	}{
		{"Recipe", "Recipe"},
		{"Recipe", "Recipe 2"},
		{"a/b:c", "a-b-c"},
		{"", "Sheet4"},
		{strings.Repeat("x", 40), strings.Repeat("x", 31)},
		{strings.Repeat("x", 40), strings.Repeat("x", 29) + " 2"},
	}

	for i, tt := range tests {
		if got := sheetName(tt.title, i, used); got != tt.expected {
			t.Errorf("sheetName(%q): expected %q, got %q", tt.title, tt.expected, got)
		}
	}
}

func TestMoney(t *testing.T) {
	if got := Money(decimal.RequireFromString("6.8")); got != "6.80" {
		t.Errorf("Expected 6.80, got %s", got)
	}
	if got := Money(decimal.RequireFromString("1.005")); got != "1.01" {
		t.Errorf("Expected 1.01, got %s", got)
	}
}

func TestPurchaseOrderReport_CSV(t *testing.T) {
	order := &entities.PurchaseOrder{
		Code:         "ORD-IN-004",
		Supplier:     "Ingrosso Filati",
		Status:       entities.OrderPending,
		OrderedAt:    time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC),
		ShippingCost: decimal.RequireFromString("4"),
		Lines: []entities.PurchaseOrderLine{
			{MaterialID: "LANA", Quantity: decimal.NewFromInt(20), UnitCost: decimal.RequireFromString("1.15"), Received: true},
			{MaterialID: "FODERA", Quantity: decimal.RequireFromString("2.5"), UnitCost: decimal.NewFromInt(3)},
		},
	}

	var buf bytes.Buffer
	if err := Generate(&buf, PurchaseOrderReport("Order ORD-IN-004", order), Config{Format: FormatCSV}); err != nil {
		t.Fatalf("Failed to render csv: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"Goods,30.50",
		"Shipping,4.00",
		"Total,34.50",
		"Ordered,2026-05-04",
		"LANA,20,1.15,23.00,yes",
		"FODERA,2.5,3.00,7.50,no",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected csv output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestPurchaseOrderListReport(t *testing.T) {
	orders := []*entities.PurchaseOrder{
		{Code: "ORD-IN-001", Status: entities.OrderReceived, ShippingCost: decimal.NewFromInt(5)},
		{Code: "ORD-IN-002", Status: entities.OrderPending, ShippingCost: decimal.RequireFromString("2.5")},
	}

	report := PurchaseOrderListReport(orders)

	if len(report.Tables) != 1 || len(report.Tables[0].Rows) != 2 {
		t.Fatalf("Expected one table with 2 rows, got %+v", report.Tables)
	}
	if report.Summary[1].Value != "7.50" {
		t.Errorf("Expected total 7.50, got %s", report.Summary[1].Value)
	}
}
