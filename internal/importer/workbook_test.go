package importer

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

var testColumns = []string{"full_name", "email", "nationality"}

func csvBytes(lines ...string) []byte {
	return []byte(strings.Join(lines, "\n"))
}

// xlsxBytes builds an in-memory workbook from a cell grid
func xlsxBytes(t *testing.T, grid [][]string) []byte {
	t.Helper()
	file := excelize.NewFile()
	defer file.Close()
	sheet := file.GetSheetName(0)
	for r, row := range grid {
		for c, value := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				t.Fatalf("cell name: %v", err)
			}
			if err := file.SetCellValue(sheet, cell, value); err != nil {
				t.Fatalf("set cell: %v", err)
			}
		}
	}
	buf, err := file.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

func TestParseTableCSV(t *testing.T) {
	data := csvBytes(
		"full_name,email,nationality",
		"Jane Doe,jane@example.com,PH",
		"John Roe,john@example.com",
	)

	rows, notes, err := parseTable("upload.csv", data, testColumns, 100)
	if err != nil {
		t.Fatalf("parseTable: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if len(notes) != 0 {
		t.Errorf("unexpected notes: %v", notes)
	}
	if rows[0].Number != 1 || rows[0].Cells["full_name"] != "Jane Doe" {
		t.Errorf("unexpected first row: %+v", rows[0])
	}
	if rows[1].Cells["nationality"] != "" {
		t.Errorf("short record should leave trailing cells empty")
	}
}

func TestParseTableXLSX(t *testing.T) {
	data := xlsxBytes(t, [][]string{
		{"full_name", "email", "nationality"},
		{"Jane Doe", "jane@example.com", "PH"},
	})

	rows, _, err := parseTable("upload.xlsx", data, testColumns, 100)
	if err != nil {
		t.Fatalf("parseTable: %v", err)
	}
	if len(rows) != 1 || rows[0].Cells["email"] != "jane@example.com" {
		t.Errorf("unexpected rows: %+v", rows)
	}
}

func TestParseTableHeaderCaseInsensitive(t *testing.T) {
	data := csvBytes(
		"Full_Name,EMAIL,Nationality",
		"Jane Doe,jane@example.com,PH",
	)
	rows, _, err := parseTable("upload.csv", data, testColumns, 100)
	if err != nil {
		t.Fatalf("parseTable: %v", err)
	}
	if rows[0].Cells["email"] != "jane@example.com" {
		t.Errorf("headers should match case-insensitively: %+v", rows[0])
	}
}

func TestParseTableMissingColumn(t *testing.T) {
	data := csvBytes(
		"full_name,nationality",
		"Jane Doe,PH",
	)
	_, _, err := parseTable("upload.csv", data, testColumns, 100)
	if !errors.Is(err, ErrBadFile) {
		t.Fatalf("expected ErrBadFile, got %v", err)
	}
	if !strings.Contains(err.Error(), "email") {
		t.Errorf("error should name the missing column: %v", err)
	}
}

func TestParseTableExtraColumnNoted(t *testing.T) {
	data := csvBytes(
		"full_name,email,nationality,shoe_size",
		"Jane Doe,jane@example.com,PH,42",
	)
	rows, notes, err := parseTable("upload.csv", data, testColumns, 100)
	if err != nil {
		t.Fatalf("parseTable: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if len(notes) != 1 || !strings.Contains(notes[0], "shoe_size") {
		t.Errorf("expected a note about the extra column, got %v", notes)
	}
}

func TestParseTableBlankRowKeepsNumbering(t *testing.T) {
	data := csvBytes(
		"full_name,email,nationality",
		"Jane Doe,jane@example.com,PH",
		",,",
		"John Roe,john@example.com,SG",
	)
	rows, notes, err := parseTable("upload.csv", data, testColumns, 100)
	if err != nil {
		t.Fatalf("parseTable: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[1].Number != 3 {
		t.Errorf("row after the blank should keep position 3, got %d", rows[1].Number)
	}
	found := false
	for _, n := range notes {
		if strings.Contains(n, "row 2 is empty") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a note about the ignored blank row, got %v", notes)
	}
}

func TestParseTableNoDataRows(t *testing.T) {
	data := csvBytes("full_name,email,nationality")
	_, _, err := parseTable("upload.csv", data, testColumns, 100)
	if !errors.Is(err, ErrBadFile) {
		t.Fatalf("expected ErrBadFile for header-only file, got %v", err)
	}
}

func TestParseTableRowLimit(t *testing.T) {
	lines := []string{"full_name,email,nationality"}
	for i := 0; i < 5; i++ {
		lines = append(lines, "Jane Doe,jane@example.com,PH")
	}
	_, _, err := parseTable("upload.csv", csvBytes(lines...), testColumns, 3)
	if !errors.Is(err, ErrBadFile) {
		t.Fatalf("expected ErrBadFile over the row limit, got %v", err)
	}
}

func TestParseTableUnknownExtension(t *testing.T) {
	_, _, err := parseTable("upload.pdf", []byte("x"), testColumns, 100)
	if !errors.Is(err, ErrBadFile) {
		t.Fatalf("expected ErrBadFile for unsupported extension, got %v", err)
	}
}

func TestBuildTemplateRoundTrip(t *testing.T) {
	data, err := buildTemplate(testColumns)
	if err != nil {
		t.Fatalf("buildTemplate: %v", err)
	}

	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("template is not a readable workbook: %v", err)
	}
	defer file.Close()

	rows, err := file.GetRows(file.GetSheetName(0))
	if err != nil {
		t.Fatalf("read template sheet: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("template should hold only the header row, got %d rows", len(rows))
	}
	for i, col := range testColumns {
		if rows[0][i] != col {
			t.Errorf("header %d = %q, want %q", i, rows[0][i], col)
		}
	}
}
