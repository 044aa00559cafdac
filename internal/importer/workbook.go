package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrBadFile signals a request-level problem with the uploaded file: wrong
// format, missing headers, no data. Surfaced as a 4xx, never a server error.
var ErrBadFile = errors.New("invalid import file")

// parsedRow is one data row keyed by expected column name. Number is the
// 1-based data-row position, header excluded; blank rows keep their position.
type parsedRow struct {
	Number int
	Cells  map[string]string
}

// parseTable reads an uploaded xlsx or csv file into header-mapped rows and
// verifies every expected column header is present.
func parseTable(filename string, data []byte, columns []string, maxRows int) ([]parsedRow, []string, error) {
	var records [][]string
	var err error

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		records, err = readXLSX(data)
	case ".csv":
		records, err = readCSV(data)
	default:
		return nil, nil, fmt.Errorf("%w: expected .xlsx or .csv, got %q", ErrBadFile, filepath.Ext(filename))
	}
	if err != nil {
		return nil, nil, err
	}

	if len(records) == 0 {
		return nil, nil, fmt.Errorf("%w: file has no header row", ErrBadFile)
	}

	header := records[0]
	colIndex := make(map[string]int, len(header))
	for i, h := range header {
		colIndex[strings.ToLower(strings.TrimSpace(h))] = i
	}

	var missing, extra []string
	expected := make(map[string]bool, len(columns))
	for _, col := range columns {
		expected[col] = true
		if _, ok := colIndex[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, nil, fmt.Errorf("%w: missing required column(s): %s", ErrBadFile, strings.Join(missing, ", "))
	}
	for name := range colIndex {
		if name != "" && !expected[name] {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)

	var notes []string
	if len(extra) > 0 {
		notes = append(notes, fmt.Sprintf("ignoring unrecognized column(s): %s", strings.Join(extra, ", ")))
	}

	dataRows := records[1:]
	if maxRows > 0 && len(dataRows) > maxRows {
		return nil, nil, fmt.Errorf("%w: %d data rows exceed the limit of %d", ErrBadFile, len(dataRows), maxRows)
	}

	var parsed []parsedRow
	for i, record := range dataRows {
		number := i + 1
		cells := make(map[string]string, len(columns))
		empty := true
		for _, col := range columns {
			value := ""
			if idx := colIndex[col]; idx < len(record) {
				value = strings.TrimSpace(record[idx])
			}
			cells[col] = value
			if value != "" {
				empty = false
			}
		}
		if empty {
			notes = append(notes, fmt.Sprintf("row %d is empty; ignored", number))
			continue
		}
		parsed = append(parsed, parsedRow{Number: number, Cells: cells})
	}

	if len(parsed) == 0 {
		return nil, nil, fmt.Errorf("%w: file has no data rows", ErrBadFile)
	}
	return parsed, notes, nil
}

// readXLSX returns the cell grid of the first worksheet
func readXLSX(data []byte) ([][]string, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: not a readable workbook: %v", ErrBadFile, err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrBadFile)
	}

	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read sheet %q: %v", ErrBadFile, sheets[0], err)
	}
	return rows, nil
}

// readCSV returns the record grid of a CSV file
func readCSV(data []byte) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	var records [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: malformed CSV: %v", ErrBadFile, err)
		}
		records = append(records, record)
	}
	return records, nil
}

// buildTemplate creates a downloadable workbook holding the exact expected
// column headers and no data rows
func buildTemplate(columns []string) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	sheet := file.GetSheetName(0)
	for i, col := range columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := file.SetCellValue(sheet, cell, col); err != nil {
			return nil, err
		}
	}

	style, err := file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		last, _ := excelize.CoordinatesToCellName(len(columns), 1)
		file.SetCellStyle(sheet, "A1", last, style)
	}

	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
