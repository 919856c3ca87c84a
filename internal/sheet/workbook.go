package sheet

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// Worksheet is one tab: a title (expected YYYY/MM/DD) and its A:D values,
// header row first.
type Worksheet struct {
	Title  string     `json:"title"`
	Values [][]string `json:"values"`
}

// Rows returns the worksheet values as raw rows.
func (w Worksheet) Rows() []RawRow {
	rows := make([]RawRow, len(w.Values))
	for i, v := range w.Values {
		rows[i] = RawRow(v)
	}
	return rows
}

// Spreadsheet groups the worksheets of one spreadsheet file.
type Spreadsheet struct {
	Name       string      `json:"name"`
	Worksheets []Worksheet `json:"worksheets"`
}

// Workbook is the export produced by the sheet fetch collaborator.
type Workbook struct {
	Spreadsheets []Spreadsheet `json:"spreadsheets"`
}

// WorksheetCount returns the total number of worksheets across spreadsheets.
func (w Workbook) WorksheetCount() int {
	total := 0
	for _, s := range w.Spreadsheets {
		total += len(s.Worksheets)
	}
	return total
}

// DecodeWorkbook reads a workbook export.
func DecodeWorkbook(r io.Reader) (Workbook, error) {
	var wb Workbook
	dec := json.NewDecoder(r)
	if err := dec.Decode(&wb); err != nil {
		return Workbook{}, fmt.Errorf("decode workbook: %w", err)
	}
	if wb.Spreadsheets == nil {
		return Workbook{}, errors.New("decode workbook: missing spreadsheets")
	}
	return wb, nil
}

// LoadWorkbook reads a workbook export from path.
func LoadWorkbook(path string) (Workbook, error) {
	file, err := os.Open(path)
	if err != nil {
		return Workbook{}, fmt.Errorf("open workbook: %w", err)
	}
	defer file.Close()
	return DecodeWorkbook(file)
}
