package export

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Quote"

// GenerateExcel renders the summary as a single-sheet XLSX workbook with
// label/value rows grouped by section.
func GenerateExcel(s Summary) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetColWidth(sheetName, "A", "A", 28); err != nil {
		return nil, fmt.Errorf("set column width: %w", err)
	}
	if err := f.SetColWidth(sheetName, "B", "B", 44); err != nil {
		return nil, fmt.Errorf("set column width: %w", err)
	}

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 16},
	})
	if err != nil {
		return nil, fmt.Errorf("create title style: %w", err)
	}

	sectionStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#F0F0F0"},
			Pattern: 1,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create section style: %w", err)
	}

	noteStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Italic: true, Size: 9, Color: "#5A5A5A"},
	})
	if err != nil {
		return nil, fmt.Errorf("create note style: %w", err)
	}

	if err := f.MergeCell(sheetName, "A1", "B1"); err != nil {
		return nil, fmt.Errorf("merge title: %w", err)
	}
	f.SetCellValue(sheetName, "A1", s.Title)
	f.SetCellStyle(sheetName, "A1", "B1", titleStyle)
	f.SetCellValue(sheetName, "A2", "Date: "+s.GeneratedAt.Format("2006-01-02"))

	row := 4
	for _, sec := range s.Sections() {
		r := strconv.Itoa(row)
		f.SetCellValue(sheetName, "A"+r, sec.Title)
		f.SetCellStyle(sheetName, "A"+r, "B"+r, sectionStyle)
		row++

		for _, field := range sec.Fields {
			r := strconv.Itoa(row)
			f.SetCellValue(sheetName, "A"+r, field.Label)
			f.SetCellValue(sheetName, "B"+r, sanitizeExcelCell(field.Value))
			row++
		}
		row++
	}

	for _, line := range Disclaimer {
		r := strconv.Itoa(row)
		f.SetCellValue(sheetName, "A"+r, line)
		f.SetCellStyle(sheetName, "A"+r, "A"+r, noteStyle)
		row++
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}
	return buf.Bytes(), nil
}

// sanitizeExcelCell prefixes values that a spreadsheet would treat as a
// formula.
func sanitizeExcelCell(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		return "'" + s
	}
	return s
}
