// Package spreadsheet writes extraction records as an XLSX workbook, one
// row per record.
package spreadsheet

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/zombor/ventas-extractor/internal/extraction"
)

// SheetName is the name of the only sheet in the workbook
const SheetName = "Ventas"

// ContentType is the MIME type of the generated workbook
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Columns returns the union of the record fields in first-seen order
func Columns(records []extraction.Record) []string {
	seen := make(map[string]struct{})
	var columns []string
	for _, r := range records {
		for _, f := range r.Fields() {
			if _, ok := seen[f.Name]; ok {
				continue
			}
			seen[f.Name] = struct{}{}
			columns = append(columns, f.Name)
		}
	}
	return columns
}

// Write renders records into XLSX bytes
func Write(records []extraction.Record) ([]byte, error) {
	f, err := build(records)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

// Save renders records into an XLSX file at path
func Save(path string, records []extraction.Record) error {
	f, err := build(records)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}

func build(records []extraction.Record) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		f.Close()
		return nil, fmt.Errorf("naming sheet: %w", err)
	}

	columns := Columns(records)
	if len(columns) == 0 {
		// no records, still emit the fixed header so the file is usable
		columns = fieldNames(extraction.Record{}.Fields())
	}
	position := make(map[string]int, len(columns))
	for i, name := range columns {
		position[name] = i + 1
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(SheetName, cell, name); err != nil {
			f.Close()
			return nil, fmt.Errorf("writing header: %w", err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("creating header style: %w", err)
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(columns), 1)
	if err := f.SetCellStyle(SheetName, "A1", lastHeader, bold); err != nil {
		f.Close()
		return nil, fmt.Errorf("styling header: %w", err)
	}

	for i, r := range records {
		row := i + 2
		for _, field := range r.Fields() {
			cell, _ := excelize.CoordinatesToCellName(position[field.Name], row)
			if err := f.SetCellValue(SheetName, cell, field.Value); err != nil {
				f.Close()
				return nil, fmt.Errorf("writing row %d: %w", row, err)
			}
		}
	}

	// source file name, date, time
	if err := f.SetColWidth(SheetName, "A", "A", 28); err != nil {
		f.Close()
		return nil, fmt.Errorf("sizing columns: %w", err)
	}
	if err := f.SetColWidth(SheetName, "B", "C", 12); err != nil {
		f.Close()
		return nil, fmt.Errorf("sizing columns: %w", err)
	}

	return f, nil
}

func fieldNames(fields []extraction.Field) []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names
}
