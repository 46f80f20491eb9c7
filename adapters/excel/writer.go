package excel

import (
	"fmt"
	"log"

	"leadboard/domain/leads"

	"github.com/xuri/excelize/v2"
)

// DefaultSheet is the sheet a stored dataset is written to
const DefaultSheet = "Sheet1"

// SheetData is one sheet of a workbook to be written
type SheetData struct {
	Name string
	Rows [][]interface{}
}

// EncodeDataset serializes a dataset as a single-sheet workbook. Parsed creation
// dates are written as real date cells; every other cell keeps its raw text.
func EncodeDataset(ds *leads.Dataset) ([]byte, error) {
	createdIdx := ds.ColumnIndex(leads.ColumnCreatedAt)

	rows := make([][]interface{}, 0, len(ds.Leads)+1)
	rows = append(rows, stringsToRow(ds.Columns))
	for _, l := range ds.Leads {
		row := stringsToRow(l.Values)
		if createdIdx >= 0 && createdIdx < len(row) && l.CreatedAt != nil {
			row[createdIdx] = *l.CreatedAt
		}
		rows = append(rows, row)
	}

	return EncodeWorkbook(SheetData{Name: DefaultSheet, Rows: rows})
}

// EncodeWorkbook writes the sheets in order, the first one active
func EncodeWorkbook(sheets ...SheetData) ([]byte, error) {
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook needs at least one sheet")
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName(DefaultSheet, sheet.Name); err != nil {
				return nil, fmt.Errorf("failed to name sheet %q: %w", sheet.Name, err)
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			return nil, fmt.Errorf("failed to create sheet %q: %w", sheet.Name, err)
		}

		for r, row := range sheet.Rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				return nil, err
			}
			row := row
			if err := f.SetSheetRow(sheet.Name, cell, &row); err != nil {
				return nil, fmt.Errorf("failed to write row %d of %q: %w", r+1, sheet.Name, err)
			}
		}
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	log.Printf("[DataWriter] Workbook encoded (%d sheets, %d bytes)", len(sheets), buf.Len())
	return buf.Bytes(), nil
}

func stringsToRow(values []string) []interface{} {
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	return row
}
