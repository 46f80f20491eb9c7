package excel

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"leadboard/domain/core"
	"leadboard/domain/leads"

	"github.com/xuri/excelize/v2"
)

// DataReader reads lead spreadsheets from disk
type DataReader struct {
	filePath string
	fileType FileType
}

// NewDataReader creates a reader for an xlsx or csv file
func NewDataReader(filePath string) *DataReader {
	return &DataReader{filePath: filePath, fileType: DetectFileType(filePath)}
}

// ReadTable decodes the file into a header row plus string cells
func (r *DataReader) ReadTable() (*leads.Table, error) {
	log.Printf("[DataReader] Starting to read %s file: %s", r.fileType, r.filePath)

	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	switch r.fileType {
	case FileTypeCSV:
		return DecodeCSV(file)
	default:
		return DecodeWorkbook(file, "")
	}
}

// ReadDataset reads the file and binds it to the lead schema
func (r *DataReader) ReadDataset() (*leads.Dataset, error) {
	table, err := r.ReadTable()
	if err != nil {
		return nil, err
	}
	return ParseDataset(table)
}

// DecodeWorkbook reads one sheet of an xlsx workbook. An empty sheet name selects
// the first sheet. Cells are read raw so dates come back as Excel serial numbers.
func DecodeWorkbook(src io.Reader, sheet string) (*leads.Table, error) {
	startTime := time.Now()
	f, err := excelize.OpenReader(src, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrUnreadableSpreadsheet, err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("%w: workbook has no sheets", core.ErrUnreadableSpreadsheet)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: sheet %q: %v", core.ErrUnreadableSpreadsheet, sheet, err)
	}
	log.Printf("[DataReader] Sheet %q read in %.2fms (%d rows)", sheet, float64(time.Since(startTime).Nanoseconds())/1e6, len(rows))

	return processRows(rows), nil
}

// DecodeCSV reads a comma separated file with a header row
func DecodeCSV(src io.Reader) (*leads.Table, error) {
	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	readStart := time.Now()
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrUnreadableSpreadsheet, err)
	}
	log.Printf("[DataReader] CSV read in %.2fms (%d rows)", float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}
	return processRows(rows), nil
}

// DecodeUpload decodes uploaded bytes, picking the format from the file name
func DecodeUpload(filename string, raw []byte) (*leads.Table, error) {
	if DetectFileType(filename) == FileTypeCSV {
		return DecodeCSV(bytes.NewReader(raw))
	}
	return DecodeWorkbook(bytes.NewReader(raw), "")
}

// ParseDataset binds a decoded table to the lead schema, reading numeric creation
// dates as Excel serials
func ParseDataset(t *leads.Table) (*leads.Dataset, error) {
	return leads.MapSchema(t, leads.WithDateParser(ParseDateCell))
}

// ParseDateCell accepts an Excel date serial or any text form leads.ParseCreatedAt knows
func ParseDateCell(raw string) (time.Time, bool) {
	if serial, ok := leads.IsNumericCell(raw); ok {
		if serial <= 0 {
			return time.Time{}, false
		}
		ts, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, false
		}
		return ts.UTC().Round(time.Second), true
	}
	return leads.ParseCreatedAt(raw)
}

// processRows splits the first row off as headers and trims every cell
func processRows(rows [][]string) *leads.Table {
	table := &leads.Table{Headers: []string{}, Rows: [][]string{}}
	if len(rows) == 0 {
		return table
	}

	table.Headers = make([]string, len(rows[0]))
	for i, header := range rows[0] {
		table.Headers[i] = strings.TrimSpace(header)
	}

	for _, row := range rows[1:] {
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = strings.TrimSpace(cell)
		}
		table.Rows = append(table.Rows, cells)
	}

	log.Printf("[DataReader] Table processed (%d columns, %d rows)", len(table.Headers), len(table.Rows))
	return table
}
