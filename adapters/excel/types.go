package excel

import "strings"

// FileType identifies the container format of a lead spreadsheet
type FileType string

const (
	FileTypeXLSX FileType = "xlsx"
	FileTypeCSV  FileType = "csv"
)

// DetectFileType picks the decoder from the file extension. Anything that is not
// .csv is treated as a workbook.
func DetectFileType(name string) FileType {
	if strings.HasSuffix(strings.ToLower(strings.TrimSpace(name)), ".csv") {
		return FileTypeCSV
	}
	return FileTypeXLSX
}
