package excel

// ExcelData represents a parsed CSV or workbook sheet
type ExcelData struct {
	Headers []string   // Column headers
	Records [][]string // Data rows, one cell per header
}
