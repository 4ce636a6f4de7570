package dataset

import "time"

// Format is the file format of an upload
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// Upload is one recorded file upload. The table itself is never stored in the
// database; StoragePath points at the saved copy of the file.
type Upload struct {
	ID            string    `json:"id" db:"id"`
	Filename      string    `json:"filename" db:"filename"`
	Format        Format    `json:"format" db:"format"`
	StoragePath   string    `json:"storage_path,omitempty" db:"storage_path"`
	RowCount      int       `json:"row_count" db:"row_count"`
	ColumnCount   int       `json:"column_count" db:"column_count"`
	EmployeeCount int       `json:"employee_count" db:"employee_count"`
	UploadedAt    time.Time `json:"uploaded_at" db:"uploaded_at"`
}
