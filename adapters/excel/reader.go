package excel

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"mrrdash/adapters/coerce"
	"mrrdash/domain/revenue"

	"github.com/xuri/excelize/v2"
)

// DefaultSheetName is the fixed sheet revenue exports are read from.
const DefaultSheetName = "Sheet1"

// DataReader reads Excel and CSV files into the domain's tabular form.
// It is the input boundary: downstream code never sees file formats, only a
// RawTable of labeled columns and heterogeneous cell values.
type DataReader struct {
	filePath string
	data     []byte // in-memory source when set (uploads)
	name     string
	fileType string // "xlsx" or "csv"
	sheet    string
}

// NewDataReader creates a reader for an on-disk Excel or CSV file.
func NewDataReader(filePath, sheet string) *DataReader {
	if sheet == "" {
		sheet = DefaultSheetName
	}
	return &DataReader{
		filePath: filePath,
		name:     filepath.Base(filePath),
		fileType: fileTypeFor(filePath),
		sheet:    sheet,
	}
}

// NewBytesReader creates a reader over in-memory file contents, e.g. an
// HTTP upload. The name's extension selects the format.
func NewBytesReader(name string, data []byte, sheet string) *DataReader {
	if sheet == "" {
		sheet = DefaultSheetName
	}
	return &DataReader{
		data:     data,
		name:     name,
		fileType: fileTypeFor(name),
		sheet:    sheet,
	}
}

func fileTypeFor(name string) string {
	if strings.ToLower(filepath.Ext(name)) == ".csv" {
		return "csv"
	}
	return "xlsx"
}

// ReadTable reads the source into a RawTable.
func (r *DataReader) ReadTable() (*revenue.RawTable, error) {
	log.Printf("[DataReader] Starting to read %s source: %s", r.fileType, r.name)

	if r.data == nil {
		if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
			return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
		}
	}

	switch r.fileType {
	case "csv":
		return r.readCSV()
	case "xlsx":
		return r.readExcel()
	default:
		return nil, fmt.Errorf("unsupported file type: %s", r.fileType)
	}
}

func (r *DataReader) openWorkbook() (*excelize.File, error) {
	if r.data != nil {
		return excelize.OpenReader(bytes.NewReader(r.data))
	}
	return excelize.OpenFile(r.filePath)
}

func (r *DataReader) readExcel() (*revenue.RawTable, error) {
	startTime := time.Now()
	f, err := r.openWorkbook()
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()
	log.Printf("[DataReader] Excel file opened in %.2fms", float64(time.Since(startTime).Nanoseconds())/1e6)

	readStart := time.Now()
	rows, err := f.GetRows(r.sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", r.sheet, err)
	}
	log.Printf("[DataReader] %s read in %.2fms (%d rows)", r.sheet, float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	if len(rows) < 2 {
		return nil, fmt.Errorf("Excel file must have at least a header row and one data row")
	}

	labels := r.excelHeaderLabels(f, rows[0])
	return buildTable(labels, rows[1:]), nil
}

// excelHeaderLabels resolves header cells into labels, preserving the
// distinction between date-typed cells and plain text. Exported revenue
// sheets commonly label month columns with real date cells.
func (r *DataReader) excelHeaderLabels(f *excelize.File, headerRow []string) []revenue.Label {
	labels := make([]revenue.Label, len(headerRow))
	for i, raw := range headerRow {
		cellRef, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			labels[i] = revenue.TextLabel(strings.TrimSpace(raw))
			continue
		}
		cellType, err := f.GetCellType(r.sheet, cellRef)
		if err == nil && cellType == excelize.CellTypeDate {
			if d, ok := coerce.Date(raw); ok {
				labels[i] = revenue.DateLabel(d)
				continue
			}
		}
		labels[i] = revenue.TextLabel(strings.TrimSpace(raw))
	}
	return labels
}

func (r *DataReader) readCSV() (*revenue.RawTable, error) {
	var reader *csv.Reader
	if r.data != nil {
		reader = csv.NewReader(bytes.NewReader(r.data))
	} else {
		file, err := os.Open(r.filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open CSV file: %w", err)
		}
		defer file.Close()
		reader = csv.NewReader(file)
	}
	reader.FieldsPerRecord = -1

	readStart := time.Now()
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	log.Printf("[DataReader] CSV read in %.2fms (%d rows)", float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	if len(rows) < 2 {
		return nil, fmt.Errorf("CSV file must have at least a header row and one data row")
	}

	labels := make([]revenue.Label, len(rows[0]))
	for i, raw := range rows[0] {
		labels[i] = revenue.TextLabel(strings.TrimSpace(raw))
	}
	return buildTable(labels, rows[1:]), nil
}

// buildTable pivots row-major string data into positionally aligned typed
// columns. Rows shorter than the header are padded with missing values.
func buildTable(labels []revenue.Label, dataRows [][]string) *revenue.RawTable {
	cols := make([]revenue.Column, len(labels))
	for i, label := range labels {
		cells := make([]revenue.Value, len(dataRows))
		for rowIdx, row := range dataRows {
			if i < len(row) {
				cells[rowIdx] = coerce.Cell(row[i])
			} else {
				cells[rowIdx] = revenue.MissingValue()
			}
		}
		cols[i] = revenue.Column{Label: label, Cells: cells}
	}

	log.Printf("[DataReader] Source processed (%d columns, %d rows)", len(cols), len(dataRows))
	return &revenue.RawTable{Columns: cols}
}
