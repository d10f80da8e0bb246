package excel

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"mrrdash/domain/revenue"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "revenue.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadCSVFile(t *testing.T) {
	path := writeTempCSV(t, "Country,2024-01-01,2024-02-01\nUS,100,200\nFR,$1.5,N/A\n")

	table, err := NewDataReader(path, "").ReadTable()
	require.NoError(t, err)
	require.Len(t, table.Columns, 3)

	assert.Equal(t, "Country", table.Columns[0].Label.String())
	assert.Equal(t, revenue.LabelText, table.Columns[0].Label.Kind)

	us := table.Columns[1].Cells[0]
	require.Equal(t, revenue.ValueNumeric, us.Kind)
	assert.Equal(t, 100.0, us.Num)

	// Currency strings parse, non-numeric cells stay text.
	fr := table.Columns[1].Cells[1]
	require.Equal(t, revenue.ValueNumeric, fr.Kind)
	assert.Equal(t, 1.5, fr.Num)
	assert.Equal(t, revenue.ValueText, table.Columns[2].Cells[1].Kind)
}

func TestReadCSVShortRowsPadded(t *testing.T) {
	path := writeTempCSV(t, "Country,2024-01-01\nUS,10\nFR\n")

	table, err := NewDataReader(path, "").ReadTable()
	require.NoError(t, err)
	assert.Equal(t, revenue.ValueMissing, table.Columns[1].Cells[1].Kind)
}

func TestReadCSVRequiresDataRows(t *testing.T) {
	path := writeTempCSV(t, "Country,2024-01-01\n")
	_, err := NewDataReader(path, "").ReadTable()
	assert.Error(t, err)
}

func TestReadMissingFile(t *testing.T) {
	_, err := NewDataReader(filepath.Join(t.TempDir(), "nope.xlsx"), "").ReadTable()
	assert.Error(t, err)
}

func TestBytesReaderCSV(t *testing.T) {
	data := []byte("Industry,2024-01-01\nSaaS,42\n")

	table, err := NewBytesReader("upload.csv", data, "").ReadTable()
	require.NoError(t, err)
	require.Len(t, table.Columns, 2)
	assert.Equal(t, 42.0, table.Columns[1].Cells[0].Num)
}

func TestReadExcelWorkbook(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "Country"))
	require.NoError(t, f.SetCellValue("Sheet1", "B1", "2024-01-01 00:00:00"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", "US"))
	require.NoError(t, f.SetCellValue("Sheet1", "B2", 1234.5))
	require.NoError(t, f.SetCellValue("Sheet1", "A3", "FR"))
	require.NoError(t, f.SetCellValue("Sheet1", "B3", "N/A"))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	table, err := NewBytesReader("revenue.xlsx", buf.Bytes(), "Sheet1").ReadTable()
	require.NoError(t, err)
	require.Len(t, table.Columns, 2)

	assert.Equal(t, "2024-01-01 00:00:00", table.Columns[1].Label.String())
	require.Len(t, table.Columns[1].Cells, 2)
	assert.Equal(t, 1234.5, table.Columns[1].Cells[0].Num)
	assert.Equal(t, revenue.ValueText, table.Columns[1].Cells[1].Kind)
}

func TestReadExcelWrongSheet(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "Country"))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	_, err = NewBytesReader("revenue.xlsx", buf.Bytes(), "Missing").ReadTable()
	assert.Error(t, err)
}
