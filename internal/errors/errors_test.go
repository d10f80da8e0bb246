package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorCodes(t *testing.T) {
	err := MissingGroupingColumn("Geography", "Country")
	assert.Equal(t, CodeMissingGroupingColumn, GetCode(err))
	assert.Contains(t, err.Error(), "Geography")
	assert.Contains(t, err.Error(), `"Country"`)

	assert.Equal(t, CodeNoMonthColumns, GetCode(NoMonthColumnsFound(2024)))
	assert.Equal(t, "UNKNOWN", GetCode(fmt.Errorf("plain")))
}

func TestWrapPreservesCode(t *testing.T) {
	base := NoMonthColumnsFound(2024)
	wrapped := Wrap(base, "aggregation failed")

	assert.Equal(t, CodeNoMonthColumns, GetCode(wrapped))
	assert.Contains(t, wrapped.Error(), "aggregation failed")
	assert.True(t, IsAppError(wrapped))
}

func TestWrapNil(t *testing.T) {
	assert.NoError(t, Wrap(nil, "context"))
	assert.NoError(t, Wrapf(nil, "context %d", 1))
}

func TestWrapForeignError(t *testing.T) {
	wrapped := Wrap(fmt.Errorf("io failure"), "failed to read workbook")
	assert.Equal(t, CodeInternalError, GetCode(wrapped))
}
