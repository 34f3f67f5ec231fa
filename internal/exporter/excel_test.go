package exporter

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExcelWriter_Write(t *testing.T) {
	var buf bytes.Buffer
	writer := NewExcelWriter(testLogger())

	err := writer.Write(context.Background(), &buf, exportRecords())
	require.NoError(t, err)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, exportHeader, rows[0])
	assert.Equal(t, "2023", rows[1][0])
	assert.Equal(t, "Senior", rows[1][1])
	assert.Equal(t, "USA", rows[1][7])
	assert.Equal(t, "76-100", rows[1][8])
}

func TestExcelWriter_Write_EmptySet(t *testing.T) {
	var buf bytes.Buffer
	writer := NewExcelWriter(testLogger())

	require.NoError(t, writer.Write(context.Background(), &buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 1)
}
