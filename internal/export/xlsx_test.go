package export

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExportXLSX_OrderSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.xlsx")
	job, res, _ := buildTestPlan(t)

	require.NoError(t, ExportXLSX(path, job, res))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(orderSheet)
	require.NoError(t, err)
	require.Len(t, rows, len(res.Steps)+1)
	assert.Equal(t, orderHeaders, rows[0])
	for i, st := range res.Steps {
		assert.Equal(t, st.ID, rows[i+1][2], "row %d", i+1)
	}

	passes, err := f.GetCellValue(orderSheet, "F2")
	require.NoError(t, err)
	assert.Equal(t, "3", passes, "the inner loop runs first with all its passes")

	status, err := f.GetCellValue(summarySheet, "B2")
	require.NoError(t, err)
	assert.Equal(t, "complete", status)
}

func TestExportXLSX_NilPlan(t *testing.T) {
	job, _, _ := buildTestPlan(t)
	assert.Error(t, ExportXLSX(filepath.Join(t.TempDir(), "x.xlsx"), job, nil))
}
