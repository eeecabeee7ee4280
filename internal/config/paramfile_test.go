package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeParamFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "params.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseParamFileSkipsCommentsAndBlankLines(t *testing.T) {
	path := writeParamFile(t, "# a comment\n\n; another comment\nconn_type = 2\n")
	fields, err := ParseParamFile(path)
	require.NoError(t, err)
	assert.Equal(t, int64(2), fields["segmentation.conn_type"])
}

func TestParseParamFileCoercesBooleans(t *testing.T) {
	path := writeParamFile(t, "sort_flag = true\nmerge_accel_flag = false\n")
	fields, err := ParseParamFile(path)
	require.NoError(t, err)
	assert.Equal(t, true, fields["segmentation.sort_flag"])
	assert.Equal(t, false, fields["segmentation.merge_accel_flag"])
}

func TestParseParamFileCoercesFloats(t *testing.T) {
	path := writeParamFile(t, "spclust_wght = 0.4\n")
	fields, err := ParseParamFile(path)
	require.NoError(t, err)
	assert.InDelta(t, 0.4, fields["segmentation.spclust_wght"].(float64), 1e-9)
}

func TestParseParamFileAccumulatesListValues(t *testing.T) {
	path := writeParamFile(t, "hseg_out_thresholds = 1,5,10\n")
	fields, err := ParseParamFile(path)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 5, 10}, fields["checkpoint.hseg_out_thresholds"])
}

func TestParseParamFileAccumulatesIntListValues(t *testing.T) {
	path := writeParamFile(t, "hseg_out_nregions = 100,50,10\n")
	fields, err := ParseParamFile(path)
	require.NoError(t, err)
	assert.Equal(t, []int{100, 50, 10}, fields["checkpoint.hseg_out_nregions"])
}

func TestParseParamFileRejectsMalformedLine(t *testing.T) {
	path := writeParamFile(t, "this is not a key value line\n")
	_, err := ParseParamFile(path)
	assert.Error(t, err)
}

func TestParseParamFileRejectsMissingFile(t *testing.T) {
	_, err := ParseParamFile(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestParseParamFilePassesThroughUnknownKeys(t *testing.T) {
	path := writeParamFile(t, "some_future_key = 7\n")
	fields, err := ParseParamFile(path)
	require.NoError(t, err)
	assert.Equal(t, int64(7), fields["some_future_key"])
}
