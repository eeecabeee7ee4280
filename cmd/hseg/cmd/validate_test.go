package cmd

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeRawFixture writes a tiny single-band raw raster in the layout
// internal/imageio's RawCodec reads.
func writeRawFixture(t *testing.T, path string, cols, rows int, values []float64) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	_, err = f.WriteString("HSEGRAW1")
	require.NoError(t, err)
	header := struct{ Cols, Rows, Slices, Bands int32 }{int32(cols), int32(rows), 1, 1}
	require.NoError(t, binary.Write(f, binary.LittleEndian, header))
	require.NoError(t, binary.Write(f, binary.LittleEndian, values))
}

func writeValidateParamFile(t *testing.T, primaryPath string) string {
	t.Helper()
	content := fmt.Sprintf(`input_image = %s
raster.use_godal = false
program_mode = RHSEG
dissim_crit = 1
init_threshold = 5
conv_nregions = 1
min_nregions = 1
rnb_levels = 1
recursion.min_recursion_side = 1
recursion.max_workers = 2
dispatch.kind = local
chk_nregions_flag = true
chk_nregions = 1
`, primaryPath)
	path := filepath.Join(t.TempDir(), "params.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestValidateCommandSegmentsCheckerboardWithoutWriting(t *testing.T) {
	dir := t.TempDir()
	values := make([]float64, 16)
	for i := range values {
		if i%4 >= 2 {
			values[i] = 100
		}
	}
	primaryPath := filepath.Join(dir, "primary.raw")
	writeRawFixture(t, primaryPath, 4, 4, values)

	paramFile := writeValidateParamFile(t, primaryPath)

	cmd := GetRootCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"validate", paramFile})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, buf.String(), "configuration valid")
}
