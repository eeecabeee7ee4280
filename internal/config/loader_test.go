package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freshLoader() *Loader {
	viper.Reset()
	return NewLoader()
}

func TestLoaderLoadWithoutValidationAppliesDefaults(t *testing.T) {
	l := freshLoader()
	cfg, err := l.LoadWithoutValidation("")
	require.NoError(t, err)
	assert.Equal(t, infoLevel, cfg.LogLevel)
	assert.Equal(t, ProgramModeRHSEG, cfg.Segmentation.ProgramMode)
	assert.Equal(t, 6, cfg.Segmentation.DissimCrit)
}

func TestLoaderLoadAppliesParamFileOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "params.txt")
	content := "# legacy parameter file\n" +
		"program_mode = HSEG\n" +
		"dissim_crit = 2\n" +
		"spclust_wght = 0.25\n" +
		"hseg_out_thresholds = 5,10,20\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	l := freshLoader()
	cfg, err := l.Load(path)
	require.NoError(t, err)
	assert.Equal(t, ProgramModeHSEG, cfg.Segmentation.ProgramMode)
	assert.Equal(t, 2, cfg.Segmentation.DissimCrit)
	assert.InDelta(t, 0.25, cfg.Segmentation.SpclustWght, 1e-9)
}

func TestLoaderEnvironmentOverride(t *testing.T) {
	t.Setenv("HSEG_LOG_LEVEL", "debug")
	l := freshLoader()
	cfg, err := l.LoadWithoutValidation("")
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoaderRejectsMissingParamFile(t *testing.T) {
	l := freshLoader()
	_, err := l.Load(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}
