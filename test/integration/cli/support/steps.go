package support

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"strings"

	"github.com/cucumber/godog"

	"hseg/cmd/hseg/cmd"
)

// iRunCommand executes an `hseg ...` command internally via the cobra
// command tree, the way the teacher's CLI suite runs its own binary
// in-process to avoid a `go build` round trip per scenario.
func (testCtx *TestContext) iRunCommand(command string) error {
	testCtx.LastCommand = command
	parts := strings.Fields(testCtx.substituteTrackedFiles(command))
	if len(parts) > 0 && parts[0] == "hseg" {
		parts = parts[1:]
	}

	rootCmd := cmd.GetRootCommand()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(parts)

	err := rootCmd.Execute()
	testCtx.LastOutput = out.String()
	testCtx.LastErr = err
	if err != nil {
		testCtx.LastExitCode = 1
	} else {
		testCtx.LastExitCode = 0
	}
	return nil
}

// substituteTrackedFiles replaces bare filenames the scenario created
// earlier with their full temp-directory paths, so feature files can
// refer to "params.txt" instead of an opaque per-run temp path.
func (testCtx *TestContext) substituteTrackedFiles(command string) string {
	for _, name := range testCtx.CreatedFiles {
		command = strings.ReplaceAll(command, name, testCtx.TempPath(name))
	}
	return command
}

func (testCtx *TestContext) theCommandShouldSucceed() error {
	if testCtx.LastExitCode != 0 {
		return fmt.Errorf("command %q failed: %w\noutput: %s", testCtx.LastCommand, testCtx.LastErr, testCtx.LastOutput)
	}
	return nil
}

func (testCtx *TestContext) theCommandShouldFail() error {
	if testCtx.LastExitCode == 0 {
		return fmt.Errorf("command %q succeeded but was expected to fail\noutput: %s", testCtx.LastCommand, testCtx.LastOutput)
	}
	return nil
}

func (testCtx *TestContext) theOutputShouldContain(expected string) error {
	if !strings.Contains(testCtx.LastOutput, expected) {
		return fmt.Errorf("output does not contain %q\noutput: %s", expected, testCtx.LastOutput)
	}
	return nil
}

func (testCtx *TestContext) theErrorShouldMention(expected string) error {
	if testCtx.LastErr == nil || !strings.Contains(testCtx.LastErr.Error(), expected) {
		return fmt.Errorf("error does not mention %q: %v", expected, testCtx.LastErr)
	}
	return nil
}

func (testCtx *TestContext) theFileShouldExist(filename string) error {
	if _, err := os.Stat(testCtx.TempPath(filename)); os.IsNotExist(err) {
		return fmt.Errorf("file does not exist: %s", testCtx.TempPath(filename))
	}
	return nil
}

// aCheckerboardRasterNamed writes a small single-band raw raster (sharp
// left/right split) in internal/imageio's RawCodec layout, so the merge
// loop has an unambiguous two-region answer to converge to.
func (testCtx *TestContext) aCheckerboardRasterNamed(filename string) error {
	const cols, rows = 4, 4
	values := make([]float64, cols*rows)
	for i := range values {
		if i%cols >= cols/2 {
			values[i] = 100
		}
	}

	f, err := os.Create(testCtx.TempPath(filename))
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteString("HSEGRAW1"); err != nil {
		return err
	}
	header := struct{ Cols, Rows, Slices, Bands int32 }{cols, rows, 1, 1}
	if err := binary.Write(f, binary.LittleEndian, header); err != nil {
		return err
	}
	if err := binary.Write(f, binary.LittleEndian, values); err != nil {
		return err
	}
	testCtx.TrackFile(filename)
	return nil
}

// aParamFileNamed writes a legacy parameter file referencing the given
// primary raster, with every field the small fixture above needs to
// converge in one or two checkpoints.
func (testCtx *TestContext) aParamFileNamed(paramFile, rasterFile string) error {
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
class_labels_map = %s
oparam_path = %s
`,
		testCtx.TempPath(rasterFile),
		testCtx.TempPath("classes.raw"),
		testCtx.TempPath("sidecar.bin"))
	if err := os.WriteFile(testCtx.TempPath(paramFile), []byte(content), 0o644); err != nil {
		return err
	}
	testCtx.TrackFile(paramFile)
	return nil
}

// RegisterSteps wires every step definition the feature files use.
func (testCtx *TestContext) RegisterSteps(sc *godog.ScenarioContext) {
	sc.Step(`^a checkerboard raster named "([^"]*)"$`, testCtx.aCheckerboardRasterNamed)
	sc.Step(`^a parameter file "([^"]*)" over "([^"]*)"$`, testCtx.aParamFileNamed)
	sc.Step(`^I run "([^"]*)"$`, testCtx.iRunCommand)
	sc.Step(`^the command should succeed$`, testCtx.theCommandShouldSucceed)
	sc.Step(`^the command should fail$`, testCtx.theCommandShouldFail)
	sc.Step(`^the output should contain "([^"]*)"$`, testCtx.theOutputShouldContain)
	sc.Step(`^the error should mention "([^"]*)"$`, testCtx.theErrorShouldMention)
	sc.Step(`^the file "([^"]*)" should exist$`, testCtx.theFileShouldExist)
}
