package main

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/cone-finder/internal/config"
	"github.com/ironsheep/cone-finder/internal/robot"
	"github.com/ironsheep/cone-finder/internal/session"
)

// clearEnv hides any CONE_FINDER_* settings of the machine running the tests.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{"COLOR", "CAMERA", "DISPLAY", "MAX_FRAMES", "SELECTION", "OUTLINE_COLOR", "ROBOT", "ROBOT_PORT"} {
		t.Setenv(config.EnvPrefix+name, "")
	}
}

// runApp runs the CLI with args and stdin, returning stdout.
func runApp(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	clearEnv(t)

	var out bytes.Buffer
	app := newApp()
	app.Reader = strings.NewReader(stdin)
	app.Writer = &out
	app.ErrWriter = &out

	err := app.Run(append([]string{"cone-finder"}, args...))
	return out.String(), err
}

// coneDir writes a frame with a 35x35 orange square at (10, 10), which
// traces to area 900 anchored at (12, 12).
func coneDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	img := image.NewRGBA(image.Rect(0, 0, 60, 60))
	for y := 0; y < 60; y++ {
		for x := 0; x < 60; x++ {
			c := color.RGBA{0, 0, 0, 255}
			if x >= 10 && x < 45 && y >= 10 && y < 45 {
				c = color.RGBA{255, 128, 64, 255}
			}
			img.Set(x, y, c)
		}
	}
	require.NoError(t, imaging.Save(img, filepath.Join(dir, "0001.png")))
	return dir
}

func TestProfiles(t *testing.T) {
	out, err := runApp(t, "", "profiles")
	require.NoError(t, err)
	assert.Contains(t, out, "orange [")
	assert.Equal(t, 4, strings.Count(out, "\n"))

	out, err = runApp(t, "", "--json", "profiles")
	require.NoError(t, err)
	var decoded []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Len(t, decoded, 4)
}

func TestVersion(t *testing.T) {
	out, err := runApp(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "cone-finder dev")
	assert.Contains(t, out, "Git commit: unknown")
}

func TestFind(t *testing.T) {
	dir := coneDir(t)

	out, err := runApp(t, "", "--camera", dir, "--display", "none", "--color", "orange", "--json")
	require.NoError(t, err)

	var report session.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.NotNil(t, report.Result)
	assert.Equal(t, 900.0, report.Result.Area)
	assert.Equal(t, 12, report.Result.HorizontalOffset)
}

func TestFind_PromptsForColor(t *testing.T) {
	dir := coneDir(t)

	out, err := runApp(t, "\n  \nOrange\n", "--camera", dir, "--display", "none", "find")
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(out, "Enter a color"), "blank answers ask again")
	assert.Contains(t, out, "found the orange cone: area 900 units, located at (12, 12), horizontal offset 12")
}

func TestFind_NoColorOnStdin(t *testing.T) {
	_, err := runApp(t, "", "--camera", coneDir(t), "--display", "none")
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestFind_ExitCodes(t *testing.T) {
	dir := coneDir(t)

	_, err := runApp(t, "", "--camera", dir, "--display", "none", "--color", "purple")
	assert.Equal(t, session.ExitConfig, session.ExitCode(err))

	_, err = runApp(t, "", "--camera", filepath.Join(dir, "missing"), "--display", "none", "--color", "orange")
	assert.Equal(t, session.ExitHardware, session.ExitCode(err))

	_, err = runApp(t, "", "--camera", dir, "--display", "none", "--color", "green")
	assert.Equal(t, session.ExitHardware, session.ExitCode(err), "a finite directory runs out of frames")

	_, err = runApp(t, "", "--camera", dir, "--display", "none", "--color", "orange", "--outline-color", "#12")
	assert.Equal(t, session.ExitConfig, session.ExitCode(err))

	_, err = runApp(t, "", "--config", "settings.yaml")
	assert.Equal(t, session.ExitConfig, session.ExitCode(err))
}

func TestFind_OutlineColor(t *testing.T) {
	out := filepath.Join(t.TempDir(), "frames")

	_, err := runApp(t, "", "--camera", coneDir(t), "--display", out, "--color", "orange", "--outline-color", "#FF0000")
	require.NoError(t, err)

	frame, err := imaging.Open(filepath.Join(out, "frame-00001.png"))
	require.NoError(t, err)
	got := color.RGBAModel.Convert(frame.At(12, 12)).(color.RGBA)
	assert.Equal(t, color.RGBA{255, 0, 0, 255}, got, "the anchor vertex is stroked")
}

func TestConfigFile(t *testing.T) {
	dir := coneDir(t)
	path := filepath.Join(t.TempDir(), "cone.json")
	cfg := `{"color": "orange", "camera": {"kind": "dir", "dir": "` + dir + `"}, "display": {"kind": "none"}}`
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o600))

	out, err := runApp(t, "", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "found the orange cone")

	// flags override the file
	_, err = runApp(t, "", "--config", path, "--color", "green")
	assert.Error(t, err)
}

func TestDrive(t *testing.T) {
	out, err := runApp(t, "", "--robot", "dryrun", "drive", "forward")
	require.NoError(t, err)
	assert.Equal(t, "moving forward\n", out)

	_, err = runApp(t, "", "--robot", "dryrun", "drive", "jump")
	assert.ErrorIs(t, err, robot.ErrUnknownCommand)

	_, err = runApp(t, "", "--robot", "dryrun", "drive")
	assert.ErrorIs(t, err, config.ErrInvalid)

	_, err = runApp(t, "", "drive", "forward")
	assert.ErrorIs(t, err, config.ErrInvalid, "no robot configured")
}

func TestOrbitAndServo(t *testing.T) {
	_, err := runApp(t, "", "--robot", "dryrun", "orbit", "--degrees", "180", "--radius", "30")
	assert.NoError(t, err)

	// out of range angles are logged and ignored
	_, err = runApp(t, "", "--robot", "dryrun", "orbit", "--degrees", "400")
	assert.NoError(t, err)

	_, err = runApp(t, "", "--robot", "dryrun", "servo", "--degrees", "45")
	assert.NoError(t, err)

	_, err = runApp(t, "", "--robot", "dryrun", "servo", "--degrees", "181")
	assert.NoError(t, err)
}

func TestDistance(t *testing.T) {
	out, err := runApp(t, "", "--robot", "dryrun", "distance")
	require.NoError(t, err)
	assert.Equal(t, "1000 mm\n", out)
}

func TestServe(t *testing.T) {
	out, err := runApp(t, `{"jsonrpc":"2.0","id":7,"method":"ping"}`+"\n", "serve")
	require.NoError(t, err)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, float64(7), resp["id"])
	assert.Nil(t, resp["error"])
}
