package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// testEnv holds the temp layout a CLI invocation runs against.
type testEnv struct {
	configPath string
	base       string
}

func (e testEnv) vehiclesDir() string { return filepath.Join(e.base, "vehicles") }
func (e testEnv) packedDir() string   { return filepath.Join(e.base, "easiedit", "Packed Files") }
func (e testEnv) inputDir() string    { return filepath.Join(e.base, "easiedit", "To Edit") }

func newTestEnv(t *testing.T) testEnv {
	t.Helper()

	base := t.TempDir()
	converterPath := filepath.Join(base, "easiedit", "EasiEdit.exe")
	writeFile(t, converterPath, "stub")
	if err := os.MkdirAll(filepath.Join(base, "vehicles"), 0o755); err != nil {
		t.Fatalf("mkdir vehicles: %v", err)
	}

	configPath := filepath.Join(base, "config.toml")
	content := fmt.Sprintf(`[paths]
converter_path = %q
vehicles_dir = %q
log_dir = %q
`, converterPath, filepath.Join(base, "vehicles"), filepath.Join(base, "logs"))
	writeFile(t, configPath, content)

	return testEnv{configPath: configPath, base: base}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func runCommand(t *testing.T, env testEnv, args ...string) (string, string, error) {
	t.Helper()

	cmd := newRootCommand()
	args = append([]string{"--config", env.configPath}, args...)
	cmd.SetArgs(args)

	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)

	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestConfigPathCommand(t *testing.T) {
	env := newTestEnv(t)
	out, _, err := runCommand(t, env, "config", "path")
	if err != nil {
		t.Fatalf("config path: %v", err)
	}
	if !strings.Contains(out, "config.toml") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestConfigInitAndShow(t *testing.T) {
	env := newTestEnv(t)
	target := filepath.Join(env.base, "generated.toml")

	out, _, err := runCommand(t, env, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, "Wrote sample configuration") {
		t.Fatalf("unexpected output %q", out)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("sample not written: %v", err)
	}

	// Re-running without --overwrite refuses to clobber the file.
	if _, _, err := runCommand(t, env, "config", "init", "--path", target); err == nil {
		t.Fatal("expected error for existing file")
	}

	showOut, _, err := runCommand(t, env, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(showOut, "EasiEdit.exe") {
		t.Fatalf("show output missing converter path:\n%s", showOut)
	}
}

func TestVehiclesCommandListsTree(t *testing.T) {
	env := newTestEnv(t)
	writeFile(t, filepath.Join(env.vehiclesDir(), "01_land", "car_a", "car_a.ee"), "original")
	writeFile(t, filepath.Join(env.vehiclesDir(), "02_air", "plane_b", "plane_b.ee"), "original")

	out, _, err := runCommand(t, env, "vehicles")
	if err != nil {
		t.Fatalf("vehicles: %v", err)
	}
	if !strings.Contains(out, "car_a") || !strings.Contains(out, "plane_b") {
		t.Fatalf("vehicles missing from output:\n%s", out)
	}

	filtered, _, err := runCommand(t, env, "vehicles", "--type", "02_air")
	if err != nil {
		t.Fatalf("vehicles --type: %v", err)
	}
	if strings.Contains(filtered, "car_a") {
		t.Fatalf("type filter ignored:\n%s", filtered)
	}
}

func TestDeployAndStatusRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	writeFile(t, filepath.Join(env.vehiclesDir(), "01_land", "car_a", "car_a.ee"), "original")
	writeFile(t, filepath.Join(env.packedDir(), "car_a.ee"), "modded")

	out, _, err := runCommand(t, env, "deploy")
	if err != nil {
		t.Fatalf("deploy: %v", err)
	}
	if !strings.Contains(out, "1 deployed") {
		t.Fatalf("deploy output:\n%s", out)
	}

	installed := filepath.Join(env.vehiclesDir(), "01_land", "car_a", "car_a.ee")
	data, err := os.ReadFile(installed)
	if err != nil || string(data) != "modded" {
		t.Fatalf("installed content = %q, err=%v", data, err)
	}
	if _, err := os.Stat(installed + ".backup"); err != nil {
		t.Fatalf("backup missing: %v", err)
	}

	statusOut, _, err := runCommand(t, env, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(statusOut, "car_a") {
		t.Fatalf("status output missing vehicle:\n%s", statusOut)
	}

	clearOut, _, err := runCommand(t, env, "status", "clear")
	if err != nil {
		t.Fatalf("status clear: %v", err)
	}
	if !strings.Contains(clearOut, "Cleared 1") {
		t.Fatalf("clear output:\n%s", clearOut)
	}

	emptyOut, _, err := runCommand(t, env, "status")
	if err != nil {
		t.Fatalf("status after clear: %v", err)
	}
	if !strings.Contains(emptyOut, "No vehicles deployed") {
		t.Fatalf("status not empty after clear:\n%s", emptyOut)
	}
}

func TestRestoreCommand(t *testing.T) {
	env := newTestEnv(t)
	writeFile(t, filepath.Join(env.vehiclesDir(), "01_land", "car_a", "car_a.ee"), "original")
	writeFile(t, filepath.Join(env.packedDir(), "car_a.ee"), "modded")

	if _, _, err := runCommand(t, env, "deploy"); err != nil {
		t.Fatalf("deploy: %v", err)
	}

	out, _, err := runCommand(t, env, "restore")
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if !strings.Contains(out, "Restored 1") {
		t.Fatalf("restore output:\n%s", out)
	}

	data, err := os.ReadFile(filepath.Join(env.vehiclesDir(), "01_land", "car_a", "car_a.ee"))
	if err != nil || string(data) != "original" {
		t.Fatalf("restored content = %q, err=%v", data, err)
	}

	statusOut, _, err := runCommand(t, env, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(statusOut, "No vehicles deployed") {
		t.Fatalf("records not cleared by restore:\n%s", statusOut)
	}
}

func TestTuneCommandRewritesUnpackedXML(t *testing.T) {
	env := newTestEnv(t)
	miscPath := filepath.Join(env.inputDir(), "car_a", "car_a_vehicle_misc.xml")
	writeFile(t, miscPath, `<vehicle><misc name="official_top_speed" z_default="220">220</misc></vehicle>`)

	out, _, err := runCommand(t, env, "tune", "car_a")
	if err != nil {
		t.Fatalf("tune: %v", err)
	}
	if !strings.Contains(out, "Tuned car_a") {
		t.Fatalf("tune output:\n%s", out)
	}

	data, err := os.ReadFile(miscPath)
	if err != nil {
		t.Fatalf("read tuned file: %v", err)
	}
	if !strings.Contains(string(data), ">1500</misc>") {
		t.Fatalf("tuning not applied:\n%s", data)
	}
}

func TestTuneWithoutConverterConfigured(t *testing.T) {
	env := newTestEnv(t)
	content := fmt.Sprintf("[paths]\nvehicles_dir = %q\nlog_dir = %q\n",
		env.vehiclesDir(), filepath.Join(env.base, "logs"))
	writeFile(t, env.configPath, content)

	_, _, err := runCommand(t, env, "tune", "car_a")
	if err == nil || !strings.Contains(err.Error(), "converter_path") {
		t.Fatalf("expected a converter_path configuration error, got %v", err)
	}
}

func TestTuneUnknownVehicle(t *testing.T) {
	env := newTestEnv(t)
	_, _, err := runCommand(t, env, "tune", "car_z")
	if err == nil || !strings.Contains(err.Error(), "no unpacked folder") {
		t.Fatalf("expected unpacked-folder error, got %v", err)
	}
}

func TestCorruptConfigDegradesToDefaults(t *testing.T) {
	env := newTestEnv(t)
	writeFile(t, env.configPath, "this is not [valid toml")

	_, errOut, err := runCommand(t, env, "config", "show")
	if err != nil {
		t.Fatalf("config show with corrupt config: %v", err)
	}
	if !strings.Contains(errOut, "warning") {
		t.Fatalf("expected warning on stderr, got %q", errOut)
	}
}

func TestDeployNothingToDo(t *testing.T) {
	env := newTestEnv(t)
	writeFile(t, filepath.Join(env.vehiclesDir(), "01_land", "car_a", "car_a.ee"), "original")

	out, _, err := runCommand(t, env, "deploy")
	if err != nil {
		t.Fatalf("deploy: %v", err)
	}
	if !strings.Contains(out, "Nothing to deploy") {
		t.Fatalf("deploy output:\n%s", out)
	}
}
