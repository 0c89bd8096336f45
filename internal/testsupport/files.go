package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile writes content to path, creating parent directories as needed.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteVehicleFiles seeds a vehicle directory under vehiclesDir with the named
// files and returns the vehicle directory path.
func WriteVehicleFiles(t testing.TB, vehiclesDir, vehicleType, vehicleName string, files ...string) string {
	t.Helper()

	dir := filepath.Join(vehiclesDir, vehicleType, vehicleName)
	for _, name := range files {
		WriteFile(t, filepath.Join(dir, name), "original:"+name)
	}
	return dir
}

// ReadFile returns the full content of path, failing the test on error.
func ReadFile(t testing.TB, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}
