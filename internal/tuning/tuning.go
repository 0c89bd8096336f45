// Package tuning applies the curated performance preset to unpacked
// vehicle_misc XML files.
package tuning

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gearbox/internal/fileutil"
)

// QuickMods is the tuning preset applied by the tune operation. Keys are
// misc entry names inside vehicle_misc XML.
var QuickMods = map[string]string{
	"official_top_speed":                "1500",
	"full_nitro_refill_time":            "1",
	"full_nitro_refill_time_lvl2":       "0.005",
	"full_nitro_use_time":               "12000",
	"full_nitro_use_time_upgraded":      "15000",
	"full_nitro_use_time_upgraded_lvl2": "22000",
	"turbo_jump_cooldown":               "0.5",
	"turbo_jump_cooldown_upgraded":      "0.005",
}

// misc entries look like:
//
//	<misc name="official_top_speed" offset="10" type="float" z_default="220">220</misc>
//
// Both the element text and the z_default attribute are rewritten. Editing is
// textual so everything else in the file survives byte for byte; the
// converter is strict about its own formatting.
var miscPattern = regexp.MustCompile(`(<misc\b[^>]*\bname="([^"]+)"[^>]*>)([^<]*)(</misc>)`)

var zDefaultPattern = regexp.MustCompile(`\bz_default="[^"]*"`)

// Apply rewrites the preset values inside XML content and reports how many
// entries changed.
func Apply(content string, mods map[string]string) (string, int) {
	changed := 0
	result := miscPattern.ReplaceAllStringFunc(content, func(match string) string {
		groups := miscPattern.FindStringSubmatch(match)
		value, ok := mods[groups[2]]
		if !ok {
			return match
		}
		openTag := zDefaultPattern.ReplaceAllString(groups[1], `z_default="`+value+`"`)
		changed++
		return openTag + value + groups[4]
	})
	return result, changed
}

// ApplyFile applies the preset to one XML file in place. The rewrite goes
// through a temp file rename so a crash cannot leave a half-written file.
func ApplyFile(path string, mods map[string]string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", path, err)
	}

	updated, changed := Apply(string(data), mods)
	if changed == 0 {
		return 0, nil
	}
	if err := fileutil.WriteFileAtomic(path, []byte(updated)); err != nil {
		return 0, fmt.Errorf("write %s: %w", path, err)
	}
	return changed, nil
}

// DirResult summarizes a tuning pass over an unpacked vehicle folder.
type DirResult struct {
	FilesChanged  int
	ValuesChanged int
}

// ApplyDir walks an unpacked vehicle folder and applies the preset to every
// vehicle_misc file. Other XML files are left alone.
func ApplyDir(dir string, mods map[string]string) (DirResult, error) {
	var result DirResult
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		name := d.Name()
		if !strings.Contains(name, "vehicle_misc") || !strings.EqualFold(filepath.Ext(name), ".xml") {
			return nil
		}
		changed, applyErr := ApplyFile(path, mods)
		if applyErr != nil {
			return applyErr
		}
		if changed > 0 {
			result.FilesChanged++
			result.ValuesChanged += changed
		}
		return nil
	})
	if err != nil {
		return result, fmt.Errorf("apply tuning to %s: %w", dir, err)
	}
	return result, nil
}
