// Package vehicles enumerates game vehicle folders and pairs converter output
// files with the vehicle that owns them.
package vehicles

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Vehicle is a single vehicle folder under the type-partitioned vehicles tree.
type Vehicle struct {
	Name  string
	Type  string
	Dir   string
	Files []string
}

// OutputFile is a packed definition file produced by the converter, awaiting
// deployment into a vehicle folder.
type OutputFile struct {
	Name    string
	Path    string
	Vehicle string
}

// Assignment maps vehicles to the output files that belong to them. Files
// whose names match no known vehicle are collected in Unmatched rather than
// dropped.
type Assignment struct {
	ByVehicle map[string][]OutputFile
	Unmatched []OutputFile
}

// Types lists the type partitions (for example 01_land, 02_air) present under
// the vehicles root.
func Types(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read vehicles root: %w", err)
	}
	var types []string
	for _, entry := range entries {
		if entry.IsDir() {
			types = append(types, entry.Name())
		}
	}
	sort.Strings(types)
	return types, nil
}

// Discover enumerates vehicle folders under root. When types is empty every
// type partition is scanned. Each vehicle's .ee files are recorded sorted by
// name.
func Discover(root string, types ...string) ([]Vehicle, error) {
	if len(types) == 0 {
		discovered, err := Types(root)
		if err != nil {
			return nil, err
		}
		types = discovered
	}

	var result []Vehicle
	for _, vehicleType := range types {
		typeDir := filepath.Join(root, vehicleType)
		entries, err := os.ReadDir(typeDir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("read type dir %s: %w", vehicleType, err)
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			dir := filepath.Join(typeDir, entry.Name())
			files, err := listEEFiles(dir)
			if err != nil {
				return nil, err
			}
			result = append(result, Vehicle{
				Name:  entry.Name(),
				Type:  vehicleType,
				Dir:   dir,
				Files: files,
			})
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// Find returns the vehicle with the given name, or nil when unknown.
func Find(list []Vehicle, name string) *Vehicle {
	for i := range list {
		if list[i].Name == name {
			return &list[i]
		}
	}
	return nil
}

// ScanOutputs walks the packed staging directory and returns every .ee file
// found, sorted by name. Vehicle assignment is left to Assign.
func ScanOutputs(packedDir string) ([]OutputFile, error) {
	var outputs []OutputFile
	err := filepath.WalkDir(packedDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == packedDir {
				return filepath.SkipAll
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !strings.EqualFold(filepath.Ext(d.Name()), ".ee") {
			return nil
		}
		outputs = append(outputs, OutputFile{Name: d.Name(), Path: path})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan packed outputs: %w", err)
	}
	sort.Slice(outputs, func(i, j int) bool { return outputs[i].Name < outputs[j].Name })
	return outputs, nil
}

// Assign pairs output files with vehicles by name prefix. When a file name is
// a prefix match for several vehicles the longest vehicle name wins, so
// v014_car_offroadtruck_military_01.ee lands on the military variant and not
// on v014_car_offroadtruck.
func Assign(outputs []OutputFile, known []Vehicle) Assignment {
	names := make([]string, 0, len(known))
	for _, vehicle := range known {
		names = append(names, vehicle.Name)
	}
	// Longest names first so the first prefix hit is the most specific one.
	sort.Slice(names, func(i, j int) bool { return len(names[i]) > len(names[j]) })

	assignment := Assignment{ByVehicle: make(map[string][]OutputFile)}
	for _, output := range outputs {
		matched := ""
		for _, name := range names {
			if strings.HasPrefix(output.Name, name) {
				matched = name
				break
			}
		}
		if matched == "" {
			assignment.Unmatched = append(assignment.Unmatched, output)
			continue
		}
		output.Vehicle = matched
		assignment.ByVehicle[matched] = append(assignment.ByVehicle[matched], output)
	}
	return assignment
}

func listEEFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read vehicle dir %s: %w", dir, err)
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".ee") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}
