// Package mapscan discovers the map files in a data directory.
package mapscan

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// MapEntry represents a discoverable map in the data directory
type MapEntry struct {
	Name string // Map name from the file, or the file name without extension
	Path string // Path to the JSON file
}

// header is the part of a map file read while scanning.
type header struct {
	Name string `json:"name"`
}

// ScanDirectory lists the map files in dir, sorted by path. Files that are
// not JSON objects are skipped; they fail properly when loaded.
func ScanDirectory(dir string) ([]MapEntry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read map directory: %w", err)
	}

	var maps []MapEntry
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || !strings.EqualFold(filepath.Ext(name), ".json") {
			continue
		}

		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var h header
		if err := json.Unmarshal(data, &h); err != nil {
			continue
		}
		if h.Name == "" {
			h.Name = strings.TrimSuffix(name, filepath.Ext(name))
		}
		maps = append(maps, MapEntry{Name: h.Name, Path: path})
	}

	sort.Slice(maps, func(i, j int) bool { return maps[i].Path < maps[j].Path })
	return maps, nil
}

// Resolve returns path itself when it names a file, or the first map found
// when it names a directory.
func Resolve(path string) (MapEntry, []MapEntry, error) {
	info, err := os.Stat(path)
	if err != nil {
		return MapEntry{}, nil, fmt.Errorf("failed to stat map path: %w", err)
	}
	if !info.IsDir() {
		return MapEntry{Name: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)), Path: path}, nil, nil
	}
	maps, err := ScanDirectory(path)
	if err != nil {
		return MapEntry{}, nil, err
	}
	if len(maps) == 0 {
		return MapEntry{}, nil, fmt.Errorf("no maps found in %s", path)
	}
	return maps[0], maps, nil
}
