// Package prefs keeps small per-user state between sessions as JSON files in
// the user config dir.
package prefs

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Dir overrides the preferences directory; empty uses os.UserConfigDir.
var Dir string

func filePath(name string) (string, error) {
	dir := Dir
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(base, "plotbook")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

func writeJSON(name string, v any) error {
	path, err := filePath(name)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// readJSON reports false when the file does not exist.
func readJSON(name string, v any) (bool, error) {
	path, err := filePath(name)
	if err != nil {
		return false, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, err
	}
	return true, nil
}
