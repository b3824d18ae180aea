package version

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNoMarker is returned when a file contains no __version__ line.
var ErrNoMarker = errors.New("no __version__ marker found")

// ReadFile scans path for the first __version__ line and parses it.
// CRLF line endings are tolerated. Lines after the first marker are ignored.
func ReadFile(path string) (Version, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Version{}, fmt.Errorf("failed to read version file: %w", err)
	}

	for _, line := range strings.Split(string(data), "\n") {
		raw, ok := markerValue(line)
		if !ok {
			continue
		}
		v, err := Parse(raw)
		if err != nil {
			return Version{}, fmt.Errorf("%s: %w", path, err)
		}
		return v, nil
	}

	return Version{}, fmt.Errorf("%s: %w", path, ErrNoMarker)
}

// WriteFile rewrites the first __version__ line of path to carry v,
// preserving every other line. The write is atomic: content goes to a
// temp file in the same directory which is then renamed over the target.
// If the file does not exist it is created with just the marker line.
func WriteFile(path string, v Version) error {
	marker := fmt.Sprintf("%s: %s", MarkerKey, v.String())

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to read version file: %w", err)
		}
		return atomicWrite(path, []byte(marker+"\n"), 0o644)
	}

	lines := strings.Split(string(data), "\n")
	replaced := false
	for i, line := range lines {
		if _, ok := markerValue(line); ok {
			lines[i] = marker
			replaced = true
			break
		}
	}
	if !replaced {
		return fmt.Errorf("%s: %w", path, ErrNoMarker)
	}

	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode()
	}
	return atomicWrite(path, []byte(strings.Join(lines, "\n")), mode)
}

// markerValue extracts the value portion of a __version__ line.
func markerValue(line string) (string, bool) {
	trimmed := strings.TrimRight(line, "\r")
	rest, ok := strings.CutPrefix(strings.TrimSpace(trimmed), MarkerKey)
	if !ok {
		return "", false
	}
	rest = strings.TrimSpace(rest)
	rest, ok = strings.CutPrefix(rest, ":")
	if !ok {
		return "", false
	}
	return strings.Trim(strings.TrimSpace(rest), `"'`), true
}

func atomicWrite(path string, data []byte, mode os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".version-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to set file mode: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace version file: %w", err)
	}
	return nil
}
