// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads credentials from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the
// key name and the file contents are the value.
//
// Recognized keys: pdf-user-password (opens encrypted input) and
// pdf-owner-password (lifts permission restrictions).
package secrets

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Load reads all files in dir and returns a map of filename to contents
// with trailing line breaks removed. Other whitespace is kept because it
// may be part of a password. A missing directory is not an error; Load
// returns an empty map. Unreadable files produce a warning on w but do
// not abort.
func Load(dir string, w io.Writer) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(w, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimRight(string(data), "\r\n")
		if strings.TrimSpace(value) != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}
