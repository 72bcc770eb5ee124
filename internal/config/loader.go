package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the file name looked up in the working and home
// directories.
const DefaultConfigFile = ".pageflow"

// XDGConfigFile is the file name looked up in XDGConfigDir.
const XDGConfigFile = "config.yaml"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// LoadConfigFile reads the layouts of a .pageflow file. Unknown keys are
// rejected so that a misspelled setting does not silently fall back to its
// default. A missing file yields ErrConfigNotFound; an empty file yields
// an empty File.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cf); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("invalid configuration %s: %w", path, err)
	}
	if cf.Documents == nil {
		cf.Documents = make(map[string]Layout)
	}
	return &cf, nil
}

// FindConfigFile resolves the configuration file to load.
//
// An explicit configPath is returned only when it exists. Without one the
// first existing file among SearchPaths wins. The empty string means no
// file was found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		return firstExisting(configPath)
	}
	return firstExisting(SearchPaths()...)
}

// SearchPaths lists the implicit configuration locations in lookup order:
// the working directory, the XDG config directory, the home directory.
func SearchPaths() []string {
	var paths []string
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, DefaultConfigFile))
	}
	paths = append(paths, filepath.Join(XDGConfigDir(), XDGConfigFile))
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, DefaultConfigFile))
	}
	return paths
}

func firstExisting(paths ...string) string {
	for _, p := range paths {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}
