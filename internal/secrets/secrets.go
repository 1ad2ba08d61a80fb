// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets resolves the metadata API key. The key comes from the
// environment when set, otherwise from a directory of plain-text key files
// where each file name is a key name and its trimmed contents the value.
package secrets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

const (
	// EnvAPIKey is the environment variable holding the API key.
	EnvAPIKey = "SEMANTIC_SCHOLAR_API_KEY"

	// KeyFile is the file name of the API key inside the secrets directory.
	KeyFile = "semantic-scholar-api-key"
)

// ErrNoAPIKey is returned when neither the environment nor the secrets
// directory provides an API key.
var ErrNoAPIKey = errors.New("no Semantic Scholar API key")

// APIKey returns envValue when it is non-blank, else the contents of
// KeyFile in dir. It fails with ErrNoAPIKey when both are missing.
func APIKey(envValue, dir string) (string, error) {
	if v := strings.TrimSpace(envValue); v != "" {
		return v, nil
	}
	s, err := Load(dir)
	if err != nil {
		return "", err
	}
	if v, ok := s[KeyFile]; ok {
		return v, nil
	}
	return "", fmt.Errorf("%w: set %s or create %s",
		ErrNoAPIKey, EnvAPIKey, filepath.Join(dir, KeyFile))
}

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files are logged as warnings and skipped.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			log.Warn("could not read secret", "name", name, "err", err)
			continue
		}

		if value := strings.TrimSpace(string(data)); value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}
