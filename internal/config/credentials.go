package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/Iron-Ham/superchat/internal/errors"
)

// APIKeyEnv is the environment variable holding the OpenRouter key.
const APIKeyEnv = "OPENROUTER_API_KEY"

// KeySource describes where an API key was found.
type KeySource struct {
	Key  string
	Path string // empty when the key came from the process environment
}

// KeyFiles returns the dotenv-format files searched for the API key, in order.
func KeyFiles() []string {
	files := []string{".env"}
	if home, err := os.UserHomeDir(); err == nil {
		files = append(files, filepath.Join(home, ".env"))
	}
	return append(files, filepath.Join(StateDir(), "config"))
}

// LoadAPIKey locates the OpenRouter API key. The process environment wins;
// otherwise each of KeyFiles is parsed and the first non-empty value is used.
// Unreadable or malformed files are skipped.
func LoadAPIKey() (KeySource, error) {
	return lookupAPIKey(KeyFiles())
}

func lookupAPIKey(files []string) (KeySource, error) {
	if key := strings.TrimSpace(os.Getenv(APIKeyEnv)); key != "" {
		return KeySource{Key: key}, nil
	}

	for _, path := range files {
		values, err := godotenv.Read(path)
		if err != nil {
			continue
		}
		if key := strings.TrimSpace(values[APIKeyEnv]); key != "" {
			return KeySource{Key: key, Path: path}, nil
		}
	}

	return KeySource{}, fmt.Errorf("%w: export it, or add %s=<key> to one of: %s",
		errors.ErrMissingAPIKey, APIKeyEnv, strings.Join(files, ", "))
}

// SaveAPIKey writes the key to ~/.superchat/config with owner-only permissions.
func SaveAPIKey(key string) (string, error) {
	dir := StateDir()
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}
	path := filepath.Join(dir, "config")
	if err := godotenv.Write(map[string]string{APIKeyEnv: key}, path); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Chmod(path, 0600); err != nil {
		return "", fmt.Errorf("failed to restrict %s: %w", path, err)
	}
	return path, nil
}
