package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/c360/semunits/errors"
)

const (
	// Security limits for configuration files
	maxConfigSize = 10 << 20 // 10MB max config file size
	maxPathLen    = 4096     // Maximum file path length
)

// configType returns the viper config type for path, rejecting formats
// other than JSON and YAML.
func configType(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json", nil
	case ".yaml", ".yml":
		return "yaml", nil
	default:
		return "", fmt.Errorf("only JSON or YAML config files allowed: %s", path)
	}
}

// validateConfigPath does basic path validation
func validateConfigPath(path string) error {
	if path == "" {
		return fmt.Errorf("empty config path")
	}
	if len(path) > maxPathLen {
		return fmt.Errorf("path too long: %d > %d", len(path), maxPathLen)
	}
	if strings.Contains(filepath.ToSlash(path), "../") || strings.HasSuffix(path, "..") {
		return fmt.Errorf("path traversal not allowed: %s", path)
	}
	_, err := configType(path)
	return err
}

// safeReadFile reads a config file with security validation
func safeReadFile(path string) ([]byte, error) {
	if err := validateConfigPath(path); err != nil {
		return nil, errors.WrapInvalid(err, "Config", "Load", "path validation")
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.WrapInvalid(err, "Config", "Load", "stat config file")
	}
	if !info.Mode().IsRegular() {
		return nil, errors.WrapInvalid(fmt.Errorf("not a regular file: %s", path), "Config", "Load", "stat config file")
	}
	if info.Size() > maxConfigSize {
		return nil, errors.WrapInvalid(fmt.Errorf("config file too large: %d bytes > %d", info.Size(), maxConfigSize),
			"Config", "Load", "size check")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapTransient(err, "Config", "Load", "read config file")
	}
	return data, nil
}
