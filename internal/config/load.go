package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a YAML config file at path (if it exists) and merges it onto
// Default(). A missing file is not an error -- the defaults stand alone,
// the same tolerant behavior as the teacher's per-vault config loaders.
func Load(path string) (Config, error) {
	base := Default()
	if path == "" {
		return base, nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return base, nil
		}
		return base, err
	}
	var override Config
	if err := yaml.Unmarshal(content, &override); err != nil {
		return base, err
	}
	return base.Merge(override), nil
}
