package tsproject

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tailscale/hujson"
)

// tsConfig is the part of tsconfig.json used for module resolution.
type tsConfig struct {
	CompilerOptions struct {
		BaseURL string              `json:"baseUrl"`
		Paths   map[string][]string `json:"paths"`
	} `json:"compilerOptions"`
}

// readTSConfig reads baseUrl and paths from a tsconfig file. Comments and
// trailing commas are allowed; "extends" is not followed.
func readTSConfig(path string) (tsConfig, error) {
	var cfg tsConfig

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	data, err = hujson.Standardize(data)
	if err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cfg, nil
}
