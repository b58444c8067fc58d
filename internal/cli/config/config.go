package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config represents the ngscan configuration
type Config struct {
	Project  ProjectConfig  `mapstructure:"project"`
	Output   OutputConfig   `mapstructure:"output"`
	Angular  AngularConfig  `mapstructure:"angular"`
	Resolver ResolverConfig `mapstructure:"resolver"`
	Walker   WalkerConfig   `mapstructure:"walker"`
	Watch    WatchConfig    `mapstructure:"watch"`
	Log      LogConfig      `mapstructure:"log"`
}

// ProjectConfig locates the TypeScript sources
type ProjectConfig struct {
	Root     string `mapstructure:"root"`
	TSConfig string `mapstructure:"tsconfig"`
	BaseURL  string `mapstructure:"base_url"`
	// Paths overrides the tsconfig path aliases when set.
	Paths map[string][]string `mapstructure:"paths"`
}

// OutputConfig controls where and how definitions are written
type OutputConfig struct {
	Path     string `mapstructure:"path"`
	Format   string `mapstructure:"format"`
	Compress bool   `mapstructure:"compress"`
}

// AngularConfig names the decorators and reactive constructors recognized
type AngularConfig struct {
	ComponentAttribute string   `mapstructure:"component_attribute"`
	ModuleAttribute    string   `mapstructure:"module_attribute"`
	InputAttribute     string   `mapstructure:"input_attribute"`
	OutputAttribute    string   `mapstructure:"output_attribute"`
	InputConstructors  []string `mapstructure:"input_constructors"`
	OutputConstructors []string `mapstructure:"output_constructors"`
}

// ResolverConfig configures type resolution
type ResolverConfig struct {
	Wrappers []string `mapstructure:"wrappers"`
}

// WalkerConfig configures the module graph walk
type WalkerConfig struct {
	CycleGuard bool   `mapstructure:"cycle_guard"`
	Merge      string `mapstructure:"merge"`
}

// WatchConfig configures watch mode
type WatchConfig struct {
	Patterns []string `mapstructure:"patterns"`
	Ignore   []string `mapstructure:"ignore"`
	DelayMS  int      `mapstructure:"delay_ms"`
}

// LogConfig configures logging
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads the config file at path, or the nearest ngscan.yml or
// ngscan.yaml found by FindConfigFile when path is empty. Environment
// variables prefixed with NGSCAN_ override file values, e.g.
// NGSCAN_OUTPUT_FORMAT for output.format.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("project.root", ".")
	v.SetDefault("project.tsconfig", "tsconfig.json")
	v.SetDefault("project.base_url", "")
	v.SetDefault("output.path", "module-inputs.json")
	v.SetDefault("output.format", "json")
	v.SetDefault("output.compress", false)
	v.SetDefault("angular.component_attribute", "Component")
	v.SetDefault("angular.module_attribute", "NgModule")
	v.SetDefault("angular.input_attribute", "Input")
	v.SetDefault("angular.output_attribute", "Output")
	v.SetDefault("angular.input_constructors", []string{"signal", "input", "input.required", "model", "model.required"})
	v.SetDefault("angular.output_constructors", []string{"output"})
	v.SetDefault("resolver.wrappers", []string{"Signal", "EventEmitter", "InputSignal", "WritableSignal", "ModelSignal", "OutputEmitterRef"})
	v.SetDefault("walker.cycle_guard", true)
	v.SetDefault("walker.merge", "concat")
	v.SetDefault("watch.patterns", []string{"*.ts"})
	v.SetDefault("watch.ignore", []string{"*.spec.ts"})
	v.SetDefault("watch.delay_ms", 100)
	v.SetDefault("log.level", "info")

	if path == "" {
		found, err := FindConfigFile()
		if err != nil {
			return nil, fmt.Errorf("failed to look up config file: %w", err)
		}
		path = found
	}

	v.SetEnvPrefix("NGSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Without a config file the defaults and environment apply.
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// FindConfigFile walks up from the working directory looking for an ngscan
// config file. It returns "" when there is none.
func FindConfigFile() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		for _, name := range []string{"ngscan.yml", "ngscan.yaml"} {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	switch strings.ToLower(cfg.Output.Format) {
	case "json", "yaml", "yml":
	default:
		return fmt.Errorf("output.format must be json or yaml, got: %s", cfg.Output.Format)
	}

	switch cfg.Walker.Merge {
	case "concat", "name":
	default:
		return fmt.Errorf("walker.merge must be concat or name, got: %s", cfg.Walker.Merge)
	}

	if _, err := parseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}

	attrs := map[string]string{
		"angular.component_attribute": cfg.Angular.ComponentAttribute,
		"angular.module_attribute":    cfg.Angular.ModuleAttribute,
		"angular.input_attribute":     cfg.Angular.InputAttribute,
		"angular.output_attribute":    cfg.Angular.OutputAttribute,
	}
	for key, value := range attrs {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%s must not be empty", key)
		}
		if strings.HasPrefix(value, "@") {
			return fmt.Errorf("%s must be a bare decorator name without '@', got: %s", key, value)
		}
	}

	if cfg.Watch.DelayMS < 0 {
		return fmt.Errorf("watch.delay_ms must not be negative, got: %d", cfg.Watch.DelayMS)
	}
	return nil
}

func parseLevel(level string) (zapcore.Level, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return lvl, err
	}
	return lvl, nil
}

// NewLogger builds the logger used by commands. Debug level or verbose runs
// get the development encoder; everything else logs compact console lines.
// Both write to stderr so that stdout stays free for documents.
func NewLogger(cfg LogConfig, verbose bool) (*zap.Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	if verbose {
		level = zapcore.DebugLevel
	}

	var zc zap.Config
	if level == zapcore.DebugLevel {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
		zc.Encoding = "console"
		zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		zc.Sampling = nil
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	return zc.Build()
}
