package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/notargets/DGMaterials/materials"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes the environment variables overriding configuration
// keys, e.g. MATFRONT_FRONT_STEPS for front.steps
const EnvPrefix = "MATFRONT"

// Config stores the configuration of the material front driver.
// The values are read by viper from a config file or environment variables.
type Config struct {
	Mesh         MeshConfig          `mapstructure:"mesh"`
	Environments []EnvironmentConfig `mapstructure:"environments"`
	Index        IndexConfig         `mapstructure:"index"`
	Front        FrontConfig         `mapstructure:"front"`
	Logging      LoggingConfig       `mapstructure:"logging"`
	Device       DeviceConfig        `mapstructure:"device"`
}

// MeshConfig selects the mesh. A file wins over the synthetic line mesh.
type MeshConfig struct {
	File  string  `mapstructure:"file"`
	Cells int     `mapstructure:"cells"`
	XMin  float64 `mapstructure:"xmin"`
	XMax  float64 `mapstructure:"xmax"`
}

// EnvironmentConfig declares one environment and its materials
type EnvironmentConfig struct {
	Name      string   `mapstructure:"name"`
	Materials []string `mapstructure:"materials"`
}

// IndexConfig tunes the component index manager
type IndexConfig struct {
	SortOnCompact   bool `mapstructure:"sortOnCompact"`
	CompactInterval int  `mapstructure:"compactInterval"` // Steps between compactions, 0 disables
	Workers         int  `mapstructure:"workers"`
}

// FrontConfig describes the sweeping material front
type FrontConfig struct {
	Ahead  string  `mapstructure:"ahead"`  // Material ahead of the front
	Behind string  `mapstructure:"behind"` // Material behind the front
	Steps  int     `mapstructure:"steps"`
	Speed  float64 `mapstructure:"speed"` // Distance travelled per step
	Width  float64 `mapstructure:"width"` // Thickness of the mixed band
	Start  float64 `mapstructure:"start"`
	Output string  `mapstructure:"output"` // CSV summary, empty disables
}

// LoggingConfig sets the log level and format
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// DeviceConfig enables mirroring packed arrays to an OCCA device
type DeviceConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Properties string `mapstructure:"properties"` // OCCA device JSON, empty tries OpenMP, CUDA then Serial
}

// DefaultEnvironments is used when the configuration declares none
var DefaultEnvironments = []EnvironmentConfig{
	{Name: "reactants", Materials: []string{"fresh"}},
	{Name: "products", Materials: []string{"burnt"}},
}

// Load reads configuration from configPath, or from matfront.yaml in the
// working directory when configPath is empty, then applies environment
// overrides. A missing default file is not an error.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("matfront")
		v.SetConfigType("yaml")
	}
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	if len(cfg.Environments) == 0 {
		cfg.Environments = DefaultEnvironments
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mesh.file", "")
	v.SetDefault("mesh.cells", 200)
	v.SetDefault("mesh.xmin", 0.0)
	v.SetDefault("mesh.xmax", 1.0)
	v.SetDefault("index.sortOnCompact", true)
	v.SetDefault("index.compactInterval", 10)
	v.SetDefault("index.workers", 4)
	v.SetDefault("front.ahead", "fresh")
	v.SetDefault("front.behind", "burnt")
	v.SetDefault("front.steps", 50)
	v.SetDefault("front.speed", 0.02)
	v.SetDefault("front.width", 0.05)
	v.SetDefault("front.start", 0.0)
	v.SetDefault("front.output", "")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.pretty", false)
	v.SetDefault("device.enabled", false)
	v.SetDefault("device.properties", "")
}

// Validate checks the values the driver cannot run without
func (c *Config) Validate() error {
	if c.Mesh.File == "" && c.Mesh.Cells <= 0 {
		return fmt.Errorf("mesh.cells must be positive without mesh.file, got %d", c.Mesh.Cells)
	}
	if c.Front.Steps < 0 {
		return fmt.Errorf("front.steps must not be negative, got %d", c.Front.Steps)
	}
	if c.Front.Width < 0 {
		return fmt.Errorf("front.width must not be negative, got %g", c.Front.Width)
	}
	if c.Front.Ahead == c.Front.Behind {
		return fmt.Errorf("front.ahead and front.behind must differ, both are %q", c.Front.Ahead)
	}
	declared := make(map[string]bool)
	for _, env := range c.Environments {
		for _, mat := range env.Materials {
			declared[mat] = true
		}
	}
	for _, mat := range []string{c.Front.Ahead, c.Front.Behind} {
		if !declared[mat] {
			return fmt.Errorf("front material %q is not declared in any environment", mat)
		}
	}
	return nil
}

// MaterialsConfig converts the declared environments for the index manager
func (c *Config) MaterialsConfig() materials.Config {
	var mc materials.Config
	for _, env := range c.Environments {
		mc.Environments = append(mc.Environments, materials.EnvironmentConfig{
			Name:      env.Name,
			Materials: append([]string(nil), env.Materials...),
		})
	}
	return mc
}

// ManagerOptions converts the index settings into manager options
func (c *Config) ManagerOptions() []materials.Option {
	return []materials.Option{
		materials.WithSortOnCompact(c.Index.SortOnCompact),
		materials.WithWorkers(c.Index.Workers),
	}
}
