package astrora

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// BranchSingle returns one multi revolution solution per call.
	BranchSingle = "single"
	// BranchBoth would return both multi revolution branches at once, which is not supported.
	BranchBoth = "both"

	configEnvPrefix = "ASTRORA"
	configPathEnv   = "ASTRORA_CONFIG"
)

// Config is the solver configuration.
type Config struct {
	Workers int            // parallel batch workers, 0 is runtime.NumCPU()
	Update  MultiRevUpdate // multi revolution update rule
	Branch  string         // multi revolution branch policy
}

// DefaultConfig returns the default solver configuration.
func DefaultConfig() Config {
	return Config{Workers: 0, Update: NewtonUpdate, Branch: BranchSingle}
}

// Validate returns an error if this configuration cannot be used.
func (c Config) Validate() error {
	if c.Workers < 0 {
		return invalidParameter("workers", float64(c.Workers), "must be >= 0")
	}
	if c.Update != NewtonUpdate && c.Update != HouseholderUpdate {
		return fmt.Errorf("%w: unknown multi-revolution update %s", ErrInvalidParameter, c.Update)
	}
	switch c.Branch {
	case BranchSingle:
	case BranchBoth:
		return notImplemented("returning both multi-revolution branches")
	default:
		return fmt.Errorf("%w: unknown multi-revolution branch %q", ErrInvalidParameter, c.Branch)
	}
	return nil
}

// LoadConfig reads the [lambert] section of the provided TOML file. If path is empty, conf.toml
// is searched for in the directory named by $ASTRORA_CONFIG; if that is unset the defaults are returned.
// Environment variables such as ASTRORA_LAMBERT_WORKERS override the file.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(configEnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if path == "" {
		if dir := os.Getenv(configPathEnv); dir != "" {
			path = filepath.Join(dir, "conf.toml")
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading %s: %w", path, err)
		}
	}
	return ConfigFromViper(v)
}

// ConfigFromViper builds the configuration from the lambert.* keys of v, which may be a
// sub tree of a larger file such as a porkchop scenario.
func ConfigFromViper(v *viper.Viper) (Config, error) {
	def := DefaultConfig()
	v.SetDefault("lambert.workers", def.Workers)
	v.SetDefault("lambert.update", def.Update.String())
	v.SetDefault("lambert.branch", def.Branch)

	update, err := ParseMultiRevUpdate(v.GetString("lambert.update"))
	if err != nil {
		return Config{}, err
	}
	cfg := Config{
		Workers: v.GetInt("lambert.workers"),
		Update:  update,
		Branch:  strings.ToLower(strings.TrimSpace(v.GetString("lambert.branch"))),
	}
	return cfg, cfg.Validate()
}
