package formatters

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Compatibility versions understood by Config.
const (
	Version21     = "2.1"
	Version22     = "2.2"
	VersionLatest = "latest"
)

const configKey = "problem-details"

// Config selects the problem-details output shape and layout. It is read from
// the problem-details section of the application configuration.
type Config struct {
	CompatibilityVersion string `mapstructure:"compatibility-version" validate:"required,oneof=2.1 2.2 latest"`
	Indent               bool   `mapstructure:"indent"`
	XMLIndent            string `mapstructure:"xml-indent"`
}

// DefaultConfig targets the latest wire shapes with compact output.
func DefaultConfig() Config {
	return Config{CompatibilityVersion: VersionLatest}
}

// AllowRFC7807 reports whether the RFC 7807 shapes are served. Only 2.1 keeps
// the older ones.
func (c Config) AllowRFC7807() bool { return c.CompatibilityVersion != Version21 }

// Validate checks the struct tags.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid problem details config: %w", err)
	}
	return nil
}

// LoadConfig reads the problem-details section of v. A missing section yields
// DefaultConfig.
func LoadConfig(v *viper.Viper) (Config, error) {
	cfg := DefaultConfig()
	if sub := v.Sub(configKey); sub != nil {
		if err := sub.UnmarshalExact(&cfg); err != nil {
			return cfg, fmt.Errorf("failed to load problem details config: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
