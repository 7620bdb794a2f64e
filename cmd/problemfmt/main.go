// Package main provides the problemfmt CLI for converting problem details
// documents between JSON, XML and YAML.
//
// Usage:
//
//	problemfmt convert --from json --to xml --compat 2.1 problem.json
//	problemfmt registry --compat latest
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/reoring/goproblem/formatters"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type globalOptions struct {
	configFile string
	compat     string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:           "problemfmt",
		Short:         "Convert RFC 7807 problem details documents",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "Config file with a problem-details section")
	rootCmd.PersistentFlags().StringVar(&opts.compat, "compat", "", "Compatibility version: 2.1, 2.2 or latest (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(newConvertCmd(opts), newRegistryCmd(opts))

	return rootCmd
}

func newLogger(opts *globalOptions) (*zap.Logger, error) {
	if !opts.verbose {
		return zap.NewNop(), nil
	}
	return zap.NewDevelopment()
}

// loadConfig reads the optional config file, then applies flag overrides.
func loadConfig(opts *globalOptions) (formatters.Config, error) {
	v := viper.New()
	if opts.configFile != "" {
		v.SetConfigFile(opts.configFile)
		if err := v.ReadInConfig(); err != nil {
			return formatters.Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	}
	cfg, err := formatters.LoadConfig(v)
	if err != nil {
		return cfg, err
	}
	if opts.compat != "" {
		cfg.CompatibilityVersion = opts.compat
	}
	return cfg, nil
}

func buildSet(opts *globalOptions, indent bool) (*formatters.Set, *zap.Logger, error) {
	log, err := newLogger(opts)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, log, err
	}
	if indent {
		cfg.Indent = true
		if cfg.XMLIndent == "" {
			cfg.XMLIndent = "  "
		}
	}
	set, err := formatters.New(cfg, log)
	if err != nil {
		return nil, log, err
	}
	return set, log, nil
}
