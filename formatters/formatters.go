// Package formatters resolves the compatibility setting once and builds the
// JSON and XML formatters that serve problem documents.
package formatters

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/reoring/goproblem/jsonformat"
	"github.com/reoring/goproblem/wrapper"
	"github.com/reoring/goproblem/xmlformat"
)

// Set holds the formatters selected by a Config.
type Set struct {
	Config   Config
	JSON     *jsonformat.Formatter
	XML      *xmlformat.Formatter
	Registry *wrapper.Registry
}

// New validates cfg and builds the formatter set.
func New(cfg Config, log *zap.Logger) (*Set, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	allow := cfg.AllowRFC7807()
	registry := xmlformat.RegistryFor(allow)
	mode := jsonformat.ModeFor(allow)

	log.Info("Problem details formatters configured",
		zap.String("compatibility-version", cfg.CompatibilityVersion),
		zap.Stringer("json-mode", mode),
		zap.String("xml-registry", registry.Name()),
	)

	return &Set{
		Config: cfg,
		JSON: jsonformat.NewFormatter(mode,
			jsonformat.WithIndent(cfg.Indent),
			jsonformat.WithLogger(log.Named("json")),
		),
		XML: xmlformat.NewFormatter(registry,
			xmlformat.WithIndent(cfg.XMLIndent),
			xmlformat.WithLogger(log.Named("xml")),
		),
		Registry: registry,
	}, nil
}

// Module provides Config from *viper.Viper and *Set from Config and
// *zap.Logger.
func Module() fx.Option {
	return fx.Module("problem-details",
		fx.Provide(
			LoadConfig,
			New,
		),
	)
}
