package xmlformat

import "github.com/reoring/goproblem/wrapper"

var (
	current = wrapper.NewRegistry("rfc7807",
		wrapper.NewFactory(NewProblemWrapper),
		wrapper.NewFactory(NewValidationProblemWrapper),
	)
	legacy = wrapper.NewRegistry("legacy",
		wrapper.NewFactory(NewLegacyProblemWrapper),
		wrapper.NewFactory(NewLegacyValidationProblemWrapper),
	)
)

// CurrentRegistry maps *goproblem.Problem and *goproblem.ValidationProblem to
// the RFC 7807 wrappers.
func CurrentRegistry() *wrapper.Registry { return current }

// LegacyRegistry maps the same declared types to the 2.1 wrappers.
func LegacyRegistry() *wrapper.Registry { return legacy }

// RegistryFor selects the registry for a compatibility setting.
func RegistryFor(allowRFC7807 bool) *wrapper.Registry {
	if allowRFC7807 {
		return current
	}
	return legacy
}
