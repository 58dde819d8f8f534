// Package version exposes the engine's build identity.
package version

// Version is the fixed build identifier. External integrations display it
// verbatim; bump it together with release tags.
const Version = "MedChainDb v1.0.0"

// Get returns the build identifier. Never fails.
func Get() string {
	return Version
}
