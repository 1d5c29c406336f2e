package cloudshift

import (
	"fmt"
	"strings"
)

// CloudProviders maps supported provider codes to display names.
var CloudProviders = map[string]string{
	"aws":   "Amazon Web Services",
	"azure": "Microsoft Azure",
	"gcp":   "Google Cloud Platform",
}

// NormalizeProvider lowercases and trims a provider code.
func NormalizeProvider(p string) string {
	return strings.ToLower(strings.TrimSpace(p))
}

// IsSupportedProvider reports whether the code names a known cloud provider.
func IsSupportedProvider(p string) bool {
	_, ok := CloudProviders[NormalizeProvider(p)]
	return ok
}

// ProviderName returns the display name for a provider code, or the code
// itself when unknown.
func ProviderName(p string) string {
	if name, ok := CloudProviders[NormalizeProvider(p)]; ok {
		return name
	}
	return p
}

// CheckDirection validates a translation direction. Translation is not
// symmetric and a same-provider direction is a usage error.
func CheckDirection(sourceProvider, targetProvider string) error {
	src := NormalizeProvider(sourceProvider)
	dst := NormalizeProvider(targetProvider)

	if !IsSupportedProvider(src) {
		return fmt.Errorf("unsupported source provider %q", sourceProvider)
	}
	if !IsSupportedProvider(dst) {
		return fmt.Errorf("unsupported target provider %q", targetProvider)
	}
	if src == dst {
		return fmt.Errorf("source and target provider are both %q", src)
	}
	return nil
}
