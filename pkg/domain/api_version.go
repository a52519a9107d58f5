package domain

import (
	"fmt"
)

// APIVersion represents a valid API version string.
// This is a domain primitive that enforces validity at parse time.
type APIVersion string

// Supported API versions.
const (
	APIVersionV1 APIVersion = "v1"
)

// versionOrder defines the ordering of versions for comparison.
// Higher numbers represent newer versions.
var versionOrder = map[APIVersion]int{
	APIVersionV1: 1,
}

// ParseAPIVersion validates and returns an APIVersion.
// Returns an error if the version is unknown.
func ParseAPIVersion(s string) (APIVersion, error) {
	v := APIVersion(s)
	if _, ok := versionOrder[v]; !ok {
		return "", fmt.Errorf("unknown API version: %s", s)
	}
	return v, nil
}

// String returns the string representation of the API version.
func (v APIVersion) String() string {
	return string(v)
}

// PathPrefix returns the URL prefix clients address this version under.
func (v APIVersion) PathPrefix() string {
	return "/api/" + string(v)
}

// DefaultVersion returns the API version new URLs are generated for.
func DefaultVersion() APIVersion {
	return APIVersionV1
}
