// Package pep517 reads the build-system table of pyproject.toml manifests.
package pep517

import (
	"io"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/autorider/pkg/errors"
)

// Fallback is the build system pip assumes when a project declares none.
// See https://pip.pypa.io/en/stable/reference/build-system/pyproject-toml/#fallback-behaviour
var Fallback = []string{"setuptools"}

// FallbackSystems returns a fresh copy of [Fallback].
func FallbackSystems() []string {
	return append([]string(nil), Fallback...)
}

// BuildSystems extracts build-system.requires from a decoded manifest.
// A missing table or key, or an empty list, yields the fallback; a key of the
// wrong type is an INVALID_MANIFEST error.
func BuildSystems(doc map[string]any) ([]string, error) {
	table, ok := doc["build-system"]
	if !ok {
		return FallbackSystems(), nil
	}
	buildSystem, ok := table.(map[string]any)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidManifest, "PEP-517 build-system is not a table")
	}

	requires, ok := buildSystem["requires"]
	if !ok {
		return FallbackSystems(), nil
	}

	items, ok := requires.([]any)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidManifest, "PEP-517 build-system.requires not defined as a list of strings")
	}
	systems := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidManifest, "PEP-517 build-system.requires not defined as a list of strings")
		}
		systems = append(systems, s)
	}
	if len(systems) == 0 {
		return FallbackSystems(), nil
	}
	return systems, nil
}

// Read decodes a pyproject.toml stream and returns its build systems.
func Read(r io.Reader) ([]string, error) {
	var doc map[string]any
	if _, err := toml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "parse pyproject.toml")
	}
	return BuildSystems(doc)
}
