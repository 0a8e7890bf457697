package scan

import (
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/matzehuels/autorider/pkg/archive"
	"github.com/matzehuels/autorider/pkg/pep517"
)

// ManifestName is the PEP 517 build manifest.
const ManifestName = "pyproject.toml"

// buildToolHints maps top-level build files to the native tools they need.
// Order is the order tools are reported in.
var buildToolHints = []struct {
	file  string
	tools []string
}{
	{"CMakeLists.txt", []string{"cmake"}},
	{"meson.build", []string{"meson", "ninja"}},
	{"Cargo.toml", []string{"cargo", "rustc"}},
	{"configure.ac", []string{"autoconf", "automake", "libtool"}},
}

func isHintFile(base string) bool {
	for _, h := range buildToolHints {
		if h.file == base {
			return true
		}
	}
	return false
}

// IsSourceMember selects files directly inside the archive's top-level
// directory that are either the build manifest or a build-tool hint.
func IsSourceMember(name string) bool {
	if strings.Count(name, "/") != 1 {
		return false
	}
	base := path.Base(name)
	return base == ManifestName || isHintFile(base)
}

// Source scans the sdist or source tree at archivePath.
func Source(archivePath string) (*SourceOutcome, error) {
	r, err := archive.Open(archivePath)
	if err != nil {
		return nil, err
	}

	out := &SourceOutcome{BuildSystems: pep517.FallbackSystems()}
	seen := map[string]bool{}
	err = r.Walk(IsSourceMember, func(name string, body io.Reader) error {
		base := path.Base(name)
		if base != ManifestName {
			seen[base] = true
			return nil
		}
		systems, err := pep517.Read(body)
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		out.BuildSystems = systems
		return nil
	})
	if err != nil {
		return nil, err
	}

	out.BuildRequires = buildTools(seen)
	return out, nil
}

func buildTools(seen map[string]bool) []string {
	var tools []string
	added := map[string]bool{}
	for _, h := range buildToolHints {
		if !seen[h.file] {
			continue
		}
		for _, tool := range h.tools {
			if !added[tool] {
				added[tool] = true
				tools = append(tools, tool)
			}
		}
	}
	return tools
}
