package scan

import (
	"sort"
	"strings"
)

// Kind identifies a scan. Kinds combine as a bit set.
type Kind uint8

const (
	// KindSource scans the source distribution.
	KindSource Kind = 1 << iota
	// KindBinary scans the selected binary distribution.
	KindBinary
)

// KindNone is the empty set of scans.
const KindNone Kind = 0

// Has reports whether every scan in other is part of k.
func (k Kind) Has(other Kind) bool {
	return other != KindNone && k&other == other
}

func (k Kind) String() string {
	var parts []string
	if k.Has(KindSource) {
		parts = append(parts, "source")
	}
	if k.Has(KindBinary) {
		parts = append(parts, "binary")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "+")
}

// Result pairs an artifact with the outcomes of the scans that ran.
// A nil outcome means the scan was not requested or had no archive.
type Result struct {
	Name   string
	Source *SourceOutcome
	Binary *BinaryOutcome
}

// SourceOutcome holds facts read from a source distribution.
type SourceOutcome struct {
	// BuildSystems lists PEP 508 build requirements; never empty.
	BuildSystems []string
	// BuildRequires lists native build tools hinted at by the source tree.
	BuildRequires []string
}

// BinaryOutcome holds the shared-library surface of a binary distribution.
type BinaryOutcome struct {
	// Provides holds the base names of shared objects shipped in the archive.
	Provides Set
	// Depends holds every DT_NEEDED entry found in those shared objects.
	Depends Set
}

// NewBinaryOutcome returns an outcome with empty sets.
func NewBinaryOutcome() *BinaryOutcome {
	return &BinaryOutcome{Provides: Set{}, Depends: Set{}}
}

// Set is an unordered set of names.
type Set map[string]struct{}

// NewSet returns a set holding names.
func NewSet(names ...string) Set {
	s := make(Set, len(names))
	for _, n := range names {
		s.Add(n)
	}
	return s
}

// Add inserts name.
func (s Set) Add(name string) { s[name] = struct{}{} }

// Has reports whether name is in s.
func (s Set) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Sorted returns the members of s in lexical order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
