// Package postproc turns scan results into output records.
//
// A post-processor is one of a closed set of [Kind] values. Each declares the
// scan it needs and fills its own field of an [output.Record]. Processors are
// always applied in [All] order so records are deterministic.
package postproc

import (
	"github.com/matzehuels/autorider/pkg/output"
	"github.com/matzehuels/autorider/pkg/scan"
)

// Kind identifies a post-processor.
type Kind int

const (
	// BuildSystems copies PEP 517 build requirements from the source scan.
	BuildSystems Kind = iota
	// WheelDepends reports the sonames a prebuilt wheel needs at runtime.
	WheelDepends
	// SdistDepends reports the sonames a from-source build links against.
	SdistDepends
	// BuildRequires copies native build tools from the source scan.
	BuildRequires
)

// All lists every post-processor in application order.
var All = []Kind{BuildSystems, WheelDepends, SdistDepends, BuildRequires}

// String returns the configuration key of the post-processor.
func (k Kind) String() string {
	switch k {
	case BuildSystems:
		return "build-systems"
	case WheelDepends:
		return "wheel-depends-so"
	case SdistDepends:
		return "sdist-depends-so"
	case BuildRequires:
		return "build-requires"
	default:
		return "unknown"
	}
}

// Needs returns the scan the post-processor reads from.
func (k Kind) Needs() scan.Kind {
	switch k {
	case BuildSystems, BuildRequires:
		return scan.KindSource
	case WheelDepends, SdistDepends:
		return scan.KindBinary
	default:
		return scan.KindNone
	}
}

// Apply fills the post-processor's field of rec from res. A missing scan
// outcome or an empty result leaves rec untouched.
func (k Kind) Apply(res *scan.Result, rec *output.Record) {
	switch k {
	case BuildSystems:
		if res.Source != nil && len(res.Source.BuildSystems) > 0 {
			rec.BuildSystems = append([]string(nil), res.Source.BuildSystems...)
		}
	case BuildRequires:
		if res.Source != nil && len(res.Source.BuildRequires) > 0 {
			rec.BuildRequires = append([]string(nil), res.Source.BuildRequires...)
		}
	case WheelDepends:
		if res.Binary != nil {
			rec.WheelDepends = wheelDepends(res.Binary)
		}
	case SdistDepends:
		if res.Binary != nil {
			rec.SdistDepends = sdistDepends(res.Binary)
		}
	}
}

// Needed returns the union of scans required by kinds.
func Needed(kinds []Kind) scan.Kind {
	needed := scan.KindNone
	for _, k := range kinds {
		needed |= k.Needs()
	}
	return needed
}

// Run applies kinds to res in [All] order regardless of their order in kinds.
func Run(kinds []Kind, res *scan.Result, rec *output.Record) {
	enabled := make(map[Kind]bool, len(kinds))
	for _, k := range kinds {
		enabled[k] = true
	}
	for _, k := range All {
		if enabled[k] {
			k.Apply(res, rec)
		}
	}
}
