package postproc

import (
	"regexp"
	"strings"

	"github.com/matzehuels/autorider/pkg/scan"
)

// hashInfix matches sonames vendored by auditwheel, which inserts a hyphen
// and eight hex digits of the library hash before the .so suffix.
var hashInfix = regexp.MustCompile(`^(.+)-[0-9a-f]{8}(\.so.*)$`)

// NormalizeSoname strips auditwheel hash infixes:
// libfoo-deadbeef.so.1 becomes libfoo.so.1. Stacked infixes from repeated
// repairs are all removed, so the result is a fixed point. Other names are
// returned unchanged.
func NormalizeSoname(name string) string {
	for {
		next := hashInfix.ReplaceAllString(name, "${1}${2}")
		if next == name {
			return name
		}
		name = next
	}
}

// isLoader reports whether name is the dynamic loader itself.
func isLoader(name string) bool {
	return strings.HasPrefix(name, "ld-linux")
}

// ManylinuxLibs are the libraries a manylinux2014 wheel may assume are
// present on the host (PEP 599).
var ManylinuxLibs = scan.NewSet(
	"libgcc_s.so.1",
	"libstdc++.so.6",
	"libm.so.6",
	"libdl.so.2",
	"librt.so.1",
	"libc.so.6",
	"libnsl.so.1",
	"libutil.so.1",
	"libpthread.so.0",
	"libresolv.so.2",
	"libX11.so.6",
	"libXext.so.6",
	"libXrender.so.1",
	"libICE.so.6",
	"libSM.so.6",
	"libGL.so.1",
	"libgobject-2.0.so.0",
	"libgthread-2.0.so.0",
	"libglib-2.0.so.0",
)

// PlatformLibs are provided by the toolchain of every from-source build.
var PlatformLibs = scan.NewSet(
	"libm.so.6",
	"libgcc_s.so.1",
	"libc.so.6",
	"libpthread.so.0",
	"librt.so.1",
	"libstdc++.so.6",
)

func wheelDepends(b *scan.BinaryOutcome) []string {
	var out []string
	for _, so := range b.Depends.Sorted() {
		if isLoader(so) || b.Provides.Has(so) || ManylinuxLibs.Has(so) {
			continue
		}
		out = append(out, so)
	}
	return out
}

// sdistDepends keeps references to libraries the wheel vendors itself: a
// source build does not get the wheel's bundled copies.
func sdistDepends(b *scan.BinaryOutcome) []string {
	names := scan.Set{}
	for so := range b.Depends {
		if isLoader(so) {
			continue
		}
		so = NormalizeSoname(so)
		if PlatformLibs.Has(so) {
			continue
		}
		names.Add(so)
	}
	if len(names) == 0 {
		return nil
	}
	return names.Sorted()
}
