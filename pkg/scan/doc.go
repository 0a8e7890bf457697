// Package scan extracts linkage and build facts from package archives.
//
// [Binary] scans a wheel: every shared object inside it is recorded as
// provided, and every DT_NEEDED entry of its dynamic section as depended
// upon. [Source] scans an sdist or source tree for the PEP 517 build-system
// requirements in its top-level pyproject.toml, plus build-tool hints derived
// from top-level build files such as CMakeLists.txt.
//
// Both scanners trust the archive member names: a member named like a shared
// object that is not an ELF file fails the whole scan.
package scan
