// Package pkg provides the libraries behind autorider.
//
// # Overview
//
// autorider derives the Nix inputs a Python project needs from its lockfile:
// the shared libraries each wheel links against, the build systems each
// sdist declares, and the nixpkgs attribute providing each library.
//
// # Architecture
//
//	uv.lock
//	   ↓
//	[lockfile/uv] packages, archives fetched through [fetch]
//	   ↓
//	[scan] DT_NEEDED sonames and PEP 517 requirements, via [archive] and [pep517]
//	   ↓
//	[postproc] per-package records, selected by [config]
//	   ↓
//	[process] concurrent scanning and aggregation by name
//	   ↓
//	[provider] soname to attribute lookup via nix-locate
//	   ↓
//	[output] packages.json and so-providers.json, drawn by [render]
//
// Lookups and fetched store paths are cached through [cache]. Progress and
// timings are reported through [observability] hooks.
package pkg
