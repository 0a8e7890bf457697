// Package process runs the scan and post-processing stage over every package
// pinned by a lockfile.
//
// Each selected package is an independent unit of work: its enabled
// post-processors determine which scans run, each scan runs at most once,
// and the post-processors fill one [output.Record]. Units run on a bounded
// worker pool and the first failure aborts the run, since partial metadata
// would silently produce broken Nix derivations.
//
// After every unit completes, records are grouped by package name. A name
// seen once maps to its record with the version removed; a name seen at
// several versions maps to the list of its versioned records.
package process
