// Package archive streams members out of wheels, sdists and source trees.
//
// A [Reader] visits every member whose name satisfies a [Predicate] and hands
// the member's contents to a [Visitor] as a stream. Unselected members are
// skipped without being read into memory.
//
// Three readers share the contract:
//   - zip containers (.zip, .whl)
//   - tar containers (.tar, .tar.gz, .tgz, .tar.bz2, .tar.xz, .tar.zst),
//     with compression detected from the stream's magic bytes
//   - plain directories, where member names are relative to the directory's
//     parent so that a checkout looks like an unpacked sdist
//
// Use [Open] to pick the reader for a path:
//
//	r, err := archive.Open("/nix/store/...-attrs-23.1.0.tar.gz")
//	if err != nil {
//	    return err
//	}
//	err = r.Walk(func(name string) bool {
//	    return path.Base(name) == "pyproject.toml"
//	}, func(name string, body io.Reader) error {
//	    // ...
//	    return nil
//	})
package archive
