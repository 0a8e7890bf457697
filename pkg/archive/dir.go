package archive

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/matzehuels/autorider/pkg/errors"
)

// DirReader walks a directory tree as if it were an unpacked archive.
// Member names are prefixed with the directory's own base name.
type DirReader struct {
	path string
}

// Path returns the directory path.
func (r *DirReader) Path() string { return r.path }

// Walk visits selected files in lexical order.
func (r *DirReader) Walk(pred Predicate, visit Visitor) error {
	root := filepath.Clean(r.path)
	base := filepath.Base(root)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.Wrap(errors.ErrCodeIO, err, "walk %s", path)
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return errors.Wrap(errors.ErrCodeIO, err, "walk %s", path)
		}
		name := memberName(filepath.Join(base, rel))
		if !pred(name) {
			return nil
		}
		return visitPath(path, name, visit)
	})
	return err
}

func visitPath(path, name string, visit Visitor) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "open %s", path)
	}
	defer f.Close()
	return visit(name, f)
}
