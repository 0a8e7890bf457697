package archive

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/autorider/pkg/errors"
)

// Predicate selects archive members by name.
type Predicate func(name string) bool

// Visitor receives a selected member. The reader is only valid for the
// duration of the call.
type Visitor func(name string, body io.Reader) error

// Reader walks the members of an archive.
type Reader interface {
	// Walk opens the archive once and calls visit for every member accepted
	// by pred, in archive order. The first error returned by visit aborts
	// the walk and is returned unchanged.
	Walk(pred Predicate, visit Visitor) error

	// Path returns the filesystem path the reader was opened for.
	Path() string
}

// Open returns the reader matching path. Zip and tar containers are chosen
// by file name; anything else must be a directory.
func Open(path string) (Reader, error) {
	name := filepath.Base(path)
	switch {
	case strings.HasSuffix(name, ".zip"), strings.HasSuffix(name, ".whl"):
		return &ZipReader{path: path}, nil
	case strings.Contains(name, ".tar"), strings.HasSuffix(name, ".tgz"):
		return &TarReader{path: path}, nil
	}

	info, err := os.Stat(path)
	if err == nil && info.IsDir() {
		return &DirReader{path: path}, nil
	}
	return nil, errors.New(errors.ErrCodeUnsupportedArchive, "could not instantiate reader for %q", path)
}

// memberName normalises a member path to forward slashes without a leading "./".
func memberName(name string) string {
	return strings.TrimPrefix(filepath.ToSlash(name), "./")
}
