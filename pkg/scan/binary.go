package scan

import (
	"bytes"
	"debug/elf"
	"io"
	"path"
	"strings"

	"github.com/matzehuels/autorider/pkg/archive"
	"github.com/matzehuels/autorider/pkg/errors"
)

// IsSharedObject selects members named like shared objects, either plain
// (foo.so) or versioned (libfoo.so.1.2).
func IsSharedObject(name string) bool {
	return strings.HasSuffix(name, ".so") || strings.Contains(name, ".so.")
}

// Binary scans the archive at archivePath for shared objects and their needs.
func Binary(archivePath string) (*BinaryOutcome, error) {
	r, err := archive.Open(archivePath)
	if err != nil {
		return nil, err
	}
	out := NewBinaryOutcome()
	if err := r.Walk(IsSharedObject, out.visit); err != nil {
		return nil, err
	}
	return out, nil
}

func (o *BinaryOutcome) visit(name string, body io.Reader) error {
	o.Provides.Add(path.Base(name))

	needed, err := Needed(body)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidBinary, err, "parse shared object %q", name)
	}
	for _, n := range needed {
		o.Depends.Add(n)
	}
	return nil
}

// Needed parses body as an ELF file and returns its DT_NEEDED entries.
func Needed(body io.Reader) ([]string, error) {
	ra, ok := body.(io.ReaderAt)
	if !ok {
		data, err := io.ReadAll(body)
		if err != nil {
			return nil, err
		}
		ra = bytes.NewReader(data)
	}

	f, err := elf.NewFile(ra)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return f.ImportedLibraries()
}
