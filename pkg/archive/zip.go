package archive

import (
	"github.com/klauspost/compress/zip"

	"github.com/matzehuels/autorider/pkg/errors"
)

// ZipReader reads zip containers such as wheels.
type ZipReader struct {
	path string
}

// Path returns the archive path.
func (r *ZipReader) Path() string { return r.path }

// Walk visits selected members in central directory order. Directory
// entries are never offered to pred.
func (r *ZipReader) Walk(pred Predicate, visit Visitor) error {
	zr, err := zip.OpenReader(r.path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "open zip %s", r.path)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		name := memberName(f.Name)
		if !pred(name) {
			continue
		}
		if err := r.visitFile(f, name, visit); err != nil {
			return err
		}
	}
	return nil
}

func (r *ZipReader) visitFile(f *zip.File, name string, visit Visitor) error {
	body, err := f.Open()
	if err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "open zip member %q in %s", name, r.path)
	}
	defer body.Close()
	return visit(name, body)
}
