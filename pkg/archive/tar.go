package archive

import (
	"archive/tar"
	"bufio"
	"bytes"
	"compress/bzip2"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"

	"github.com/matzehuels/autorider/pkg/errors"
)

var (
	magicGzip  = []byte{0x1f, 0x8b}
	magicBzip2 = []byte("BZh")
	magicXz    = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}
	magicZstd  = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// TarReader reads tar containers, optionally compressed.
type TarReader struct {
	path string
}

// Path returns the archive path.
func (r *TarReader) Path() string { return r.path }

// Walk streams the tar and visits selected members in stream order.
// A selected member that is not a regular file fails the walk.
func (r *TarReader) Walk(pred Predicate, visit Visitor) error {
	f, err := os.Open(r.path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "open tar %s", r.path)
	}
	defer f.Close()

	stream, closeStream, err := decompress(bufio.NewReader(f))
	if err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "open tar %s", r.path)
	}
	defer closeStream()

	tr := tar.NewReader(stream)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrap(errors.ErrCodeIO, err, "read tar %s", r.path)
		}

		name := memberName(hdr.Name)
		if !pred(name) {
			continue
		}
		if !hdr.FileInfo().Mode().IsRegular() {
			return errors.New(errors.ErrCodeIO, "unable to open tar member %q in %s", name, r.path)
		}
		if err := visit(name, tr); err != nil {
			return err
		}
	}
}

// decompress sniffs the compression format and returns the plain tar stream.
func decompress(br *bufio.Reader) (io.Reader, func(), error) {
	head, err := br.Peek(len(magicXz))
	if err != nil && err != io.EOF {
		return nil, nil, err
	}

	switch {
	case bytes.HasPrefix(head, magicGzip):
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, nil, err
		}
		return zr, func() { _ = zr.Close() }, nil
	case bytes.HasPrefix(head, magicBzip2):
		return bzip2.NewReader(br), func() {}, nil
	case bytes.HasPrefix(head, magicXz):
		xr, err := xz.NewReader(br)
		if err != nil {
			return nil, nil, err
		}
		return xr, func() {}, nil
	case bytes.HasPrefix(head, magicZstd):
		dec, err := zstd.NewReader(br)
		if err != nil {
			return nil, nil, err
		}
		return dec, dec.Close, nil
	default:
		return br, func() {}, nil
	}
}
