// Package testutil builds archive and binary fixtures for tests.
package testutil

import (
	"archive/tar"
	"bytes"
	"debug/elf"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
)

// Files maps member names to contents.
type Files map[string][]byte

func (f Files) sortedNames() []string {
	names := make([]string, 0, len(f))
	for name := range f {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WriteZip writes files into a zip archive at dir/name and returns its path.
func WriteZip(t testing.TB, dir, name string, files Files) string {
	t.Helper()
	path := filepath.Join(dir, name)
	out, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	for _, member := range files.sortedNames() {
		w, err := zw.Create(member)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write(files[member]); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

// WriteTarGz writes files into a gzip-compressed tar at dir/name and returns its path.
func WriteTarGz(t testing.TB, dir, name string, files Files) string {
	t.Helper()
	path := filepath.Join(dir, name)
	out, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer out.Close()

	gz := gzip.NewWriter(out)
	writeTar(t, gz, files)
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

// WriteTar writes files into an uncompressed tar at dir/name and returns its path.
func WriteTar(t testing.TB, dir, name string, files Files) string {
	t.Helper()
	path := filepath.Join(dir, name)
	var buf bytes.Buffer
	writeTar(t, &buf, files)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func writeTar(t testing.TB, w io.Writer, files Files) {
	t.Helper()
	tw := tar.NewWriter(w)
	for _, member := range files.sortedNames() {
		data := files[member]
		hdr := &tar.Header{
			Name:     member,
			Mode:     0o644,
			Size:     int64(len(data)),
			Typeflag: tar.TypeReg,
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatal(err)
		}
		if _, err := tw.Write(data); err != nil {
			t.Fatal(err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
}

// WriteTree writes files below dir, creating parent directories.
func WriteTree(t testing.TB, dir string, files Files) {
	t.Helper()
	for name, data := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

// SharedObject returns a minimal little-endian ELF64 shared object whose
// dynamic section lists needed as DT_NEEDED entries.
func SharedObject(needed ...string) []byte {
	le := binary.LittleEndian

	dynstr := []byte{0}
	offsets := make([]uint64, len(needed))
	for i, name := range needed {
		offsets[i] = uint64(len(dynstr))
		dynstr = append(dynstr, name...)
		dynstr = append(dynstr, 0)
	}

	var dynamic bytes.Buffer
	for _, off := range offsets {
		_ = binary.Write(&dynamic, le, elf.Dyn64{Tag: int64(elf.DT_NEEDED), Val: off})
	}
	_ = binary.Write(&dynamic, le, elf.Dyn64{Tag: int64(elf.DT_NULL)})

	// Name offsets: .dynstr=1, .dynamic=9, .shstrtab=18
	shstrtab := []byte("\x00.dynstr\x00.dynamic\x00.shstrtab\x00")

	const headerSize = 64
	dynstrOff := uint64(headerSize)
	dynamicOff := align8(dynstrOff + uint64(len(dynstr)))
	shstrtabOff := dynamicOff + uint64(dynamic.Len())
	shOff := align8(shstrtabOff + uint64(len(shstrtab)))

	var ident [elf.EI_NIDENT]byte
	copy(ident[:], elf.ELFMAG)
	ident[elf.EI_CLASS] = byte(elf.ELFCLASS64)
	ident[elf.EI_DATA] = byte(elf.ELFDATA2LSB)
	ident[elf.EI_VERSION] = byte(elf.EV_CURRENT)

	header := elf.Header64{
		Ident:     ident,
		Type:      uint16(elf.ET_DYN),
		Machine:   uint16(elf.EM_X86_64),
		Version:   uint32(elf.EV_CURRENT),
		Shoff:     shOff,
		Ehsize:    headerSize,
		Phentsize: 56,
		Shentsize: 64,
		Shnum:     4,
		Shstrndx:  3,
	}

	sections := []elf.Section64{
		{},
		{Name: 1, Type: uint32(elf.SHT_STRTAB), Off: dynstrOff, Size: uint64(len(dynstr)), Addralign: 1},
		{Name: 9, Type: uint32(elf.SHT_DYNAMIC), Off: dynamicOff, Size: uint64(dynamic.Len()), Link: 1, Addralign: 8, Entsize: 16},
		{Name: 18, Type: uint32(elf.SHT_STRTAB), Off: shstrtabOff, Size: uint64(len(shstrtab)), Addralign: 1},
	}

	var buf bytes.Buffer
	_ = binary.Write(&buf, le, header)
	buf.Write(dynstr)
	pad(&buf, dynamicOff)
	buf.Write(dynamic.Bytes())
	buf.Write(shstrtab)
	pad(&buf, shOff)
	for _, s := range sections {
		_ = binary.Write(&buf, le, s)
	}
	return buf.Bytes()
}

func align8(n uint64) uint64 {
	return (n + 7) &^ 7
}

func pad(buf *bytes.Buffer, to uint64) {
	for uint64(buf.Len()) < to {
		buf.WriteByte(0)
	}
}
