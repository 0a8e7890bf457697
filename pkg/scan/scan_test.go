package scan

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/autorider/internal/testutil"
	"github.com/matzehuels/autorider/pkg/errors"
)

func TestIsSharedObject(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"_zmq.cpython-312-x86_64-linux-gnu.so", true},
		{"pyzmq.libs/libzmq-47dc3393.so.5.2.5", true},
		{"pkg/libfoo.so.1", true},
		{"pkg/__init__.py", false},
		{"pkg/sofa.py", false},
		{"pkg/lib.solib", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSharedObject(tt.name))
		})
	}
}

func TestIsSourceMember(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"attrs-23.1.0/pyproject.toml", true},
		{"attrs-23.1.0/CMakeLists.txt", true},
		{"pyproject.toml", false},
		{"attrs-23.1.0/docs/pyproject.toml", false},
		{"attrs-23.1.0/setup.py", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSourceMember(tt.name))
		})
	}
}

func TestBinary(t *testing.T) {
	p := testutil.WriteZip(t, t.TempDir(), "ext-1.0-cp312-cp312-manylinux_2_17_x86_64.whl", testutil.Files{
		"ext/_ext.so":                   testutil.SharedObject("libc.so.6", "libfoo-deadbeef.so.1"),
		"ext.libs/libfoo-deadbeef.so.1": testutil.SharedObject("libc.so.6", "libm.so.6"),
		"ext/__init__.py":               []byte("from ._ext import *\n"),
		"ext-1.0.dist-info/METADATA":    []byte("Name: ext\n"),
	})

	out, err := Binary(p)
	require.NoError(t, err)
	assert.Equal(t, []string{"_ext.so", "libfoo-deadbeef.so.1"}, out.Provides.Sorted())
	assert.Equal(t, []string{"libc.so.6", "libfoo-deadbeef.so.1", "libm.so.6"}, out.Depends.Sorted())
}

func TestBinary_NoSharedObjects(t *testing.T) {
	p := testutil.WriteZip(t, t.TempDir(), "attrs-23.1.0-py3-none-any.whl", testutil.Files{
		"attr/__init__.py": []byte(""),
	})

	out, err := Binary(p)
	require.NoError(t, err)
	assert.Empty(t, out.Provides)
	assert.Empty(t, out.Depends)
}

func TestBinary_InvalidELF(t *testing.T) {
	p := testutil.WriteZip(t, t.TempDir(), "bad-1.0-py3-none-manylinux1_x86_64.whl", testutil.Files{
		"bad/_bad.so": []byte("not an elf file"),
	})

	_, err := Binary(p)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidBinary), "got %v", err)
}

func TestBinary_FromDirectory(t *testing.T) {
	root := t.TempDir()
	testutil.WriteTree(t, root, testutil.Files{
		"lib/libbar.so.2": testutil.SharedObject("libz.so.1"),
	})

	out, err := Binary(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"libbar.so.2"}, out.Provides.Sorted())
	assert.Equal(t, []string{"libz.so.1"}, out.Depends.Sorted())
}

func TestSource(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name         string
		files        testutil.Files
		wantSystems  []string
		wantRequires []string
	}{
		{
			name: "declared build system",
			files: testutil.Files{
				"pkg-1.0/pyproject.toml": []byte("[build-system]\nrequires = [\"flit-core\"]\n"),
			},
			wantSystems: []string{"flit-core"},
		},
		{
			name: "empty manifest",
			files: testutil.Files{
				"pkg-1.0/pyproject.toml": []byte(""),
			},
			wantSystems: []string{"setuptools"},
		},
		{
			name: "no manifest",
			files: testutil.Files{
				"pkg-1.0/setup.py": []byte("from setuptools import setup\n"),
			},
			wantSystems: []string{"setuptools"},
		},
		{
			name: "nested manifest ignored",
			files: testutil.Files{
				"pkg-1.0/vendor/dep/pyproject.toml": []byte("[build-system]\nrequires = [\"maturin\"]\n"),
			},
			wantSystems: []string{"setuptools"},
		},
		{
			name: "build tool hints",
			files: testutil.Files{
				"pkg-1.0/pyproject.toml": []byte("[build-system]\nrequires = [\"scikit-build-core\"]\n"),
				"pkg-1.0/CMakeLists.txt": []byte("project(pkg)\n"),
				"pkg-1.0/meson.build":    []byte("project('pkg')\n"),
				"pkg-1.0/src/Cargo.toml": []byte("[package]\n"),
			},
			wantSystems:  []string{"scikit-build-core"},
			wantRequires: []string{"cmake", "meson", "ninja"},
		},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testutil.WriteTarGz(t, dir, "pkg-"+string(rune('a'+i))+".tar.gz", tt.files)
			out, err := Source(p)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSystems, out.BuildSystems)
			assert.Equal(t, tt.wantRequires, out.BuildRequires)
		})
	}
}

func TestSource_InvalidRequires(t *testing.T) {
	p := testutil.WriteTarGz(t, t.TempDir(), "bad-1.0.tar.gz", testutil.Files{
		"bad-1.0/pyproject.toml": []byte("[build-system]\nrequires = \"flit-core\"\n"),
	})

	_, err := Source(p)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidManifest), "got %v", err)
}

func TestSource_Checkout(t *testing.T) {
	root := t.TempDir()
	testutil.WriteTree(t, root, testutil.Files{
		"pyproject.toml": []byte("[build-system]\nrequires = [\"hatchling>=1.26\"]\n"),
	})

	out, err := Source(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"hatchling>=1.26"}, out.BuildSystems)
}

func TestKind(t *testing.T) {
	both := KindSource | KindBinary
	assert.True(t, both.Has(KindSource))
	assert.True(t, both.Has(KindBinary))
	assert.False(t, KindSource.Has(KindBinary))
	assert.False(t, both.Has(KindNone))
	assert.Equal(t, "source+binary", both.String())
	assert.Equal(t, "none", KindNone.String())
}

func TestScan_RunsOnlyRequestedKinds(t *testing.T) {
	dir := t.TempDir()
	sdist := testutil.WriteTarGz(t, dir, "ext-1.0.tar.gz", testutil.Files{
		"ext-1.0/pyproject.toml": []byte("[build-system]\nrequires = [\"flit_core\"]\n"),
	})
	wheel := testutil.WriteZip(t, dir, "ext-1.0-cp312-cp312-manylinux_2_17_x86_64.whl", testutil.Files{
		"ext/_ext.so": testutil.SharedObject("libc.so.6"),
	})

	res, err := Scan(context.Background(), "ext", sdist, wheel, KindSource)
	require.NoError(t, err)
	require.NotNil(t, res.Source)
	assert.Nil(t, res.Binary)
	assert.Equal(t, []string{"flit_core"}, res.Source.BuildSystems)

	res, err = Scan(context.Background(), "ext", "", wheel, KindSource|KindBinary)
	require.NoError(t, err)
	assert.Nil(t, res.Source)
	require.NotNil(t, res.Binary)
	assert.True(t, res.Binary.Provides.Has("_ext.so"))

	res, err = Scan(context.Background(), "ext", sdist, wheel, KindNone)
	require.NoError(t, err)
	assert.Nil(t, res.Source)
	assert.Nil(t, res.Binary)
}
