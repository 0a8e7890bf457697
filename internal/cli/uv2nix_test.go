package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/autorider/internal/testutil"
	"github.com/matzehuels/autorider/pkg/errors"
	"github.com/matzehuels/autorider/pkg/output"
	"github.com/matzehuels/autorider/pkg/provider"
)

const localLock = `
version = 1
requires-python = ">=3.12"

[[package]]
name = "native"
version = "1.0"
source = { registry = "./dist" }
sdist = { path = "native-1.0.tar.gz" }
wheels = [
    { path = "native-1.0-cp312-cp312-manylinux_2_17_x86_64.whl" },
]

[[package]]
name = "skipped"
version = "2.0"
source = { registry = "./dist" }
sdist = { path = "missing-2.0.tar.gz" }
`

const localPyproject = `
[project]
name = "app"

[tool.autorider]
exclude = ["skipped"]
`

func writeProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	dist := filepath.Join(root, "dist")
	require.NoError(t, os.Mkdir(dist, 0o755))

	testutil.WriteZip(t, dist, "native-1.0-cp312-cp312-manylinux_2_17_x86_64.whl", testutil.Files{
		"native/_core.so": testutil.SharedObject("libc.so.6", "libfoo.so.1", "libbar.so.2"),
	})
	testutil.WriteTarGz(t, dist, "native-1.0.tar.gz", testutil.Files{
		"native-1.0/pyproject.toml": []byte("[build-system]\nrequires = [\"setuptools\"]\n"),
	})
	testutil.WriteTree(t, root, testutil.Files{
		"uv.lock":        []byte(localLock),
		"pyproject.toml": []byte(localPyproject),
	})
	return root
}

func newTestCLI(locator provider.Locator) *CLI {
	c := New(io.Discard, LogInfo)
	c.locator = locator
	return c
}

func TestUv2nix_WritesOutputs(t *testing.T) {
	root := writeProject(t)

	var lookups atomic.Int32
	c := newTestCLI(provider.LocatorFunc(func(_ context.Context, name string) ([]string, error) {
		lookups.Add(1)
		if name == "libfoo.so.1" {
			return []string{"(foo.dev)", "foo.out"}, nil
		}
		return nil, nil
	}))

	cmd := c.RootCommand()
	cmd.SetArgs([]string{"uv2nix", "--root", root, "--no-cache", "-j", "2"})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	pkgs, providers, err := output.ReadDir(filepath.Join(root, defaultOutput))
	require.NoError(t, err)

	require.Contains(t, pkgs, "native")
	assert.NotContains(t, pkgs, "skipped")
	entry := pkgs["native"]
	require.False(t, entry.IsMultiple())
	assert.Empty(t, entry.Single.Version)
	assert.Equal(t, []string{"libbar.so.2", "libfoo.so.1"}, entry.Single.WheelDepends)
	assert.Equal(t, []string{"setuptools"}, entry.Single.BuildSystems)

	assert.Equal(t, output.Providers{"libfoo.so.1": "foo.out"}, providers)
	assert.Equal(t, int32(2), lookups.Load())
}

func TestUv2nix_MissingLock(t *testing.T) {
	c := newTestCLI(provider.LocatorFunc(func(context.Context, string) ([]string, error) {
		return nil, nil
	}))

	cmd := c.RootCommand()
	cmd.SetArgs([]string{"uv2nix", "--root", t.TempDir(), "--no-cache"})
	cmd.SetErr(io.Discard)
	assert.Error(t, cmd.ExecuteContext(context.Background()))
}

func TestGraph_DOT(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, defaultOutput)
	pkgs := output.Packages{
		"native": output.SingleEntry(output.Record{WheelDepends: []string{"libfoo.so.1", "libbar.so.2"}}),
	}
	_, err := output.WriteDir(dir, pkgs, output.Providers{"libfoo.so.1": "foo.out"})
	require.NoError(t, err)

	c := newTestCLI(nil)
	cmd := c.RootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"graph", "--root", root, "--format", "dot", "--out", "-"})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	dot := out.String()
	assert.Contains(t, dot, `"pkg:native" -> "so:libfoo.so.1";`)
	assert.Contains(t, dot, `"so:libfoo.so.1" -> "nix:foo.out";`)
	assert.Contains(t, dot, `"so:libbar.so.2" [label="libbar.so.2", shape=ellipse, color=red, fontcolor=red];`)
}

func TestGraph_UnknownFormat(t *testing.T) {
	c := newTestCLI(nil)
	cmd := c.RootCommand()
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"graph", "--root", t.TempDir(), "--format", "png"})
	assert.Error(t, cmd.ExecuteContext(context.Background()))
}

func TestUv2nix_MissingExplicitConfig(t *testing.T) {
	root := writeProject(t)
	c := newTestCLI(provider.LocatorFunc(func(context.Context, string) ([]string, error) {
		return nil, nil
	}))

	cmd := c.RootCommand()
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"uv2nix", "--root", root, "--no-cache", "--config", filepath.Join(root, "typo.toml")})
	err := cmd.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeFileNotFound), "got %v", err)

	_, statErr := os.Stat(filepath.Join(root, defaultOutput))
	assert.True(t, os.IsNotExist(statErr))
}
