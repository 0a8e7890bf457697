package pep517

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/autorider/pkg/errors"
)

func TestBuildSystems(t *testing.T) {
	got, err := BuildSystems(map[string]any{
		"build-system": map[string]any{
			"requires": []any{"flit-core"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"flit-core"}, got)
}

func TestBuildSystems_Fallback(t *testing.T) {
	tests := []struct {
		name string
		doc  map[string]any
	}{
		{"empty document", map[string]any{}},
		{"nil document", nil},
		{"missing requires", map[string]any{"build-system": map[string]any{}}},
		{"empty requires", map[string]any{"build-system": map[string]any{"requires": []any{}}}},
		{"unrelated tables", map[string]any{"project": map[string]any{"name": "x"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildSystems(tt.doc)
			require.NoError(t, err)
			assert.Equal(t, []string{"setuptools"}, got)
		})
	}
}

func TestBuildSystems_InvalidType(t *testing.T) {
	tests := []struct {
		name string
		doc  map[string]any
	}{
		{"string requires", map[string]any{"build-system": map[string]any{"requires": "flit-core"}}},
		{"mixed list", map[string]any{"build-system": map[string]any{"requires": []any{"flit-core", int64(3)}}}},
		{"build-system not a table", map[string]any{"build-system": "flit"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildSystems(tt.doc)
			assert.True(t, errors.Is(err, errors.ErrCodeInvalidManifest), "got %v", err)
		})
	}
}

func TestFallbackIsNotShared(t *testing.T) {
	got, err := BuildSystems(nil)
	require.NoError(t, err)
	got[0] = "mutated"
	assert.Equal(t, []string{"setuptools"}, Fallback)
}

func TestRead(t *testing.T) {
	got, err := Read(strings.NewReader(`
[build-system]
requires = ["hatchling", "hatch-vcs"]
build-backend = "hatchling.build"
`))
	require.NoError(t, err)
	assert.Equal(t, []string{"hatchling", "hatch-vcs"}, got)

	got, err = Read(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, []string{"setuptools"}, got)

	_, err = Read(strings.NewReader("[build-system\n"))
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidManifest))
}
