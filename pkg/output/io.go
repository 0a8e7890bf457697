package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// File names inside the output directory.
const (
	PackagesFile  = "packages.json"
	ProvidersFile = "so-providers.json"
)

// WriteJSON encodes v with two-space indentation and a trailing newline.
// HTML characters are not escaped so PEP 508 markers stay readable.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteFile writes v as JSON to path.
func WriteFile(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteJSON(f, v); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// WriteDir writes both documents into dir, creating it if missing.
// It returns the paths written.
func WriteDir(dir string, pkgs Packages, providers Providers) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}
	pkgPath := filepath.Join(dir, PackagesFile)
	if err := WriteFile(pkgPath, pkgs); err != nil {
		return nil, err
	}
	providerPath := filepath.Join(dir, ProvidersFile)
	if err := WriteFile(providerPath, providers); err != nil {
		return nil, err
	}
	return []string{pkgPath, providerPath}, nil
}

// ReadDir reads both documents back from dir.
func ReadDir(dir string) (Packages, Providers, error) {
	pkgs, err := ReadPackages(filepath.Join(dir, PackagesFile))
	if err != nil {
		return nil, nil, err
	}
	providers, err := ReadProviders(filepath.Join(dir, ProvidersFile))
	if err != nil {
		return nil, nil, err
	}
	return pkgs, providers, nil
}

// ReadPackages reads a packages.json document.
func ReadPackages(path string) (Packages, error) {
	var pkgs Packages
	if err := readFile(path, &pkgs); err != nil {
		return nil, err
	}
	return pkgs, nil
}

// ReadProviders reads a so-providers.json document.
func ReadProviders(path string) (Providers, error) {
	var providers Providers
	if err := readFile(path, &providers); err != nil {
		return nil, err
	}
	return providers, nil
}

func readFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
