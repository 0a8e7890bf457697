// Package output defines the documents autorider writes for the Nix overlay.
//
// packages.json maps a package name to a [Record], or to a list of records
// when the lockfile pins the same name at several versions. so-providers.json
// maps a soname to the Nix attribute that provides it.
package output

import (
	"bytes"
	"encoding/json"
)

// Record is the per-package output. Fields are present only when the
// producing post-processor is enabled and found something.
type Record struct {
	// Version disambiguates records of a package pinned at several versions.
	Version string `json:"version,omitempty"`
	// WheelDepends lists sonames the wheel links against, excluding its own
	// libraries and those granted by the manylinux tag.
	WheelDepends []string `json:"wheel-depends-so,omitempty"`
	// SdistDepends lists sonames a from-source build links against.
	SdistDepends []string `json:"sdist-depends-so,omitempty"`
	// BuildSystems lists PEP 508 build requirements.
	BuildSystems []string `json:"build-systems,omitempty"`
	// BuildRequires lists native build tools (nativeBuildInputs).
	BuildRequires []string `json:"build-requires,omitempty"`
}

// IsEmpty reports whether no field is populated.
func (r Record) IsEmpty() bool {
	return r.Version == "" &&
		len(r.WheelDepends) == 0 &&
		len(r.SdistDepends) == 0 &&
		len(r.BuildSystems) == 0 &&
		len(r.BuildRequires) == 0
}

// Sonames returns every soname the record references, wheel ones first.
func (r Record) Sonames() []string {
	out := make([]string, 0, len(r.WheelDepends)+len(r.SdistDepends))
	out = append(out, r.WheelDepends...)
	return append(out, r.SdistDepends...)
}

// Entry is the value stored under a package name: a single record, or one
// record per version when the name is ambiguous.
type Entry struct {
	Single   *Record
	Multiple []Record
}

// SingleEntry wraps r as an unambiguous entry.
func SingleEntry(r Record) Entry {
	return Entry{Single: &r}
}

// MultipleEntry wraps records as an ambiguous entry.
func MultipleEntry(records []Record) Entry {
	return Entry{Multiple: records}
}

// IsMultiple reports whether the entry holds one record per version.
func (e Entry) IsMultiple() bool { return e.Multiple != nil }

// Records returns the records of the entry.
func (e Entry) Records() []Record {
	if e.Multiple != nil {
		return e.Multiple
	}
	if e.Single != nil {
		return []Record{*e.Single}
	}
	return nil
}

// IsEmpty reports whether every record of the entry is empty.
func (e Entry) IsEmpty() bool {
	for _, r := range e.Records() {
		if !r.IsEmpty() {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the entry as an object or an array of objects.
func (e Entry) MarshalJSON() ([]byte, error) {
	if e.Multiple != nil {
		return marshal(e.Multiple)
	}
	if e.Single != nil {
		return marshal(e.Single)
	}
	return []byte("{}"), nil
}

// marshal is json.Marshal without HTML escaping, so markers such as
// "cython>=3.0" survive an enclosing encoder that disables escaping.
func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// UnmarshalJSON decodes an object or an array of objects.
func (e *Entry) UnmarshalJSON(data []byte) error {
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		var records []Record
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return err
		}
		*e = MultipleEntry(records)
		return nil
	}
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	*e = SingleEntry(r)
	return nil
}

// Packages is the packages.json document.
type Packages map[string]Entry

// Providers is the so-providers.json document.
type Providers map[string]string
