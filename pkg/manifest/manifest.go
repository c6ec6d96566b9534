// File: manifest.go
// Title: Dispatch Manifests
// Description: Declarative YAML/TOML description of classes, generic
//              functions and constant registrations, and the code that
//              turns it into a dispatch.Registry.
// Author: msto63
// Version: v0.1.0
// Created: 2025-02-22
// Modified: 2025-02-22
//
// Change History:
// - 2025-02-22 v0.1.0: Initial implementation

package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	mdwerror "github.com/msto63/mdispatch/foundation/core/error"
)

// Format is the encoding of a manifest file.
type Format int

const (
	// FormatYAML is the default format
	FormatYAML Format = iota
	// FormatTOML selects TOML
	FormatTOML
)

// String returns the string representation of the format
func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatTOML:
		return "toml"
	default:
		return "unknown"
	}
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return 0, mdwerror.New(fmt.Sprintf("unsupported manifest extension %q", filepath.Ext(path))).
			WithCode(mdwerror.CodeInvalidConfig).
			WithOperation("manifest.Load").
			WithDetail("path", path)
	}
}

// Manifest declares classes, generic functions and their registrations.
type Manifest struct {
	Classes       []ClassSpec        `yaml:"classes" toml:"classes"`
	Functions     []FunctionSpec     `yaml:"functions" toml:"functions"`
	Registrations []RegistrationSpec `yaml:"registrations" toml:"registrations"`
}

// ClassSpec declares a class and its bases, by name.
type ClassSpec struct {
	Name  string   `yaml:"name" toml:"name"`
	Bases []string `yaml:"bases" toml:"bases"`
}

// FunctionSpec declares a generic function.
type FunctionSpec struct {
	Name       string          `yaml:"name" toml:"name"`
	Predicates []PredicateSpec `yaml:"predicates" toml:"predicates"`

	// Fallback, when set, is returned for calls nothing matches.
	Fallback any `yaml:"fallback" toml:"fallback"`
}

// PredicateSpec declares one predicate. Kind is class, value or any.
// Class and value predicates read either a positional Arg or a Keyword.
type PredicateSpec struct {
	Kind    string `yaml:"kind" toml:"kind"`
	Arg     *int   `yaml:"arg" toml:"arg"`
	Keyword string `yaml:"keyword" toml:"keyword"`
	Default any    `yaml:"default" toml:"default"`
}

// RegistrationSpec binds a key tuple to a constant result.
//
// Keys are written as "any", "class:<Name>", or a literal value.
type RegistrationSpec struct {
	Function string `yaml:"function" toml:"function"`
	Keys     []any  `yaml:"keys" toml:"keys"`
	Result   any    `yaml:"result" toml:"result"`
	Priority int    `yaml:"priority" toml:"priority"`
	Doc      string `yaml:"doc" toml:"doc"`
}

// Load reads a manifest file, choosing the format by extension.
func Load(path string) (*Manifest, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, mdwerror.Wrap(err, "failed to read manifest").
			WithCode(mdwerror.CodeConfigError).
			WithOperation("manifest.Load").
			WithDetail("path", path)
	}
	m, err := Parse(data, format)
	if err != nil {
		return nil, mdwerror.Wrap(err, fmt.Sprintf("%s: %v", path, err)).
			WithDetail("path", path)
	}
	return m, nil
}

// Parse decodes a manifest.
func Parse(data []byte, format Format) (*Manifest, error) {
	var m Manifest
	var err error
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(&m)
		if errors.Is(err, io.EOF) {
			err = nil
		}
	case FormatTOML:
		_, err = toml.Decode(string(data), &m)
	default:
		err = fmt.Errorf("unsupported format %v", format)
	}
	if err != nil {
		return nil, mdwerror.Wrap(err, fmt.Sprintf("failed to parse %s manifest", format)).
			WithCode(mdwerror.CodeInvalidConfig).
			WithOperation("manifest.Parse")
	}
	return &m, nil
}

// Merge concatenates manifests in order.
func Merge(ms ...*Manifest) *Manifest {
	out := &Manifest{}
	for _, m := range ms {
		if m == nil {
			continue
		}
		out.Classes = append(out.Classes, m.Classes...)
		out.Functions = append(out.Functions, m.Functions...)
		out.Registrations = append(out.Registrations, m.Registrations...)
	}
	return out
}
