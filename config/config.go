// Package config loads craftnet TOML files and decodes their sections into
// typed, validated structs.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/mitchellh/mapstructure"
)

var (
	ErrSectionMissing = errors.New("config section missing")
	ErrSectionFormat  = errors.New("config section is not a table")
)

// Validator is implemented by config structs that check and default themselves.
type Validator interface {
	Validate() error
}

// File is a parsed config file. Sections stay untyped until Section is called.
type File struct {
	Path string
	raw  map[string]any
}

// Load reads and parses a TOML file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	f, err := Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	f.Path = path
	return f, nil
}

// Parse parses TOML text.
func Parse(text string) (*File, error) {
	raw := map[string]any{}
	if _, err := toml.Decode(text, &raw); err != nil {
		return nil, err
	}
	return &File{raw: raw}, nil
}

// Empty returns a file with no sections, so every Section call falls back to defaults.
func Empty() *File {
	return &File{raw: map[string]any{}}
}

// Has reports whether the named top level table exists.
func (f *File) Has(name string) bool {
	_, ok := f.raw[name]
	return ok
}

// Raw returns the named table as a generic map.
func (f *File) Raw(name string) (map[string]any, error) {
	v, ok := f.raw[name]
	if !ok {
		return nil, fmt.Errorf("%w: [%s]", ErrSectionMissing, name)
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: [%s]", ErrSectionFormat, name)
	}
	return m, nil
}

// Section decodes the named table into out and validates it. A missing
// section leaves out untouched apart from Validate defaults.
func (f *File) Section(name string, out any) error {
	if f.Has(name) {
		m, err := f.Raw(name)
		if err != nil {
			return err
		}
		if err := Decode(m, out); err != nil {
			return fmt.Errorf("decode [%s]: %w", name, err)
		}
	}
	if v, ok := out.(Validator); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("validate [%s]: %w", name, err)
		}
	}
	return nil
}

// Decode maps a generic table onto a tagged struct. Text values decode into
// types implementing encoding.TextUnmarshaler, and "5s" style strings into
// time.Duration.
func Decode(input any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.TextUnmarshallerHookFunc(),
			mapstructure.StringToTimeDurationHookFunc(),
		),
		WeaklyTypedInput: false,
		ErrorUnused:      true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(input)
}
