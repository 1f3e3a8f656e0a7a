package dataset

import (
	"bytes"
	"fmt"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"vidset/internal/fileutil"
	"vidset/internal/sampling"
)

// Descriptor is the dataset YAML consumed by detector training tools.
type Descriptor struct {
	Path  string         `yaml:"path"`
	Train string         `yaml:"train"`
	Val   string         `yaml:"val"`
	NC    int            `yaml:"nc"`
	Names map[int]string `yaml:"names"`
}

// NewDescriptor returns the single-class descriptor for layout.
func NewDescriptor(layout Layout, className string) Descriptor {
	return Descriptor{
		Path:  layout.Root,
		Train: filepath.ToSlash(filepath.Join("images", sampling.Train)),
		Val:   filepath.ToSlash(filepath.Join("images", sampling.Val)),
		NC:    1,
		Names: map[int]string{0: className},
	}
}

// Marshal renders the descriptor as YAML.
func (d Descriptor) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return nil, fmt.Errorf("encode descriptor: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode descriptor: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteDescriptor writes the descriptor named name into the dataset root and
// returns its path.
func WriteDescriptor(layout Layout, name, className string) (string, error) {
	data, err := NewDescriptor(layout, className).Marshal()
	if err != nil {
		return "", err
	}
	path := filepath.Join(layout.Root, name)
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write descriptor %q: %w", path, err)
	}
	return path, nil
}

// ReadDescriptor parses a descriptor file.
func ReadDescriptor(data []byte) (Descriptor, error) {
	var d Descriptor
	if err := yaml.Unmarshal(data, &d); err != nil {
		return Descriptor{}, fmt.Errorf("decode descriptor: %w", err)
	}
	return d, nil
}
