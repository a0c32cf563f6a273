// Package suite loads named opcode groups from a YAML file, so runs can
// target a slice of the instruction set ("branches", "stores", a bug's
// repro set) without spelling out opcodes on the command line each time.
package suite

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"opharness/internal/registry"
)

// DefaultPath is the suites file looked for when none is given.
const DefaultPath = "opharness.suites.yaml"

// Suite is one named opcode group.
type Suite struct {
	Name    string   `yaml:"name"`
	Opcodes []string `yaml:"opcodes"`
}

// File is a collection of suites.
type File struct {
	Version int     `yaml:"version"`
	Suites  []Suite `yaml:"suites"`
}

// Load reads and validates a suites file. Opcodes are normalized in
// place, so "A9" in the file and "a9" on the command line mean the same
// case.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse suites YAML: %w", err)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Get returns the suite with the given name.
func (f *File) Get(name string) (Suite, bool) {
	for _, s := range f.Suites {
		if s.Name == name {
			return s, true
		}
	}
	return Suite{}, false
}

// Names returns the suite names in file order.
func (f *File) Names() []string {
	names := make([]string, len(f.Suites))
	for i, s := range f.Suites {
		names[i] = s.Name
	}
	return names
}

func (f *File) validate() error {
	seen := make(map[string]struct{}, len(f.Suites))
	for i := range f.Suites {
		s := &f.Suites[i]
		if s.Name == "" {
			return fmt.Errorf("suite %d has no name", i)
		}
		if _, dup := seen[s.Name]; dup {
			return fmt.Errorf("duplicate suite %q", s.Name)
		}
		seen[s.Name] = struct{}{}

		if len(s.Opcodes) == 0 {
			return fmt.Errorf("suite %q has no opcodes", s.Name)
		}
		for j, raw := range s.Opcodes {
			op, err := registry.Normalize(raw)
			if err != nil {
				return fmt.Errorf("suite %q: %w", s.Name, err)
			}
			s.Opcodes[j] = op
		}
	}
	return nil
}
