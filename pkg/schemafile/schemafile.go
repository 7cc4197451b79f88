// Package schemafile loads model declarations from YAML files, validates
// them against an embedded JSON schema, and compiles them into wired
// relations schemas ready to define.
package schemafile

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File is one models file: the source its models bind to and the models it
// declares.
type File struct {
	Source   string  `yaml:"source"`
	Database string  `yaml:"database,omitempty"`
	Models   []Model `yaml:"models"`
}

// Model declares one schema. The id field may name a field declared below,
// or an auto-assigned integer key to prepend.
type Model struct {
	Name      string   `yaml:"name"`
	Table     string   `yaml:"table,omitempty"`
	ID        string   `yaml:"id,omitempty"`
	Label     []string `yaml:"label,omitempty"`
	Order     []string `yaml:"order,omitempty"`
	Unique    []Group  `yaml:"unique,omitempty"`
	Index     []Group  `yaml:"index,omitempty"`
	OneToMany []string `yaml:"one-to-many,omitempty"`
	OneToOne  []string `yaml:"one-to-one,omitempty"`
	Fields    []Field  `yaml:"fields"`
}

// Group names an ordered set of indexed fields.
type Group struct {
	Name   string   `yaml:"name"`
	Fields []string `yaml:"fields"`
}

// Field declares one field. Kind is one of bool, int, float, str, list,
// dict. None overrides the declared-field rule that fields are required.
type Field struct {
	Name     string   `yaml:"name"`
	Kind     string   `yaml:"kind"`
	Store    string   `yaml:"store,omitempty"`
	None     *bool    `yaml:"none,omitempty"`
	Default  any      `yaml:"default,omitempty"`
	Primary  bool     `yaml:"primary,omitempty"`
	ReadOnly bool     `yaml:"readonly,omitempty"`
	Format   string   `yaml:"format,omitempty"`
	Extract  string   `yaml:"extract,omitempty"`
	Label    []string `yaml:"label,omitempty"`
}

// Load reads, validates, and decodes the models file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read models file: %w", err)
	}

	return Parse(data)
}

// Parse validates and decodes one models file.
func Parse(data []byte) (*File, error) {
	var document any
	if err := yaml.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("parse models file: %w", err)
	}

	if err := Validate(document); err != nil {
		return nil, err
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse models file: %w", err)
	}

	return &file, nil
}
