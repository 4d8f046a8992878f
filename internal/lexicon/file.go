package lexicon

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile reads a YAML file in the Tables schema and returns the built-in
// lexicon extended with its entries.
func LoadFile(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lexicon file: %w", err)
	}
	return Parse(data)
}

// Parse is LoadFile for YAML already in memory.
func Parse(data []byte) (*Lexicon, error) {
	var extra Tables
	if err := yaml.Unmarshal(data, &extra); err != nil {
		return nil, fmt.Errorf("parse lexicon: %w", err)
	}
	return New(DefaultTables().Extend(extra)), nil
}
