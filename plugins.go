// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package cstc

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PluginNamer resolves the numeric plugin ids stored in a level block to
// plugin names such as "Sprite" or "Text".
type PluginNamer interface {
	PluginName(id int32) (string, bool)
}

// PluginTable is a PluginNamer backed by a map.
type PluginTable map[int32]string

func (t PluginTable) PluginName(id int32) (string, bool) {
	name, ok := t[id]
	return name, ok
}

// pluginTableSpec is the YAML layout of a plugin table file:
//
//	plugins:
//	  - id: 0
//	    name: Sprite
//	  - id: 1
//	    name: Text
type pluginTableSpec struct {
	Plugins []struct {
		ID   int32  `yaml:"id"`
		Name string `yaml:"name"`
	} `yaml:"plugins"`
}

// LoadPluginTable reads a plugin table from a YAML file.
func LoadPluginTable(filename string) (PluginTable, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("plugins: load %s: %w", filename, err)
	}
	return ParsePluginTable(data)
}

// ParsePluginTable parses the YAML form read by LoadPluginTable.
func ParsePluginTable(data []byte) (PluginTable, error) {
	var spec pluginTableSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("plugins: unmarshal: %w", err)
	}

	table := make(PluginTable, len(spec.Plugins))
	for _, p := range spec.Plugins {
		if prev, ok := table[p.ID]; ok {
			return nil, fmt.Errorf("plugins: id %d listed twice (%s, %s)", p.ID, prev, p.Name)
		}
		table[p.ID] = p.Name
	}
	return table, nil
}
