// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package cstc

import (
	"os"
	"path/filepath"
	"testing"
)

const samplePluginTable = `
plugins:
  - id: 0
    name: Sprite
  - id: 1
    name: Text
  - id: 7
    name: Tilemap
`

func TestParsePluginTable(t *testing.T) {
	table, err := ParsePluginTable([]byte(samplePluginTable))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	tests := []struct {
		id   int32
		name string
		ok   bool
	}{
		{0, PluginSprite, true},
		{1, PluginText, true},
		{7, "Tilemap", true},
		{2, "", false},
	}
	for _, test := range tests {
		name, ok := table.PluginName(test.id)
		if name != test.name || ok != test.ok {
			t.Errorf("PluginName(%d) = %q, %v, want %q, %v", test.id, name, ok, test.name, test.ok)
		}
	}
}

func TestParsePluginTableErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"duplicate id", "plugins:\n  - id: 1\n    name: A\n  - id: 1\n    name: B\n"},
		{"bad id", "plugins:\n  - id: one\n    name: A\n"},
		{"not a list", "plugins: 3\n"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := ParsePluginTable([]byte(test.input)); err == nil {
				t.Errorf("expected an error")
			}
		})
	}
}

func TestLoadPluginTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plugins.yaml")
	if err := os.WriteFile(path, []byte(samplePluginTable), 0644); err != nil {
		t.Fatalf("write table: %v", err)
	}

	table, err := LoadPluginTable(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(table) != 3 {
		t.Errorf("loaded %d plugins, want 3", len(table))
	}

	if _, err := LoadPluginTable(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Errorf("loading a missing file succeeded")
	}
}
