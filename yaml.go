// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package cstc

import (
	"bytes"
	"encoding/base64"
	"strconv"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// YAML tags used for tokens and event nodes in dumps.
const (
	yamlTagInt   = "!int"
	yamlTagFloat = "!float"
	yamlTagStr   = "!str"
	yamlTagIdent = "!ident"
	yamlTagVar   = "!var"
	yamlTagOp    = "!op"
	yamlTagEvent = "!event"
	yamlTagGroup = "!group"
)

func scalarNode(tag, value string) *yaml.Node {
	n := &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
	if !utf8.ValidString(value) {
		n.Value = strconv.Quote(value)
	}
	return n
}

func (t Integer) MarshalYAML() (any, error) {
	return scalarNode(yamlTagInt, strconv.FormatInt(int64(t), 10)), nil
}

func (t Color) MarshalYAML() (any, error) {
	return scalarNode(yamlTagInt, strconv.FormatInt(int64(t), 10)), nil
}

func (t Float) MarshalYAML() (any, error) {
	return scalarNode(yamlTagFloat, strconv.FormatFloat(float64(t), 'g', -1, 64)), nil
}

func (t StringLiteral) MarshalYAML() (any, error) {
	n := scalarNode(yamlTagStr, string(t))
	n.Style = yaml.DoubleQuotedStyle
	return n, nil
}

func (t Identifier) MarshalYAML() (any, error) {
	return scalarNode(yamlTagIdent, string(t)), nil
}

func (t VariableName) MarshalYAML() (any, error) {
	return scalarNode(yamlTagVar, string(t)), nil
}

func (t Operator) MarshalYAML() (any, error) {
	n := scalarNode(yamlTagOp, TokenKind(t).String())
	n.Style = yaml.DoubleQuotedStyle
	return n, nil
}

// taggedMapping encodes v as a mapping carrying tag.
func taggedMapping(tag string, v any) (*yaml.Node, error) {
	n := &yaml.Node{}
	if err := n.Encode(v); err != nil {
		return nil, err
	}
	n.Tag = tag
	return n, nil
}

func (e *Event) MarshalYAML() (any, error) {
	type event Event
	return taggedMapping(yamlTagEvent, (*event)(e))
}

func (g *EventGroup) MarshalYAML() (any, error) {
	type group EventGroup
	return taggedMapping(yamlTagGroup, (*group)(g))
}

func (d UnknownObjectData) MarshalYAML() (any, error) {
	return &yaml.Node{
		Kind:  yaml.ScalarNode,
		Tag:   "!!binary",
		Value: base64.StdEncoding.EncodeToString(d),
	}, nil
}

// MarshalYAML renders image metadata with the pixel data replaced by its
// length, since dumps are meant for reading.
func (img ImageResource) MarshalYAML() (any, error) {
	meta, data := img.Split()
	return struct {
		ImageMetadata `yaml:",inline"`
		DataSize      int `yaml:"data_size"`
	}{meta, len(data)}, nil
}

// DumpYAML renders v (a block, token list or object data) as YAML.
func DumpYAML(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
