// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package cstc

import (
	"encoding"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Block is implemented by the four decoded block types.
type Block interface {
	Kind() BlockKind
	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler
}

// Project is the complete set of data blocks of one game.
type Project struct {
	App    *AppBlock
	Level  *LevelBlock
	Events *EventBlock
	Images *ImageBlock
}

// Blocks returns the project's blocks in resource order.
func (p *Project) Blocks() []Block {
	return []Block{p.App, p.Level, p.Events, p.Images}
}

// LoadProject reads and decodes all four blocks from src. The blocks are
// independent, so they are decoded concurrently; the first failure is
// returned.
func LoadProject(src BlockSource) (*Project, error) {
	p := &Project{
		App:    &AppBlock{},
		Level:  &LevelBlock{},
		Events: &EventBlock{},
		Images: &ImageBlock{},
	}

	var g errgroup.Group
	for _, b := range p.Blocks() {
		b := b // per-iteration copy; go.mod targets go 1.21
		g.Go(func() error {
			return loadBlock(src, b)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return p, nil
}

func loadBlock(src BlockSource, b Block) error {
	data, err := src.ReadBlock(b.Kind())
	if err != nil {
		return err
	}
	if err := b.UnmarshalBinary(data); err != nil {
		return fmt.Errorf("decode %v: %w", b.Kind(), err)
	}
	return nil
}

// Save encodes every block of the project and writes it to sink. Nil blocks
// are skipped.
func (p *Project) Save(sink BlockSink) error {
	for _, b := range p.Blocks() {
		if isNilBlock(b) {
			continue
		}
		data, err := b.MarshalBinary()
		if err != nil {
			return fmt.Errorf("encode %v: %w", b.Kind(), err)
		}
		if err := sink.WriteBlock(b.Kind(), data); err != nil {
			return err
		}
	}
	return nil
}

func isNilBlock(b Block) bool {
	switch v := b.(type) {
	case *AppBlock:
		return v == nil
	case *LevelBlock:
		return v == nil
	case *EventBlock:
		return v == nil
	case *ImageBlock:
		return v == nil
	}
	return b == nil
}
