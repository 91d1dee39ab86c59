// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package cstc

import (
	"fmt"
	"os"
)

// PatchChain is an ordered list of patches, each made against the output of
// the one before it. The first patch applies to the vanilla block.
type PatchChain struct {
	patches [][]byte
	info    []*PatchInfo
}

// NewPatchChain builds a chain from patches in application order.
func NewPatchChain(patches ...[]byte) (*PatchChain, error) {
	chain := &PatchChain{
		patches: make([][]byte, 0, len(patches)),
		info:    make([]*PatchInfo, 0, len(patches)),
	}
	for i, p := range patches {
		if err := chain.add(p); err != nil {
			return nil, fmt.Errorf("patch %d: %w", i, err)
		}
	}
	return chain, nil
}

// OpenPatchChain reads patch files in order of application.
// The last file in the list is applied last.
func OpenPatchChain(paths []string) (*PatchChain, error) {
	chain := &PatchChain{}
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("open patch %s: %w", path, err)
		}
		if err := chain.add(data); err != nil {
			return nil, fmt.Errorf("patch %s: %w", path, err)
		}
	}
	return chain, nil
}

func (c *PatchChain) add(patch []byte) error {
	info, err := ReadPatchInfo(patch)
	if err != nil {
		return err
	}
	// Each patch must start from the previous patch's target.
	if n := len(c.info); n > 0 {
		prev := c.info[n-1]
		if prev.TargetSize != info.BaseSize || prev.TargetSum != info.BaseSum {
			return fmt.Errorf("%w: base does not follow the previous patch's target", ErrPatchMismatch)
		}
	}
	c.patches = append(c.patches, patch)
	c.info = append(c.info, info)
	return nil
}

// Len returns the number of patches in the chain.
func (c *PatchChain) Len() int {
	return len(c.patches)
}

// Info returns the header of the i-th patch.
func (c *PatchChain) Info(i int) *PatchInfo {
	return c.info[i]
}

// Apply applies every patch in order to base and returns the final target.
// An empty chain returns a copy of base.
func (c *PatchChain) Apply(base []byte) ([]byte, error) {
	current := append([]byte(nil), base...)
	for i, p := range c.patches {
		next, err := ApplyPatch(current, p)
		if err != nil {
			return nil, fmt.Errorf("apply patch %d of %d: %w", i+1, len(c.patches), err)
		}
		current = next
	}
	return current, nil
}

// Resume finds where current sits in the chain and applies only the patches
// after it. This lets a partially patched block be brought up to date.
func (c *PatchChain) Resume(current []byte) ([]byte, error) {
	for i := len(c.info) - 1; i >= 0; i-- {
		info := c.info[i]
		if uint64(len(current)) == info.TargetSize && sum256(current) == info.TargetSum {
			rest := &PatchChain{patches: c.patches[i+1:], info: c.info[i+1:]}
			return rest.Apply(current)
		}
	}
	return c.Apply(current)
}
