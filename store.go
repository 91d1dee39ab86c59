// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package cstc

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// BlockSource supplies the raw bytes of a block, typically read from the
// resource section of a compiled game executable.
type BlockSource interface {
	ReadBlock(kind BlockKind) ([]byte, error)
}

// BlockSink receives the raw bytes of a block to store.
type BlockSink interface {
	WriteBlock(kind BlockKind, data []byte) error
}

// DirStore keeps blocks as files named after their resource, for example
// "LEVELBLOCK.bin", in a single directory. It implements BlockSource and
// BlockSink.
type DirStore struct {
	dir string
}

// NewDirStore returns a store rooted at dir. The directory is created on the
// first write.
func NewDirStore(dir string) *DirStore {
	return &DirStore{dir: dir}
}

// Path returns the file that holds blocks of the given kind.
func (s *DirStore) Path(kind BlockKind) string {
	return filepath.Join(s.dir, kind.ResourceName()+".bin")
}

// ReadBlock reads a block file.
func (s *DirStore) ReadBlock(kind BlockKind) ([]byte, error) {
	data, err := os.ReadFile(s.Path(kind))
	if err != nil {
		return nil, fmt.Errorf("read %v: %w", kind, err)
	}
	return data, nil
}

// HasBlock reports whether a block file exists.
func (s *DirStore) HasBlock(kind BlockKind) bool {
	_, err := os.Stat(s.Path(kind))
	return err == nil
}

// WriteBlock writes a block file atomically through a temp file in the same
// directory.
func (s *DirStore) WriteBlock(kind BlockKind, data []byte) error {
	// Ensure directory exists
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tempFile, err := os.CreateTemp(s.dir, "cstc_*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tempPath := tempFile.Name()

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		os.Remove(tempPath)
		return fmt.Errorf("write %v: %w", kind, err)
	}
	if err := tempFile.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("close %v: %w", kind, err)
	}

	// Move temp file to final path
	path := s.Path(kind)
	os.Remove(path)
	if err := os.Rename(tempPath, path); err != nil {
		if err := copyFile(tempPath, path); err != nil {
			os.Remove(tempPath)
			return fmt.Errorf("save %v: %w", kind, err)
		}
		os.Remove(tempPath)
	}

	return nil
}

// copyFile copies a file from src to dst.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}

// MemStore is an in-memory BlockSource and BlockSink. Create one with
// make(MemStore) or MemStore{}; a nil MemStore reads as empty and refuses
// writes.
type MemStore map[BlockKind][]byte

func (m MemStore) ReadBlock(kind BlockKind) ([]byte, error) {
	data, ok := m[kind]
	if !ok {
		return nil, fmt.Errorf("block %v: %w", kind, os.ErrNotExist)
	}
	return data, nil
}

func (m MemStore) WriteBlock(kind BlockKind, data []byte) error {
	if m == nil {
		return fmt.Errorf("block %v: write to nil MemStore", kind)
	}
	m[kind] = data
	return nil
}
