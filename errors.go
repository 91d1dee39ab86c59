// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package cstc

import (
	"errors"
	"fmt"
)

// Error kinds. Every decode failure matches exactly one of them with errors.Is.
var (
	// ErrCorruptData reports truncated input, a sentinel or terminator
	// mismatch, an impossible length, or trailing bytes after a block.
	ErrCorruptData = errors.New("corrupt data")

	// ErrUnsupportedVersion reports a plugin sub-format version this package
	// does not decode.
	ErrUnsupportedVersion = errors.New("unsupported version")

	// ErrUnknownTag reports a discriminant with no fallback representation.
	ErrUnknownTag = errors.New("unknown tag")

	// ErrInvalidValue is returned by encoders for a value that could be
	// written but not read back, such as an operator token carrying a
	// payload kind or a collision mask of the wrong size.
	ErrInvalidValue = errors.New("invalid value")

	// ErrPatchMismatch is returned when a patch is applied to a buffer other
	// than the one it was created from, or produces the wrong result.
	ErrPatchMismatch = errors.New("patch does not match buffer")
)

// DecodeError describes where and why a decode stopped.
type DecodeError struct {
	Kind   error  // one of ErrCorruptData, ErrUnsupportedVersion, ErrUnknownTag
	Offset int    // byte offset of the failing read
	Entity string // dotted path of the entity being decoded, e.g. "layouts[2].layers[0]"
	Detail string
}

func (e *DecodeError) Error() string {
	if e.Entity == "" {
		return fmt.Sprintf("cstc: %v at offset 0x%X: %s", e.Kind, e.Offset, e.Detail)
	}
	return fmt.Sprintf("cstc: %v at offset 0x%X (%s): %s", e.Kind, e.Offset, e.Entity, e.Detail)
}

func (e *DecodeError) Unwrap() error {
	return e.Kind
}
