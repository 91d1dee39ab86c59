// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package cstc

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/gabstv/go-bsdiff/pkg/bsdiff"
	"github.com/gabstv/go-bsdiff/pkg/bspatch"
	"golang.org/x/crypto/blake2b"
)

// PatchMethod is the way a patch describes its target.
type PatchMethod uint8

const (
	// PatchIdentical means the target equals the base.
	PatchIdentical PatchMethod = methodIdentical
	// PatchLiteral means the payload is the complete target.
	PatchLiteral PatchMethod = methodLiteral
	// PatchBsdiff means the payload is a binary delta against the base.
	PatchBsdiff PatchMethod = methodBsdiff
)

func (m PatchMethod) String() string {
	switch m {
	case PatchIdentical:
		return "identical"
	case PatchLiteral:
		return "literal"
	case PatchBsdiff:
		return "bsdiff"
	}
	return fmt.Sprintf("PatchMethod(%d)", uint8(m))
}

// PatchInfo describes a patch without applying it.
type PatchInfo struct {
	Method         PatchMethod
	BaseSize       uint64
	TargetSize     uint64
	PayloadSize    uint64 // uncompressed
	CompressedSize int    // bytes following the header
	BaseSum        [32]byte
	TargetSum      [32]byte
}

// Matches reports whether the patch was made against base.
func (p *PatchInfo) Matches(base []byte) bool {
	return uint64(len(base)) == p.BaseSize && sum256(base) == p.BaseSum
}

// sum256 is the checksum patches record for their base and target.
func sum256(b []byte) [32]byte {
	return blake2b.Sum256(b)
}

// Diff returns a compressed patch that turns oldBuf into newBuf.
func Diff(oldBuf, newBuf []byte) ([]byte, error) {
	h := &patchHeader{
		Magic:      patchMagic,
		Version:    patchVersion,
		BaseSize:   uint64(len(oldBuf)),
		TargetSize: uint64(len(newBuf)),
		BaseSum:    sum256(oldBuf),
		TargetSum:  sum256(newBuf),
	}

	var payload []byte
	switch {
	case bytes.Equal(oldBuf, newBuf):
		h.Method = methodIdentical
	case len(oldBuf) == 0 || len(newBuf) == 0:
		// bsdiff has nothing to match against; ship the target itself.
		h.Method = methodLiteral
		payload = newBuf
	default:
		delta, err := bsdiff.Bytes(oldBuf, newBuf)
		if err != nil {
			return nil, fmt.Errorf("bsdiff: %w", err)
		}
		h.Method = methodBsdiff
		payload = delta
		if len(delta) >= len(newBuf) {
			h.Method = methodLiteral
			payload = newBuf
		}
	}
	h.PayloadSize = uint64(len(payload))

	var buf bytes.Buffer
	if err := writePatchHeader(&buf, h); err != nil {
		return nil, fmt.Errorf("write patch header: %w", err)
	}
	if h.Method != methodIdentical {
		compressed, err := compressPayload(payload)
		if err != nil {
			return nil, fmt.Errorf("compress payload: %w", err)
		}
		buf.Write(compressed)
	}
	return buf.Bytes(), nil
}

// ApplyPatch applies a patch made by Diff to current and returns the target.
// It fails with ErrPatchMismatch if current is not the patch's base.
func ApplyPatch(current, patch []byte) ([]byte, error) {
	info, payload, err := parsePatch(patch)
	if err != nil {
		return nil, err
	}
	if !info.Matches(current) {
		return nil, fmt.Errorf("%w: base is %d bytes, patch expects %d bytes with checksum %x",
			ErrPatchMismatch, len(current), info.BaseSize, info.BaseSum[:8])
	}

	var target []byte
	switch info.Method {
	case PatchIdentical:
		if len(payload) != 0 {
			return nil, fmt.Errorf("%w: identical patch carries %d payload bytes", ErrCorruptData, len(payload))
		}
		target = append([]byte(nil), current...)

	case PatchLiteral, PatchBsdiff:
		data, err := decompressPayload(payload, info.PayloadSize)
		if err != nil {
			return nil, fmt.Errorf("patch payload: %w", err)
		}
		if info.Method == PatchLiteral {
			target = data
			break
		}
		target, err = bspatch.Bytes(current, data)
		if err != nil {
			return nil, fmt.Errorf("%w: bspatch: %v", ErrCorruptData, err)
		}
	}

	if uint64(len(target)) != info.TargetSize || sum256(target) != info.TargetSum {
		return nil, fmt.Errorf("%w: result does not match target checksum", ErrPatchMismatch)
	}
	return target, nil
}

// ReadPatchInfo parses the header of a patch.
func ReadPatchInfo(patch []byte) (*PatchInfo, error) {
	info, _, err := parsePatch(patch)
	return info, err
}

func parsePatch(patch []byte) (*PatchInfo, []byte, error) {
	if len(patch) < patchHeaderSize {
		return nil, nil, fmt.Errorf("%w: patch is %d bytes, header needs %d", ErrCorruptData, len(patch), patchHeaderSize)
	}
	h, err := readPatchHeader(bytes.NewReader(patch))
	if err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, nil, fmt.Errorf("%w: truncated patch header", ErrCorruptData)
		}
		return nil, nil, fmt.Errorf("read patch header: %w", err)
	}

	if h.Magic != patchMagic {
		return nil, nil, fmt.Errorf("%w: invalid patch magic: 0x%08X", ErrCorruptData, h.Magic)
	}

	if h.Version != patchVersion {
		return nil, nil, fmt.Errorf("%w: patch format version %d", ErrUnsupportedVersion, h.Version)
	}

	method := PatchMethod(h.Method)
	switch method {
	case PatchIdentical, PatchLiteral, PatchBsdiff:
	default:
		return nil, nil, fmt.Errorf("%w: patch method %d", ErrUnknownTag, h.Method)
	}

	payload := patch[patchHeaderSize:]
	return &PatchInfo{
		Method:         method,
		BaseSize:       h.BaseSize,
		TargetSize:     h.TargetSize,
		PayloadSize:    h.PayloadSize,
		CompressedSize: len(payload),
		BaseSum:        h.BaseSum,
		TargetSum:      h.TargetSum,
	}, payload, nil
}
