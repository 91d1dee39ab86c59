// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package cstc

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"

	"github.com/dsnet/compress/bzip2"
)

// Compression type constants
const (
	compressionNone  = 0x00 // Stored as is
	compressionZlib  = 0x02 // Zlib compression
	compressionBzip2 = 0x10 // BZip2 compression
)

// compressPayload compresses data with both zlib and bzip2 and keeps the
// smaller result. The result starts with the compression type byte; data
// that does not shrink is stored as is.
func compressPayload(data []byte) ([]byte, error) {
	best := make([]byte, 0, len(data)+1)
	best = append(best, compressionNone)
	best = append(best, data...)

	zlibData, err := compressZlib(data)
	if err != nil {
		return nil, err
	}
	if len(zlibData) < len(best) {
		best = zlibData
	}

	bzip2Data, err := compressBzip2(data)
	if err != nil {
		return nil, err
	}
	if len(bzip2Data) < len(best) {
		best = bzip2Data
	}

	return best, nil
}

// compressZlib compresses data using zlib, after the type byte
func compressZlib(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte(compressionZlib)

	w, err := zlib.NewWriterLevel(&buf, zlib.BestCompression)
	if err != nil {
		return nil, fmt.Errorf("create zlib writer: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("zlib write: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("zlib close: %w", err)
	}
	return buf.Bytes(), nil
}

// compressBzip2 compresses data using bzip2, after the type byte
func compressBzip2(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte(compressionBzip2)

	w, err := bzip2.NewWriter(&buf, &bzip2.WriterConfig{Level: bzip2.BestCompression})
	if err != nil {
		return nil, fmt.Errorf("create bzip2 writer: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("bzip2 write: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("bzip2 close: %w", err)
	}
	return buf.Bytes(), nil
}

// decompressPayload reverses compressPayload. The result must be exactly
// size bytes long.
func decompressPayload(data []byte, size uint64) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty compressed payload", ErrCorruptData)
	}

	// First byte is compression type
	compressionType := data[0]
	data = data[1:]

	var result []byte
	var err error

	switch compressionType {
	case compressionNone:
		result = data

	case compressionZlib:
		result, err = decompressZlib(data, size)

	case compressionBzip2:
		result, err = decompressBzip2(data, size)

	default:
		return nil, fmt.Errorf("%w: compression type 0x%02X", ErrUnknownTag, compressionType)
	}
	if err != nil {
		return nil, err
	}

	if uint64(len(result)) != size {
		return nil, fmt.Errorf("%w: payload is %d bytes, header says %d", ErrCorruptData, len(result), size)
	}

	return result, nil
}

// decompressZlib decompresses zlib-compressed data
func decompressZlib(data []byte, size uint64) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: create zlib reader: %v", ErrCorruptData, err)
	}
	defer r.Close()

	return readLimited(r, size, "zlib")
}

// decompressBzip2 decompresses bzip2-compressed data
func decompressBzip2(data []byte, size uint64) ([]byte, error) {
	r, err := bzip2.NewReader(bytes.NewReader(data), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create bzip2 reader: %v", ErrCorruptData, err)
	}
	defer r.Close()

	return readLimited(r, size, "bzip2")
}

// readLimited reads at most size+1 bytes so that an oversized stream is
// detected without unbounded allocation.
func readLimited(r io.Reader, size uint64, name string) ([]byte, error) {
	result, err := io.ReadAll(io.LimitReader(r, int64(size)+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %s decompress: %v", ErrCorruptData, name, err)
	}
	return result, nil
}
