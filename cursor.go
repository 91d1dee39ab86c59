// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package cstc

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

// pathFrame is one element of the entity path kept by a Reader.
// index is -1 for named entities that are not collection items.
type pathFrame struct {
	name  string
	index int
}

// Reader is a little-endian cursor over a borrowed byte slice.
//
// Errors are sticky: the first failed read records a *DecodeError and every
// later read returns a zero value without moving the cursor. Callers check
// Err once at the end of a block (or inside loops that could otherwise spin).
type Reader struct {
	buf  []byte
	pos  int
	err  error
	path []pathFrame
}

// NewReader returns a Reader positioned at the start of buf.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Err returns the first error encountered, if any.
func (r *Reader) Err() error {
	return r.err
}

// Offset returns the current cursor position.
func (r *Reader) Offset() int {
	return r.pos
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.pos
}

// Finish fails the reader if any bytes are left unread and returns Err.
func (r *Reader) Finish() error {
	if r.err == nil && r.pos != len(r.buf) {
		r.fail(ErrCorruptData, "%d trailing bytes", len(r.buf)-r.pos)
	}
	return r.err
}

func (r *Reader) enter(name string, index int) {
	r.path = append(r.path, pathFrame{name: name, index: index})
}

func (r *Reader) leave() {
	r.path = r.path[:len(r.path)-1]
}

func (r *Reader) entity() string {
	var sb strings.Builder
	for i, f := range r.path {
		if i > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(f.name)
		if f.index >= 0 {
			fmt.Fprintf(&sb, "[%d]", f.index)
		}
	}
	return sb.String()
}

// fail records the first error only.
func (r *Reader) fail(kind error, format string, args ...any) {
	if r.err != nil {
		return
	}
	r.err = &DecodeError{
		Kind:   kind,
		Offset: r.pos,
		Entity: r.entity(),
		Detail: fmt.Sprintf(format, args...),
	}
}

// take consumes n bytes, or fails and returns nil.
func (r *Reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || n > len(r.buf)-r.pos {
		r.fail(ErrCorruptData, "need %d bytes, %d left", n, len(r.buf)-r.pos)
		return nil
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b
}

// PeekU8 returns the next byte without consuming it.
func (r *Reader) PeekU8() uint8 {
	if r.err != nil {
		return 0
	}
	if r.pos >= len(r.buf) {
		r.fail(ErrCorruptData, "unexpected end of buffer")
		return 0
	}
	return r.buf[r.pos]
}

func (r *Reader) ReadU8() uint8 {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

// ReadBool reads one byte that must be 0 or 1. Any other value would not
// survive re-encoding and is rejected.
func (r *Reader) ReadBool() bool {
	b := r.ReadU8()
	if b > 1 {
		r.pos--
		r.fail(ErrCorruptData, "invalid bool byte 0x%02X", b)
		return false
	}
	return b == 1
}

func (r *Reader) ReadU32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (r *Reader) ReadI32() int32 {
	return int32(r.ReadU32())
}

func (r *Reader) ReadI64() int64 {
	b := r.take(8)
	if b == nil {
		return 0
	}
	return int64(binary.LittleEndian.Uint64(b))
}

func (r *Reader) ReadF32() float32 {
	return math.Float32frombits(r.ReadU32())
}

func (r *Reader) ReadF64() float64 {
	return math.Float64frombits(uint64(r.ReadI64()))
}

// ReadBytes consumes n raw bytes and returns a copy of them. Zero bytes
// read as nil.
func (r *Reader) ReadBytes(n int) []byte {
	b := r.take(n)
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, n)
	copy(out, b)
	return out
}

// ReadBlob reads a u32 length followed by that many bytes.
func (r *Reader) ReadBlob() []byte {
	n := r.ReadU32()
	if r.err != nil {
		return nil
	}
	if uint64(n) > uint64(r.Remaining()) {
		r.fail(ErrCorruptData, "blob length %d exceeds %d remaining bytes", n, r.Remaining())
		return nil
	}
	return r.ReadBytes(int(n))
}

// ReadString reads a u32 length L that counts the NUL terminator, then L
// bytes. The bytes before the terminator are returned unchanged, so strings
// that are not valid UTF-8 still survive a round trip.
func (r *Reader) ReadString() string {
	start := r.pos
	n := r.ReadU32()
	if r.err != nil {
		return ""
	}
	if n == 0 {
		r.pos = start
		r.fail(ErrCorruptData, "string length 0 has no room for a terminator")
		return ""
	}
	if uint64(n) > uint64(r.Remaining()) {
		r.fail(ErrCorruptData, "string length %d exceeds %d remaining bytes", n, r.Remaining())
		return ""
	}
	b := r.take(int(n))
	if b[n-1] != 0 {
		r.pos -= int(n)
		r.fail(ErrCorruptData, "string missing NUL terminator")
		return ""
	}
	return string(b[:n-1])
}

// expect consumes one sentinel byte and fails if it is not s.
func (r *Reader) expect(s Sentinel) {
	if r.err != nil {
		return
	}
	got := r.PeekU8()
	if r.err != nil {
		return
	}
	if Sentinel(got) != s {
		r.fail(ErrCorruptData, "expected %v, found 0x%02X", s, got)
		return
	}
	r.pos++
}

// at reports whether the next byte is s. It returns false once the reader
// has failed, so peek loops always terminate.
func (r *Reader) at(s Sentinel) bool {
	b := r.PeekU8()
	return r.err == nil && Sentinel(b) == s
}

// ReadCollection reads a u32 count followed by that many items. name labels
// the collection in error paths.
func ReadCollection[T any](r *Reader, name string, item func(*Reader) T) []T {
	n := r.ReadU32()
	if r.err != nil {
		return nil
	}
	return readItems(r, name, int64(n), item)
}

// readItems reads n items that have already been counted.
func readItems[T any](r *Reader, name string, n int64, item func(*Reader) T) []T {
	// Every item occupies at least one byte; cap the allocation so a corrupt
	// count cannot demand more memory than the input could describe.
	if n > int64(r.Remaining()) {
		r.fail(ErrCorruptData, "%s count %d exceeds %d remaining bytes", name, n, r.Remaining())
		return nil
	}
	if n == 0 {
		return nil
	}
	items := make([]T, 0, n)
	for i := int64(0); i < n && r.err == nil; i++ {
		r.enter(name, int(i))
		items = append(items, item(r))
		r.leave()
	}
	return items
}

// Writer is a little-endian cursor over a growable buffer it owns.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty Writer with room for sizeHint bytes.
func NewWriter(sizeHint int) *Writer {
	return &Writer{buf: make([]byte, 0, sizeHint)}
}

// Bytes returns the written bytes. The Writer must not be used afterwards.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return len(w.buf)
}

func (w *Writer) WriteU8(v uint8) {
	w.buf = append(w.buf, v)
}

func (w *Writer) WriteBool(v bool) {
	if v {
		w.WriteU8(1)
	} else {
		w.WriteU8(0)
	}
}

func (w *Writer) WriteU32(v uint32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

func (w *Writer) WriteI32(v int32) {
	w.WriteU32(uint32(v))
}

func (w *Writer) WriteI64(v int64) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, uint64(v))
}

func (w *Writer) WriteF32(v float32) {
	w.WriteU32(math.Float32bits(v))
}

func (w *Writer) WriteF64(v float64) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, math.Float64bits(v))
}

func (w *Writer) WriteBytes(b []byte) {
	w.buf = append(w.buf, b...)
}

// WriteBlob writes a u32 length followed by b.
func (w *Writer) WriteBlob(b []byte) {
	w.WriteU32(uint32(len(b)))
	w.WriteBytes(b)
}

// WriteString writes len(s)+1 as u32, the bytes of s, then a NUL.
func (w *Writer) WriteString(s string) {
	w.WriteU32(uint32(len(s) + 1))
	w.buf = append(w.buf, s...)
	w.buf = append(w.buf, 0)
}

func (w *Writer) writeSentinel(s Sentinel) {
	w.WriteU8(uint8(s))
}

// WriteCollection writes a u32 count followed by each item.
func WriteCollection[T any](w *Writer, items []T, item func(*Writer, T)) {
	w.WriteU32(uint32(len(items)))
	for _, it := range items {
		item(w, it)
	}
}
