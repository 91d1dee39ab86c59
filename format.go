// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package cstc

import (
	"encoding/binary"
	"fmt"
	"io"
	"strings"
)

// Sentinel is a single reserved byte that opens or closes a scope in the
// event block.
type Sentinel uint8

const (
	CapBeginEventList  Sentinel = 1
	CapBeginEvent      Sentinel = 2
	CapBeginConditions Sentinel = 3
	CapBeginCondition  Sentinel = 4
	CapBeginParam      Sentinel = 5 // reserved, never emitted
	CapEndParam        Sentinel = 6 // reserved, never emitted
	CapEndCondition    Sentinel = 7
	CapEndConditions   Sentinel = 8
	CapBeginActions    Sentinel = 9
	CapBeginAction     Sentinel = 10
	CapEndAction       Sentinel = 11
	CapEndActions      Sentinel = 12
	CapEndEvent        Sentinel = 13
	CapEndEventList    Sentinel = 14
	CapBeginGroup      Sentinel = 15
	CapEndGroup        Sentinel = 16
)

var sentinelNames = [...]string{
	CapBeginEventList:  "BEGINEVENTLIST",
	CapBeginEvent:      "BEGINEVENT",
	CapBeginConditions: "BEGINCONDITIONS",
	CapBeginCondition:  "BEGINCONDITION",
	CapBeginParam:      "BEGINPARAM",
	CapEndParam:        "ENDPARAM",
	CapEndCondition:    "ENDCONDITION",
	CapEndConditions:   "ENDCONDITIONS",
	CapBeginActions:    "BEGINACTIONS",
	CapBeginAction:     "BEGINACTION",
	CapEndAction:       "ENDACTION",
	CapEndActions:      "ENDACTIONS",
	CapEndEvent:        "ENDEVENT",
	CapEndEventList:    "ENDEVENTLIST",
	CapBeginGroup:      "BEGINGROUP",
	CapEndGroup:        "ENDGROUP",
}

func (s Sentinel) String() string {
	if int(s) < len(sentinelNames) && sentinelNames[s] != "" {
		return fmt.Sprintf("%s (0x%02X)", sentinelNames[s], uint8(s))
	}
	return fmt.Sprintf("Sentinel(0x%02X)", uint8(s))
}

// BlockKind identifies one of the four data blocks embedded in a compiled
// game executable.
type BlockKind int

const (
	AppBlockKind BlockKind = iota
	LevelBlockKind
	EventBlockKind
	ImageBlockKind
)

// BlockKinds lists every block kind in resource order.
var BlockKinds = []BlockKind{AppBlockKind, LevelBlockKind, EventBlockKind, ImageBlockKind}

// ResourceName returns the executable resource type name holding the block.
func (k BlockKind) ResourceName() string {
	switch k {
	case AppBlockKind:
		return "APPBLOCK"
	case LevelBlockKind:
		return "LEVELBLOCK"
	case EventBlockKind:
		return "EVENTBLOCK"
	case ImageBlockKind:
		return "IMAGEBLOCK"
	}
	return fmt.Sprintf("BLOCK%d", int(k))
}

// ResourceID returns the executable resource id holding the block.
func (k BlockKind) ResourceID() uint16 {
	switch k {
	case AppBlockKind:
		return 997
	case LevelBlockKind:
		return 998
	case EventBlockKind:
		return 999
	case ImageBlockKind:
		return 995
	}
	return 0
}

func (k BlockKind) String() string {
	return k.ResourceName()
}

// ParseBlockKind accepts a resource name such as "LEVELBLOCK" or a short
// name such as "level", in any case.
func ParseBlockKind(name string) (BlockKind, error) {
	name = strings.ToUpper(name)
	for _, k := range BlockKinds {
		if name == k.ResourceName() || name+"BLOCK" == k.ResourceName() {
			return k, nil
		}
	}
	if name == "EVENTS" {
		return EventBlockKind, nil
	}
	if name == "IMAGES" {
		return ImageBlockKind, nil
	}
	return 0, fmt.Errorf("unknown block %q", name)
}

// Patch format constants
const (
	// Magic signature "CSTP" in little-endian
	patchMagic = 0x50545343

	patchVersion = 1

	// Delta methods
	methodIdentical = 0 // Target equals base, no payload
	methodLiteral   = 1 // Payload is the whole target
	methodBsdiff    = 2 // Payload is a bsdiff delta against the base

	patchHeaderSize = 0x60 // 96 bytes
)

// patchHeader is the fixed header at the start of every patch.
type patchHeader struct {
	Magic       uint32   // "CSTP"
	Version     uint16   // Format version
	Method      uint8    // Delta method
	Reserved    uint8    // Always 0
	BaseSize    uint64   // Length of the buffer the patch applies to
	TargetSize  uint64   // Length of the buffer the patch produces
	PayloadSize uint64   // Uncompressed payload length
	BaseSum     [32]byte // BLAKE2b-256 of the base
	TargetSum   [32]byte // BLAKE2b-256 of the target
}

// readPatchHeader reads a patch header from a reader
func readPatchHeader(r io.Reader) (*patchHeader, error) {
	h := &patchHeader{}
	if err := binary.Read(r, binary.LittleEndian, h); err != nil {
		return nil, err
	}
	return h, nil
}

// writePatchHeader writes a patch header to a writer
func writePatchHeader(w io.Writer, h *patchHeader) error {
	return binary.Write(w, binary.LittleEndian, h)
}
