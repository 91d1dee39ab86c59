// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

/*
Package cstc reads and writes the data blocks of compiled CSTC games.

A compiled game carries four binary blocks as executable resources: the
application block (project settings), the level block (object catalog,
layouts and animations), the event block (event sheets) and the image block
(image resources and collision masks). This package decodes each block into
plain Go values and encodes them back to exactly the same bytes.

# Features

  - Bit-exact decode and encode of all four blocks
  - Decoding of Text and Sprite instance data; other plugins pass through
  - Binary patches between two versions of a block, with checksums
  - Patch chains for applying several patches in order
  - YAML dumps of decoded blocks

# Basic Usage

Decoding and re-encoding a block:

	data, err := os.ReadFile("EVENTBLOCK.bin")
	if err != nil {
		log.Fatal(err)
	}
	events, err := cstc.DecodeEventBlock(data)
	if err != nil {
		log.Fatal(err)
	}
	out, err := cstc.EncodeEventBlock(events)

Loading every block of a game extracted to a directory:

	project, err := cstc.LoadProject(cstc.NewDirStore("extracted"))
	if err != nil {
		log.Fatal(err)
	}

Creating and applying a patch:

	patch, err := cstc.Diff(vanilla, modded)
	if err != nil {
		log.Fatal(err)
	}
	result, err := cstc.ApplyPatch(vanilla, patch)

# Errors

Decode failures are *DecodeError values carrying the byte offset and the
path of the entity being decoded. They match ErrCorruptData,
ErrUnsupportedVersion or ErrUnknownTag with errors.Is.

# Strings

Strings are stored length-prefixed and NUL-terminated. The bytes before the
terminator are kept as they are, so strings in legacy code pages survive a
round trip unchanged.

# Limitations

  - Reading and writing executable resources is left to the caller
  - Plugin DLLs are never loaded; plugin names come from a PluginNamer
  - Colors in expressions decode as plain integers
*/
package cstc
