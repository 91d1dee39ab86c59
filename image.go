// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package cstc

import "fmt"

// ImageBlock holds every image resource of a game.
type ImageBlock struct {
	Images []ImageResource
}

// ActionPoint is a named point on an image.
type ActionPoint struct {
	X    int32
	Y    int32
	Name string
}

// ImageResource is one image: its pixel data, hotspot, action points and
// collision mask.
type ImageResource struct {
	ID              int32
	HotspotX        int32
	HotspotY        int32
	ActionPoints    []ActionPoint
	Data            []byte
	CollisionWidth  uint32
	CollisionHeight uint32
	CollisionPitch  int32
	CollisionMask   []byte // exactly CollisionPitch * CollisionHeight bytes
}

// ImageMetadata is an ImageResource without its pixel data.
type ImageMetadata struct {
	ID              int32
	HotspotX        int32
	HotspotY        int32
	ActionPoints    []ActionPoint
	CollisionWidth  uint32
	CollisionHeight uint32
	CollisionPitch  int32
	CollisionMask   []byte
}

// NewImageResource joins metadata and pixel data. It is the inverse of Split.
func NewImageResource(meta ImageMetadata, data []byte) ImageResource {
	return ImageResource{
		ID:              meta.ID,
		HotspotX:        meta.HotspotX,
		HotspotY:        meta.HotspotY,
		ActionPoints:    meta.ActionPoints,
		Data:            data,
		CollisionWidth:  meta.CollisionWidth,
		CollisionHeight: meta.CollisionHeight,
		CollisionPitch:  meta.CollisionPitch,
		CollisionMask:   meta.CollisionMask,
	}
}

// Split separates the metadata from the pixel data.
func (img ImageResource) Split() (ImageMetadata, []byte) {
	return ImageMetadata{
		ID:              img.ID,
		HotspotX:        img.HotspotX,
		HotspotY:        img.HotspotY,
		ActionPoints:    img.ActionPoints,
		CollisionWidth:  img.CollisionWidth,
		CollisionHeight: img.CollisionHeight,
		CollisionPitch:  img.CollisionPitch,
		CollisionMask:   img.CollisionMask,
	}, img.Data
}

// Collides reports whether the collision mask bit at (x, y) is set. Bits are
// packed most significant first within each byte. Points outside the mask
// never collide.
func (m ImageMetadata) Collides(x, y int) bool {
	if x < 0 || y < 0 || uint64(x) >= uint64(m.CollisionWidth) || uint64(y) >= uint64(m.CollisionHeight) {
		return false
	}
	idx := y*int(m.CollisionPitch) + x/8
	if idx < 0 || idx >= len(m.CollisionMask) {
		return false
	}
	return m.CollisionMask[idx]&(0x80>>(x%8)) != 0
}

// DecodeImageBlock decodes an image block.
func DecodeImageBlock(data []byte) (*ImageBlock, error) {
	r := NewReader(data)
	r.enter("imageblock", -1)
	b := &ImageBlock{}
	n := r.ReadI32()
	if r.err == nil && n < 0 {
		r.pos -= 4
		r.fail(ErrCorruptData, "negative image count %d", n)
	}
	if r.err == nil {
		b.Images = readItems(r, "images", int64(n), readImageResource)
	}
	if err := r.Finish(); err != nil {
		return nil, err
	}
	return b, nil
}

// EncodeImageBlock encodes an image block. A collision mask whose length
// does not match its pitch and height is rejected, since the decoder sizes
// the mask from those fields.
func EncodeImageBlock(b *ImageBlock) ([]byte, error) {
	size := 4
	for i := range b.Images {
		img := &b.Images[i]
		if err := img.checkMask(); err != nil {
			return nil, fmt.Errorf("image %d: %w", img.ID, err)
		}
		size += len(img.Data) + len(img.CollisionMask) + 32
	}
	w := NewWriter(size)
	w.WriteI32(int32(len(b.Images)))
	for _, img := range b.Images {
		writeImageResource(w, img)
	}
	return w.Bytes(), nil
}

func (img *ImageResource) checkMask() error {
	if img.CollisionPitch < 0 {
		return fmt.Errorf("%w: negative collision pitch %d", ErrInvalidValue, img.CollisionPitch)
	}
	want := uint64(img.CollisionPitch) * uint64(img.CollisionHeight)
	if uint64(len(img.CollisionMask)) != want {
		return fmt.Errorf("%w: collision mask is %d bytes, pitch %d x height %d needs %d",
			ErrInvalidValue, len(img.CollisionMask), img.CollisionPitch, img.CollisionHeight, want)
	}
	return nil
}

func (b *ImageBlock) Kind() BlockKind { return ImageBlockKind }

func (b *ImageBlock) MarshalBinary() ([]byte, error) {
	return EncodeImageBlock(b)
}

func (b *ImageBlock) UnmarshalBinary(data []byte) error {
	dec, err := DecodeImageBlock(data)
	if err != nil {
		return err
	}
	*b = *dec
	return nil
}

// Image returns the image with the given id.
func (b *ImageBlock) Image(id int32) (*ImageResource, bool) {
	for i := range b.Images {
		if b.Images[i].ID == id {
			return &b.Images[i], true
		}
	}
	return nil, false
}

func readImageResource(r *Reader) ImageResource {
	img := ImageResource{}
	img.ID = r.ReadI32()
	img.HotspotX = r.ReadI32()
	img.HotspotY = r.ReadI32()
	img.ActionPoints = ReadCollection(r, "action_points", readActionPoint)
	img.Data = r.ReadBlob()
	img.CollisionWidth = r.ReadU32()
	img.CollisionHeight = r.ReadU32()
	img.CollisionPitch = r.ReadI32()
	if r.err != nil {
		return img
	}

	// The mask has no length prefix; its size follows from pitch and height.
	if img.CollisionPitch < 0 {
		r.pos -= 4
		r.fail(ErrCorruptData, "negative collision pitch %d", img.CollisionPitch)
		return img
	}
	size := uint64(img.CollisionPitch) * uint64(img.CollisionHeight)
	if size > uint64(r.Remaining()) {
		r.fail(ErrCorruptData, "collision mask of %d bytes exceeds %d remaining bytes", size, r.Remaining())
		return img
	}
	img.CollisionMask = r.ReadBytes(int(size))
	return img
}

func writeImageResource(w *Writer, img ImageResource) {
	w.WriteI32(img.ID)
	w.WriteI32(img.HotspotX)
	w.WriteI32(img.HotspotY)
	WriteCollection(w, img.ActionPoints, writeActionPoint)
	w.WriteBlob(img.Data)
	w.WriteU32(img.CollisionWidth)
	w.WriteU32(img.CollisionHeight)
	w.WriteI32(img.CollisionPitch)
	w.WriteBytes(img.CollisionMask)
}

func readActionPoint(r *Reader) ActionPoint {
	return ActionPoint{
		X:    r.ReadI32(),
		Y:    r.ReadI32(),
		Name: r.ReadString(),
	}
}

func writeActionPoint(w *Writer, p ActionPoint) {
	w.WriteI32(p.X)
	w.WriteI32(p.Y)
	w.WriteString(p.Name)
}
