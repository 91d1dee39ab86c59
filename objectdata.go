// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package cstc

// Plugin names whose instance data this package understands.
const (
	PluginText   = "Text"
	PluginSprite = "Sprite"
)

// Supported instance data versions.
const (
	textDataVersion   = 2
	spriteDataVersion = 5
)

// ObjectData is the decoded form of an ObjectInstance.Data blob. It is
// implemented by *TextObjectData, *SpriteObjectData and UnknownObjectData.
type ObjectData interface {
	objectData()
}

// TextObjectData is the instance data of the Text plugin.
type TextObjectData struct {
	Version         int32
	Text            string
	FontName        string
	Size            int32
	Italics         bool
	Bold            bool
	Color           int32
	Opacity         float32
	HorizontalAlign int32
	VerticalAlign   int32
	HideAtStart     bool
}

// SpriteObjectData is the instance data of the Sprite plugin.
type SpriteObjectData struct {
	Version               int32
	CollisionMode         int32
	AutoMirror            bool
	AutoFlip              bool
	AutoRotations         int32
	AutoRotationsCombo    int32
	HideAtStart           bool
	AnimationID           int32
	LockedAnimationAngles bool
	StartAnimation        string
	StartFrame            int32
	SkewX                 float32
	SkewY                 float32
}

// UnknownObjectData is instance data of a plugin this package does not
// decode. It is re-encoded byte for byte.
type UnknownObjectData []byte

func (*TextObjectData) objectData()   {}
func (*SpriteObjectData) objectData() {}
func (UnknownObjectData) objectData() {}

// DecodeObjectData decodes an instance data blob owned by the named plugin.
// Plugins other than Text and Sprite yield UnknownObjectData holding data
// unchanged.
func DecodeObjectData(plugin string, data []byte) (ObjectData, error) {
	var r *Reader
	var d ObjectData
	switch plugin {
	case PluginText:
		r = NewReader(data)
		r.enter("text", -1)
		d = readTextObjectData(r)
	case PluginSprite:
		r = NewReader(data)
		r.enter("sprite", -1)
		d = readSpriteObjectData(r)
	default:
		return UnknownObjectData(data), nil
	}
	if err := r.Finish(); err != nil {
		return nil, err
	}
	return d, nil
}

// EncodeObjectData encodes instance data for storage in ObjectInstance.Data.
func EncodeObjectData(d ObjectData) []byte {
	switch v := d.(type) {
	case *TextObjectData:
		w := NewWriter(64)
		writeTextObjectData(w, v)
		return w.Bytes()
	case *SpriteObjectData:
		w := NewWriter(64)
		writeSpriteObjectData(w, v)
		return w.Bytes()
	case UnknownObjectData:
		return []byte(v)
	}
	return nil
}

// readVersion reads the leading version field and fails unless it equals
// want.
func readVersion(r *Reader, want int32) int32 {
	v := r.ReadI32()
	if r.err == nil && v != want {
		r.pos -= 4
		r.fail(ErrUnsupportedVersion, "version %d, want %d", v, want)
	}
	return v
}

func readTextObjectData(r *Reader) *TextObjectData {
	t := &TextObjectData{}
	t.Version = readVersion(r, textDataVersion)
	if r.err != nil {
		return t
	}
	t.Text = r.ReadString()
	t.FontName = r.ReadString()
	t.Size = r.ReadI32()
	t.Italics = r.ReadBool()
	t.Bold = r.ReadBool()
	t.Color = r.ReadI32()
	t.Opacity = r.ReadF32()
	t.HorizontalAlign = r.ReadI32()
	t.VerticalAlign = r.ReadI32()
	t.HideAtStart = r.ReadBool()
	return t
}

func writeTextObjectData(w *Writer, t *TextObjectData) {
	w.WriteI32(t.Version)
	w.WriteString(t.Text)
	w.WriteString(t.FontName)
	w.WriteI32(t.Size)
	w.WriteBool(t.Italics)
	w.WriteBool(t.Bold)
	w.WriteI32(t.Color)
	w.WriteF32(t.Opacity)
	w.WriteI32(t.HorizontalAlign)
	w.WriteI32(t.VerticalAlign)
	w.WriteBool(t.HideAtStart)
}

func readSpriteObjectData(r *Reader) *SpriteObjectData {
	s := &SpriteObjectData{}
	s.Version = readVersion(r, spriteDataVersion)
	if r.err != nil {
		return s
	}
	s.CollisionMode = r.ReadI32()
	s.AutoMirror = r.ReadBool()
	s.AutoFlip = r.ReadBool()
	s.AutoRotations = r.ReadI32()
	s.AutoRotationsCombo = r.ReadI32()
	s.HideAtStart = r.ReadBool()
	s.AnimationID = r.ReadI32()
	s.LockedAnimationAngles = r.ReadBool()
	s.StartAnimation = r.ReadString()
	s.StartFrame = r.ReadI32()
	s.SkewX = r.ReadF32()
	s.SkewY = r.ReadF32()
	return s
}

func writeSpriteObjectData(w *Writer, s *SpriteObjectData) {
	w.WriteI32(s.Version)
	w.WriteI32(s.CollisionMode)
	w.WriteBool(s.AutoMirror)
	w.WriteBool(s.AutoFlip)
	w.WriteI32(s.AutoRotations)
	w.WriteI32(s.AutoRotationsCombo)
	w.WriteBool(s.HideAtStart)
	w.WriteI32(s.AnimationID)
	w.WriteBool(s.LockedAnimationAngles)
	w.WriteString(s.StartAnimation)
	w.WriteI32(s.StartFrame)
	w.WriteF32(s.SkewX)
	w.WriteF32(s.SkewY)
}

// NewTextObjectData returns text data at the supported version.
func NewTextObjectData() *TextObjectData {
	return &TextObjectData{Version: textDataVersion, Opacity: 1}
}

// NewSpriteObjectData returns sprite data at the supported version.
func NewSpriteObjectData() *SpriteObjectData {
	return &SpriteObjectData{Version: spriteDataVersion}
}
