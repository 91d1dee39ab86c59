// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package cstc

// AppBlock holds the global project settings.
type AppBlock struct {
	Name                string
	WindowWidth         int32
	WindowHeight        int32
	EyeDistance         float32
	ShowMenu            bool
	Screensaver         bool
	FPSMode             uint8
	FPS                 int32
	Fullscreen          bool
	Sampler             int32
	GlobalVariables     []GlobalVariable
	BehaviorControls    []BehaviorControl
	DisableWindowsKey   bool
	DataKeys            []DataKey
	SimulateShaders     int32
	OriginalProjectPath string
	FPSInCaption        int32
	UseMotionBlur       bool
	MotionBlurSteps     int32
	TextRenderingMode   int32
	OverrideTimeDelta   bool
	TimeDeltaOverride   float32
	Caption             bool
	MinimizeBox         bool
	ResizeMode          int32
	MaximizeBox         bool
	MinimumFPS          float32
	Multisamples        int32
	TextureLoadingMode  int32
}

// GlobalVariable is a project-wide variable with its initial value.
type GlobalVariable struct {
	Name  string
	Type  int32
	Value string
}

// BehaviorControl binds a named behavior control to a virtual key.
type BehaviorControl struct {
	Name       string
	VirtualKey int32
	Player     int32
}

// DataKey is a named value the runtime exposes to plugins. Tag 0 selects
// the pointer form; any other tag selects the string form. The tag is kept
// as read so that unusual nonzero tags re-encode unchanged.
type DataKey struct {
	Tag     int32
	Name    string
	Pointer uint32
	String  string
}

// IsString reports whether the key carries a string value.
func (k DataKey) IsString() bool {
	return k.Tag != dataKeyPointer
}

// PointerKey returns a pointer-form data key.
func PointerKey(name string, v uint32) DataKey {
	return DataKey{Tag: dataKeyPointer, Name: name, Pointer: v}
}

// StringKey returns a string-form data key.
func StringKey(name, v string) DataKey {
	return DataKey{Tag: dataKeyString, Name: name, String: v}
}

const (
	dataKeyPointer = 0
	dataKeyString  = 1
)

// DecodeAppBlock decodes an application block.
func DecodeAppBlock(data []byte) (*AppBlock, error) {
	r := NewReader(data)
	r.enter("appblock", -1)
	a := readAppBlock(r)
	if err := r.Finish(); err != nil {
		return nil, err
	}
	return a, nil
}

// EncodeAppBlock encodes an application block.
func EncodeAppBlock(a *AppBlock) []byte {
	w := NewWriter(256)
	writeAppBlock(w, a)
	return w.Bytes()
}

func (a *AppBlock) Kind() BlockKind { return AppBlockKind }

func (a *AppBlock) MarshalBinary() ([]byte, error) {
	return EncodeAppBlock(a), nil
}

func (a *AppBlock) UnmarshalBinary(data []byte) error {
	dec, err := DecodeAppBlock(data)
	if err != nil {
		return err
	}
	*a = *dec
	return nil
}

func readAppBlock(r *Reader) *AppBlock {
	a := &AppBlock{}
	a.Name = r.ReadString()
	a.WindowWidth = r.ReadI32()
	a.WindowHeight = r.ReadI32()
	a.EyeDistance = r.ReadF32()
	a.ShowMenu = r.ReadBool()
	a.Screensaver = r.ReadBool()
	a.FPSMode = r.ReadU8()
	a.FPS = r.ReadI32()
	a.Fullscreen = r.ReadBool()
	a.Sampler = r.ReadI32()
	a.GlobalVariables = ReadCollection(r, "globals", readGlobalVariable)
	a.BehaviorControls = ReadCollection(r, "controls", readBehaviorControl)
	a.DisableWindowsKey = r.ReadBool()
	a.DataKeys = ReadCollection(r, "data_keys", readDataKey)
	a.SimulateShaders = r.ReadI32()
	a.OriginalProjectPath = r.ReadString()
	a.FPSInCaption = r.ReadI32()
	a.UseMotionBlur = r.ReadBool()
	a.MotionBlurSteps = r.ReadI32()
	a.TextRenderingMode = r.ReadI32()
	a.OverrideTimeDelta = r.ReadBool()
	a.TimeDeltaOverride = r.ReadF32()
	a.Caption = r.ReadBool()
	a.MinimizeBox = r.ReadBool()
	a.ResizeMode = r.ReadI32()
	a.MaximizeBox = r.ReadBool()
	a.MinimumFPS = r.ReadF32()
	a.Multisamples = r.ReadI32()
	a.TextureLoadingMode = r.ReadI32()
	return a
}

func writeAppBlock(w *Writer, a *AppBlock) {
	w.WriteString(a.Name)
	w.WriteI32(a.WindowWidth)
	w.WriteI32(a.WindowHeight)
	w.WriteF32(a.EyeDistance)
	w.WriteBool(a.ShowMenu)
	w.WriteBool(a.Screensaver)
	w.WriteU8(a.FPSMode)
	w.WriteI32(a.FPS)
	w.WriteBool(a.Fullscreen)
	w.WriteI32(a.Sampler)
	WriteCollection(w, a.GlobalVariables, writeGlobalVariable)
	WriteCollection(w, a.BehaviorControls, writeBehaviorControl)
	w.WriteBool(a.DisableWindowsKey)
	WriteCollection(w, a.DataKeys, writeDataKey)
	w.WriteI32(a.SimulateShaders)
	w.WriteString(a.OriginalProjectPath)
	w.WriteI32(a.FPSInCaption)
	w.WriteBool(a.UseMotionBlur)
	w.WriteI32(a.MotionBlurSteps)
	w.WriteI32(a.TextRenderingMode)
	w.WriteBool(a.OverrideTimeDelta)
	w.WriteF32(a.TimeDeltaOverride)
	w.WriteBool(a.Caption)
	w.WriteBool(a.MinimizeBox)
	w.WriteI32(a.ResizeMode)
	w.WriteBool(a.MaximizeBox)
	w.WriteF32(a.MinimumFPS)
	w.WriteI32(a.Multisamples)
	w.WriteI32(a.TextureLoadingMode)
}

func readGlobalVariable(r *Reader) GlobalVariable {
	return GlobalVariable{
		Name:  r.ReadString(),
		Type:  r.ReadI32(),
		Value: r.ReadString(),
	}
}

func writeGlobalVariable(w *Writer, g GlobalVariable) {
	w.WriteString(g.Name)
	w.WriteI32(g.Type)
	w.WriteString(g.Value)
}

func readBehaviorControl(r *Reader) BehaviorControl {
	return BehaviorControl{
		Name:       r.ReadString(),
		VirtualKey: r.ReadI32(),
		Player:     r.ReadI32(),
	}
}

func writeBehaviorControl(w *Writer, c BehaviorControl) {
	w.WriteString(c.Name)
	w.WriteI32(c.VirtualKey)
	w.WriteI32(c.Player)
}

func readDataKey(r *Reader) DataKey {
	k := DataKey{Tag: r.ReadI32(), Name: r.ReadString()}
	if k.IsString() {
		k.String = r.ReadString()
	} else {
		k.Pointer = r.ReadU32()
	}
	return k
}

func writeDataKey(w *Writer, k DataKey) {
	w.WriteI32(k.Tag)
	w.WriteString(k.Name)
	if k.IsString() {
		w.WriteString(k.String)
	} else {
		w.WriteU32(k.Pointer)
	}
}
