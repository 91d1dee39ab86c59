// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package cstc

import "fmt"

// LevelBlock holds the object catalog, layouts and animations of a game.
type LevelBlock struct {
	ObjectTypes []ObjectType
	Behaviors   []Behavior
	Traits      []ObjectTrait
	Families    []Family
	Containers  []Container
	Layouts     []Layout
	Animations  []Animation
}

// ObjectType is one entry of the object catalog.
type ObjectType struct {
	ID               int32
	Name             string
	PluginID         int32
	Global           bool
	DestroyWhen      int32
	PrivateVariables []PrivateVariable
	Descriptors      *FeatureDescriptors // nil when absent
}

// PrivateVariable declares a per-instance variable.
type PrivateVariable struct {
	Name string
	Type int32
}

// FeatureDescriptors lists the script-callable actions, conditions and
// expressions a plugin exposes.
type FeatureDescriptors struct {
	Actions     []FeatureDescriptor
	Conditions  []FeatureDescriptor
	Expressions []FeatureDescriptor
}

// FeatureDescriptor names one ACE and its parameter count.
type FeatureDescriptor struct {
	ScriptName string
	ParamCount int32
}

// Behavior attaches a behavior plugin to an object type.
type Behavior struct {
	ObjectTypeID int32
	PluginID     int32
	Index        int32
	Name         string
	Data         []byte
	Descriptors  *FeatureDescriptors
}

// ObjectTrait groups object types under a name.
type ObjectTrait struct {
	Name          string
	ObjectTypeIDs []int32
}

// Family groups object types that share private variables.
type Family struct {
	Name             string
	ObjectTypeIDs    []int32
	PrivateVariables []PrivateVariable
}

// Container lists object types that are created and destroyed together.
type Container struct {
	ObjectTypeIDs []int32
}

// Layout is one level of the game.
type Layout struct {
	Width                 int32
	Height                int32
	Name                  string
	Color                 int32
	UnboundedScrolling    bool
	ApplicationBackground bool
	Layers                []LayoutLayer
	ImageIDs              []int32
	TextureLoadingMode    int32
}

// LayoutLayer is one layer of a layout and the instances placed on it.
type LayoutLayer struct {
	ID              int32
	Name            string
	Type            uint8
	FilterColor     int32
	Opacity         float32
	Angle           float32
	ScrollXFactor   float32
	ScrollYFactor   float32
	ScrollX         float32
	ScrollY         float32
	ZoomXFactor     float32
	ZoomYFactor     float32
	ZoomX           float32
	ZoomY           float32
	ClearBackground bool
	BackgroundColor int32
	ForceOwnTexture bool
	Sampler         int32
	Enable3D        bool
	ClearDepth      bool
	Instances       []ObjectInstance
}

// ObjectInstance is an object placed on a layer. Data is the owning plugin's
// serialized instance state; see DecodeObjectData.
type ObjectInstance struct {
	Name             string
	X                int32
	Y                int32
	Width            int32
	Height           int32
	Angle            float32
	Filter           int32
	ObjectTypeID     int32
	ID               int32
	PrivateVariables []string
	Data             []byte
}

// Animation is a node of the animation tree. Leaves carry frames; any node
// may carry sub-animations.
type Animation struct {
	ID            int32
	Name          string
	Tag           int32
	Speed         float32
	Looping       bool
	RepeatCount   int32
	RepeatTo      int32
	PingPong      bool
	SubAnimations []Animation
	Frames        []AnimationFrame
}

// AnimationFrame shows one image for a duration.
type AnimationFrame struct {
	Duration float32
	ImageID  int32
}

// DecodeLevelBlock decodes a level block.
func DecodeLevelBlock(data []byte) (*LevelBlock, error) {
	r := NewReader(data)
	r.enter("levelblock", -1)
	l := &LevelBlock{
		ObjectTypes: ReadCollection(r, "object_types", readObjectType),
		Behaviors:   ReadCollection(r, "behaviors", readBehavior),
		Traits:      ReadCollection(r, "traits", readObjectTrait),
		Families:    ReadCollection(r, "families", readFamily),
		Containers:  ReadCollection(r, "containers", readContainer),
		Layouts:     ReadCollection(r, "layouts", readLayout),
		Animations:  readAnimations(r),
	}
	if err := r.Finish(); err != nil {
		return nil, err
	}
	return l, nil
}

// EncodeLevelBlock encodes a level block.
func EncodeLevelBlock(l *LevelBlock) []byte {
	w := NewWriter(4096)
	WriteCollection(w, l.ObjectTypes, writeObjectType)
	WriteCollection(w, l.Behaviors, writeBehavior)
	WriteCollection(w, l.Traits, writeObjectTrait)
	WriteCollection(w, l.Families, writeFamily)
	WriteCollection(w, l.Containers, writeContainer)
	WriteCollection(w, l.Layouts, writeLayout)
	writeAnimations(w, l.Animations)
	return w.Bytes()
}

func (l *LevelBlock) Kind() BlockKind { return LevelBlockKind }

func (l *LevelBlock) MarshalBinary() ([]byte, error) {
	return EncodeLevelBlock(l), nil
}

func (l *LevelBlock) UnmarshalBinary(data []byte) error {
	dec, err := DecodeLevelBlock(data)
	if err != nil {
		return err
	}
	*l = *dec
	return nil
}

// ObjectType returns the object type with the given id.
func (l *LevelBlock) ObjectType(id int32) (*ObjectType, bool) {
	for i := range l.ObjectTypes {
		if l.ObjectTypes[i].ID == id {
			return &l.ObjectTypes[i], true
		}
	}
	return nil, false
}

// Layout returns the layout with the given name.
func (l *LevelBlock) Layout(name string) (*Layout, bool) {
	for i := range l.Layouts {
		if l.Layouts[i].Name == name {
			return &l.Layouts[i], true
		}
	}
	return nil, false
}

// Instances calls fn for every object instance of every layer of every
// layout, in wire order, until fn returns false.
func (l *LevelBlock) Instances(fn func(layout *Layout, layer *LayoutLayer, inst *ObjectInstance) bool) {
	for i := range l.Layouts {
		layout := &l.Layouts[i]
		for j := range layout.Layers {
			layer := &layout.Layers[j]
			for k := range layer.Instances {
				if !fn(layout, layer, &layer.Instances[k]) {
					return
				}
			}
		}
	}
}

// DecodeInstanceData decodes an instance's data blob using the plugin that
// owns its object type. Instances whose type or plugin cannot be resolved
// keep their data opaque, as do all instances when plugins is nil.
func (l *LevelBlock) DecodeInstanceData(inst *ObjectInstance, plugins PluginNamer) (ObjectData, error) {
	ot, ok := l.ObjectType(inst.ObjectTypeID)
	if !ok || plugins == nil {
		return UnknownObjectData(inst.Data), nil
	}
	name, ok := plugins.PluginName(ot.PluginID)
	if !ok {
		return UnknownObjectData(inst.Data), nil
	}
	d, err := DecodeObjectData(name, inst.Data)
	if err != nil {
		return nil, fmt.Errorf("instance %d (%s): %w", inst.ID, ot.Name, err)
	}
	return d, nil
}

func readObjectType(r *Reader) ObjectType {
	return ObjectType{
		ID:               r.ReadI32(),
		Name:             r.ReadString(),
		PluginID:         r.ReadI32(),
		Global:           r.ReadBool(),
		DestroyWhen:      r.ReadI32(),
		PrivateVariables: ReadCollection(r, "private_variables", readPrivateVariable),
		Descriptors:      readDescriptors(r),
	}
}

func writeObjectType(w *Writer, ot ObjectType) {
	w.WriteI32(ot.ID)
	w.WriteString(ot.Name)
	w.WriteI32(ot.PluginID)
	w.WriteBool(ot.Global)
	w.WriteI32(ot.DestroyWhen)
	WriteCollection(w, ot.PrivateVariables, writePrivateVariable)
	writeDescriptors(w, ot.Descriptors)
}

func readPrivateVariable(r *Reader) PrivateVariable {
	return PrivateVariable{
		Name: r.ReadString(),
		Type: r.ReadI32(),
	}
}

func writePrivateVariable(w *Writer, v PrivateVariable) {
	w.WriteString(v.Name)
	w.WriteI32(v.Type)
}

// readDescriptors reads the optional descriptor block behind its
// "has descriptors" flag.
func readDescriptors(r *Reader) *FeatureDescriptors {
	if !r.ReadBool() || r.err != nil {
		return nil
	}
	r.enter("descriptors", -1)
	defer r.leave()
	return &FeatureDescriptors{
		Actions:     ReadCollection(r, "actions", readFeatureDescriptor),
		Conditions:  ReadCollection(r, "conditions", readFeatureDescriptor),
		Expressions: ReadCollection(r, "expressions", readFeatureDescriptor),
	}
}

func writeDescriptors(w *Writer, d *FeatureDescriptors) {
	w.WriteBool(d != nil)
	if d == nil {
		return
	}
	WriteCollection(w, d.Actions, writeFeatureDescriptor)
	WriteCollection(w, d.Conditions, writeFeatureDescriptor)
	WriteCollection(w, d.Expressions, writeFeatureDescriptor)
}

func readFeatureDescriptor(r *Reader) FeatureDescriptor {
	return FeatureDescriptor{
		ScriptName: r.ReadString(),
		ParamCount: r.ReadI32(),
	}
}

func writeFeatureDescriptor(w *Writer, d FeatureDescriptor) {
	w.WriteString(d.ScriptName)
	w.WriteI32(d.ParamCount)
}

func readBehavior(r *Reader) Behavior {
	return Behavior{
		ObjectTypeID: r.ReadI32(),
		PluginID:     r.ReadI32(),
		Index:        r.ReadI32(),
		Name:         r.ReadString(),
		Data:         r.ReadBlob(),
		Descriptors:  readDescriptors(r),
	}
}

func writeBehavior(w *Writer, b Behavior) {
	w.WriteI32(b.ObjectTypeID)
	w.WriteI32(b.PluginID)
	w.WriteI32(b.Index)
	w.WriteString(b.Name)
	w.WriteBlob(b.Data)
	writeDescriptors(w, b.Descriptors)
}

func readObjectTrait(r *Reader) ObjectTrait {
	return ObjectTrait{
		Name:          r.ReadString(),
		ObjectTypeIDs: ReadCollection(r, "object_type_ids", (*Reader).ReadI32),
	}
}

func writeObjectTrait(w *Writer, t ObjectTrait) {
	w.WriteString(t.Name)
	WriteCollection(w, t.ObjectTypeIDs, (*Writer).WriteI32)
}

func readFamily(r *Reader) Family {
	return Family{
		Name:             r.ReadString(),
		ObjectTypeIDs:    ReadCollection(r, "object_type_ids", (*Reader).ReadI32),
		PrivateVariables: ReadCollection(r, "private_variables", readPrivateVariable),
	}
}

func writeFamily(w *Writer, f Family) {
	w.WriteString(f.Name)
	WriteCollection(w, f.ObjectTypeIDs, (*Writer).WriteI32)
	WriteCollection(w, f.PrivateVariables, writePrivateVariable)
}

func readContainer(r *Reader) Container {
	return Container{
		ObjectTypeIDs: ReadCollection(r, "object_type_ids", (*Reader).ReadI32),
	}
}

func writeContainer(w *Writer, c Container) {
	WriteCollection(w, c.ObjectTypeIDs, (*Writer).WriteI32)
}

func readLayout(r *Reader) Layout {
	return Layout{
		Width:                 r.ReadI32(),
		Height:                r.ReadI32(),
		Name:                  r.ReadString(),
		Color:                 r.ReadI32(),
		UnboundedScrolling:    r.ReadBool(),
		ApplicationBackground: r.ReadBool(),
		Layers:                ReadCollection(r, "layers", readLayoutLayer),
		ImageIDs:              ReadCollection(r, "image_ids", (*Reader).ReadI32),
		TextureLoadingMode:    r.ReadI32(),
	}
}

func writeLayout(w *Writer, l Layout) {
	w.WriteI32(l.Width)
	w.WriteI32(l.Height)
	w.WriteString(l.Name)
	w.WriteI32(l.Color)
	w.WriteBool(l.UnboundedScrolling)
	w.WriteBool(l.ApplicationBackground)
	WriteCollection(w, l.Layers, writeLayoutLayer)
	WriteCollection(w, l.ImageIDs, (*Writer).WriteI32)
	w.WriteI32(l.TextureLoadingMode)
}

func readLayoutLayer(r *Reader) LayoutLayer {
	return LayoutLayer{
		ID:              r.ReadI32(),
		Name:            r.ReadString(),
		Type:            r.ReadU8(),
		FilterColor:     r.ReadI32(),
		Opacity:         r.ReadF32(),
		Angle:           r.ReadF32(),
		ScrollXFactor:   r.ReadF32(),
		ScrollYFactor:   r.ReadF32(),
		ScrollX:         r.ReadF32(),
		ScrollY:         r.ReadF32(),
		ZoomXFactor:     r.ReadF32(),
		ZoomYFactor:     r.ReadF32(),
		ZoomX:           r.ReadF32(),
		ZoomY:           r.ReadF32(),
		ClearBackground: r.ReadBool(),
		BackgroundColor: r.ReadI32(),
		ForceOwnTexture: r.ReadBool(),
		Sampler:         r.ReadI32(),
		Enable3D:        r.ReadBool(),
		ClearDepth:      r.ReadBool(),
		Instances:       ReadCollection(r, "instances", readObjectInstance),
	}
}

func writeLayoutLayer(w *Writer, l LayoutLayer) {
	w.WriteI32(l.ID)
	w.WriteString(l.Name)
	w.WriteU8(l.Type)
	w.WriteI32(l.FilterColor)
	w.WriteF32(l.Opacity)
	w.WriteF32(l.Angle)
	w.WriteF32(l.ScrollXFactor)
	w.WriteF32(l.ScrollYFactor)
	w.WriteF32(l.ScrollX)
	w.WriteF32(l.ScrollY)
	w.WriteF32(l.ZoomXFactor)
	w.WriteF32(l.ZoomYFactor)
	w.WriteF32(l.ZoomX)
	w.WriteF32(l.ZoomY)
	w.WriteBool(l.ClearBackground)
	w.WriteI32(l.BackgroundColor)
	w.WriteBool(l.ForceOwnTexture)
	w.WriteI32(l.Sampler)
	w.WriteBool(l.Enable3D)
	w.WriteBool(l.ClearDepth)
	WriteCollection(w, l.Instances, writeObjectInstance)
}

func readObjectInstance(r *Reader) ObjectInstance {
	return ObjectInstance{
		Name:             r.ReadString(),
		X:                r.ReadI32(),
		Y:                r.ReadI32(),
		Width:            r.ReadI32(),
		Height:           r.ReadI32(),
		Angle:            r.ReadF32(),
		Filter:           r.ReadI32(),
		ObjectTypeID:     r.ReadI32(),
		ID:               r.ReadI32(),
		PrivateVariables: ReadCollection(r, "private_variables", (*Reader).ReadString),
		Data:             r.ReadBlob(),
	}
}

func writeObjectInstance(w *Writer, inst ObjectInstance) {
	w.WriteString(inst.Name)
	w.WriteI32(inst.X)
	w.WriteI32(inst.Y)
	w.WriteI32(inst.Width)
	w.WriteI32(inst.Height)
	w.WriteF32(inst.Angle)
	w.WriteI32(inst.Filter)
	w.WriteI32(inst.ObjectTypeID)
	w.WriteI32(inst.ID)
	WriteCollection(w, inst.PrivateVariables, (*Writer).WriteString)
	w.WriteBlob(inst.Data)
}

// animationList is a sibling list of the animation tree still being read or
// written. owner is nil for the root list.
type animationList struct {
	owner *Animation
	items []Animation
	n     int
	name  string
}

// readAnimations reads the animation tree. Sub-animations precede an
// animation's frames on the wire, so each node is finished only after its
// subtree; an explicit stack keeps deep trees off the goroutine stack.
func readAnimations(r *Reader) []Animation {
	depth := len(r.path)
	defer func() { r.path = r.path[:depth] }()

	stack := []animationList{openAnimations(r, nil, "animations")}
	for r.err == nil {
		l := &stack[len(stack)-1]
		if len(l.items) == l.n {
			stack = stack[:len(stack)-1]
			if l.owner == nil {
				return l.items
			}
			l.owner.SubAnimations = l.items
			l.owner.Frames = ReadCollection(r, "frames", readAnimationFrame)
			r.leave()
			continue
		}

		r.enter(l.name, len(l.items))
		l.items = append(l.items, readAnimationHeader(r))
		a := &l.items[len(l.items)-1]
		stack = append(stack, openAnimations(r, a, "sub_animations"))
	}
	return nil
}

// openAnimations reads a u32 sibling count. items is allocated to its full
// capacity up front so pointers into it stay valid while children are read.
func openAnimations(r *Reader, owner *Animation, name string) animationList {
	l := animationList{owner: owner, name: name}
	n := r.ReadU32()
	if r.err != nil {
		return l
	}
	if uint64(n) > uint64(r.Remaining()) {
		r.fail(ErrCorruptData, "%s count %d exceeds %d remaining bytes", name, n, r.Remaining())
		return l
	}
	l.n = int(n)
	if n > 0 {
		l.items = make([]Animation, 0, n)
	}
	return l
}

func readAnimationHeader(r *Reader) Animation {
	return Animation{
		ID:          r.ReadI32(),
		Name:        r.ReadString(),
		Tag:         r.ReadI32(),
		Speed:       r.ReadF32(),
		Looping:     r.ReadBool(),
		RepeatCount: r.ReadI32(),
		RepeatTo:    r.ReadI32(),
		PingPong:    r.ReadBool(),
	}
}

func writeAnimations(w *Writer, roots []Animation) {
	w.WriteU32(uint32(len(roots)))
	stack := []animationList{{items: roots}}
	for len(stack) > 0 {
		l := &stack[len(stack)-1]
		if l.n == len(l.items) {
			stack = stack[:len(stack)-1]
			if l.owner != nil {
				WriteCollection(w, l.owner.Frames, writeAnimationFrame)
			}
			continue
		}

		a := &l.items[l.n]
		l.n++
		w.WriteI32(a.ID)
		w.WriteString(a.Name)
		w.WriteI32(a.Tag)
		w.WriteF32(a.Speed)
		w.WriteBool(a.Looping)
		w.WriteI32(a.RepeatCount)
		w.WriteI32(a.RepeatTo)
		w.WriteBool(a.PingPong)
		w.WriteU32(uint32(len(a.SubAnimations)))
		stack = append(stack, animationList{owner: a, items: a.SubAnimations})
	}
}

func readAnimationFrame(r *Reader) AnimationFrame {
	return AnimationFrame{
		Duration: r.ReadF32(),
		ImageID:  r.ReadI32(),
	}
}

func writeAnimationFrame(w *Writer, f AnimationFrame) {
	w.WriteF32(f.Duration)
	w.WriteI32(f.ImageID)
}

// Animation returns the animation with the given id, searching the whole
// tree depth first.
func (l *LevelBlock) Animation(id int32) (*Animation, bool) {
	return findAnimation(l.Animations, id)
}

func findAnimation(anims []Animation, id int32) (*Animation, bool) {
	stack := [][]Animation{anims}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if len(*top) == 0 {
			stack = stack[:len(stack)-1]
			continue
		}
		a := &(*top)[0]
		*top = (*top)[1:]
		if a.ID == id {
			return a, true
		}
		stack = append(stack, a.SubAnimations)
	}
	return nil, false
}
