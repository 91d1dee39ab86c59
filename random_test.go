// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package cstc

import (
	"bytes"
	"math/rand"
	"reflect"
	"testing"
)

// valueGen builds random values that respect the wire invariants: empty
// collections are nil and floats are never NaN. With canonical set, Color
// tokens come out as Integer, which is what decoding yields; two generators
// with the same seed build the same shape either way.
type valueGen struct {
	rng       *rand.Rand
	canonical bool
}

func newValueGen(seed int64, canonical bool) *valueGen {
	return &valueGen{rng: rand.New(rand.NewSource(seed)), canonical: canonical}
}

func (g *valueGen) count(n int) int   { return g.rng.Intn(n + 1) }
func (g *valueGen) flip() bool        { return g.rng.Intn(2) == 1 }
func (g *valueGen) i32() int32        { return int32(g.rng.Uint32()) }
func (g *valueGen) u32() uint32       { return g.rng.Uint32() }
func (g *valueGen) f32() float32      { return float32(g.rng.NormFloat64() * 100) }

// str returns arbitrary bytes, including invalid UTF-8 and the empty string.
func (g *valueGen) str() string {
	b := make([]byte, g.count(12))
	g.rng.Read(b)
	return string(b)
}

func (g *valueGen) blob(limit int) []byte {
	n := g.count(limit)
	if n == 0 {
		return nil
	}
	b := make([]byte, n)
	g.rng.Read(b)
	return b
}

func (g *valueGen) ids(limit int) []int32 {
	var out []int32
	for i := g.count(limit); i > 0; i-- {
		out = append(out, g.i32())
	}
	return out
}

func (g *valueGen) token() Token {
	switch g.rng.Intn(8) {
	case 0:
		return Integer(g.rng.Int63() - g.rng.Int63())
	case 1:
		v := g.rng.Int63()
		if g.canonical {
			return Integer(v)
		}
		return Color(v)
	case 2:
		return Float(g.rng.NormFloat64())
	case 3:
		return StringLiteral(g.str())
	case 4:
		return Identifier(g.str())
	case 5:
		return VariableName(g.str())
	case 6:
		// a kind this package does not name
		return Operator(TokenKind(100 + g.rng.Intn(1000)))
	}
	for {
		k := TokenKind(g.rng.Intn(int(TokenWhitespace) + 1))
		if !k.hasPayload() {
			return Operator(k)
		}
	}
}

func (g *valueGen) params() [][]Token {
	var params [][]Token
	for i := g.count(3); i > 0; i-- {
		var tokens []Token
		for j := g.count(4); j > 0; j-- {
			tokens = append(tokens, g.token())
		}
		params = append(params, tokens)
	}
	return params
}

func (g *valueGen) nodes(depth int) []EventNode {
	if depth == 0 {
		return nil
	}
	var nodes []EventNode
	for i := g.count(3); i > 0; i-- {
		if g.rng.Intn(3) == 0 {
			nodes = append(nodes, &EventGroup{
				Active: g.flip(),
				Name:   g.str(),
				Events: g.nodes(depth - 1),
			})
			continue
		}
		ev := &Event{Line: g.i32(), SheetID: g.i32()}
		for j := g.count(2); j > 0; j-- {
			ev.Conditions = append(ev.Conditions, EventCondition{
				ObjectID:    g.i32(),
				ConditionID: g.i32(),
				Negated:     g.flip(),
				MovementID:  g.i32(),
				Params:      g.params(),
			})
		}
		for j := g.count(2); j > 0; j-- {
			ev.Actions = append(ev.Actions, EventAction{
				ObjectID:   g.i32(),
				ActionID:   g.i32(),
				MovementID: g.i32(),
				Params:     g.params(),
			})
		}
		ev.Events = g.nodes(depth - 1)
		nodes = append(nodes, ev)
	}
	return nodes
}

func (g *valueGen) eventBlock() *EventBlock {
	b := &EventBlock{}
	for i := g.count(3); i > 0; i-- {
		b.SheetNames = append(b.SheetNames, g.str())
	}
	for i := g.count(3); i > 0; i-- {
		b.LayoutSheets = append(b.LayoutSheets, g.nodes(4))
	}
	return b
}

func (g *valueGen) appBlock() *AppBlock {
	a := &AppBlock{
		Name:         g.str(),
		WindowWidth:  g.i32(),
		WindowHeight: g.i32(),
		EyeDistance:  g.f32(),
		ShowMenu:     g.flip(),
		Screensaver:  g.flip(),
		FPSMode:      uint8(g.rng.Intn(256)),
		FPS:          g.i32(),
		Fullscreen:   g.flip(),
		Sampler:      g.i32(),
	}
	for i := g.count(3); i > 0; i-- {
		a.GlobalVariables = append(a.GlobalVariables, GlobalVariable{Name: g.str(), Type: g.i32(), Value: g.str()})
	}
	for i := g.count(3); i > 0; i-- {
		a.BehaviorControls = append(a.BehaviorControls, BehaviorControl{Name: g.str(), VirtualKey: g.i32(), Player: g.i32()})
	}
	a.DisableWindowsKey = g.flip()
	for i := g.count(3); i > 0; i-- {
		if g.flip() {
			a.DataKeys = append(a.DataKeys, PointerKey(g.str(), g.u32()))
			continue
		}
		tag := g.i32()
		if tag == dataKeyPointer {
			tag = dataKeyString
		}
		a.DataKeys = append(a.DataKeys, DataKey{Tag: tag, Name: g.str(), String: g.str()})
	}
	a.SimulateShaders = g.i32()
	a.OriginalProjectPath = g.str()
	a.FPSInCaption = g.i32()
	a.UseMotionBlur = g.flip()
	a.MotionBlurSteps = g.i32()
	a.TextRenderingMode = g.i32()
	a.OverrideTimeDelta = g.flip()
	a.TimeDeltaOverride = g.f32()
	a.Caption = g.flip()
	a.MinimizeBox = g.flip()
	a.ResizeMode = g.i32()
	a.MaximizeBox = g.flip()
	a.MinimumFPS = g.f32()
	a.Multisamples = g.i32()
	a.TextureLoadingMode = g.i32()
	return a
}

func (g *valueGen) imageBlock() *ImageBlock {
	b := &ImageBlock{}
	for i := g.count(4); i > 0; i-- {
		img := ImageResource{
			ID:              g.i32(),
			HotspotX:        g.i32(),
			HotspotY:        g.i32(),
			Data:            g.blob(64),
			CollisionWidth:  g.u32(),
			CollisionHeight: uint32(g.count(6)),
			CollisionPitch:  int32(g.count(4)),
		}
		for j := g.count(3); j > 0; j-- {
			img.ActionPoints = append(img.ActionPoints, ActionPoint{X: g.i32(), Y: g.i32(), Name: g.str()})
		}
		if n := int(img.CollisionPitch) * int(img.CollisionHeight); n > 0 {
			img.CollisionMask = make([]byte, n)
			g.rng.Read(img.CollisionMask)
		}
		b.Images = append(b.Images, img)
	}
	return b
}

func (g *valueGen) privateVariables() []PrivateVariable {
	var out []PrivateVariable
	for i := g.count(2); i > 0; i-- {
		out = append(out, PrivateVariable{Name: g.str(), Type: g.i32()})
	}
	return out
}

func (g *valueGen) descriptors() *FeatureDescriptors {
	if g.flip() {
		return nil
	}
	list := func() []FeatureDescriptor {
		var out []FeatureDescriptor
		for i := g.count(2); i > 0; i-- {
			out = append(out, FeatureDescriptor{ScriptName: g.str(), ParamCount: g.i32()})
		}
		return out
	}
	return &FeatureDescriptors{Actions: list(), Conditions: list(), Expressions: list()}
}

func (g *valueGen) animations(depth int) []Animation {
	if depth == 0 {
		return nil
	}
	var out []Animation
	for i := g.count(2); i > 0; i-- {
		a := Animation{
			ID:            g.i32(),
			Name:          g.str(),
			Tag:           g.i32(),
			Speed:         g.f32(),
			Looping:       g.flip(),
			RepeatCount:   g.i32(),
			RepeatTo:      g.i32(),
			PingPong:      g.flip(),
			SubAnimations: g.animations(depth - 1),
		}
		for j := g.count(3); j > 0; j-- {
			a.Frames = append(a.Frames, AnimationFrame{Duration: g.f32(), ImageID: g.i32()})
		}
		out = append(out, a)
	}
	return out
}

func (g *valueGen) levelBlock() *LevelBlock {
	l := &LevelBlock{}
	for i := g.count(3); i > 0; i-- {
		l.ObjectTypes = append(l.ObjectTypes, ObjectType{
			ID:               g.i32(),
			Name:             g.str(),
			PluginID:         g.i32(),
			Global:           g.flip(),
			DestroyWhen:      g.i32(),
			PrivateVariables: g.privateVariables(),
			Descriptors:      g.descriptors(),
		})
	}
	for i := g.count(2); i > 0; i-- {
		l.Behaviors = append(l.Behaviors, Behavior{
			ObjectTypeID: g.i32(),
			PluginID:     g.i32(),
			Index:        g.i32(),
			Name:         g.str(),
			Data:         g.blob(16),
			Descriptors:  g.descriptors(),
		})
	}
	for i := g.count(2); i > 0; i-- {
		l.Traits = append(l.Traits, ObjectTrait{Name: g.str(), ObjectTypeIDs: g.ids(3)})
	}
	for i := g.count(2); i > 0; i-- {
		l.Families = append(l.Families, Family{Name: g.str(), ObjectTypeIDs: g.ids(3), PrivateVariables: g.privateVariables()})
	}
	for i := g.count(2); i > 0; i-- {
		l.Containers = append(l.Containers, Container{ObjectTypeIDs: g.ids(3)})
	}
	for i := g.count(2); i > 0; i-- {
		layout := Layout{
			Width:                 g.i32(),
			Height:                g.i32(),
			Name:                  g.str(),
			Color:                 g.i32(),
			UnboundedScrolling:    g.flip(),
			ApplicationBackground: g.flip(),
		}
		for j := g.count(2); j > 0; j-- {
			layer := LayoutLayer{
				ID:              g.i32(),
				Name:            g.str(),
				Type:            uint8(g.rng.Intn(256)),
				FilterColor:     g.i32(),
				Opacity:         g.f32(),
				Angle:           g.f32(),
				ScrollXFactor:   g.f32(),
				ScrollYFactor:   g.f32(),
				ScrollX:         g.f32(),
				ScrollY:         g.f32(),
				ZoomXFactor:     g.f32(),
				ZoomYFactor:     g.f32(),
				ZoomX:           g.f32(),
				ZoomY:           g.f32(),
				ClearBackground: g.flip(),
				BackgroundColor: g.i32(),
				ForceOwnTexture: g.flip(),
				Sampler:         g.i32(),
				Enable3D:        g.flip(),
				ClearDepth:      g.flip(),
			}
			for k := g.count(3); k > 0; k-- {
				inst := ObjectInstance{
					Name:         g.str(),
					X:            g.i32(),
					Y:            g.i32(),
					Width:        g.i32(),
					Height:       g.i32(),
					Angle:        g.f32(),
					Filter:       g.i32(),
					ObjectTypeID: g.i32(),
					ID:           g.i32(),
					Data:         g.blob(32),
				}
				for n := g.count(2); n > 0; n-- {
					inst.PrivateVariables = append(inst.PrivateVariables, g.str())
				}
				layer.Instances = append(layer.Instances, inst)
			}
			layout.Layers = append(layout.Layers, layer)
		}
		layout.ImageIDs = g.ids(4)
		layout.TextureLoadingMode = g.i32()
		l.Layouts = append(l.Layouts, layout)
	}
	l.Animations = g.animations(4)
	return l
}

// checkRoundTrip encodes v, decodes the bytes and compares the result with
// want, then re-encodes the decoded value and compares bytes.
func checkRoundTrip[T any](t *testing.T, seed int64, v, want T,
	encode func(T) ([]byte, error), decode func([]byte) (T, error)) {
	t.Helper()

	data, err := encode(v)
	if err != nil {
		t.Fatalf("seed %d: encode: %v", seed, err)
	}
	got, err := decode(data)
	if err != nil {
		t.Fatalf("seed %d: decode: %v", seed, err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("seed %d: decoded value differs from the encoded one", seed)
	}
	again, err := encode(got)
	if err != nil {
		t.Fatalf("seed %d: re-encode: %v", seed, err)
	}
	if !bytes.Equal(again, data) {
		t.Fatalf("seed %d: re-encoding changed %d bytes into %d", seed, len(data), len(again))
	}
}

func TestRandomEventBlocks(t *testing.T) {
	for seed := int64(0); seed < 500; seed++ {
		v := newValueGen(seed, false).eventBlock()
		want := newValueGen(seed, true).eventBlock()
		checkRoundTrip(t, seed, v, want, EncodeEventBlock, DecodeEventBlock)
	}
}

func TestRandomAppBlocks(t *testing.T) {
	encode := func(a *AppBlock) ([]byte, error) { return EncodeAppBlock(a), nil }
	for seed := int64(0); seed < 300; seed++ {
		v := newValueGen(seed, true).appBlock()
		checkRoundTrip(t, seed, v, v, encode, DecodeAppBlock)
	}
}

func TestRandomImageBlocks(t *testing.T) {
	for seed := int64(0); seed < 300; seed++ {
		v := newValueGen(seed, true).imageBlock()
		checkRoundTrip(t, seed, v, v, EncodeImageBlock, DecodeImageBlock)
	}
}

func TestRandomLevelBlocks(t *testing.T) {
	encode := func(l *LevelBlock) ([]byte, error) { return EncodeLevelBlock(l), nil }
	for seed := int64(0); seed < 300; seed++ {
		v := newValueGen(seed, true).levelBlock()
		checkRoundTrip(t, seed, v, v, encode, DecodeLevelBlock)
	}
}

func TestRandomPatches(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	buf := func() []byte {
		var n int
		if rng.Intn(2) == 0 {
			n = rng.Intn(65)
		} else {
			n = rng.Intn(4096)
		}
		b := make([]byte, n)
		rng.Read(b)
		return b
	}
	mutate := func(b []byte) []byte {
		out := append([]byte(nil), b...)
		for i := rng.Intn(4); i > 0 && len(out) > 0; i-- {
			out[rng.Intn(len(out))] ^= byte(1 + rng.Intn(255))
		}
		if rng.Intn(3) == 0 {
			extra := make([]byte, 1+rng.Intn(8))
			rng.Read(extra)
			out = append(out, extra...)
		}
		return out
	}

	for i := 0; i < 300; i++ {
		old := buf()
		var target []byte
		switch rng.Intn(3) {
		case 0:
			target = buf()
		case 1:
			target = mutate(old)
		default:
			target = append([]byte(nil), old...)
		}

		patch, err := Diff(old, target)
		if err != nil {
			t.Fatalf("pair %d: diff: %v", i, err)
		}
		got, err := ApplyPatch(old, patch)
		if err != nil {
			t.Fatalf("pair %d (%d -> %d bytes): apply: %v", i, len(old), len(target), err)
		}
		if !bytes.Equal(got, target) {
			t.Fatalf("pair %d: apply produced %d bytes, want %d", i, len(got), len(target))
		}
	}
}
