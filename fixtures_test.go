// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package cstc

import (
	"errors"
	"math/rand"
)

// Builders for blocks that exercise every field and optional branch. Empty
// collections are nil, which is how the decoder returns them.

func sampleAppBlock() *AppBlock {
	return &AppBlock{
		Name:         "Space Blaster",
		WindowWidth:  640,
		WindowHeight: 480,
		EyeDistance:  1.5,
		ShowMenu:     true,
		FPSMode:      2,
		FPS:          60,
		Sampler:      1,
		GlobalVariables: []GlobalVariable{
			{Name: "Score", Type: 0, Value: "0"},
			{Name: "PlayerName", Type: 1, Value: "Ace"},
		},
		BehaviorControls: []BehaviorControl{
			{Name: "Move Left", VirtualKey: 0x25, Player: 0},
			{Name: "Jump", VirtualKey: 0x20, Player: 1},
		},
		DisableWindowsKey: true,
		DataKeys: []DataKey{
			PointerKey("hwnd", 0xDEADBEEF),
			StringKey("savedir", "C:\\Saves"),
		},
		SimulateShaders:     2,
		OriginalProjectPath: "C:\\Projects\\blaster.cap",
		FPSInCaption:        1,
		UseMotionBlur:       true,
		MotionBlurSteps:     4,
		TextRenderingMode:   1,
		OverrideTimeDelta:   true,
		TimeDeltaOverride:   0.016,
		Caption:             true,
		MinimizeBox:         true,
		ResizeMode:          2,
		MinimumFPS:          10,
		Multisamples:        4,
		TextureLoadingMode:  1,
	}
}

func sampleImageBlock() *ImageBlock {
	return &ImageBlock{Images: []ImageResource{
		{
			ID:       7,
			HotspotX: 16,
			HotspotY: 8,
			ActionPoints: []ActionPoint{
				{X: 30, Y: 8, Name: "Gun"},
			},
			Data:            []byte{0x89, 'P', 'N', 'G', 0, 1, 2, 3},
			CollisionWidth:  10,
			CollisionHeight: 2,
			CollisionPitch:  2,
			CollisionMask:   []byte{0xC0, 0x40, 0x00, 0x80},
		},
		{
			ID:   8,
			Data: []byte{0xFF},
		},
	}}
}

func sampleLevelBlock() *LevelBlock {
	text := NewTextObjectData()
	text.Text = "Score: 0"
	text.FontName = "Arial"
	text.Size = 12
	text.Bold = true

	sprite := NewSpriteObjectData()
	sprite.AnimationID = 100
	sprite.StartAnimation = "Idle"
	sprite.SkewX = 0.25

	return &LevelBlock{
		ObjectTypes: []ObjectType{
			{ID: 1, Name: "ScoreText", PluginID: 10},
			{
				ID:          2,
				Name:        "Player",
				PluginID:    11,
				DestroyWhen: 1,
				PrivateVariables: []PrivateVariable{
					{Name: "Health", Type: 0},
				},
				Descriptors: &FeatureDescriptors{
					Actions:    []FeatureDescriptor{{ScriptName: "SetAnim", ParamCount: 1}},
					Conditions: []FeatureDescriptor{{ScriptName: "IsMoving", ParamCount: 0}},
				},
			},
			{ID: 3, Name: "Tilemap", PluginID: 12, Global: true},
		},
		Behaviors: []Behavior{
			{
				ObjectTypeID: 2,
				PluginID:     20,
				Index:        0,
				Name:         "Platform",
				Data:         []byte{1, 2, 3, 4},
				Descriptors: &FeatureDescriptors{
					Expressions: []FeatureDescriptor{{ScriptName: "Speed", ParamCount: 0}},
				},
			},
		},
		Traits: []ObjectTrait{
			{Name: "Solid", ObjectTypeIDs: []int32{2, 3}},
		},
		Families: []Family{
			{
				Name:             "Enemies",
				ObjectTypeIDs:    []int32{2},
				PrivateVariables: []PrivateVariable{{Name: "Damage", Type: 0}},
			},
		},
		Containers: []Container{
			{ObjectTypeIDs: []int32{1, 2}},
		},
		Layouts: []Layout{
			{
				Width:  1280,
				Height: 960,
				Name:   "Level 1",
				Color:  0x00FFFFFF,
				Layers: []LayoutLayer{
					{
						ID:            1,
						Name:          "Main",
						Opacity:       1,
						ScrollXFactor: 1,
						ScrollYFactor: 1,
						ZoomXFactor:   1,
						ZoomYFactor:   1,
						ZoomX:         1,
						ZoomY:         1,
						Instances: []ObjectInstance{
							{
								Name:         "hud",
								X:            8,
								Y:            8,
								Width:        200,
								Height:       20,
								Filter:       -1,
								ObjectTypeID: 1,
								ID:           100,
								Data:         EncodeObjectData(text),
							},
							{
								Name:             "player",
								X:                64,
								Y:                400,
								Width:            32,
								Height:           48,
								Angle:            90,
								Filter:           -1,
								ObjectTypeID:     2,
								ID:               101,
								PrivateVariables: []string{"100"},
								Data:             EncodeObjectData(sprite),
							},
						},
					},
					{
						ID:              2,
						Name:            "Background",
						Type:            1,
						Opacity:         0.5,
						ClearBackground: true,
						BackgroundColor: 0x336699,
						Enable3D:        true,
						Instances: []ObjectInstance{
							{
								Name:         "tiles",
								ObjectTypeID: 3,
								ID:           102,
								Data:         []byte{0xCA, 0xFE},
							},
						},
					},
				},
				ImageIDs:           []int32{7, 8},
				TextureLoadingMode: 1,
			},
		},
		Animations: []Animation{
			{
				ID:      100,
				Name:    "Player",
				Speed:   50,
				Looping: true,
				SubAnimations: []Animation{
					{
						ID:     101,
						Name:   "Idle",
						Tag:    1,
						Speed:  10,
						Frames: []AnimationFrame{{Duration: 1, ImageID: 7}},
					},
					{
						ID:          102,
						Name:        "Walk",
						RepeatCount: 3,
						RepeatTo:    1,
						PingPong:    true,
						Frames: []AnimationFrame{
							{Duration: 1, ImageID: 7},
							{Duration: 0.5, ImageID: 8},
						},
					},
				},
			},
		},
	}
}

func sampleEventBlock() *EventBlock {
	return &EventBlock{
		SheetNames: []string{"Game", "Common"},
		LayoutSheets: [][]EventNode{
			{
				&Event{
					Line:    1,
					SheetID: 0,
					Conditions: []EventCondition{
						{ObjectID: -1, ConditionID: 0},
						{
							ObjectID:    2,
							ConditionID: 5,
							Negated:     true,
							MovementID:  -1,
							Params: [][]Token{
								{Identifier("Player"), Operator(TokenDot), Identifier("X"), Operator(TokenGreater), Integer(100)},
							},
						},
					},
					Actions: []EventAction{
						{
							ObjectID: 1,
							ActionID: 3,
							Params: [][]Token{
								{StringLiteral("Score: "), Operator(TokenAnd), VariableName("Score")},
								{Float(0.5)},
							},
						},
					},
					Events: []EventNode{
						&Event{
							Line:       2,
							SheetID:    0,
							Conditions: []EventCondition{{ObjectID: -1, ConditionID: 1}},
						},
					},
				},
				&EventGroup{
					Active: true,
					Name:   "Enemies",
					Events: []EventNode{
						&Event{
							Line:    4,
							SheetID: 0,
							Actions: []EventAction{{ObjectID: 2, ActionID: 9, MovementID: 0}},
						},
						&EventGroup{Name: "Disabled"},
					},
				},
			},
			{
				&Event{Line: 1, SheetID: 1},
			},
		},
	}
}

// pseudoRandom returns n deterministic bytes.
func pseudoRandom(seed int64, n int) []byte {
	b := make([]byte, n)
	rand.New(rand.NewSource(seed)).Read(b)
	return b
}

// decodeErr unwraps a *DecodeError or returns nil.
func decodeErr(err error) *DecodeError {
	var de *DecodeError
	if errors.As(err, &de) {
		return de
	}
	return nil
}
