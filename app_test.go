// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package cstc

import (
	"errors"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestAppBlock(t *testing.T) {
	t.Parallel()

	Convey("AppBlock", t, func() {
		app := sampleAppBlock()
		data := EncodeAppBlock(app)

		Convey("round trips", func() {
			got, err := DecodeAppBlock(data)
			So(err, ShouldBeNil)
			So(got, ShouldResemble, app)
			So(EncodeAppBlock(got), ShouldResemble, data)
		})

		Convey("starts with the name and window size", func() {
			So(data[:4], ShouldResemble, []byte{14, 0, 0, 0})
			So(string(data[4:17]), ShouldEqual, "Space Blaster")
			So(data[17], ShouldEqual, byte(0))
			So(data[18:26], ShouldResemble, []byte{0x80, 2, 0, 0, 0xE0, 1, 0, 0})
		})

		Convey("data keys", func() {
			Convey("pointer keys have tag 0", func() {
				k := PointerKey("hwnd", 1)
				So(k.IsString(), ShouldBeFalse)
				So(k.Tag, ShouldEqual, int32(0))
			})

			Convey("any nonzero tag is a string key and survives", func() {
				odd := sampleAppBlock()
				odd.DataKeys = []DataKey{{Tag: 7, Name: "k", String: "v"}}
				got, err := DecodeAppBlock(EncodeAppBlock(odd))
				So(err, ShouldBeNil)
				So(got.DataKeys, ShouldResemble, odd.DataKeys)
				So(got.DataKeys[0].IsString(), ShouldBeTrue)
			})
		})

		Convey("an empty block encodes collections as zero counts", func() {
			empty := &AppBlock{}
			got, err := DecodeAppBlock(EncodeAppBlock(empty))
			So(err, ShouldBeNil)
			So(got, ShouldResemble, empty)
		})

		Convey("truncation is reported with the block path", func() {
			_, err := DecodeAppBlock(data[:len(data)-2])
			So(errors.Is(err, ErrCorruptData), ShouldBeTrue)
			de := decodeErr(err)
			So(de, ShouldNotBeNil)
			So(strings.HasPrefix(de.Entity, "appblock"), ShouldBeTrue)
			So(de.Error(), ShouldContainSubstring, "corrupt data at offset")
		})

		Convey("marshaler methods", func() {
			var a AppBlock
			So(a.UnmarshalBinary(data), ShouldBeNil)
			out, err := a.MarshalBinary()
			So(err, ShouldBeNil)
			So(out, ShouldResemble, data)
			So(a.Kind(), ShouldEqual, AppBlockKind)
		})
	})
}
