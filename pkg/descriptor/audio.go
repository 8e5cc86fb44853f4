// Copyright 2026, Chef.  All rights reserved.
// https://github.com/q191201771/dvbinspect
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package descriptor

import (
	"fmt"

	"github.com/q191201771/dvbinspect/pkg/field"
	"github.com/q191201771/dvbinspect/pkg/record"
)

// <ETSI EN 300 468> <Annex D> Service information implementation of AC-3 and Enhanced AC-3 audio

// AC3
//
// component_type_flag      [1b]
// bsid_flag                [1b]
// mainid_flag              [1b]
// asvc_flag                [1b]
// reserved_flags           [4b]
// component_type           [8b] if component_type_flag
// bsid                     [8b] if bsid_flag
// mainid                   [8b] if mainid_flag
// asvc                     [8b] if asvc_flag
// additional_info_byte
type AC3 struct {
	ComponentType  *uint8
	Bsid           *uint8
	MainId         *uint8
	Asvc           *uint8
	AdditionalInfo []byte
}

func decodeAC3(r *field.Reader) *AC3 {
	var v AC3
	if r.Remaining() == 0 {
		return &v
	}
	flags := r.U8()
	v.ComponentType = optionalU8(r, flags&0x80 != 0)
	v.Bsid = optionalU8(r, flags&0x40 != 0)
	v.MainId = optionalU8(r, flags&0x20 != 0)
	v.Asvc = optionalU8(r, flags&0x10 != 0)
	v.AdditionalInfo = r.Bytes(r.Remaining())
	return &v
}

func (v *AC3) Name() string { return "AC-3" }

func (v *AC3) fill(rec *record.Record) {
	fillOptionalU8(rec, "component_type", v.ComponentType)
	fillOptionalU8(rec, "bsid", v.Bsid)
	fillOptionalU8(rec, "mainid", v.MainId)
	fillOptionalU8(rec, "asvc", v.Asvc)
	if v.ComponentType != nil {
		rec.Str("component_type_text", AC3ComponentTypeText(*v.ComponentType))
	}
	if len(v.AdditionalInfo) != 0 {
		rec.Str("additional_info", fmt.Sprintf("% x", v.AdditionalInfo))
	}
}

// EnhancedAC3
//
// component_type_flag      [1b]
// bsid_flag                [1b]
// mainid_flag              [1b]
// asvc_flag                [1b]
// mixinfoexists            [1b]
// substream1_flag          [1b]
// substream2_flag          [1b]
// substream3_flag          [1b]
// component_type, bsid, mainid, asvc, substream1, substream2, substream3 [8b] 各自的flag为1时存在
// additional_info_byte
type EnhancedAC3 struct {
	MixInfoExists  bool
	ComponentType  *uint8
	Bsid           *uint8
	MainId         *uint8
	Asvc           *uint8
	Substream1     *uint8
	Substream2     *uint8
	Substream3     *uint8
	AdditionalInfo []byte
}

func decodeEnhancedAC3(r *field.Reader) *EnhancedAC3 {
	var v EnhancedAC3
	if r.Remaining() == 0 {
		return &v
	}
	flags := r.U8()
	v.MixInfoExists = flags&0x08 != 0
	v.ComponentType = optionalU8(r, flags&0x80 != 0)
	v.Bsid = optionalU8(r, flags&0x40 != 0)
	v.MainId = optionalU8(r, flags&0x20 != 0)
	v.Asvc = optionalU8(r, flags&0x10 != 0)
	v.Substream1 = optionalU8(r, flags&0x04 != 0)
	v.Substream2 = optionalU8(r, flags&0x02 != 0)
	v.Substream3 = optionalU8(r, flags&0x01 != 0)
	v.AdditionalInfo = r.Bytes(r.Remaining())
	return &v
}

func (v *EnhancedAC3) Name() string { return "enhanced_AC-3" }

func (v *EnhancedAC3) fill(rec *record.Record) {
	rec.Bool("mixinfoexists", v.MixInfoExists)
	fillOptionalU8(rec, "component_type", v.ComponentType)
	fillOptionalU8(rec, "bsid", v.Bsid)
	fillOptionalU8(rec, "mainid", v.MainId)
	fillOptionalU8(rec, "asvc", v.Asvc)
	fillOptionalU8(rec, "substream1", v.Substream1)
	fillOptionalU8(rec, "substream2", v.Substream2)
	fillOptionalU8(rec, "substream3", v.Substream3)
	if v.ComponentType != nil {
		rec.Str("component_type_text", AC3ComponentTypeText(*v.ComponentType))
	}
	if len(v.AdditionalInfo) != 0 {
		rec.Str("additional_info", fmt.Sprintf("% x", v.AdditionalInfo))
	}
}

// AC3ComponentTypeText <ETSI EN 300 468> <table D.1>
func AC3ComponentTypeText(t uint8) string {
	var service string
	switch (t >> 3) & 0x07 {
	case 0:
		service = "complete main"
	case 1:
		service = "music and effects"
	case 2:
		service = "visually impaired"
	case 3:
		service = "hearing impaired"
	case 4:
		service = "dialogue"
	case 5:
		service = "commentary"
	case 6:
		service = "emergency"
	case 7:
		service = "voiceover"
	}
	var channels string
	switch t & 0x07 {
	case 0:
		channels = "mono"
	case 1:
		channels = "1+1"
	case 2:
		channels = "2 channel stereo"
	case 3:
		channels = "2 channel Surround encoded"
	case 4:
		channels = "multichannel > 2"
	case 5:
		channels = "multichannel > 5.1"
	case 6:
		channels = "multiple substreams"
	case 7:
		channels = "reserved"
	}
	codec := "AC-3"
	if t&0x80 != 0 {
		codec = "Enhanced AC-3"
	}
	return codec + ", " + service + ", " + channels
}

func optionalU8(r *field.Reader, present bool) *uint8 {
	if !present {
		return nil
	}
	v := r.U8()
	if r.Err() != nil {
		return nil
	}
	return &v
}

func fillOptionalU8(rec *record.Record, name string, v *uint8) {
	if v != nil {
		rec.Uint(name, uint64(*v))
	}
}

// ----- extension_descriptor ------------------------------------------------------------------------------------------

// Extension
//
// descriptor_tag_extension [8b]
// selector_byte
//
// 目前只解析T2_delivery_system_descriptor的固定部分:
// plp_id                   [8b]
// T2_system_id             [16b]
// SISO/MISO                [2b]
// bandwidth                [4b]
// reserved_future_use      [2b]
// guard_interval           [3b]
// transmission_mode        [3b]
// other_frequency_flag     [1b]
// tfs_flag                 [1b]
type Extension struct {
	TagExtension uint8
	Selector     []byte

	T2 *T2Delivery
}

type T2Delivery struct {
	PlpId            uint8
	T2SystemId       uint16
	HasParams        bool
	SisoMiso         uint8
	Bandwidth        uint8
	GuardInterval    uint8
	TransmissionMode uint8
	OtherFrequency   bool
	Tfs              bool
}

func decodeExtension(r *field.Reader) *Extension {
	var v Extension
	v.TagExtension = r.U8()
	v.Selector = r.Bytes(r.Remaining())
	if v.TagExtension == ExtensionTagT2Delivery {
		sr := field.NewReader(v.Selector, "T2_delivery_system")
		var t2 T2Delivery
		t2.PlpId = sr.U8()
		t2.T2SystemId = sr.U16()
		if sr.Remaining() >= 2 {
			t2.HasParams = true
			t2.SisoMiso = sr.Bits8(2)
			t2.Bandwidth = sr.Bits8(4)
			sr.Skip(2)
			t2.GuardInterval = sr.Bits8(3)
			t2.TransmissionMode = sr.Bits8(3)
			t2.OtherFrequency = sr.Flag()
			t2.Tfs = sr.Flag()
		}
		if sr.Err() == nil {
			v.T2 = &t2
		}
	}
	return &v
}

func (v *Extension) Name() string {
	if v.TagExtension == ExtensionTagT2Delivery {
		return "T2_delivery_system"
	}
	return "extension"
}

func (v *Extension) fill(rec *record.Record) {
	rec.Uint("descriptor_tag_extension", uint64(v.TagExtension))
	if v.T2 == nil {
		if len(v.Selector) != 0 {
			rec.Str("selector", fmt.Sprintf("% x", v.Selector))
		}
		return
	}
	rec.Uint("plp_id", uint64(v.T2.PlpId)).
		Uint("T2_system_id", uint64(v.T2.T2SystemId))
	if v.T2.HasParams {
		rec.Uint("SISO_MISO", uint64(v.T2.SisoMiso)).
			Uint("bandwidth", uint64(v.T2.Bandwidth)).
			Uint("guard_interval", uint64(v.T2.GuardInterval)).
			Uint("transmission_mode", uint64(v.T2.TransmissionMode)).
			Bool("other_frequency_flag", v.T2.OtherFrequency).
			Bool("tfs_flag", v.T2.Tfs)
	}
}
