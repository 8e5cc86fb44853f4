// Copyright 2026, Chef.  All rights reserved.
// https://github.com/q191201771/dvbinspect
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package dvbsub

import (
	"github.com/q191201771/dvbinspect/pkg/field"
	"github.com/q191201771/dvbinspect/pkg/record"
)

// ----- 0x10 ----------------------------------------------------------------------------------------------------------

var pageStateTexts = [...]string{"normal case", "acquisition point", "mode change", "reserved"}

type PageComposition struct {
	PageTimeOut       uint8
	PageVersionNumber uint8
	PageState         uint8
	Regions           []PageRegion
}

type PageRegion struct {
	RegionId                uint8
	RegionHorizontalAddress uint16
	RegionVerticalAddress   uint16
}

func decodePageComposition(r *field.Reader) Variant {
	v := &PageComposition{}
	v.PageTimeOut = r.U8()
	v.PageVersionNumber = r.Bits8(4)
	v.PageState = r.Bits8(2)
	r.Skip(2)
	for r.Remaining() >= 6 {
		var pr PageRegion
		pr.RegionId = r.U8()
		r.Skip(8)
		pr.RegionHorizontalAddress = r.U16()
		pr.RegionVerticalAddress = r.U16()
		v.Regions = append(v.Regions, pr)
	}
	return v
}

func (v *PageComposition) Name() string { return "page composition" }

func (v *PageComposition) fill(rec *record.Record) {
	rec.Uint("page_time_out", uint64(v.PageTimeOut)).
		Uint("page_version_number", uint64(v.PageVersionNumber)).
		Uint("page_state", uint64(v.PageState)).
		Str("page_state_text", pageStateTexts[v.PageState&0x3])
	for _, pr := range v.Regions {
		rec.Child("region", record.New("page_region").
			Uint("region_id", uint64(pr.RegionId)).
			Uint("region_horizontal_address", uint64(pr.RegionHorizontalAddress)).
			Uint("region_vertical_address", uint64(pr.RegionVerticalAddress)))
	}
}

// ----- 0x11 ----------------------------------------------------------------------------------------------------------

type RegionComposition struct {
	RegionId                   uint8
	RegionVersionNumber        uint8
	RegionFillFlag             bool
	RegionWidth                uint16
	RegionHeight               uint16
	RegionLevelOfCompatibility uint8
	RegionDepth                uint8
	ClutId                     uint8
	Region8BitPixelCode        uint8
	Region4BitPixelCode        uint8
	Region2BitPixelCode        uint8
	Objects                    []RegionObject
}

type RegionObject struct {
	ObjectId                 uint16
	ObjectType               uint8
	ObjectProviderFlag       uint8
	ObjectHorizontalPosition uint16
	ObjectVerticalPosition   uint16
	ForegroundPixelCode      uint8 // object_type为1或2时有效
	BackgroundPixelCode      uint8
}

func decodeRegionComposition(r *field.Reader) Variant {
	v := &RegionComposition{}
	v.RegionId = r.U8()
	v.RegionVersionNumber = r.Bits8(4)
	v.RegionFillFlag = r.Flag()
	r.Skip(3)
	v.RegionWidth = r.U16()
	v.RegionHeight = r.U16()
	v.RegionLevelOfCompatibility = r.Bits8(3)
	v.RegionDepth = r.Bits8(3)
	r.Skip(2)
	v.ClutId = r.U8()
	v.Region8BitPixelCode = r.U8()
	v.Region4BitPixelCode = r.Bits8(4)
	v.Region2BitPixelCode = r.Bits8(2)
	r.Skip(2)
	for r.Remaining() > 0 {
		var o RegionObject
		o.ObjectId = r.U16()
		o.ObjectType = r.Bits8(2)
		o.ObjectProviderFlag = r.Bits8(2)
		o.ObjectHorizontalPosition = r.Bits16(12)
		r.Skip(4)
		o.ObjectVerticalPosition = r.Bits16(12)
		if o.ObjectType == 0x1 || o.ObjectType == 0x2 {
			o.ForegroundPixelCode = r.U8()
			o.BackgroundPixelCode = r.U8()
		}
		if r.Err() != nil {
			break
		}
		v.Objects = append(v.Objects, o)
	}
	return v
}

func (v *RegionComposition) Name() string { return "region composition" }

func (v *RegionComposition) fill(rec *record.Record) {
	rec.Uint("region_id", uint64(v.RegionId)).
		Uint("region_version_number", uint64(v.RegionVersionNumber)).
		Bool("region_fill_flag", v.RegionFillFlag).
		Uint("region_width", uint64(v.RegionWidth)).
		Uint("region_height", uint64(v.RegionHeight)).
		Uint("region_level_of_compatibility", uint64(v.RegionLevelOfCompatibility)).
		Uint("region_depth", uint64(v.RegionDepth)).
		Uint("CLUT_id", uint64(v.ClutId)).
		Uint("region_8-bit_pixel_code", uint64(v.Region8BitPixelCode)).
		Uint("region_4-bit_pixel_code", uint64(v.Region4BitPixelCode)).
		Uint("region_2-bit_pixel_code", uint64(v.Region2BitPixelCode))
	for _, o := range v.Objects {
		or := record.New("region_object").
			Uint("object_id", uint64(o.ObjectId)).
			Uint("object_type", uint64(o.ObjectType)).
			Uint("object_provider_flag", uint64(o.ObjectProviderFlag)).
			Uint("object_horizontal_position", uint64(o.ObjectHorizontalPosition)).
			Uint("object_vertical_position", uint64(o.ObjectVerticalPosition))
		if o.ObjectType == 0x1 || o.ObjectType == 0x2 {
			or.Uint("foreground_pixel_code", uint64(o.ForegroundPixelCode)).
				Uint("background_pixel_code", uint64(o.BackgroundPixelCode))
		}
		rec.Child("object", or)
	}
}

// ----- 0x12 ----------------------------------------------------------------------------------------------------------

type ClutDefinition struct {
	ClutId            uint8
	ClutVersionNumber uint8
	Entries           []ClutEntry
}

// ClutEntry full_range_flag为0时Y，Cr，Cb，T只有6，4，4，2位
type ClutEntry struct {
	ClutEntryId   uint8
	Entry2BitFlag bool
	Entry4BitFlag bool
	Entry8BitFlag bool
	FullRangeFlag bool
	Y             uint8
	Cr            uint8
	Cb            uint8
	T             uint8
}

func decodeClutDefinition(r *field.Reader) Variant {
	v := &ClutDefinition{}
	v.ClutId = r.U8()
	v.ClutVersionNumber = r.Bits8(4)
	r.Skip(4)
	for r.Remaining() > 0 {
		var e ClutEntry
		e.ClutEntryId = r.U8()
		e.Entry2BitFlag = r.Flag()
		e.Entry4BitFlag = r.Flag()
		e.Entry8BitFlag = r.Flag()
		r.Skip(4)
		e.FullRangeFlag = r.Flag()
		if e.FullRangeFlag {
			e.Y = r.U8()
			e.Cr = r.U8()
			e.Cb = r.U8()
			e.T = r.U8()
		} else {
			e.Y = r.Bits8(6)
			e.Cr = r.Bits8(4)
			e.Cb = r.Bits8(4)
			e.T = r.Bits8(2)
		}
		if r.Err() != nil {
			break
		}
		v.Entries = append(v.Entries, e)
	}
	return v
}

func (v *ClutDefinition) Name() string { return "CLUT definition" }

func (v *ClutDefinition) fill(rec *record.Record) {
	rec.Uint("CLUT_id", uint64(v.ClutId)).
		Uint("CLUT_version_number", uint64(v.ClutVersionNumber))
	for _, e := range v.Entries {
		rec.Child("entry", record.New("clut_entry").
			Uint("CLUT_entry_id", uint64(e.ClutEntryId)).
			Bool("2-bit/entry_CLUT_flag", e.Entry2BitFlag).
			Bool("4-bit/entry_CLUT_flag", e.Entry4BitFlag).
			Bool("8-bit/entry_CLUT_flag", e.Entry8BitFlag).
			Bool("full_range_flag", e.FullRangeFlag).
			Uint("Y-value", uint64(e.Y)).
			Uint("Cr-value", uint64(e.Cr)).
			Uint("Cb-value", uint64(e.Cb)).
			Uint("T-value", uint64(e.T)))
	}
}

// ----- 0x13 ----------------------------------------------------------------------------------------------------------

const (
	ObjectCodingMethodPixels     = 0
	ObjectCodingMethodCharacters = 1
)

type ObjectData struct {
	ObjectId                   uint16
	ObjectVersionNumber        uint8
	ObjectCodingMethod         uint8
	NonModifyingColourFlag     bool
	TopFieldDataBlockLength    uint16
	BottomFieldDataBlockLength uint16
	TopFieldData               []byte // pixel-data_sub-block的视图，不解码
	BottomFieldData            []byte
	CharacterCodes             []uint16
}

func decodeObjectData(r *field.Reader) Variant {
	v := &ObjectData{}
	v.ObjectId = r.U16()
	v.ObjectVersionNumber = r.Bits8(4)
	v.ObjectCodingMethod = r.Bits8(2)
	v.NonModifyingColourFlag = r.Flag()
	r.Skip(1)
	switch v.ObjectCodingMethod {
	case ObjectCodingMethodPixels:
		v.TopFieldDataBlockLength = r.U16()
		v.BottomFieldDataBlockLength = r.U16()
		v.TopFieldData = r.Bytes(int(v.TopFieldDataBlockLength))
		v.BottomFieldData = r.Bytes(int(v.BottomFieldDataBlockLength))
	case ObjectCodingMethodCharacters:
		n := r.U8()
		for i := 0; i < int(n) && r.Err() == nil; i++ {
			c := r.U16()
			if r.Err() == nil {
				v.CharacterCodes = append(v.CharacterCodes, c)
			}
		}
	}
	return v
}

func (v *ObjectData) Name() string { return "object data" }

func (v *ObjectData) fill(rec *record.Record) {
	rec.Uint("object_id", uint64(v.ObjectId)).
		Uint("object_version_number", uint64(v.ObjectVersionNumber)).
		Uint("object_coding_method", uint64(v.ObjectCodingMethod)).
		Bool("non_modifying_colour_flag", v.NonModifyingColourFlag)
	switch v.ObjectCodingMethod {
	case ObjectCodingMethodPixels:
		rec.Uint("top_field_data_block_length", uint64(v.TopFieldDataBlockLength)).
			Uint("bottom_field_data_block_length", uint64(v.BottomFieldDataBlockLength))
	case ObjectCodingMethodCharacters:
		rec.Int("number_of_codes", int64(len(v.CharacterCodes)))
		for _, c := range v.CharacterCodes {
			rec.Child("character_code", record.New("character_code").Uint("character_code", uint64(c)))
		}
	}
}

// ----- 0x14 ----------------------------------------------------------------------------------------------------------

type DisplayDefinition struct {
	DdsVersionNumber  uint8
	DisplayWindowFlag bool
	DisplayWidth      uint16 // 实际宽度减1
	DisplayHeight     uint16

	// 以下只在DisplayWindowFlag为true时有效
	DisplayWindowHorizontalPositionMinimum uint16
	DisplayWindowHorizontalPositionMaximum uint16
	DisplayWindowVerticalPositionMinimum   uint16
	DisplayWindowVerticalPositionMaximum   uint16
}

func decodeDisplayDefinition(r *field.Reader) Variant {
	v := &DisplayDefinition{}
	v.DdsVersionNumber = r.Bits8(4)
	v.DisplayWindowFlag = r.Flag()
	r.Skip(3)
	v.DisplayWidth = r.U16()
	v.DisplayHeight = r.U16()
	if v.DisplayWindowFlag {
		v.DisplayWindowHorizontalPositionMinimum = r.U16()
		v.DisplayWindowHorizontalPositionMaximum = r.U16()
		v.DisplayWindowVerticalPositionMinimum = r.U16()
		v.DisplayWindowVerticalPositionMaximum = r.U16()
	}
	return v
}

func (v *DisplayDefinition) Name() string { return "display definition" }

func (v *DisplayDefinition) fill(rec *record.Record) {
	rec.Uint("dds_version_number", uint64(v.DdsVersionNumber)).
		Bool("display_window_flag", v.DisplayWindowFlag).
		Uint("display_width", uint64(v.DisplayWidth)).
		Uint("display_height", uint64(v.DisplayHeight))
	if v.DisplayWindowFlag {
		rec.Uint("display_window_horizontal_position_minimum", uint64(v.DisplayWindowHorizontalPositionMinimum)).
			Uint("display_window_horizontal_position_maximum", uint64(v.DisplayWindowHorizontalPositionMaximum)).
			Uint("display_window_vertical_position_minimum", uint64(v.DisplayWindowVerticalPositionMinimum)).
			Uint("display_window_vertical_position_maximum", uint64(v.DisplayWindowVerticalPositionMaximum))
	}
}

// ----- 0x80 ----------------------------------------------------------------------------------------------------------

type EndOfDisplaySet struct{}

func (v *EndOfDisplaySet) Name() string { return "end of display set" }

func (v *EndOfDisplaySet) fill(rec *record.Record) {}

// ----- generic -------------------------------------------------------------------------------------------------------

// Generic 没有解析的segment_type，保留原始字节
type Generic struct {
	Data []byte
}

func (v *Generic) Name() string { return "generic" }

func (v *Generic) fill(rec *record.Record) {
	rec.Int("data_length", int64(len(v.Data)))
}
