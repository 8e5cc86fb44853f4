// Copyright 2026, Chef.  All rights reserved.
// https://github.com/q191201771/dvbinspect
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package dvbsub

import (
	"fmt"

	"github.com/q191201771/dvbinspect/pkg/base"
	"github.com/q191201771/dvbinspect/pkg/field"
	"github.com/q191201771/dvbinspect/pkg/record"
	"github.com/q191201771/naza/pkg/bele"
	"github.com/q191201771/naza/pkg/nazalog"
)

// <ETSI EN 300 743> DVB subtitling systems

var Log = nazalog.GetGlobalLogger()

const (
	SyncByte                = 0x0F
	EndOfPesDataFieldMarker = 0xFF

	DataIdentifierSubtitle = 0x20

	segmentHeaderLength = 6
)

const (
	SegmentTypePageComposition     uint8 = 0x10
	SegmentTypeRegionComposition   uint8 = 0x11
	SegmentTypeClutDefinition      uint8 = 0x12
	SegmentTypeObjectData          uint8 = 0x13
	SegmentTypeDisplayDefinition   uint8 = 0x14
	SegmentTypeDisparitySignalling uint8 = 0x15
	SegmentTypeAlternativeClut     uint8 = 0x16
	SegmentTypeEndOfDisplaySet     uint8 = 0x80
	SegmentTypeStuffing            uint8 = 0xFF
)

// Variant 已解析的segment内容，未注册的segment_type使用Generic
type Variant interface {
	Name() string

	fill(r *record.Record)
}

type decodeFunc func(r *field.Reader) Variant

var decoders = map[uint8]decodeFunc{
	SegmentTypePageComposition:   decodePageComposition,
	SegmentTypeRegionComposition: decodeRegionComposition,
	SegmentTypeClutDefinition:    decodeClutDefinition,
	SegmentTypeObjectData:        decodeObjectData,
	SegmentTypeDisplayDefinition: decodeDisplayDefinition,
	SegmentTypeEndOfDisplaySet:   func(r *field.Reader) Variant { return &EndOfDisplaySet{} },
}

// Segment
//
// ----------------------------------------
// sync_byte               [8b] 0x0F
// segment_type            [8b]
// page_id                 [16b]
// segment_length          [16b]
// segment_data_field
// ----------------------------------------
type Segment struct {
	Type   uint8
	PageId uint16
	Length uint16
	Offset int    // 在PES payload中的位置
	Data   []byte // segment_data_field的视图，被截断时短于Length

	Value       Variant
	Diagnostics base.Diagnostics
}

// Payload 一个PES包中的全部segment
//
// Regions，Cluts，Objects只用于按id交叉引用，segment属于Segments
type Payload struct {
	DataIdentifier   uint8
	SubtitleStreamId uint8
	Segments         []*Segment
	TrailingBytes    int // 最后一个segment之后的字节数，包括end_of_PES_data_field_marker

	Regions map[uint8]*RegionComposition
	Cluts   map[uint8]*ClutDefinition
	Objects map[uint16]*ObjectData

	Diagnostics base.Diagnostics
}

// DecodePayload 解析一个完整的PES payload，不跨PES包缓存
//
// 按 6字节头+segment_length 遍历，直到sync_byte不是0x0F。
// segment_length超出payload时，用实际存在的字节解析该segment并记录诊断信息，然后结束遍历
func DecodePayload(b []byte) *Payload {
	p := &Payload{
		Regions: make(map[uint8]*RegionComposition),
		Cluts:   make(map[uint8]*ClutDefinition),
		Objects: make(map[uint16]*ObjectData),
	}
	if len(b) < 2 {
		p.Diagnostics.Add("subtitle payload", 0, base.NewErrTruncatedInput(2, len(b), "subtitle payload"))
		return p
	}
	p.DataIdentifier = b[0]
	p.SubtitleStreamId = b[1]

	pos := 2
	for pos < len(b) && b[pos] == SyncByte {
		if len(b)-pos < segmentHeaderLength {
			p.Diagnostics.Add("segment header", pos, fmt.Errorf("%w. %s",
				base.ErrMalformedSegment, base.NewErrTruncatedInput(segmentHeaderLength, len(b)-pos, "segment header")))
			pos = len(b)
			break
		}
		seg := &Segment{
			Type:   b[pos+1],
			PageId: bele.BeUint16(b[pos+2:]),
			Length: bele.BeUint16(b[pos+4:]),
			Offset: pos,
		}
		start := pos + segmentHeaderLength
		end := start + int(seg.Length)
		truncated := end > len(b)
		if truncated {
			end = len(b)
		}
		seg.Data = b[start:end:end]
		p.decodeSegment(seg)
		if truncated {
			seg.Diagnostics.Add(seg.unit(), pos, fmt.Errorf("%w. %s", base.ErrMalformedSegment,
				base.NewErrTruncatedInput(int(seg.Length), len(seg.Data), "segment_data_field")))
			Log.Debugf("segment truncated. type=0x%02x, offset=%d, declared=%d, present=%d",
				seg.Type, pos, seg.Length, len(seg.Data))
		}
		p.Segments = append(p.Segments, seg)
		pos = end
		if truncated {
			break
		}
	}
	p.TrailingBytes = len(b) - pos
	return p
}

func (p *Payload) DiagnosticCount() int {
	n := len(p.Diagnostics)
	for _, s := range p.Segments {
		n += len(s.Diagnostics)
	}
	return n
}

func (p *Payload) Record() *record.Record {
	r := record.New("subtitle_payload").
		Uint("data_identifier", uint64(p.DataIdentifier)).
		Str("data_identifier_text", DataIdentifierText(p.DataIdentifier)).
		Uint("subtitle_stream_id", uint64(p.SubtitleStreamId)).
		Int("trailing_bytes", int64(p.TrailingBytes))
	for _, s := range p.Segments {
		r.Child("segment", s.Record())
	}
	r.Diag(p.Diagnostics.Strings()...)
	return r
}

func (s *Segment) Record() *record.Record {
	r := record.New("segment").
		Uint("segment_type", uint64(s.Type)).
		Str("segment_type_text", SegmentTypeText(s.Type)).
		Uint("page_id", uint64(s.PageId)).
		Uint("segment_length", uint64(s.Length)).
		Int("offset", int64(s.Offset))
	if s.Value != nil {
		s.Value.fill(r)
	}
	r.Diag(s.Diagnostics.Strings()...)
	return r
}

func (s *Segment) unit() string {
	return fmt.Sprintf("segment 0x%02x", s.Type)
}

func (p *Payload) decodeSegment(seg *Segment) {
	fn, ok := decoders[seg.Type]
	if !ok {
		seg.Value = &Generic{Data: seg.Data}
		return
	}
	r := field.NewReader(seg.Data, seg.unit())
	seg.Value = fn(r)
	for _, err := range r.Errors() {
		seg.Diagnostics.Add(seg.unit(), seg.Offset, err)
	}

	switch v := seg.Value.(type) {
	case *RegionComposition:
		p.Regions[v.RegionId] = v
	case *ClutDefinition:
		p.Cluts[v.ClutId] = v
	case *ObjectData:
		p.Objects[v.ObjectId] = v
	}
}

func SegmentTypeText(t uint8) string {
	switch t {
	case SegmentTypePageComposition:
		return "page composition segment"
	case SegmentTypeRegionComposition:
		return "region composition segment"
	case SegmentTypeClutDefinition:
		return "CLUT definition segment"
	case SegmentTypeObjectData:
		return "object data segment"
	case SegmentTypeDisplayDefinition:
		return "display definition segment"
	case SegmentTypeDisparitySignalling:
		return "disparity signalling segment"
	case SegmentTypeAlternativeClut:
		return "alternative CLUT segment"
	case SegmentTypeEndOfDisplaySet:
		return "end of display set segment"
	case SegmentTypeStuffing:
		return "stuffing"
	}
	switch {
	case t >= 0x40 && t <= 0x7F:
		return "reserved for future use"
	case t >= 0x81 && t <= 0xEF:
		return "private data"
	}
	return "reserved"
}

func DataIdentifierText(v uint8) string {
	switch {
	case v == DataIdentifierSubtitle:
		return "DVB subtitle stream"
	case v >= 0x10 && v <= 0x1F:
		return "EBU data"
	case v >= 0x80:
		return "user defined"
	}
	return "reserved"
}
