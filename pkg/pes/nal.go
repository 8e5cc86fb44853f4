// Copyright 2026, Chef.  All rights reserved.
// https://github.com/q191201771/dvbinspect
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package pes

import (
	"fmt"

	"github.com/q191201771/dvbinspect/pkg/avc"
	"github.com/q191201771/dvbinspect/pkg/base"
	"github.com/q191201771/dvbinspect/pkg/h2645"
	"github.com/q191201771/dvbinspect/pkg/hevc"
	"github.com/q191201771/dvbinspect/pkg/record"
	"github.com/zsiec/ccx"
)

// SpsSummary SPS中用于展示的字段，h264和h265共用
type SpsSummary struct {
	Profile uint8
	Level   uint8
	Width   uint32
	Height  uint32
}

type CaptionPair struct {
	Channel int
	Field   int
	Data    [2]byte
}

type NalUnit struct {
	Index  int // 在所属PES包中的序号
	Offset int // 在PES payload中的位置，不包含start code
	Type   uint8
	Class  h2645.NaluClass
	Data   []byte // PES payload的切片，包含nal header

	SliceType    uint8 // 只有HasSliceType为true时有效
	HasSliceType bool
	RbspSize     int

	Sps      *SpsSummary
	Captions []CaptionPair

	Diagnostics base.Diagnostics
}

// NalPacket 一个PES包，以及其中的Annex-B NAL units
type NalPacket struct {
	Index   int
	Packet  *Packet
	Units   []*NalUnit
	Leading int // 第一个start code之前的字节数
}

// NalStream 一个PID上的h264或h265视频流
type NalStream struct {
	isH264  bool
	packets []*NalPacket
}

func NewNalStream(isH264 bool) *NalStream {
	return &NalStream{
		isH264: isH264,
	}
}

func (s *NalStream) IsH264() bool {
	return s.isH264
}

// Feed 切分pkt payload中的NAL units，NalUnit.Data引用pkt的内存块
func (s *NalStream) Feed(pkt *Packet) *NalPacket {
	np := &NalPacket{
		Index:  len(s.packets),
		Packet: pkt,
	}
	payload := pkt.Payload
	np.Leading = h2645.IterateNaluAnnexb(payload, func(nal []byte) {
		offset := cap(payload) - cap(nal)
		np.Units = append(np.Units, s.parseNalUnit(len(np.Units), offset, nal))
	})
	s.packets = append(s.packets, np)
	return np
}

func (s *NalStream) Packets() []*NalPacket {
	return s.packets
}

func (s *NalStream) NewIterator() *NalIterator {
	return &NalIterator{stream: s}
}

// Iterate 按传输顺序遍历所有NAL unit
//
// @param handler 返回false时停止遍历
func (s *NalStream) Iterate(handler func(pkt *NalPacket, nal *NalUnit) bool) {
	it := s.NewIterator()
	for {
		pkt, nal, ok := it.Next()
		if !ok {
			return
		}
		if !handler(pkt, nal) {
			return
		}
	}
}

// AccessUnit 一个access unit中各类slice的字节数，不包含nal header和emulation_prevention_three_byte
//
// 下标0~4为slice_type%5，即P，B，I，SP，SI，下标5为filler data
type AccessUnit struct {
	Index int
	Bytes [6]int
}

const AccessUnitFillerIndex = 5

var accessUnitClassNames = [...]string{"P", "B", "I", "SP", "SI", "filler"}

// AccessUnits 以AUD，SPS，PPS，SEI为分界统计每个access unit的大小
//
// 只支持h264，h265的slice_type依赖PPS，返回nil
func (s *NalStream) AccessUnits() []AccessUnit {
	if !s.isH264 {
		return nil
	}

	var ret []AccessUnit
	var cur AccessUnit
	flush := func() {
		if cur.Bytes == ([6]int{}) {
			return
		}
		cur.Index = len(ret)
		ret = append(ret, cur)
		cur = AccessUnit{}
	}

	s.Iterate(func(_ *NalPacket, nal *NalUnit) bool {
		switch nal.Class {
		case h2645.NaluClassBoundary:
			flush()
		case h2645.NaluClassSlice:
			if nal.HasSliceType {
				cur.Bytes[nal.SliceType] += nal.RbspSize
			}
		case h2645.NaluClassFiller:
			cur.Bytes[AccessUnitFillerIndex] += nal.RbspSize
		}
		return true
	})
	flush()
	return ret
}

func (s *NalStream) DiagnosticCount() int {
	n := 0
	for _, p := range s.packets {
		n += len(p.Packet.Diagnostics)
		for _, u := range p.Units {
			n += len(u.Diagnostics)
		}
	}
	return n
}

func (s *NalStream) Records() []*record.Record {
	ret := make([]*record.Record, 0, len(s.packets)+1)
	for _, p := range s.packets {
		ret = append(ret, p.Record(s.isH264))
	}
	if aus := s.AccessUnits(); len(aus) != 0 {
		r := record.New("access_units")
		for _, au := range aus {
			ar := record.New("access_unit").Int("index", int64(au.Index))
			for i, name := range accessUnitClassNames {
				ar.Int(name, int64(au.Bytes[i]))
			}
			r.Child("access_unit", ar)
		}
		ret = append(ret, r)
	}
	return ret
}

func (s *NalStream) parseNalUnit(index, offset int, nal []byte) *NalUnit {
	u := &NalUnit{
		Index:  index,
		Offset: offset,
		Data:   nal,
	}
	unit := fmt.Sprintf("nal unit %d", index)
	if len(nal) < h2645.HeaderLength(s.isH264) {
		u.Diagnostics.Add(unit, offset, base.NewErrTruncatedInput(h2645.HeaderLength(s.isH264), len(nal), "nal header"))
		return u
	}

	u.Type = h2645.ParseNaluType(s.isH264, nal[0])
	u.Class = h2645.Classify(s.isH264, u.Type)
	u.RbspSize = h2645.NumBytesInRbsp(s.isH264, nal)

	if s.isH264 && u.Class == h2645.NaluClassSlice {
		st, err := avc.ParseSliceType(nal)
		if err != nil {
			u.Diagnostics.Add(unit, offset, err)
		} else {
			u.SliceType = st
			u.HasSliceType = true
		}
	}

	if h2645.IsSps(s.isH264, u.Type) {
		sps, err := parseSps(s.isH264, nal)
		if err != nil {
			u.Diagnostics.Add(unit, offset, err)
		} else {
			u.Sps = sps
		}
	}

	if s.isH264 && u.Type == avc.NaluTypeSei {
		if cd := ccx.ExtractCaptions(nal); cd != nil {
			for _, pair := range cd.CC608Pairs {
				u.Captions = append(u.Captions, CaptionPair{
					Channel: int(pair.Channel),
					Field:   int(pair.Field),
					Data:    [2]byte{pair.Data[0], pair.Data[1]},
				})
			}
		}
	}
	return u
}

func parseSps(isH264 bool, nal []byte) (*SpsSummary, error) {
	if isH264 {
		var ctx avc.Context
		if err := avc.ParseSps(nal, &ctx); err != nil {
			return nil, err
		}
		return &SpsSummary{Profile: ctx.Profile, Level: ctx.Level, Width: ctx.Width, Height: ctx.Height}, nil
	}
	var ctx hevc.Context
	if err := hevc.ParseSps(nal, &ctx); err != nil {
		return nil, err
	}
	return &SpsSummary{Profile: ctx.GeneralProfileIdc, Level: ctx.GeneralLevelIdc, Width: ctx.Width, Height: ctx.Height}, nil
}

func (p *NalPacket) Record(isH264 bool) *record.Record {
	r := p.Packet.Record()
	r.Int("index", int64(p.Index))
	if p.Leading != 0 {
		r.Int("leading_bytes", int64(p.Leading))
	}
	for _, u := range p.Units {
		r.Child("nal_unit", u.Record(isH264))
	}
	return r
}

func (u *NalUnit) Record(isH264 bool) *record.Record {
	r := record.New("nal_unit").
		Int("index", int64(u.Index)).
		Int("offset", int64(u.Offset)).
		Int("length", int64(len(u.Data)))
	if len(u.Data) != 0 {
		r.Uint("nal_unit_type", uint64(u.Type)).
			Str("nal_unit_type_text", h2645.ParseNaluTypeReadable(isH264, u.Data[0])).
			Int("rbsp_size", int64(u.RbspSize))
	}
	if u.HasSliceType {
		r.Uint("slice_type", uint64(u.SliceType)).Str("slice_type_text", avc.SliceTypeMapping[u.SliceType])
	}
	if u.Sps != nil {
		r.Child("sps", record.New("sps").
			Uint("profile", uint64(u.Sps.Profile)).
			Uint("level", uint64(u.Sps.Level)).
			Uint("width", uint64(u.Sps.Width)).
			Uint("height", uint64(u.Sps.Height)))
	}
	for _, c := range u.Captions {
		r.Child("cea608", record.New("cc_pair").
			Int("channel", int64(c.Channel)).
			Int("field", int64(c.Field)).
			Uint("cc_data_1", uint64(c.Data[0])).
			Uint("cc_data_2", uint64(c.Data[1])))
	}
	r.Diag(u.Diagnostics.Strings()...)
	return r
}

// NalIterator 两级遍历，先PES包，再包中的NAL unit，跳过没有NAL unit的PES包
type NalIterator struct {
	stream *NalStream
	pi     int
	ui     int
}

func (it *NalIterator) Next() (*NalPacket, *NalUnit, bool) {
	for it.pi < len(it.stream.packets) {
		p := it.stream.packets[it.pi]
		if it.ui < len(p.Units) {
			u := p.Units[it.ui]
			it.ui++
			return p, u, true
		}
		it.pi++
		it.ui = 0
	}
	return nil, nil, false
}
