// Copyright 2026, Chef.  All rights reserved.
// https://github.com/q191201771/dvbinspect
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package pes_test

import (
	"testing"

	"github.com/q191201771/dvbinspect/pkg/avc"
	"github.com/q191201771/dvbinspect/pkg/descriptor"
	"github.com/q191201771/dvbinspect/pkg/h2645"
	"github.com/q191201771/dvbinspect/pkg/pes"
	"github.com/q191201771/naza/pkg/assert"
)

var (
	startCode = []byte{0x00, 0x00, 0x00, 0x01}

	nalAud = []byte{0x09, 0xF0}
	nalSps = []byte{
		0x67, 0x64, 0x00, 0x1f, 0xac, 0xd9, 0x40, 0x50,
		0x05, 0xbb, 0xff, 0x00, 0x03, 0x00, 0x04, 0x6a,
		0x02, 0x02, 0x02, 0x80, 0x00, 0x01, 0xf4, 0x80,
		0x00, 0x5d, 0xc0, 0x07, 0x8c, 0x18, 0xcb,
	}
	nalPps    = []byte{0x68, 0xEE, 0x3C, 0x80}
	nalIdr    = []byte{0x65, 0x88, 0x80}
	nalP      = []byte{0x41, 0x9A}
	nalFiller = []byte{0x0C, 0xFF, 0xFF, 0x80}

	// user_data_registered_itu_t_t35，A/53 GA94 cc_data，一个field 1的pair "HI"
	nalSei = []byte{
		0x06, 0x04, 0x0E,
		0xB5, 0x00, 0x31, 'G', 'A', '9', '4', 0x03,
		0x41, 0xFF,
		0xFC, 0xC8, 0x49,
		0xFF,
		0x80,
	}
)

func annexb(nals ...[]byte) []byte {
	var b []byte
	for _, nal := range nals {
		b = append(b, startCode...)
		b = append(b, nal...)
	}
	return b
}

func feedH264(t *testing.T, f pes.Framer) {
	f.Feed(mustParsePacket(t, pesPacket(0xE0, 3600, 0, annexb(nalAud, nalSps, nalPps, nalIdr))))
	f.Feed(mustParsePacket(t, pesPacket(0xE0, 7200, 3600, annexb(nalAud, nalSei, nalP, nalFiller))))
}

func TestNalStream(t *testing.T) {
	s := pes.NewNalStream(true)
	s.Feed(mustParsePacket(t, pesPacket(0xE0, 3600, 0, annexb(nalAud, nalSps, nalPps, nalIdr))))
	np := s.Feed(mustParsePacket(t, pesPacket(0xE0, 7200, 3600, concat([]byte{0x11}, annexb(nalAud, nalSei, nalP, nalFiller)))))
	assert.Equal(t, 1, np.Leading)
	assert.Equal(t, 4, len(np.Units))

	var types []uint8
	s.Iterate(func(pkt *pes.NalPacket, nal *pes.NalUnit) bool {
		types = append(types, nal.Type)
		return true
	})
	assert.Equal(t, []uint8{
		avc.NaluTypeAud, avc.NaluTypeSps, avc.NaluTypePps, avc.NaluTypeIdrSlice,
		avc.NaluTypeAud, avc.NaluTypeSei, avc.NaluTypeSlice, avc.NaluTypeFd,
	}, types)

	// 提前结束
	n := 0
	s.Iterate(func(pkt *pes.NalPacket, nal *pes.NalUnit) bool {
		n++
		return n < 3
	})
	assert.Equal(t, 3, n)

	first := s.Packets()[0]
	sps := first.Units[1]
	assert.IsNotNil(t, sps.Sps)
	assert.Equal(t, uint8(100), sps.Sps.Profile)
	assert.Equal(t, uint32(1280), sps.Sps.Width)
	assert.Equal(t, uint32(720), sps.Sps.Height)
	// nal unit是PES payload的切片
	assert.Equal(t, 4+len(nalAud)+4, sps.Offset)
	assert.Equal(t, nalSps, sps.Data)

	idr := first.Units[3]
	assert.Equal(t, h2645.NaluClassSlice, idr.Class)
	assert.Equal(t, true, idr.HasSliceType)
	assert.Equal(t, avc.SliceTypeI, idr.SliceType)
	assert.Equal(t, 2, idr.RbspSize)

	sei := np.Units[1]
	assert.Equal(t, h2645.NaluClassBoundary, sei.Class)
	assert.Equal(t, 1, len(sei.Captions))
	assert.Equal(t, byte(0x48), sei.Captions[0].Data[0]&0x7F)
	assert.Equal(t, byte(0x49), sei.Captions[0].Data[1]&0x7F)

	assert.Equal(t, 0, s.DiagnosticCount())
}

func TestNalIterator(t *testing.T) {
	s := pes.NewNalStream(true)
	// 没有nal unit的PES包被跳过
	s.Feed(mustParsePacket(t, pesPacket(0xE0, 0, 0, nil)))
	s.Feed(mustParsePacket(t, pesPacket(0xE0, 0, 0, annexb(nalAud))))
	s.Feed(mustParsePacket(t, pesPacket(0xE0, 0, 0, []byte{0x00, 0x00})))
	s.Feed(mustParsePacket(t, pesPacket(0xE0, 0, 0, annexb(nalP, nalP))))

	it := s.NewIterator()
	var got []int
	for {
		pkt, _, ok := it.Next()
		if !ok {
			break
		}
		got = append(got, pkt.Index)
	}
	assert.Equal(t, []int{1, 3, 3}, got)

	_, _, ok := it.Next()
	assert.Equal(t, false, ok)
}

func TestAccessUnits(t *testing.T) {
	s := pes.NewNalStream(true)
	s.Feed(mustParsePacket(t, pesPacket(0xE0, 0, 0, annexb(nalAud, nalSps, nalPps, nalIdr))))
	s.Feed(mustParsePacket(t, pesPacket(0xE0, 0, 0, annexb(nalAud, nalSei, nalP, nalFiller))))
	// 同一个access unit的slice跨PES包
	s.Feed(mustParsePacket(t, pesPacket(0xE0, 0, 0, annexb(nalAud, nalP))))
	s.Feed(mustParsePacket(t, pesPacket(0xE0, 0, 0, annexb(nalP))))

	aus := s.AccessUnits()
	assert.Equal(t, 3, len(aus))
	assert.Equal(t, [6]int{0, 0, 2, 0, 0, 0}, aus[0].Bytes)
	assert.Equal(t, [6]int{1, 0, 0, 0, 0, 3}, aus[1].Bytes)
	assert.Equal(t, [6]int{2, 0, 0, 0, 0, 0}, aus[2].Bytes)
	assert.Equal(t, 2, aus[2].Index)

	// h265不统计
	assert.Equal(t, 0, len(pes.NewNalStream(false).AccessUnits()))
}

func TestSelectFramer(t *testing.T) {
	assert.Equal(t, pes.FramerKindH264, pes.SelectFramer(0x1b, nil))
	assert.Equal(t, pes.FramerKindH265, pes.SelectFramer(0x24, nil))
	assert.Equal(t, pes.FramerKindAdts, pes.SelectFramer(0x0f, nil))
	assert.Equal(t, pes.FramerKindAc3, pes.SelectFramer(0x81, nil))
	assert.Equal(t, pes.FramerKindEac3, pes.SelectFramer(0x87, nil))
	assert.Equal(t, pes.FramerKindOpaque, pes.SelectFramer(0x02, nil))
	assert.Equal(t, pes.FramerKindOpaque, pes.SelectFramer(0x06, nil))

	esInfo := func(tag uint8, payload ...byte) []descriptor.Descriptor {
		l, diags := descriptor.Default.DecodeList(append([]byte{tag, byte(len(payload))}, payload...), descriptor.ContextPMT)
		assert.Equal(t, 0, len(diags))
		return l
	}
	assert.Equal(t, pes.FramerKindAc3, pes.SelectFramer(0x06, esInfo(0x6A, 0x00)))
	assert.Equal(t, pes.FramerKindEac3, pes.SelectFramer(0x06, esInfo(0x7A, 0x00)))
	assert.Equal(t, pes.FramerKindDvbsub, pes.SelectFramer(0x06, esInfo(0x59, 'e', 'n', 'g', 0x10, 0x00, 0x01, 0x00, 0x01)))
	assert.Equal(t, pes.FramerKindTeletext, pes.SelectFramer(0x06, esInfo(0x56, 'd', 'e', 'u', 0x09, 0x00)))
	assert.Equal(t, pes.FramerKindAc3, pes.SelectFramer(0x06, esInfo(0x05, 'A', 'C', '-', '3')))
}

func TestFramers(t *testing.T) {
	f, err := pes.NewFramer(pes.FramerKindH264)
	assert.Equal(t, nil, err)
	assert.Equal(t, pes.FramerKindH264, f.Kind())
	feedH264(t, f)
	records := f.Records()
	// 2个PES包，以及access unit统计
	assert.Equal(t, 3, len(records))
	assert.Equal(t, 4, len(records[0].List("nal_unit")))
	assert.Equal(t, "access_units", records[2].Kind)
	assert.Equal(t, 0, f.DiagnosticCount())

	f, _ = pes.NewFramer(pes.FramerKindDvbsub)
	f.Feed(mustParsePacket(t, pesPacket(0xBD, 0, 0, []byte{0x20, 0x00, 0x0F, 0x80, 0x00, 0x01, 0x00, 0x00, 0xFF})))
	records = f.Records()
	assert.Equal(t, 1, len(records))
	assert.Equal(t, 1, len(records[0].List("subtitle_payload")))

	f, _ = pes.NewFramer(pes.FramerKindTeletext)
	f.Feed(mustParsePacket(t, pesPacket(0xBD, 0, 0, []byte{0x10, 0x02})))
	assert.Equal(t, pes.FramerKindTeletext, f.Kind())
	assert.Equal(t, 1, len(f.Records()))

	_, err = pes.NewFramer("mp3")
	assert.IsNotNil(t, err)
}
