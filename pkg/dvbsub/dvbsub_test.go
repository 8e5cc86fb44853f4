// Copyright 2026, Chef.  All rights reserved.
// https://github.com/q191201771/dvbinspect
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package dvbsub_test

import (
	"errors"
	"testing"

	"github.com/q191201771/dvbinspect/pkg/base"
	"github.com/q191201771/dvbinspect/pkg/dvbsub"
	"github.com/q191201771/naza/pkg/assert"
)

func segment(typ uint8, pageId uint16, data ...byte) []byte {
	b := []byte{dvbsub.SyncByte, typ, byte(pageId >> 8), byte(pageId), byte(len(data) >> 8), byte(len(data))}
	return append(b, data...)
}

func payload(segments ...[]byte) []byte {
	b := []byte{dvbsub.DataIdentifierSubtitle, 0x00}
	for _, s := range segments {
		b = append(b, s...)
	}
	return append(b, dvbsub.EndOfPesDataFieldMarker)
}

var (
	// timeout 10, version 1, acquisition point; region 1 at (16, 416)
	pcs = segment(dvbsub.SegmentTypePageComposition, 1,
		0x0A, 0x14,
		0x01, 0x00, 0x00, 0x10, 0x01, 0xA0)

	// region 1 720x64, 8 bit, CLUT 2; object 7 at (16, 8)
	rcs = segment(dvbsub.SegmentTypeRegionComposition, 1,
		0x01, 0x18,
		0x02, 0xD0, 0x00, 0x40,
		0x4C, 0x02, 0x00, 0x00,
		0x00, 0x07, 0x00, 0x10, 0x00, 0x08)

	// CLUT 2, entry 1 full range, entry 2 reduced range
	cds = segment(dvbsub.SegmentTypeClutDefinition, 1,
		0x02, 0x10,
		0x01, 0xE1, 0x10, 0x80, 0x80, 0x00,
		0x02, 0xE0, 0xFF, 0xFF)

	// object 7, pixels, top 2 bytes, bottom 1 byte
	ods = segment(dvbsub.SegmentTypeObjectData, 1,
		0x00, 0x07, 0x10,
		0x00, 0x02, 0x00, 0x01,
		0xAA, 0xBB, 0xCC)

	// 1920x1080
	dds = segment(dvbsub.SegmentTypeDisplayDefinition, 1,
		0x00, 0x07, 0x7F, 0x04, 0x37)

	eds = segment(dvbsub.SegmentTypeEndOfDisplaySet, 1)
)

func TestDecodePayload(t *testing.T) {
	p := dvbsub.DecodePayload(payload(dds, pcs, rcs, cds, ods, eds))
	assert.Equal(t, 0, p.DiagnosticCount())
	assert.Equal(t, uint8(0x20), p.DataIdentifier)
	assert.Equal(t, 6, len(p.Segments))
	assert.Equal(t, 1, p.TrailingBytes)

	dd, ok := p.Segments[0].Value.(*dvbsub.DisplayDefinition)
	assert.Equal(t, true, ok)
	assert.Equal(t, uint16(1919), dd.DisplayWidth)
	assert.Equal(t, uint16(1079), dd.DisplayHeight)

	pc, ok := p.Segments[1].Value.(*dvbsub.PageComposition)
	assert.Equal(t, true, ok)
	assert.Equal(t, uint8(10), pc.PageTimeOut)
	assert.Equal(t, uint8(1), pc.PageVersionNumber)
	assert.Equal(t, uint8(1), pc.PageState)
	assert.Equal(t, 1, len(pc.Regions))
	assert.Equal(t, uint16(416), pc.Regions[0].RegionVerticalAddress)

	rc := p.Regions[1]
	assert.IsNotNil(t, rc)
	assert.Equal(t, uint16(720), rc.RegionWidth)
	assert.Equal(t, uint16(64), rc.RegionHeight)
	assert.Equal(t, uint8(3), rc.RegionDepth)
	assert.Equal(t, uint8(2), rc.ClutId)
	assert.Equal(t, 1, len(rc.Objects))
	assert.Equal(t, uint16(7), rc.Objects[0].ObjectId)
	assert.Equal(t, uint16(8), rc.Objects[0].ObjectVerticalPosition)

	// 交叉引用
	clut := p.Cluts[rc.ClutId]
	assert.IsNotNil(t, clut)
	assert.Equal(t, 2, len(clut.Entries))
	assert.Equal(t, true, clut.Entries[0].FullRangeFlag)
	assert.Equal(t, uint8(0x10), clut.Entries[0].Y)
	assert.Equal(t, false, clut.Entries[1].FullRangeFlag)
	assert.Equal(t, uint8(0x3F), clut.Entries[1].Y)
	assert.Equal(t, uint8(0x3), clut.Entries[1].T)

	obj := p.Objects[rc.Objects[0].ObjectId]
	assert.IsNotNil(t, obj)
	assert.Equal(t, []byte{0xAA, 0xBB}, obj.TopFieldData)
	assert.Equal(t, []byte{0xCC}, obj.BottomFieldData)

	_, ok = p.Segments[5].Value.(*dvbsub.EndOfDisplaySet)
	assert.Equal(t, true, ok)

	r := p.Record()
	assert.Equal(t, "subtitle_payload", r.Kind)
	assert.Equal(t, 6, len(r.List("segment")))
}

func TestDecodePayloadGeneric(t *testing.T) {
	p := dvbsub.DecodePayload(payload(segment(0x90, 3, 0x01, 0x02)))
	assert.Equal(t, 1, len(p.Segments))
	g, ok := p.Segments[0].Value.(*dvbsub.Generic)
	assert.Equal(t, true, ok)
	assert.Equal(t, []byte{0x01, 0x02}, g.Data)
	assert.Equal(t, "private data", dvbsub.SegmentTypeText(0x90))
}

func TestDecodePayloadTruncated(t *testing.T) {
	b := payload(pcs)
	// 第二个segment声明10字节，实际只有3字节
	b = append(b[:len(b)-1], dvbsub.SyncByte, dvbsub.SegmentTypeClutDefinition, 0x00, 0x01, 0x00, 0x0A, 0x02, 0x10, 0x01)
	p := dvbsub.DecodePayload(b)
	assert.Equal(t, 2, len(p.Segments))
	assert.Equal(t, 0, len(p.Segments[0].Diagnostics))

	last := p.Segments[1]
	assert.Equal(t, 3, len(last.Data))
	assert.Equal(t, true, last.Diagnostics.Count(base.ErrMalformedSegment) == 1)
	assert.Equal(t, true, errors.Is(last.Diagnostics[len(last.Diagnostics)-1].Err, base.ErrMalformedSegment))
	assert.Equal(t, 0, p.TrailingBytes)

	// 部分解析出的CLUT仍然进入索引
	assert.IsNotNil(t, p.Cluts[2])
}

func TestDecodePayloadShort(t *testing.T) {
	p := dvbsub.DecodePayload([]byte{0x20})
	assert.Equal(t, 1, p.DiagnosticCount())

	// segment头不完整
	p = dvbsub.DecodePayload([]byte{0x20, 0x00, dvbsub.SyncByte, 0x10, 0x00})
	assert.Equal(t, 0, len(p.Segments))
	assert.Equal(t, 1, p.Diagnostics.Count(base.ErrMalformedSegment))
}
