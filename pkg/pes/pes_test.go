// Copyright 2020, Chef.  All rights reserved.
// https://github.com/q191201771/dvbinspect
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package pes_test

import (
	"testing"

	"github.com/q191201771/dvbinspect/pkg/base"
	"github.com/q191201771/dvbinspect/pkg/pes"
	"github.com/q191201771/naza/pkg/assert"
)

func encodePts(prefix uint8, pts uint64) []byte {
	return []byte{
		prefix<<4 | uint8(pts>>29)&0x0E | 1,
		uint8(pts >> 22),
		uint8(pts>>14)&0xFE | 1,
		uint8(pts >> 7),
		uint8(pts<<1)&0xFE | 1,
	}
}

// pesPacket 带PTS和DTS的PES包
func pesPacket(streamId uint8, pts, dts uint64, payload []byte) []byte {
	opt := append(encodePts(3, pts), encodePts(1, dts)...)
	b := []byte{0x00, 0x00, 0x01, streamId, 0x00, 0x00, 0x80, 0xC0, byte(len(opt))}
	b = append(b, opt...)
	b = append(b, payload...)
	n := len(b) - 6
	b[4], b[5] = byte(n>>8), byte(n)
	return b
}

func mustParsePacket(t *testing.T, b []byte) *pes.Packet {
	pkt, err := pes.ParsePacket(b)
	assert.Equal(t, nil, err)
	return pkt
}

func TestParsePacket(t *testing.T) {
	b := pesPacket(0xE0, 90000, 86400, []byte{0xAA, 0xBB, 0xCC})
	pkt := mustParsePacket(t, b)
	assert.Equal(t, uint8(0xE0), pkt.Header.StreamId)
	assert.Equal(t, true, pkt.Header.HasOptionalHeader)
	assert.Equal(t, true, pkt.Header.HasPts())
	assert.Equal(t, true, pkt.Header.HasDts())
	assert.Equal(t, uint64(90000), pkt.Header.Pts)
	assert.Equal(t, uint64(86400), pkt.Header.Dts)
	assert.Equal(t, []byte{0xAA, 0xBB, 0xCC}, pkt.Payload)
	assert.Equal(t, 0, len(pkt.Diagnostics))
	assert.Equal(t, "0:00:01.000", pes.PrintTimebase90kHz(pkt.Header.Pts))

	r := pkt.Record()
	assert.Equal(t, "pes_packet", r.Kind)
	f, ok := r.Field("PTS_text")
	assert.Equal(t, true, ok)
	assert.Equal(t, "0:00:01.000", f.String)

	// 33位PTS的最高位
	pkt = mustParsePacket(t, pesPacket(0xC0, 1<<32|5, 1<<32|5, nil))
	assert.Equal(t, uint64(1<<32|5), pkt.Header.Pts)
	assert.Equal(t, 0, len(pkt.Payload))
}

func TestParsePacketNoOptionalHeader(t *testing.T) {
	pkt := mustParsePacket(t, []byte{0x00, 0x00, 0x01, pes.StreamIdPadding, 0x00, 0x02, 0xFF, 0xFF})
	assert.Equal(t, false, pkt.Header.HasOptionalHeader)
	assert.Equal(t, 2, len(pkt.Payload))
}

func TestParsePacketUnbounded(t *testing.T) {
	// 视频PES的PES_packet_length可以为0
	b := pesPacket(0xE0, 0, 0, []byte{0x01, 0x02})
	b[4], b[5] = 0, 0
	pkt := mustParsePacket(t, b)
	assert.Equal(t, []byte{0x01, 0x02}, pkt.Payload)
}

func TestParsePacketMalformed(t *testing.T) {
	_, err := pes.ParsePacket([]byte{0x00, 0x00, 0x01})
	assert.Equal(t, true, base.IsTruncated(err))

	_, err = pes.ParsePacket([]byte{0x00, 0x00, 0x02, 0xE0, 0x00, 0x00})
	assert.IsNotNil(t, err)

	// PES_header_data_length超出
	_, err = pes.ParsePacket([]byte{0x00, 0x00, 0x01, 0xE0, 0x00, 0x00, 0x80, 0x80, 0x05, 0x21})
	assert.Equal(t, true, base.IsTruncated(err))

	// PES_packet_length比头部还小
	b := pesPacket(0xE0, 0, 0, []byte{0x01})
	b[4], b[5] = 0, 2
	_, err = pes.ParsePacket(b)
	assert.IsNotNil(t, err)

	// payload不完整只是诊断信息
	b = pesPacket(0xE0, 0, 0, []byte{0x01, 0x02, 0x03})
	pkt := mustParsePacket(t, b[:len(b)-2])
	assert.Equal(t, []byte{0x01}, pkt.Payload)
	assert.Equal(t, 1, pkt.Diagnostics.Count(base.ErrTruncatedInput))
}
