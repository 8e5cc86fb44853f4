// Copyright 2020, Chef.  All rights reserved.
// https://github.com/q191201771/dvbinspect
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package pes

import (
	"fmt"

	"github.com/q191201771/dvbinspect/pkg/base"
	"github.com/q191201771/dvbinspect/pkg/field"
	"github.com/q191201771/dvbinspect/pkg/record"
	"github.com/q191201771/naza/pkg/bele"
	"github.com/q191201771/naza/pkg/nazalog"
)

var Log = nazalog.GetGlobalLogger()

const (
	packetStartCodePrefix = 0x000001

	// 以下stream_id后面直接跟着PES_packet_data_byte，没有可选头
	StreamIdProgramStreamMap = 0xbc
	StreamIdPrivateStream1   = 0xbd
	StreamIdPadding          = 0xbe
	StreamIdPrivateStream2   = 0xbf
	StreamIdEcm              = 0xf0
	StreamIdEmm              = 0xf1
	StreamIdDsmcc            = 0xf2
	StreamIdH2221TypeE       = 0xf8
	StreamIdDirectory        = 0xff
)

// Header
//
// -----------------------------------------------------------
// <iso13818-1.pdf>
// <2.4.3.6 PES packet> <page 49/174>
// <Table E.1 - PES packet header example> <page 142/174>
// <F.0.2 PES packet> <page 144/174>
// packet_start_code_prefix  [24b] *** always 0x00, 0x00, 0x01
// stream_id                 [8b]  *
// PES_packet_length         [16b] **
// '10'                      [2b]
// PES_scrambling_control    [2b]
// PES_priority              [1b]
// data_alignment_indicator  [1b]
// copyright                 [1b]
// original_or_copy          [1b]  *
// PTS_DTS_flags             [2b]
// ESCR_flag                 [1b]
// ES_rate_flag              [1b]
// DSM_trick_mode_flag       [1b]
// additional_copy_info_flag [1b]
// PES_CRC_flag              [1b]
// PES_extension_flag        [1b]  *
// PES_header_data_length    [8b]  *
// -----------------------------------------------------------
type Header struct {
	StreamId          uint8
	PacketLength      uint16
	HasOptionalHeader bool

	ScramblingControl      uint8
	Priority               bool
	DataAlignmentIndicator bool
	Copyright              bool
	OriginalOrCopy         bool
	PtsDtsFlags            uint8
	EscrFlag               bool
	EsRateFlag             bool
	DsmTrickModeFlag       bool
	AdditionalCopyInfoFlag bool
	CrcFlag                bool
	ExtensionFlag          bool
	HeaderDataLength       uint8

	Pts uint64
	Dts uint64 // 没有DTS时等于PTS
}

// Packet 一个完整的PES包
type Packet struct {
	Header  Header
	Raw     []byte
	Payload []byte // Raw的切片

	Diagnostics base.Diagnostics
}

// ParsePacket 解析PES头，返回的Packet引用b的内存块
//
// 头部不完整时返回error，payload不完整时返回的Packet带有ErrTruncatedInput诊断
func ParsePacket(b []byte) (*Packet, error) {
	h, headerLength, err := ParseHeader(b)
	if err != nil {
		return nil, err
	}
	pkt := &Packet{
		Header: h,
		Raw:    b,
	}

	end := len(b)
	if h.PacketLength != 0 {
		declared := 6 + int(h.PacketLength)
		if declared < headerLength {
			return nil, fmt.Errorf("%w. PES_packet_length too small. length=%d, header=%d",
				base.ErrMalformedPes, h.PacketLength, headerLength)
		}
		if declared > len(b) {
			pkt.Diagnostics.Add("pes payload", headerLength, base.NewErrTruncatedInput(declared, len(b), "pes payload"))
		} else {
			end = declared
		}
	}
	pkt.Payload = b[headerLength:end:end]
	return pkt, nil
}

// ParseHeader
//
// @return headerLength 从packet_start_code_prefix开始到PES_packet_data_byte之前的字节数
func ParseHeader(b []byte) (h Header, headerLength int, err error) {
	if len(b) < 6 {
		return h, 0, base.NewErrTruncatedInput(6, len(b), "pes header")
	}
	if bele.BeUint24(b) != packetStartCodePrefix {
		return h, 0, fmt.Errorf("%w. invalid packet_start_code_prefix. b=%x", base.ErrMalformedPes, b[:3])
	}
	h.StreamId = b[3]
	h.PacketLength = bele.BeUint16(b[4:])
	if !hasOptionalHeader(h.StreamId) {
		return h, 6, nil
	}
	h.HasOptionalHeader = true

	r := field.NewReader(b[6:], "pes header")
	if marker := r.Bits8(2); marker != 0x2 && r.Err() == nil {
		return h, 0, fmt.Errorf("%w. invalid marker bits. v=%d", base.ErrMalformedPes, marker)
	}
	h.ScramblingControl = r.Bits8(2)
	h.Priority = r.Flag()
	h.DataAlignmentIndicator = r.Flag()
	h.Copyright = r.Flag()
	h.OriginalOrCopy = r.Flag()
	h.PtsDtsFlags = r.Bits8(2)
	h.EscrFlag = r.Flag()
	h.EsRateFlag = r.Flag()
	h.DsmTrickModeFlag = r.Flag()
	h.AdditionalCopyInfoFlag = r.Flag()
	h.CrcFlag = r.Flag()
	h.ExtensionFlag = r.Flag()
	h.HeaderDataLength = r.U8()
	if r.Err() != nil {
		return h, 0, r.Err()
	}

	headerLength = 9 + int(h.HeaderDataLength)
	if headerLength > len(b) {
		return h, 0, base.NewErrTruncatedInput(headerLength, len(b), "pes header")
	}

	opt := b[9:headerLength]
	if h.PtsDtsFlags&0x2 != 0 {
		if len(opt) < 5 {
			return h, 0, base.NewErrTruncatedInput(5, len(opt), "pes pts")
		}
		_, h.Pts = readPts(opt)
	}
	if h.PtsDtsFlags == 0x3 {
		if len(opt) < 10 {
			return h, 0, base.NewErrTruncatedInput(10, len(opt), "pes dts")
		}
		_, h.Dts = readPts(opt[5:])
	} else {
		h.Dts = h.Pts
	}
	return h, headerLength, nil
}

func (h *Header) HasPts() bool {
	return h.PtsDtsFlags&0x2 != 0
}

func (h *Header) HasDts() bool {
	return h.PtsDtsFlags == 0x3
}

func (h *Header) Fill(r *record.Record) {
	r.Uint("stream_id", uint64(h.StreamId)).
		Uint("PES_packet_length", uint64(h.PacketLength))
	if !h.HasOptionalHeader {
		return
	}
	r.Uint("PES_scrambling_control", uint64(h.ScramblingControl)).
		Bool("PES_priority", h.Priority).
		Bool("data_alignment_indicator", h.DataAlignmentIndicator).
		Bool("copyright", h.Copyright).
		Bool("original_or_copy", h.OriginalOrCopy).
		Uint("PTS_DTS_flags", uint64(h.PtsDtsFlags)).
		Uint("PES_header_data_length", uint64(h.HeaderDataLength))
	if h.HasPts() {
		r.Uint("PTS", h.Pts).Str("PTS_text", PrintTimebase90kHz(h.Pts))
	}
	if h.HasDts() {
		r.Uint("DTS", h.Dts).Str("DTS_text", PrintTimebase90kHz(h.Dts))
	}
}

func (pkt *Packet) Record() *record.Record {
	r := record.New("pes_packet")
	pkt.Header.Fill(r)
	r.Int("payload_length", int64(len(pkt.Payload)))
	r.Diag(pkt.Diagnostics.Strings()...)
	return r
}

// PrintTimebase90kHz 90kHz时间戳转换为 h:mm:ss.mmm
func PrintTimebase90kHz(ts uint64) string {
	ms := ts / 90
	return fmt.Sprintf("%d:%02d:%02d.%03d", ms/3600000, ms/60000%60, ms/1000%60, ms%1000)
}

func hasOptionalHeader(sid uint8) bool {
	switch sid {
	case StreamIdProgramStreamMap, StreamIdPadding, StreamIdPrivateStream2, StreamIdEcm, StreamIdEmm,
		StreamIdDsmcc, StreamIdH2221TypeE, StreamIdDirectory:
		return false
	}
	return true
}

// read pts or dts
func readPts(b []byte) (fb uint8, pts uint64) {
	fb = b[0] >> 4
	pts |= uint64((b[0]>>1)&0x07) << 30
	pts |= (uint64(b[1])<<8 | uint64(b[2])) >> 1 << 15
	pts |= (uint64(b[3])<<8 | uint64(b[4])) >> 1
	return
}
