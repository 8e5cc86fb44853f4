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

	"github.com/q191201771/dvbinspect/pkg/base"
	"github.com/q191201771/dvbinspect/pkg/field"
	"github.com/q191201771/dvbinspect/pkg/record"
)

// <ETSI TS 102 366> AC-3 / Enhanced AC-3

const (
	Ac3SyncWord = 0x0B77
	Ac3SyncMask = 0xFFFF

	ac3MinHeaderLength = 6
)

// 单位kbit/s，下标为frmsizecod/2
var ac3Bitrates = [...]int{32, 40, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320, 384, 448, 512, 576, 640}

var ac3SampleRates = [...]int{48000, 44100, 32000}

var eac3ReducedSampleRates = [...]int{24000, 22050, 16000}

// <table 4.3> acmod
var acmodTexts = [...]string{
	"1+1 (Ch1, Ch2)",
	"1/0 (C)",
	"2/0 (L, R)",
	"3/0 (L, C, R)",
	"2/1 (L, R, S)",
	"3/1 (L, C, R, S)",
	"2/2 (L, R, SL, SR)",
	"3/2 (L, C, R, SL, SR)",
}

// <table 4.1> bsmod，7在acmod大于等于2时表示karaoke
var bsmodTexts = [...]string{
	"main audio service: complete main (CM)",
	"main audio service: music and effects (ME)",
	"associated service: visually impaired (VI)",
	"associated service: hearing impaired (HI)",
	"associated service: dialogue (D)",
	"associated service: commentary (C)",
	"associated service: emergency (E)",
	"associated service: voice over (VO)",
}

// Ac3SyncFrame
//
// ----------------------------------------
// syncinfo
// syncword    [16b] 0x0B77
// crc1        [16b]
// fscod       [2b]
// frmsizecod  [6b]
// bsi
// bsid        [5b]
// bsmod       [3b]
// acmod       [3b]
// cmixlev     [2b] if (acmod & 0x1) && (acmod != 0x1)
// surmixlev   [2b] if acmod & 0x4
// dsurmod     [2b] if acmod == 0x2
// lfeon       [1b]
// ----------------------------------------
type Ac3SyncFrame struct {
	Crc1       uint16
	Fscod      uint8
	Frmsizecod uint8
	Bsid       uint8
	Bsmod      uint8
	Acmod      uint8
	Cmixlev    uint8
	Surmixlev  uint8
	Dsurmod    uint8
	Lfeon      bool

	SampleRate int
	Bitrate    int // kbit/s
	FrameSize  int // 字节，由fscod和frmsizecod计算
}

// Eac3SyncFrame
//
// ----------------------------------------
// syncinfo
// syncword    [16b] 0x0B77
// bsi
// strmtyp     [2b]
// substreamid [3b]
// frmsiz      [11b]
// fscod       [2b]
// fscod2      [2b] if fscod == 0x3, else numblkscod
// acmod       [3b]
// lfeon       [1b]
// bsid        [5b]
// ----------------------------------------
type Eac3SyncFrame struct {
	Strmtyp     uint8
	Substreamid uint8
	Frmsiz      uint16
	Fscod       uint8
	Fscod2      uint8
	Numblkscod  uint8
	Acmod       uint8
	Lfeon       bool
	Bsid        uint8

	SampleRate int
	FrameSize  int // (frmsiz+1)*2
}

// DecodeAc3Frame AC-3与E-AC-3共用同步字，根据bsid区分
//
// 实际长度与帧头中计算出的长度不一致时，记为诊断信息
func DecodeAc3Frame(frame []byte) (FrameBody, []error) {
	if len(frame) < ac3MinHeaderLength {
		return nil, []error{base.NewErrTruncatedInput(ac3MinHeaderLength, len(frame), "ac3 syncinfo")}
	}
	bsid := frame[5] >> 3
	if bsid > 10 {
		return decodeEac3Frame(frame)
	}
	return decodeAc3Frame(frame)
}

func decodeAc3Frame(frame []byte) (FrameBody, []error) {
	var v Ac3SyncFrame
	r := field.NewReader(frame, "ac3 syncframe")
	r.Skip(16)
	v.Crc1 = r.U16()
	v.Fscod = r.Bits8(2)
	v.Frmsizecod = r.Bits8(6)
	v.Bsid = r.Bits8(5)
	v.Bsmod = r.Bits8(3)
	v.Acmod = r.Bits8(3)
	if v.Acmod&0x1 != 0 && v.Acmod != 0x1 {
		v.Cmixlev = r.Bits8(2)
	}
	if v.Acmod&0x4 != 0 {
		v.Surmixlev = r.Bits8(2)
	}
	if v.Acmod == 0x2 {
		v.Dsurmod = r.Bits8(2)
	}
	v.Lfeon = r.Flag()

	errs := r.Errors()
	if int(v.Fscod) >= len(ac3SampleRates) || int(v.Frmsizecod/2) >= len(ac3Bitrates) {
		errs = append(errs, fmt.Errorf("%w. reserved fscod or frmsizecod. fscod=%d, frmsizecod=%d",
			base.ErrFrameMalformed, v.Fscod, v.Frmsizecod))
		return &v, errs
	}
	v.SampleRate = ac3SampleRates[v.Fscod]
	v.Bitrate = ac3Bitrates[v.Frmsizecod/2]
	v.FrameSize = ac3FrameSize(v.Fscod, v.Frmsizecod)
	if v.FrameSize != len(frame) {
		errs = append(errs, frameLengthMismatch(v.FrameSize, len(frame)))
	}
	return &v, errs
}

func decodeEac3Frame(frame []byte) (FrameBody, []error) {
	var v Eac3SyncFrame
	r := field.NewReader(frame, "eac3 syncframe")
	r.Skip(16)
	v.Strmtyp = r.Bits8(2)
	v.Substreamid = r.Bits8(3)
	v.Frmsiz = r.Bits16(11)
	v.Fscod = r.Bits8(2)
	if v.Fscod == 0x3 {
		v.Fscod2 = r.Bits8(2)
		v.Numblkscod = 0x3
	} else {
		v.Numblkscod = r.Bits8(2)
	}
	v.Acmod = r.Bits8(3)
	v.Lfeon = r.Flag()
	v.Bsid = r.Bits8(5)

	errs := r.Errors()
	switch {
	case v.Fscod < 0x3:
		v.SampleRate = ac3SampleRates[v.Fscod]
	case int(v.Fscod2) < len(eac3ReducedSampleRates):
		v.SampleRate = eac3ReducedSampleRates[v.Fscod2]
	default:
		errs = append(errs, fmt.Errorf("%w. reserved fscod2", base.ErrFrameMalformed))
	}
	v.FrameSize = (int(v.Frmsiz) + 1) * 2
	if v.FrameSize != len(frame) {
		errs = append(errs, frameLengthMismatch(v.FrameSize, len(frame)))
	}
	return &v, errs
}

// ac3FrameSize <table 4.13>，单位字节
func ac3FrameSize(fscod, frmsizecod uint8) int {
	bitrate := ac3Bitrates[frmsizecod/2]
	var words int
	switch fscod {
	case 0:
		words = bitrate * 2
	case 1:
		// 44.1kHz时，frmsizecod为奇数的帧多一个word
		words = bitrate*1920/882 + int(frmsizecod&1)
	case 2:
		words = bitrate * 3
	}
	return words * 2
}

func frameLengthMismatch(declared, actual int) error {
	return fmt.Errorf("%w. frame length mismatch. header=%d, sync distance=%d", base.ErrFrameMalformed, declared, actual)
}

func (v *Ac3SyncFrame) Name() string { return "AC-3 syncframe" }

func (v *Ac3SyncFrame) Fill(r *record.Record) {
	r.Uint("crc1", uint64(v.Crc1)).
		Uint("fscod", uint64(v.Fscod)).
		Int("sample_rate", int64(v.SampleRate)).
		Uint("frmsizecod", uint64(v.Frmsizecod)).
		Int("bitrate_kbps", int64(v.Bitrate)).
		Int("frame_size", int64(v.FrameSize)).
		Uint("bsid", uint64(v.Bsid)).
		Uint("bsmod", uint64(v.Bsmod)).
		Str("bsmod_text", bsmodText(v.Bsmod, v.Acmod)).
		Uint("acmod", uint64(v.Acmod)).
		Str("acmod_text", acmodTexts[v.Acmod&0x7]).
		Bool("lfeon", v.Lfeon)
}

func (v *Eac3SyncFrame) Name() string { return "E-AC-3 syncframe" }

func (v *Eac3SyncFrame) Fill(r *record.Record) {
	r.Uint("strmtyp", uint64(v.Strmtyp)).
		Uint("substreamid", uint64(v.Substreamid)).
		Uint("frmsiz", uint64(v.Frmsiz)).
		Int("frame_size", int64(v.FrameSize)).
		Uint("fscod", uint64(v.Fscod)).
		Int("sample_rate", int64(v.SampleRate)).
		Uint("numblkscod", uint64(v.Numblkscod)).
		Uint("acmod", uint64(v.Acmod)).
		Str("acmod_text", acmodTexts[v.Acmod&0x7]).
		Bool("lfeon", v.Lfeon).
		Uint("bsid", uint64(v.Bsid))
}

func bsmodText(bsmod, acmod uint8) string {
	if bsmod == 7 && acmod >= 2 {
		return "main audio service: karaoke"
	}
	return bsmodTexts[bsmod&0x7]
}
