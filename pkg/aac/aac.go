// Copyright 2019, Chef.  All rights reserved.
// https://github.com/q191201771/dvbinspect
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package aac

import (
	"errors"
	"fmt"

	"github.com/q191201771/dvbinspect/pkg/base"
	"github.com/q191201771/dvbinspect/pkg/record"
	"github.com/q191201771/naza/pkg/nazabits"
)

// ADTS(Audio Data Transport Stream)
// e.g. es, ts

var ErrAac = errors.New("dvbinspect.aac: fxxk")

const (
	AdtsHeaderLength = 7

	// AdtsSyncWord 12bit的syncword以及2bit的layer(总是0)，配合AdtsSyncMask在字节流中查找帧边界
	AdtsSyncWord = 0xFFF0
	AdtsSyncMask = 0xFFF6
)

// <ISO_IEC_14496-3.pdf>
// <1.6.3.3 samplingFrequencyIndex>
var samplingFrequencies = [...]int{
	96000, 88200, 64000, 48000, 44100, 32000, 24000, 22050, 16000, 12000, 11025, 8000, 7350,
}

var audioObjectTypes = map[uint8]string{
	1: "AAC Main",
	2: "AAC LC",
	3: "AAC SSR",
	4: "AAC LTP",
}

// <ISO_IEC_14496-3.pdf>
// <1.6.2.1 AudioSpecificConfig>, <page 33/110>
// <1.5.1.1 Audio Object type definition>, <page 23/110>
// <1.6.3.3 samplingFrequencyIndex>, <page 35/110>
// <1.6.3.4 channelConfiguration>
// --------------------------------------------------------
// audio object type      [5b] 1=AAC MAIN  2=AAC LC
// samplingFrequencyIndex [4b] 3=48000  4=44100  6=24000  5=32000  11=11025
// channelConfiguration   [4b] 1=center front speaker  2=left, right front speakers
type AscContext struct {
	AudioObjectType        uint8 // [5b]
	SamplingFrequencyIndex uint8 // [4b]
	ChannelConfiguration   uint8 // [4b]
}

func (ascCtx *AscContext) GetSamplingFrequency() (int, error) {
	if int(ascCtx.SamplingFrequencyIndex) < len(samplingFrequencies) {
		return samplingFrequencies[ascCtx.SamplingFrequencyIndex], nil
	}
	return -1, fmt.Errorf("%w. sampling_frequency_index=%d", ErrAac, ascCtx.SamplingFrequencyIndex)
}

func (ascCtx *AscContext) AudioObjectTypeReadable() string {
	if s, ok := audioObjectTypes[ascCtx.AudioObjectType]; ok {
		return s
	}
	return "unknown"
}

// AdtsHeaderContext
//
// <ISO_IEC_14496-3.pdf>
// <1.A.2.2.1 Fixed Header of ADTS>, <page 75/110>
// <1.A.2.2.2 Variable Header of ADTS>, <page 76/110>
// <1.A.3.2.1 Definitions: Bitstream elements for ADTS>
// ----------------------------------------------------
// Syncword                 [12b] '1111 1111 1111'
// ID                       [1b]  1=MPEG-2 AAC 0=MPEG-4
// Layer                    [2b]
// protection_absent        [1b]  1=no crc check
// Profile_ObjectType       [2b]
// sampling_frequency_index [4b]
// private_bit              [1b]
// channel_configuration    [3b]
// origin/copy              [1b]
// home                     [1b]
// ------------------------------------
// copyright_identification_bit   [1b]
// copyright_identification_start [1b]
// aac_frame_length               [13b]
// adts_buffer_fullness           [11b]
// no_raw_data_blocks_in_frame    [2b]
type AdtsHeaderContext struct {
	AscCtx AscContext

	Id               uint8
	Layer            uint8
	ProtectionAbsent uint8
	AdtsLength       uint16 // 字段中的值，包含了adts header + adts frame
	BufferFullness   uint16
	NumRawDataBlocks uint8 // no_raw_data_blocks_in_frame + 1
}

func NewAdtsHeaderContext(adtsHeader []byte) (*AdtsHeaderContext, error) {
	var ctx AdtsHeaderContext
	if err := ctx.Unpack(adtsHeader); err != nil {
		return nil, err
	}
	return &ctx, nil
}

// @param adtsHeader: 函数调用结束后，内部不持有该内存块
//
func (ctx *AdtsHeaderContext) Unpack(adtsHeader []byte) error {
	if len(adtsHeader) < AdtsHeaderLength {
		return base.NewErrTruncatedInput(AdtsHeaderLength, len(adtsHeader), "adts header")
	}

	br := nazabits.NewBitReader(adtsHeader)
	sync, _ := br.ReadBits16(12)
	if sync != 0xFFF {
		return fmt.Errorf("%w. invalid syncword. v=0x%x", ErrAac, sync)
	}
	ctx.Id, _ = br.ReadBits8(1)
	ctx.Layer, _ = br.ReadBits8(2)
	ctx.ProtectionAbsent, _ = br.ReadBits8(1)
	v, _ := br.ReadBits8(2)
	ctx.AscCtx.AudioObjectType = v + 1
	ctx.AscCtx.SamplingFrequencyIndex, _ = br.ReadBits8(4)
	_, _ = br.ReadBits8(1) // private_bit
	ctx.AscCtx.ChannelConfiguration, _ = br.ReadBits8(3)
	_, _ = br.ReadBits8(4) // origin/copy, home, copyright_identification_bit, copyright_identification_start
	ctx.AdtsLength, _ = br.ReadBits16(13)
	ctx.BufferFullness, _ = br.ReadBits16(11)
	n, _ := br.ReadBits8(2)
	ctx.NumRawDataBlocks = n + 1
	return nil
}

// HeaderLength protection_absent为0时后面跟着2字节的crc
func (ctx *AdtsHeaderContext) HeaderLength() int {
	if ctx.ProtectionAbsent == 0 {
		return AdtsHeaderLength + 2
	}
	return AdtsHeaderLength
}

func (ctx *AdtsHeaderContext) Fill(r *record.Record) {
	sf, _ := ctx.AscCtx.GetSamplingFrequency()
	r.Uint("id", uint64(ctx.Id)).
		Uint("layer", uint64(ctx.Layer)).
		Bool("protection_absent", ctx.ProtectionAbsent == 1).
		Uint("profile_object_type", uint64(ctx.AscCtx.AudioObjectType)).
		Str("profile_object_type_text", ctx.AscCtx.AudioObjectTypeReadable()).
		Uint("sampling_frequency_index", uint64(ctx.AscCtx.SamplingFrequencyIndex)).
		Int("sampling_frequency", int64(sf)).
		Uint("channel_configuration", uint64(ctx.AscCtx.ChannelConfiguration)).
		Uint("aac_frame_length", uint64(ctx.AdtsLength)).
		Uint("adts_buffer_fullness", uint64(ctx.BufferFullness)).
		Uint("number_of_raw_data_blocks_in_frame", uint64(ctx.NumRawDataBlocks))
}
