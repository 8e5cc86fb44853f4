// Copyright 2020, Chef.  All rights reserved.
// https://github.com/q191201771/dvbinspect
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package hevc

import (
	"encoding/hex"
	"errors"

	mp4hevc "github.com/Eyevinn/mp4ff/hevc"
	"github.com/q191201771/naza/pkg/nazabytes"
	"github.com/q191201771/naza/pkg/nazaerrors"
	"github.com/q191201771/naza/pkg/nazalog"
)

var Log = nazalog.GetGlobalLogger()

var ErrHevc = errors.New("dvbinspect.hevc: fxxk")

// ISO_IEC_23008-2_2013.pdf
// Table 7-1 – NAL unit type codes and NAL unit type classes
const (
	NaluTypeSliceTrailN uint8 = 0 // 0x0
	NaluTypeSliceTrailR uint8 = 1 // 0x01
	NaluTypeSliceTsaN   uint8 = 2 // 0x02
	NaluTypeSliceTsaR   uint8 = 3 // 0x03
	NaluTypeSliceStsaN  uint8 = 4 // 0x04
	NaluTypeSliceStsaR  uint8 = 5 // 0x05
	NaluTypeSliceRadlN  uint8 = 6 // 0x06
	NaluTypeSliceRadlR  uint8 = 7 // 0x07
	NaluTypeSliceRaslN  uint8 = 8 // 0x08
	NaluTypeSliceRaslR  uint8 = 9 // 0x09

	NaluTypeSliceBlaWlp       uint8 = 16 // 0x10
	NaluTypeSliceBlaWradl     uint8 = 17 // 0x11
	NaluTypeSliceBlaNlp       uint8 = 18 // 0x12
	NaluTypeSliceIdr          uint8 = 19 // 0x13
	NaluTypeSliceIdrNlp       uint8 = 20 // 0x14
	NaluTypeSliceCranut       uint8 = 21 // 0x15
	NaluTypeSliceRsvIrapVcl22 uint8 = 22 // 0x16
	NaluTypeSliceRsvIrapVcl23 uint8 = 23 // 0x17

	NaluTypeVps       uint8 = 32 // 0x20
	NaluTypeSps       uint8 = 33 // 0x21
	NaluTypePps       uint8 = 34 // 0x22
	NaluTypeAud       uint8 = 35 // 0x23
	NaluTypeEos       uint8 = 36 // 0x24
	NaluTypeEob       uint8 = 37 // 0x25
	NaluTypeFd        uint8 = 38 // 0x26
	NaluTypeSei       uint8 = 39 // 0x27
	NaluTypeSeiSuffix uint8 = 40 // 0x28
)

var NaluTypeMapping = map[uint8]string{
	NaluTypeSliceTrailN:   "TRAIL_N",
	NaluTypeSliceTrailR:   "TRAIL_R",
	NaluTypeSliceTsaN:     "TSA_N",
	NaluTypeSliceTsaR:     "TSA_R",
	NaluTypeSliceStsaN:    "STSA_N",
	NaluTypeSliceStsaR:    "STSA_R",
	NaluTypeSliceRadlN:    "RADL_N",
	NaluTypeSliceRadlR:    "RADL_R",
	NaluTypeSliceRaslN:    "RASL_N",
	NaluTypeSliceRaslR:    "RASL_R",
	NaluTypeSliceBlaWlp:   "BLA_W_LP",
	NaluTypeSliceBlaWradl: "BLA_W_RADL",
	NaluTypeSliceBlaNlp:   "BLA_N_LP",
	NaluTypeSliceIdr:      "IDR",
	NaluTypeSliceIdrNlp:   "IDR_N_LP",
	NaluTypeSliceCranut:   "CRA",
	NaluTypeVps:           "VPS",
	NaluTypeSps:           "SPS",
	NaluTypePps:           "PPS",
	NaluTypeAud:           "AUD",
	NaluTypeEos:           "EOS",
	NaluTypeEob:           "EOB",
	NaluTypeFd:            "FD",
	NaluTypeSei:           "SEI",
	NaluTypeSeiSuffix:     "SEI_SUFFIX",
}

// ParseNaluType
//
// @param v 第一个字节
func ParseNaluType(v uint8) uint8 {
	// 6 bit in middle
	// 0*** ***0
	return (v & 0x7E) >> 1
}

func ParseNaluTypeReadable(v uint8) string {
	b, ok := NaluTypeMapping[ParseNaluType(v)]
	if !ok {
		return "unknown"
	}
	return b
}

// IsIrapNalu BLA，IDR，CRA以及保留的IRAP
func IsIrapNalu(typ uint8) bool {
	return typ >= NaluTypeSliceBlaWlp && typ <= NaluTypeSliceRsvIrapVcl23
}

// IsVclNalu
func IsVclNalu(typ uint8) bool {
	return typ < NaluTypeVps
}

type Context struct {
	GeneralProfileIdc uint8
	GeneralLevelIdc   uint8
	Width             uint32
	Height            uint32
}

// ParseSps
//
// @param payload 包含nal header的2字节，不包含start code
func ParseSps(payload []byte, ctx *Context) error {
	if len(payload) < 4 || ParseNaluType(payload[0]) != NaluTypeSps {
		return nazaerrors.Wrap(ErrHevc)
	}
	sps, err := mp4hevc.ParseSPSNALUnit(payload)
	if err != nil {
		Log.Debugf("parse sps failed. err=%+v, payload=%s", err, hex.Dump(nazabytes.Prefix(payload, 128)))
		return nazaerrors.Wrap(err)
	}
	ctx.GeneralProfileIdc = sps.ProfileTierLevel.GeneralProfileIDC
	ctx.GeneralLevelIdc = sps.ProfileTierLevel.GeneralLevelIDC
	ctx.Width, ctx.Height = sps.ImageSize()
	return nil
}
