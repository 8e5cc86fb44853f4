// Copyright 2022, Chef.  All rights reserved.
// https://github.com/q191201771/dvbinspect
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package h2645

import (
	"github.com/q191201771/dvbinspect/pkg/avc"
	"github.com/q191201771/dvbinspect/pkg/hevc"
)

// 无特殊说明的函数则同时支持h264和h265两种格式

// NaluClass NAL unit在统计中的归类
type NaluClass uint8

const (
	NaluClassOther NaluClass = iota
	NaluClassSlice
	NaluClassFiller
	// NaluClassBoundary AUD，SPS，PPS，SEI，VPS，出现时开始一个新的access unit
	NaluClassBoundary
)

func IterateNaluAnnexb(nals []byte, handler func(nal []byte)) (leading int) {
	return avc.IterateNaluAnnexb(nals, handler)
}

func ParseNaluType(isH264 bool, v uint8) uint8 {
	if isH264 {
		return avc.ParseNaluType(v)
	}
	return hevc.ParseNaluType(v)
}

func ParseNaluTypeReadable(isH264 bool, v uint8) string {
	if isH264 {
		return avc.ParseNaluTypeReadable(v)
	}
	return hevc.ParseNaluTypeReadable(v)
}

// HeaderLength nal header的字节数
func HeaderLength(isH264 bool) int {
	if isH264 {
		return 1
	}
	return 2
}

func Classify(isH264 bool, typ uint8) NaluClass {
	if isH264 {
		switch {
		case avc.IsSliceNalu(typ):
			return NaluClassSlice
		case typ == avc.NaluTypeFd:
			return NaluClassFiller
		case typ == avc.NaluTypeAud || typ == avc.NaluTypeSps || typ == avc.NaluTypePps || typ == avc.NaluTypeSei:
			return NaluClassBoundary
		}
		return NaluClassOther
	}

	switch {
	case hevc.IsVclNalu(typ):
		return NaluClassSlice
	case typ == hevc.NaluTypeFd:
		return NaluClassFiller
	case typ >= hevc.NaluTypeVps && typ <= hevc.NaluTypeAud, typ == hevc.NaluTypeSei:
		return NaluClassBoundary
	}
	return NaluClassOther
}

func IsSps(isH264 bool, typ uint8) bool {
	if isH264 {
		return typ == avc.NaluTypeSps
	}
	return typ == hevc.NaluTypeSps
}

// NumBytesInRbsp 去除nal header以及emulation_prevention_three_byte之后的字节数
func NumBytesInRbsp(isH264 bool, nal []byte) int {
	hl := HeaderLength(isH264)
	if len(nal) <= hl {
		return 0
	}
	return len(avc.Ebsp2Rbsp(nal[hl:]))
}
