// Copyright 2019, Chef.  All rights reserved.
// https://github.com/q191201771/dvbinspect
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package avc

import (
	"errors"
	"fmt"

	"github.com/q191201771/dvbinspect/pkg/base"
	"github.com/q191201771/naza/pkg/nazabits"
	"github.com/q191201771/naza/pkg/nazaerrors"
	"github.com/q191201771/naza/pkg/nazalog"
)

var Log = nazalog.GetGlobalLogger()

var ErrAvc = errors.New("dvbinspect.avc: fxxk")

var NaluStartCode3 = []byte{0x0, 0x0, 0x1}

// ISO-14496-10.pdf
// Table 7-1 – NAL unit type codes
const (
	NaluTypeSlice       uint8 = 1
	NaluTypeSliceA      uint8 = 2
	NaluTypeSliceB      uint8 = 3
	NaluTypeSliceC      uint8 = 4
	NaluTypeIdrSlice    uint8 = 5
	NaluTypeSei         uint8 = 6
	NaluTypeSps         uint8 = 7
	NaluTypePps         uint8 = 8
	NaluTypeAud         uint8 = 9
	NaluTypeEndOfSeq    uint8 = 10
	NaluTypeEndOfStream uint8 = 11
	NaluTypeFd          uint8 = 12 // Filler Data
	NaluTypeSpsExt      uint8 = 13
)

// Table 7-6 – Name association to slice_type
// 5~9与0~4含义相同，表示该picture的所有slice都是同一类型
const (
	SliceTypeP  uint8 = 0
	SliceTypeB  uint8 = 1
	SliceTypeI  uint8 = 2
	SliceTypeSP uint8 = 3
	SliceTypeSI uint8 = 4
)

var NaluTypeMapping = map[uint8]string{
	NaluTypeSlice:       "SLICE",
	NaluTypeSliceA:      "SLICE_A",
	NaluTypeSliceB:      "SLICE_B",
	NaluTypeSliceC:      "SLICE_C",
	NaluTypeIdrSlice:    "IDR",
	NaluTypeSei:         "SEI",
	NaluTypeSps:         "SPS",
	NaluTypePps:         "PPS",
	NaluTypeAud:         "AUD",
	NaluTypeEndOfSeq:    "EOSEQ",
	NaluTypeEndOfStream: "EOSTREAM",
	NaluTypeFd:          "FD",
	NaluTypeSpsExt:      "SPSEXT",
}

var SliceTypeMapping = map[uint8]string{
	SliceTypeP:  "P",
	SliceTypeB:  "B",
	SliceTypeI:  "I",
	SliceTypeSP: "SP",
	SliceTypeSI: "SI",
}

// ParseNaluType
//
// @param v 第一个字节
func ParseNaluType(v uint8) uint8 {
	return v & 0x1f
}

func ParseNaluTypeReadable(v uint8) string {
	b, ok := NaluTypeMapping[ParseNaluType(v)]
	if !ok {
		return "unknown"
	}
	return b
}

// IsSliceNalu slice_layer_without_partitioning以及data partition A
func IsSliceNalu(typ uint8) bool {
	return typ == NaluTypeSlice || typ == NaluTypeIdrSlice || typ == NaluTypeSliceA
}

// ParseSliceType 解析slice header中的slice_type，返回值已经对5取模
//
// @param nalu 包含nal header的1字节，不包含start code
func ParseSliceType(nalu []byte) (uint8, error) {
	if len(nalu) < 2 {
		return 0, base.NewErrTruncatedInput(2, len(nalu), "avc slice header")
	}
	if !IsSliceNalu(ParseNaluType(nalu[0])) {
		return 0, fmt.Errorf("%w. not a slice nalu. type=%d", ErrAvc, ParseNaluType(nalu[0]))
	}

	// slice header的前两个字段都是ue(v)，32字节足够
	head := nalu[1:]
	if len(head) > 32 {
		head = head[:32]
	}
	br := nazabits.NewBitReader(Ebsp2Rbsp(head))

	// first_mb_in_slice
	if _, err := br.ReadGolomb(); err != nil {
		return 0, nazaerrors.Wrap(base.ErrTruncatedInput)
	}
	sliceType, err := br.ReadGolomb()
	if err != nil {
		return 0, nazaerrors.Wrap(base.ErrTruncatedInput)
	}
	if sliceType > 9 {
		return 0, fmt.Errorf("%w. invalid slice_type. v=%d", ErrAvc, sliceType)
	}
	return uint8(sliceType % 5), nil
}

func ParseSliceTypeReadable(nalu []byte) (string, error) {
	t, err := ParseSliceType(nalu)
	if err != nil {
		return "unknown", err
	}
	return SliceTypeMapping[t], nil
}

// Ebsp2Rbsp 去除emulation_prevention_three_byte
//
// @return 没有0x000003时直接返回b，否则返回新申请的内存块
func Ebsp2Rbsp(b []byte) []byte {
	first := -1
	for i := 2; i < len(b); i++ {
		if b[i] == 0x03 && b[i-1] == 0 && b[i-2] == 0 {
			first = i
			break
		}
	}
	if first == -1 {
		return b
	}

	out := make([]byte, 0, len(b))
	out = append(out, b[:first]...)
	zeros := 0
	for i := first + 1; i < len(b); i++ {
		out = append(out, b[i])
		if b[i] == 0 {
			zeros++
		} else {
			zeros = 0
		}
		if zeros == 2 && i+1 < len(b) && b[i+1] == 0x03 {
			i++
			zeros = 0
		}
	}
	return out
}

// IterateNaluStartCode 从start位置开始查找下一个start code
//
// @return pos    start code后第一个字节的位置，没有找到时为-1
// @return length start code的长度，3或者4
func IterateNaluStartCode(nalu []byte, start int) (pos, length int) {
	if nalu == nil || start >= len(nalu) {
		return -1, -1
	}
	count := 0
	for i := range nalu[start:] {
		switch nalu[start+i] {
		case 0:
			count++
		case 1:
			if count >= 2 {
				return start + i + 1, min(count, 3) + 1
			}
			count = 0
		default:
			count = 0
		}
	}
	return -1, -1
}

// IterateNaluAnnexb 遍历Annexb格式的nalu流
//
// @param handler nal不包含start code，是nals的切片
//
// @return 第一个start code之前的非零数据长度，不为0时表示nals不是以start code开头
func IterateNaluAnnexb(nals []byte, handler func(nal []byte)) (leading int) {
	pos, length := IterateNaluStartCode(nals, 0)
	if pos == -1 {
		return len(trimTrailingZero(nals))
	}
	leading = len(trimTrailingZero(nals[:pos-length]))
	for pos != -1 {
		next, nextLength := IterateNaluStartCode(nals, pos)
		end := len(nals)
		if next != -1 {
			end = next - nextLength
		}
		// 末尾的trailing_zero_8bits不属于nal
		if nal := trimTrailingZero(nals[pos:end]); len(nal) > 0 {
			handler(nal)
		}
		pos = next
	}
	return leading
}

// SplitNaluAnnexb
//
// @return nal都是nals的切片
func SplitNaluAnnexb(nals []byte) (ret [][]byte, err error) {
	leading := IterateNaluAnnexb(nals, func(nal []byte) {
		ret = append(ret, nal)
	})
	if leading != 0 {
		err = fmt.Errorf("%w. leading data before start code. leading=%d", ErrAvc, leading)
	}
	return
}

func trimTrailingZero(b []byte) []byte {
	n := len(b)
	for n > 0 && b[n-1] == 0 {
		n--
	}
	return b[:n]
}
