// Copyright 2026, Chef.  All rights reserved.
// https://github.com/q191201771/dvbinspect
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package field

import (
	"strings"

	"github.com/q191201771/dvbinspect/pkg/base"
)

// 注意，本package所有函数只读取调用方给定的区域，不会越界到底层buffer的其他部分，也不会拷贝输入

const (
	Mask1Bit   = 0x01
	Mask2Bits  = 0x03
	Mask3Bits  = 0x07
	Mask4Bits  = 0x0F
	Mask5Bits  = 0x1F
	Mask6Bits  = 0x3F
	Mask7Bits  = 0x7F
	Mask8Bits  = 0xFF
	Mask12Bits = 0x0FFF
	Mask13Bits = 0x1FFF
	Mask16Bits = 0xFFFF
	Mask24Bits = 0xFFFFFF
	Mask32Bits = 0xFFFFFFFF
)

// Region 返回b中[off, off+n)的视图，容量被截断，所以后续的append或者reslice都无法越过该区域
//
// 如果b不够长，返回实际存在的部分以及ErrTruncatedInput
func Region(b []byte, off int, n int) ([]byte, error) {
	if off < 0 || n < 0 {
		return nil, base.NewErrTruncatedInput(off+n, len(b), "region")
	}
	if off > len(b) {
		return b[len(b):len(b):len(b)], base.NewErrTruncatedInput(off+n, len(b), "region")
	}
	end := off + n
	if end > len(b) {
		return b[off:len(b):len(b)], base.NewErrTruncatedInput(end, len(b), "region")
	}
	return b[off:end:end], nil
}

// ReadUint 大端，逐字节拼装，最后再与mask
//
// @param n: 字节数，最大8
func ReadUint(b []byte, off int, n int, mask uint64) (uint64, error) {
	if off < 0 || n < 0 || n > 8 || off+n > len(b) {
		return 0, base.NewErrTruncatedInput(off+n, len(b), "uint")
	}
	var r uint64
	for i := 0; i < n; i++ {
		r = r<<8 | uint64(b[off+i])
	}
	return r & mask, nil
}

// ReadBcd 从第nibbleOff个半字节开始（高4位是偶数位置），读取count个BCD数字
func ReadBcd(b []byte, nibbleOff int, count int) (string, error) {
	if nibbleOff < 0 || count < 0 || (nibbleOff+count+1)/2 > len(b) {
		return "", base.NewErrTruncatedInput((nibbleOff+count+1)/2, len(b), "bcd")
	}
	var sb strings.Builder
	sb.Grow(count)
	for i := 0; i < count; i++ {
		pos := nibbleOff + i
		v := b[pos/2]
		if pos%2 == 0 {
			v >>= 4
		} else {
			v &= 0x0F
		}
		if v > 9 {
			return "", base.NewErrMalformedBcd(v, pos)
		}
		sb.WriteByte('0' + v)
	}
	return sb.String(), nil
}

// ReadBcdUint 与ReadBcd相同，但是返回数值
func ReadBcdUint(b []byte, nibbleOff int, count int) (uint64, error) {
	s, err := ReadBcd(b, nibbleOff, count)
	if err != nil {
		return 0, err
	}
	var v uint64
	for i := 0; i < len(s); i++ {
		v = v*10 + uint64(s[i]-'0')
	}
	return v, nil
}
