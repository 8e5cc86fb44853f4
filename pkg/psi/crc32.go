// Copyright 2023, Chef.  All rights reserved.
// https://github.com/q191201771/dvbinspect
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package psi

// CRC_32 of ISO/IEC 13818-1 Annex A
//
// 多项式0x04C11DB7，不反转，初始值0xFFFFFFFF，没有最终异或
// 标准库hash/crc32只支持反转的形式，所以这里自己建表
//
// 对包含CRC_32字段的整个section计算，结果为0表示校验通过

var crcTable [256]uint32

func init() {
	for i := 0; i < 256; i++ {
		crc := uint32(i) << 24
		for j := 0; j < 8; j++ {
			if crc&0x80000000 != 0 {
				crc = crc<<1 ^ 0x04C11DB7
			} else {
				crc <<= 1
			}
		}
		crcTable[i] = crc
	}
}

func CalcCrc32(b []byte) uint32 {
	return UpdateCrc32(0xFFFFFFFF, b)
}

func UpdateCrc32(crc uint32, b []byte) uint32 {
	for _, c := range b {
		crc = crc<<8 ^ crcTable[byte(crc>>24)^c]
	}
	return crc
}
