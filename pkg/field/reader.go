// Copyright 2026, Chef.  All rights reserved.
// https://github.com/q191201771/dvbinspect
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package field

import (
	"time"

	"github.com/q191201771/dvbinspect/pkg/base"
	"github.com/q191201771/naza/pkg/nazabits"
)

// Reader 在nazabits.BitReader基础上记录位置，并且在第一次读失败后停止
//
// 目的是让各种descriptor、section、segment的解析代码保持"按字段顺序平铺"的写法，
// 同时满足"能解多少解多少"：第一次越界之后所有读取返回零值，Err返回ErrTruncatedInput
//
// 字符集、BCD等非致命错误收集在Warnings中，不影响后续读取
type Reader struct {
	b    []byte
	br   nazabits.BitReader
	pos  uint // bit
	unit string

	err      error
	warnings []error
}

func NewReader(b []byte, unit string) *Reader {
	return &Reader{
		b:    b,
		br:   nazabits.NewBitReader(b),
		unit: unit,
	}
}

func (r *Reader) Bits8(n uint) uint8 {
	if !r.ensure(n) {
		return 0
	}
	v, _ := r.br.ReadBits8(n)
	r.pos += n
	return v
}

func (r *Reader) Bits16(n uint) uint16 {
	if !r.ensure(n) {
		return 0
	}
	v, _ := r.br.ReadBits16(n)
	r.pos += n
	return v
}

func (r *Reader) Bits32(n uint) uint32 {
	if !r.ensure(n) {
		return 0
	}
	v, _ := r.br.ReadBits32(n)
	r.pos += n
	return v
}

func (r *Reader) U8() uint8   { return r.Bits8(8) }
func (r *Reader) U16() uint16 { return r.Bits16(16) }
func (r *Reader) U24() uint32 { return r.Bits32(24) }
func (r *Reader) U32() uint32 { return r.Bits32(32) }

func (r *Reader) Flag() bool {
	return r.Bits8(1) == 1
}

// Skip 跳过n个bit，通常是reserved
func (r *Reader) Skip(n uint) {
	for n > 0 && r.err == nil {
		step := n
		if step > 32 {
			step = 32
		}
		r.Bits32(step)
		n -= step
	}
}

// Bytes 返回n个字节的视图，不拷贝
//
// 剩余不足n字节时，返回剩余的全部字节，并且进入出错状态。调用方需保证当前字节对齐
func (r *Reader) Bytes(n int) []byte {
	if r.err != nil || n < 0 {
		return nil
	}
	off := r.Offset()
	region, err := Region(r.b, off, n)
	if err != nil {
		r.fail(off+n, len(r.b))
		r.pos = uint(len(r.b)) * 8
		return region
	}
	_, _ = r.br.ReadBytes(uint(n))
	r.pos += uint(n) * 8
	return region
}

// Text 读取n字节的DVB文本字段
func (r *Reader) Text(n int) string {
	if r.err != nil {
		return ""
	}
	s, err := DecodeText(r.Bytes(n))
	if err != nil {
		r.warn(err)
	}
	return s
}

// Text8 8bit长度前缀的DVB文本字段
func (r *Reader) Text8() string {
	n := r.U8()
	return r.Text(int(n))
}

// Bcd 读取count个BCD数字，当前位置必须半字节对齐
func (r *Reader) Bcd(count int) uint64 {
	if r.err != nil {
		return 0
	}
	nibbleOff := int(r.pos / 4)
	v, err := ReadBcdUint(r.b, nibbleOff, count)
	if !r.ensure(uint(count) * 4) {
		return 0
	}
	r.Skip(uint(count) * 4)
	if err != nil {
		r.warn(err)
	}
	return v
}

func (r *Reader) UtcDateTime() DateTime {
	if !r.ensure(40) {
		return DateTime{}
	}
	dt, err := ReadUtcDateTime(r.b, r.Offset())
	r.Skip(40)
	if err != nil {
		r.warn(err)
	}
	return dt
}

// Duration BCD hhmmss (n=3) 或者 hhmm (n=2)
func (r *Reader) Duration(n int) time.Duration {
	if !r.ensure(uint(n) * 8) {
		return 0
	}
	d, err := ReadBcdDuration(r.b, r.Offset(), n)
	r.Skip(uint(n) * 8)
	if err != nil {
		r.warn(err)
	}
	return d
}

// Offset 当前字节位置
func (r *Reader) Offset() int {
	return int(r.pos / 8)
}

// Remaining 剩余字节数
func (r *Reader) Remaining() int {
	if r.err != nil {
		return 0
	}
	return len(r.b) - int((r.pos+7)/8)
}

func (r *Reader) Err() error {
	return r.err
}

func (r *Reader) Warnings() []error {
	return r.warnings
}

// Errors 非致命错误在前，越界错误（如果有）在最后
func (r *Reader) Errors() []error {
	if r.err == nil {
		return r.warnings
	}
	return append(r.warnings[:len(r.warnings):len(r.warnings)], r.err)
}

func (r *Reader) ensure(n uint) bool {
	if r.err != nil {
		return false
	}
	if r.pos+n > uint(len(r.b))*8 {
		r.fail(int((r.pos+n+7)/8), len(r.b))
		return false
	}
	return true
}

func (r *Reader) fail(need, actual int) {
	r.err = base.NewErrTruncatedInput(need, actual, r.unit)
}

func (r *Reader) warn(err error) {
	r.warnings = append(r.warnings, err)
}
