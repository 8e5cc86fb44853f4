// Copyright 2026, Chef.  All rights reserved.
// https://github.com/q191201771/dvbinspect
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package field

import (
	"errors"
	"testing"
	"time"

	"github.com/q191201771/dvbinspect/pkg/base"
	"github.com/q191201771/naza/pkg/assert"
)

func TestReadUint(t *testing.T) {
	b := []byte{0x12, 0x34, 0x56, 0x78}
	v, err := ReadUint(b, 0, 2, Mask16Bits)
	assert.Equal(t, nil, err)
	assert.Equal(t, uint64(0x1234), v)

	v, err = ReadUint(b, 1, 2, Mask13Bits)
	assert.Equal(t, nil, err)
	assert.Equal(t, uint64(0x1456), v)

	v, err = ReadUint(b, 0, 4, Mask32Bits)
	assert.Equal(t, nil, err)
	assert.Equal(t, uint64(0x12345678), v)

	_, err = ReadUint(b, 3, 2, Mask16Bits)
	assert.Equal(t, true, errors.Is(err, base.ErrTruncatedInput))
}

func TestRegion(t *testing.T) {
	b := []byte{1, 2, 3, 4, 5}
	r, err := Region(b, 1, 2)
	assert.Equal(t, nil, err)
	assert.Equal(t, []byte{2, 3}, r)
	assert.Equal(t, 2, cap(r))

	r, err = Region(b, 3, 10)
	assert.Equal(t, true, errors.Is(err, base.ErrTruncatedInput))
	assert.Equal(t, []byte{4, 5}, r)

	r, err = Region(b, 9, 1)
	assert.Equal(t, true, errors.Is(err, base.ErrTruncatedInput))
	assert.Equal(t, 0, len(r))
}

func TestReadBcd(t *testing.T) {
	s, err := ReadBcd([]byte{0x12, 0x34}, 0, 4)
	assert.Equal(t, nil, err)
	assert.Equal(t, "1234", s)

	s, err = ReadBcd([]byte{0x12, 0x34}, 1, 2)
	assert.Equal(t, nil, err)
	assert.Equal(t, "23", s)

	_, err = ReadBcd([]byte{0x1A}, 0, 2)
	assert.Equal(t, true, errors.Is(err, base.ErrMalformedBcd))

	_, err = ReadBcd([]byte{0x12}, 0, 3)
	assert.Equal(t, true, errors.Is(err, base.ErrTruncatedInput))

	v, err := ReadBcdUint([]byte{0x01, 0x17, 0x50}, 0, 6)
	assert.Equal(t, nil, err)
	assert.Equal(t, uint64(11750), v)
}

func TestMjdToDate(t *testing.T) {
	y, m, d := MjdToDate(40000)
	assert.Equal(t, 1968, y)
	assert.Equal(t, 5, m)
	assert.Equal(t, 24, d)

	y, m, d = MjdToDate(45218)
	assert.Equal(t, 1982, y)
	assert.Equal(t, 9, m)
	assert.Equal(t, 6, d)
}

func TestReadUtcDateTime(t *testing.T) {
	// MJD 40000 = 0x9C40, 12:00:00
	dt, err := ReadUtcDateTime([]byte{0x9C, 0x40, 0x12, 0x00, 0x00}, 0)
	assert.Equal(t, nil, err)
	assert.Equal(t, "1968-05-24 12:00:00", dt.String())
	assert.Equal(t, time.Date(1968, 5, 24, 12, 0, 0, 0, time.UTC), dt.Time())

	dt, err = ReadUtcDateTime([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF}, 0)
	assert.Equal(t, nil, err)
	assert.Equal(t, true, dt.Undefined)

	dt, err = ReadUtcDateTime([]byte{0x9C, 0x40, 0x1F, 0x00, 0x00}, 0)
	assert.Equal(t, true, errors.Is(err, base.ErrMalformedBcd))
	assert.Equal(t, 1968, dt.Year)

	_, err = ReadUtcDateTime([]byte{0x9C, 0x40, 0x12}, 0)
	assert.Equal(t, true, errors.Is(err, base.ErrTruncatedInput))
}

func TestReadBcdDuration(t *testing.T) {
	d, err := ReadBcdDuration([]byte{0x01, 0x45, 0x30}, 0, 3)
	assert.Equal(t, nil, err)
	assert.Equal(t, time.Hour+45*time.Minute+30*time.Second, d)

	d, err = ReadBcdDuration([]byte{0x02, 0x30}, 0, 2)
	assert.Equal(t, nil, err)
	assert.Equal(t, 2*time.Hour+30*time.Minute, d)
}

func TestReadText(t *testing.T) {
	// 5 -> ISO-8859-9
	s, err := ReadText([]byte{0x05, 'H', 'i'}, 0, 3)
	assert.Equal(t, nil, err)
	assert.Equal(t, "Hi", s)

	s, err = ReadText([]byte{0x10, 0x00, 0x02, 'H', 'i'}, 0, 5)
	assert.Equal(t, nil, err)
	assert.Equal(t, "Hi", s)

	s, err = ReadText([]byte{'H', 'i'}, 0, 2)
	assert.Equal(t, nil, err)
	assert.Equal(t, "Hi", s)

	// 控制码被去掉
	s, err = ReadText([]byte{'H', 0x86, 'i', 0x87, 0x8A}, 0, 5)
	assert.Equal(t, nil, err)
	assert.Equal(t, "Hi", s)

	// ISO-8859-5 cyrillic
	s, err = ReadText([]byte{0x01, 0xB0}, 0, 2)
	assert.Equal(t, nil, err)
	assert.Equal(t, "А", s)

	// 8859-12 does not exist
	s, err = ReadText([]byte{0x08, 'H', 'i'}, 0, 3)
	assert.Equal(t, true, errors.Is(err, base.ErrCharsetDecodeFailure))
	assert.Equal(t, "Hi", s)

	s, err = ReadText([]byte{0x15, 0xE4, 0xBD, 0xA0}, 0, 4)
	assert.Equal(t, nil, err)
	assert.Equal(t, "你", s)

	s, err = ReadText([]byte{0x11, 0x00, 'H', 0x00, 'i'}, 0, 5)
	assert.Equal(t, nil, err)
	assert.Equal(t, "Hi", s)

	s, err = ReadText([]byte{'H', 'i', '!'}, 0, 10)
	assert.Equal(t, true, errors.Is(err, base.ErrTruncatedInput))
	assert.Equal(t, "Hi!", s)
}

func TestDecodeIso6937(t *testing.T) {
	s, err := DecodeText([]byte{'C', 'a', 'f', 0xC2, 'e'})
	assert.Equal(t, nil, err)
	assert.Equal(t, "Café", s)

	s, err = DecodeText([]byte{0xA4, '5'})
	assert.Equal(t, nil, err)
	assert.Equal(t, "€5", s)

	s, err = DecodeText([]byte{0xFB})
	assert.Equal(t, nil, err)
	assert.Equal(t, "ß", s)
}

func TestReader(t *testing.T) {
	b := []byte{0xAB, 0xCD, 0x03, 'a', 'b', 'c', 0x9C, 0x40, 0x12, 0x34, 0x56, 0xFF}
	r := NewReader(b, "test")
	assert.Equal(t, uint8(0xA), r.Bits8(4))
	assert.Equal(t, uint16(0xBCD), r.Bits16(12))
	assert.Equal(t, "abc", r.Text8())
	dt := r.UtcDateTime()
	assert.Equal(t, "1968-05-24 12:34:56", dt.String())
	assert.Equal(t, 11, r.Offset())
	assert.Equal(t, 1, r.Remaining())
	assert.Equal(t, nil, r.Err())

	// 越界之后返回已有部分，之后的读取都是零值
	tail := r.Bytes(4)
	assert.Equal(t, []byte{0xFF}, tail)
	assert.Equal(t, true, errors.Is(r.Err(), base.ErrTruncatedInput))
	assert.Equal(t, uint8(0), r.U8())
	assert.Equal(t, 0, r.Remaining())
	assert.Equal(t, 1, len(r.Errors()))
}

func TestReaderWarnings(t *testing.T) {
	r := NewReader([]byte{0x08, 'H', 'i', 0x1A, 0x07}, "test")
	assert.Equal(t, "Hi", r.Text(3))
	assert.Equal(t, uint64(0), r.Bcd(2))
	assert.Equal(t, uint8(7), r.U8())
	assert.Equal(t, nil, r.Err())
	assert.Equal(t, 2, len(r.Warnings()))
	assert.Equal(t, true, errors.Is(r.Warnings()[0], base.ErrCharsetDecodeFailure))
	assert.Equal(t, true, errors.Is(r.Warnings()[1], base.ErrMalformedBcd))
}
