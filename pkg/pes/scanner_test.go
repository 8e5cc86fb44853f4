// Copyright 2026, Chef.  All rights reserved.
// https://github.com/q191201771/dvbinspect
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package pes_test

import (
	"bytes"
	"testing"

	"github.com/q191201771/dvbinspect/pkg/base"
	"github.com/q191201771/dvbinspect/pkg/pes"
	"github.com/q191201771/naza/pkg/assert"
)

func concat(bs ...[]byte) []byte {
	return bytes.Join(bs, nil)
}

func TestSyncScanner(t *testing.T) {
	x := []byte{0x01, 0x02, 0x03}
	y := []byte{0x04, 0x05, 0x06, 0x07, 0x0B}
	sync := []byte{0x0B, 0x77}
	in := concat(sync, x, sync, y, sync)

	s := pes.NewSyncScanner(pes.Ac3SyncWord, pes.Ac3SyncMask, nil)
	frames := s.Feed(in)
	assert.Equal(t, 2, len(frames))
	assert.Equal(t, len(x)+2, len(frames[0].Data))
	assert.Equal(t, len(y)+2, len(frames[1].Data))
	assert.Equal(t, concat(sync, y), frames[1].Data)
	assert.Equal(t, int64(len(x)+2), frames[1].Offset)
	assert.Equal(t, 2, s.Buffered())
	assert.Equal(t, int64(0), s.Skipped())

	// 帧是独立的内存块，不受后续输入影响
	in[2] = 0xFF
	assert.Equal(t, byte(0x01), frames[0].Data[2])
}

func TestSyncScannerByteByByte(t *testing.T) {
	junk := []byte{0x00, 0x0B, 0x00, 0x77}
	in := concat(junk, []byte{0x0B, 0x77, 0x01}, []byte{0x0B, 0x77, 0x02, 0x03}, []byte{0x0B, 0x77})

	whole := pes.NewSyncScanner(pes.Ac3SyncWord, pes.Ac3SyncMask, nil)
	whole.Feed(in)

	split := pes.NewSyncScanner(pes.Ac3SyncWord, pes.Ac3SyncMask, nil)
	n := 0
	for i := range in {
		n += len(split.Feed(in[i : i+1]))
	}

	assert.Equal(t, 2, n)
	assert.Equal(t, len(whole.Frames()), len(split.Frames()))
	for i := range whole.Frames() {
		assert.Equal(t, whole.Frames()[i].Data, split.Frames()[i].Data)
		assert.Equal(t, whole.Frames()[i].Offset, split.Frames()[i].Offset)
	}
	assert.Equal(t, int64(len(junk)), whole.Skipped())
	assert.Equal(t, int64(len(junk)), split.Skipped())
	assert.Equal(t, int64(len(junk)), split.Frames()[0].Offset)
	assert.Equal(t, 2, split.Buffered())
}

func TestSyncScannerResync(t *testing.T) {
	s := pes.NewSyncScanner(pes.Ac3SyncWord, pes.Ac3SyncMask, nil, func(option *pes.SyncScannerOption) {
		option.MaxFrameSize = 8
	})
	// 同步字之后超过8字节没有下一个同步字
	s.Feed(concat([]byte{0x0B, 0x77}, make([]byte, 10)))
	assert.Equal(t, 0, len(s.Frames()))
	assert.Equal(t, 1, s.Diagnostics.Count(base.ErrFrameMalformed))

	s.Feed([]byte{0x0B, 0x77, 0x01, 0x0B, 0x77})
	assert.Equal(t, 1, len(s.Frames()))
	assert.Equal(t, []byte{0x0B, 0x77, 0x01}, s.Frames()[0].Data)
}

// ac3Frame 48kHz，32kbps，acmod 2/0，lfe，128字节
func ac3Frame() []byte {
	b := make([]byte, 128)
	b[0], b[1] = 0x0B, 0x77
	b[4] = 0x00 // fscod 0, frmsizecod 0
	b[5] = 0x40 // bsid 8, bsmod 0
	b[6] = 0x44 // acmod 2, dsurmod 0, lfeon 1
	return b
}

// eac3Frame 48kHz，64字节
func eac3Frame() []byte {
	b := make([]byte, 64)
	b[0], b[1] = 0x0B, 0x77
	b[2], b[3] = 0x00, 0x1F // frmsiz 31
	b[4] = 0x34             // fscod 0, numblkscod 3, acmod 2, lfeon 0
	b[5] = 0x80             // bsid 16
	return b
}

func TestDecodeAc3Frame(t *testing.T) {
	s := pes.NewSyncScanner(pes.Ac3SyncWord, pes.Ac3SyncMask, pes.DecodeAc3Frame)
	frames := s.Feed(concat(ac3Frame(), ac3Frame(), []byte{0x0B, 0x77}))
	assert.Equal(t, 2, len(frames))
	assert.Equal(t, 0, s.DiagnosticCount())

	v, ok := frames[0].Body.(*pes.Ac3SyncFrame)
	assert.Equal(t, true, ok)
	assert.Equal(t, 48000, v.SampleRate)
	assert.Equal(t, 32, v.Bitrate)
	assert.Equal(t, 128, v.FrameSize)
	assert.Equal(t, uint8(8), v.Bsid)
	assert.Equal(t, uint8(2), v.Acmod)
	assert.Equal(t, true, v.Lfeon)

	r := frames[0].Record()
	assert.Equal(t, "AC-3 syncframe", r.Kind)
	f, _ := r.Field("acmod_text")
	assert.Equal(t, "2/0 (L, R)", f.String)
}

func TestDecodeAc3FrameMismatch(t *testing.T) {
	short := ac3Frame()[:100]
	body, errs := pes.DecodeAc3Frame(short)
	assert.IsNotNil(t, body)
	assert.Equal(t, 1, len(errs))

	s := pes.NewSyncScanner(pes.Ac3SyncWord, pes.Ac3SyncMask, pes.DecodeAc3Frame)
	frames := s.Feed(concat(short, []byte{0x0B, 0x77}))
	assert.Equal(t, 1, len(frames))
	assert.Equal(t, 1, frames[0].Diagnostics.Count(base.ErrFrameMalformed))
	assert.Equal(t, 1, s.DiagnosticCount())

	_, errs = pes.DecodeAc3Frame([]byte{0x0B, 0x77, 0x00})
	assert.Equal(t, true, base.IsTruncated(errs[0]))
}

func TestDecodeEac3Frame(t *testing.T) {
	body, errs := pes.DecodeAc3Frame(eac3Frame())
	assert.Equal(t, 0, len(errs))
	v, ok := body.(*pes.Eac3SyncFrame)
	assert.Equal(t, true, ok)
	assert.Equal(t, 64, v.FrameSize)
	assert.Equal(t, 48000, v.SampleRate)
	assert.Equal(t, uint8(3), v.Numblkscod)
	assert.Equal(t, uint8(16), v.Bsid)
	assert.Equal(t, "E-AC-3 syncframe", body.Name())
}

func adtsFrame() []byte {
	b := make([]byte, 0x175)
	copy(b, []byte{0xFF, 0xF1, 0x50, 0x80, 0x2E, 0xBF, 0xFC})
	return b
}

func TestDecodeAdtsFrame(t *testing.T) {
	f, err := pes.NewFramer(pes.FramerKindAdts)
	assert.Equal(t, nil, err)
	f.Feed(mustParsePacket(t, pesPacket(0xC0, 0, 0, concat(adtsFrame(), adtsFrame()[:100]))))
	f.Feed(mustParsePacket(t, pesPacket(0xC0, 0, 0, concat(adtsFrame()[100:], []byte{0xFF, 0xF1}))))
	assert.Equal(t, 0, f.DiagnosticCount())

	records := f.Records()
	// 2个PES包，2个帧，1个scanner汇总
	assert.Equal(t, 5, len(records))
	assert.Equal(t, "ADTS frame", records[2].Kind)
	sr, _ := records[2].Field("sampling_frequency")
	assert.Equal(t, int64(44100), sr.Int)

	_, errs := pes.DecodeAdtsFrame(adtsFrame()[:200])
	assert.Equal(t, 1, len(errs))
}
