// Copyright 2026, Chef.  All rights reserved.
// https://github.com/q191201771/dvbinspect
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package pes

import (
	"encoding/hex"
	"fmt"

	"github.com/q191201771/dvbinspect/pkg/base"
	"github.com/q191201771/dvbinspect/pkg/record"
	"github.com/q191201771/naza/pkg/nazabytes"
)

// FrameBody 帧头解码的结果
type FrameBody interface {
	Name() string
	Fill(r *record.Record)
}

// FrameDecoder 解码一个完整的帧
//
// @param frame 从同步字开始，到下一个同步字之前结束
type FrameDecoder func(frame []byte) (FrameBody, []error)

type Frame struct {
	Index  int
	Offset int64  // 帧在整个ES中的位置
	Data   []byte // 独立的内存块

	Body        FrameBody
	Diagnostics base.Diagnostics
}

func (f *Frame) Record() *record.Record {
	kind := "frame"
	if f.Body != nil {
		kind = f.Body.Name()
	}
	r := record.New(kind).
		Int("index", int64(f.Index)).
		Int("offset", f.Offset).
		Int("length", int64(len(f.Data)))
	if f.Body != nil {
		f.Body.Fill(r)
	}
	r.Diag(f.Diagnostics.Strings()...)
	return r
}

type SyncScannerOption struct {
	// MaxFrameSize 同步后超过该长度仍然没有找到下一个同步字时，丢弃当前同步字重新同步
	MaxFrameSize int

	// InitBufferSize nazabytes.Buffer的初始大小
	InitBufferSize int
}

var defaultSyncScannerOption = SyncScannerOption{
	MaxFrameSize:   65536,
	InitBufferSize: 8192,
}

type ModSyncScannerOption func(option *SyncScannerOption)

// SyncScanner 在ES字节流中通过固定的2字节同步字切分帧，帧边界与PES包边界无关
//
// 只有找到下一个同步字时才输出当前帧，两个同步字之间的距离就是帧的长度，不信任帧头中声明的长度。
// 已经消费的数据从缓冲中移除，不会被重新扫描，最后一个同步字之后的数据一直留在缓冲中
type SyncScanner struct {
	option SyncScannerOption

	marker uint16
	mask   uint16
	decode FrameDecoder

	buf      *nazabytes.Buffer
	synced   bool  // buf是否以同步字开头
	scanFrom int   // 下次查找同步字的起点，相对于buf的开头
	offset   int64 // buf开头在整个ES中的位置

	frames      []*Frame
	skipped     int64 // 同步之前丢弃的字节数
	Diagnostics base.Diagnostics
}

// NewSyncScanner
//
// @param marker 同步字，与mask按位与之后比较
// @param decode 可以为nil
func NewSyncScanner(marker, mask uint16, decode FrameDecoder, modOptions ...ModSyncScannerOption) *SyncScanner {
	option := defaultSyncScannerOption
	for _, fn := range modOptions {
		fn(&option)
	}
	return &SyncScanner{
		option: option,
		marker: marker & mask,
		mask:   mask,
		decode: decode,
		buf:    nazabytes.NewBuffer(option.InitBufferSize),
	}
}

// Feed 追加一段PES payload
//
// @param payload 函数调用结束后，内部不持有该内存块
//
// @return 本次新切分出的帧
func (s *SyncScanner) Feed(payload []byte) []*Frame {
	_, _ = s.buf.Write(payload)

	start := len(s.frames)
	for {
		b := s.buf.Bytes()
		if !s.synced {
			i := s.index(b, s.scanFrom)
			if i == -1 {
				// 最后一个字节可能是同步字的前半部分
				s.discard(len(b) - 1)
				break
			}
			s.discard(i)
			s.synced = true
			s.scanFrom = 2
			continue
		}

		j := s.index(b, s.scanFrom)
		if j == -1 {
			if len(b) > s.option.MaxFrameSize {
				s.Diagnostics.Add("sync scanner", -1, fmt.Errorf("%w. no sync marker within %d bytes. offset=%d",
					base.ErrFrameMalformed, s.option.MaxFrameSize, s.offset))
				s.synced = false
				s.discard(2)
				continue
			}
			if len(b) > 2 {
				s.scanFrom = len(b) - 1
			}
			break
		}
		s.emit(b[:j])
		s.buf.Skip(j)
		s.offset += int64(j)
		s.scanFrom = 2
	}
	return s.frames[start:]
}

func (s *SyncScanner) Frames() []*Frame {
	return s.frames
}

// Buffered 缓冲中还没有切分成帧的字节数
func (s *SyncScanner) Buffered() int {
	return s.buf.Len()
}

// Skipped 第一次同步之前以及失去同步后丢弃的字节数
func (s *SyncScanner) Skipped() int64 {
	return s.skipped
}

func (s *SyncScanner) DiagnosticCount() int {
	n := len(s.Diagnostics)
	for _, f := range s.frames {
		n += len(f.Diagnostics)
	}
	return n
}

func (s *SyncScanner) emit(b []byte) {
	f := &Frame{
		Index:  len(s.frames),
		Offset: s.offset,
		Data:   append([]byte(nil), b...),
	}
	if s.decode != nil {
		body, errs := s.decode(f.Data)
		f.Body = body
		unit := fmt.Sprintf("frame %d", f.Index)
		for _, err := range errs {
			f.Diagnostics.Add(unit, -1, err)
		}
		if len(errs) != 0 {
			Log.Debugf("frame has diagnostics. index=%d, offset=%d, errs=%+v, head=%s",
				f.Index, f.Offset, errs, hex.EncodeToString(nazabytes.Prefix(f.Data, 16)))
		}
	}
	s.frames = append(s.frames, f)
}

func (s *SyncScanner) discard(n int) {
	if n <= 0 {
		return
	}
	s.buf.Skip(n)
	s.offset += int64(n)
	s.skipped += int64(n)
	s.scanFrom = 0
}

func (s *SyncScanner) index(b []byte, from int) int {
	for i := from; i+1 < len(b); i++ {
		if (uint16(b[i])<<8|uint16(b[i+1]))&s.mask == s.marker {
			return i
		}
	}
	return -1
}
