// Copyright 2026, Chef.  All rights reserved.
// https://github.com/q191201771/dvbinspect
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package pes

import (
	"fmt"

	"github.com/q191201771/dvbinspect/pkg/aac"
	"github.com/q191201771/dvbinspect/pkg/descriptor"
	"github.com/q191201771/dvbinspect/pkg/dvbsub"
	"github.com/q191201771/dvbinspect/pkg/psi"
	"github.com/q191201771/dvbinspect/pkg/record"
)

type FramerKind string

const (
	FramerKindAc3      FramerKind = "ac3"
	FramerKindEac3     FramerKind = "eac3"
	FramerKindAdts     FramerKind = "adts"
	FramerKindH264     FramerKind = "h264"
	FramerKindH265     FramerKind = "h265"
	FramerKindDvbsub   FramerKind = "dvbsub"
	FramerKindTeletext FramerKind = "teletext"
	FramerKindOpaque   FramerKind = "opaque"
)

// registration_descriptor中的format_identifier
const (
	formatIdentifierAc3  = 0x41432D33 // "AC-3"
	formatIdentifierEac3 = 0x45414333 // "EAC3"
)

// Framer 把一个PID上按顺序到达的PES包组织成逻辑单元
//
// 不是并发安全的，同一个PID的PES包需要按顺序串行输入
type Framer interface {
	Kind() FramerKind
	Feed(pkt *Packet)
	Records() []*record.Record
	DiagnosticCount() int
}

// SelectFramer 根据PMT中的stream_type以及ES_info中的descriptor选择framer
//
// stream_type为0x06（PES private data）时，由AC-3，E-AC-3，subtitling，teletext等descriptor决定
func SelectFramer(streamType uint8, esInfo []descriptor.Descriptor) FramerKind {
	switch streamType {
	case psi.StreamTypeAvc:
		return FramerKindH264
	case psi.StreamTypeHevc:
		return FramerKindH265
	case psi.StreamTypeAdtsAac:
		return FramerKindAdts
	case psi.StreamTypeAc3:
		return FramerKindAc3
	case psi.StreamTypeEac3:
		return FramerKindEac3
	case psi.StreamTypePrivatePes:
		return selectPrivateFramer(esInfo)
	}
	return FramerKindOpaque
}

func selectPrivateFramer(esInfo []descriptor.Descriptor) FramerKind {
	for _, d := range esInfo {
		switch v := d.Value.(type) {
		case *descriptor.AC3:
			return FramerKindAc3
		case *descriptor.EnhancedAC3:
			return FramerKindEac3
		case *descriptor.Subtitling:
			return FramerKindDvbsub
		case *descriptor.Teletext:
			return FramerKindTeletext
		case *descriptor.Registration:
			switch v.FormatIdentifier {
			case formatIdentifierAc3:
				return FramerKindAc3
			case formatIdentifierEac3:
				return FramerKindEac3
			}
		}
	}
	return FramerKindOpaque
}

// NewFramer
//
// @param modOptions 只对ac3，eac3，adts生效
func NewFramer(kind FramerKind, modOptions ...ModSyncScannerOption) (Framer, error) {
	switch kind {
	case FramerKindAc3, FramerKindEac3:
		return newSyncFramer(kind, NewSyncScanner(Ac3SyncWord, Ac3SyncMask, DecodeAc3Frame, modOptions...)), nil
	case FramerKindAdts:
		return newSyncFramer(kind, NewSyncScanner(aac.AdtsSyncWord, aac.AdtsSyncMask, DecodeAdtsFrame, modOptions...)), nil
	case FramerKindH264:
		return &nalFramer{stream: NewNalStream(true)}, nil
	case FramerKindH265:
		return &nalFramer{stream: NewNalStream(false)}, nil
	case FramerKindDvbsub:
		return &subtitleFramer{}, nil
	case FramerKindTeletext, FramerKindOpaque:
		return &opaqueFramer{kind: kind}, nil
	}
	return nil, fmt.Errorf("unknown framer kind. kind=%s", kind)
}

// ----- sync frame ----------------------------------------------------------------------------------------------------

type syncFramer struct {
	kind    FramerKind
	scanner *SyncScanner
	packets []*Packet
}

func newSyncFramer(kind FramerKind, scanner *SyncScanner) *syncFramer {
	return &syncFramer{
		kind:    kind,
		scanner: scanner,
	}
}

func (f *syncFramer) Kind() FramerKind {
	return f.kind
}

func (f *syncFramer) Feed(pkt *Packet) {
	f.packets = append(f.packets, pkt)
	f.scanner.Feed(pkt.Payload)
}

func (f *syncFramer) Scanner() *SyncScanner {
	return f.scanner
}

func (f *syncFramer) Records() []*record.Record {
	ret := make([]*record.Record, 0, len(f.packets)+len(f.scanner.Frames())+1)
	for _, pkt := range f.packets {
		ret = append(ret, pkt.Record())
	}
	for _, frame := range f.scanner.Frames() {
		ret = append(ret, frame.Record())
	}
	sr := record.New("sync_scanner").
		Int("frames", int64(len(f.scanner.Frames()))).
		Int("skipped_bytes", f.scanner.Skipped()).
		Int("buffered_bytes", int64(f.scanner.Buffered()))
	sr.Diag(f.scanner.Diagnostics.Strings()...)
	return append(ret, sr)
}

func (f *syncFramer) DiagnosticCount() int {
	n := f.scanner.DiagnosticCount()
	for _, pkt := range f.packets {
		n += len(pkt.Diagnostics)
	}
	return n
}

// ----- nal -----------------------------------------------------------------------------------------------------------

type nalFramer struct {
	stream *NalStream
}

func (f *nalFramer) Kind() FramerKind {
	if f.stream.IsH264() {
		return FramerKindH264
	}
	return FramerKindH265
}

func (f *nalFramer) Feed(pkt *Packet) {
	f.stream.Feed(pkt)
}

func (f *nalFramer) Stream() *NalStream {
	return f.stream
}

func (f *nalFramer) Records() []*record.Record {
	return f.stream.Records()
}

func (f *nalFramer) DiagnosticCount() int {
	return f.stream.DiagnosticCount()
}

// ----- subtitle ------------------------------------------------------------------------------------------------------

type subtitlePacket struct {
	packet  *Packet
	payload *dvbsub.Payload
}

type subtitleFramer struct {
	packets []subtitlePacket
}

func (f *subtitleFramer) Kind() FramerKind {
	return FramerKindDvbsub
}

func (f *subtitleFramer) Feed(pkt *Packet) {
	f.packets = append(f.packets, subtitlePacket{
		packet:  pkt,
		payload: dvbsub.DecodePayload(pkt.Payload),
	})
}

func (f *subtitleFramer) Records() []*record.Record {
	ret := make([]*record.Record, 0, len(f.packets))
	for _, sp := range f.packets {
		r := sp.packet.Record()
		r.Child("subtitle_payload", sp.payload.Record())
		ret = append(ret, r)
	}
	return ret
}

func (f *subtitleFramer) DiagnosticCount() int {
	n := 0
	for _, sp := range f.packets {
		n += len(sp.packet.Diagnostics) + sp.payload.DiagnosticCount()
	}
	return n
}

// ----- opaque --------------------------------------------------------------------------------------------------------

// opaqueFramer 只保留PES头，payload不解析
type opaqueFramer struct {
	kind    FramerKind
	packets []*Packet
}

func (f *opaqueFramer) Kind() FramerKind {
	return f.kind
}

func (f *opaqueFramer) Feed(pkt *Packet) {
	f.packets = append(f.packets, pkt)
}

func (f *opaqueFramer) Records() []*record.Record {
	ret := make([]*record.Record, 0, len(f.packets))
	for _, pkt := range f.packets {
		ret = append(ret, pkt.Record())
	}
	return ret
}

func (f *opaqueFramer) DiagnosticCount() int {
	n := 0
	for _, pkt := range f.packets {
		n += len(pkt.Diagnostics)
	}
	return n
}
