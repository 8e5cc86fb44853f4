// Copyright 2026, Chef.  All rights reserved.
// https://github.com/q191201771/dvbinspect
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package descriptor

import (
	"fmt"

	"github.com/q191201771/dvbinspect/pkg/field"
	"github.com/q191201771/dvbinspect/pkg/record"
)

// <iso13818-6.pdf> <8.3> Stream Descriptors
//
// 出现在table_id为0x3D的DSM-CC section中

func read33(r *field.Reader) uint64 {
	hi := r.Bits8(1)
	lo := r.U32()
	return uint64(hi)<<32 | uint64(lo)
}

// NPTReference
//
// postDiscontinuityIndicator [1b]
// contentId                [7b]
// reserved                 [7b]
// STC_Reference            [33b]
// reserved                 [31b]
// NPT_Reference            [33b]
// scaleNumerator           [16b]
// scaleDenominator         [16b]
type NPTReference struct {
	PostDiscontinuity bool
	ContentId         uint8
	STCReference      uint64
	NPTReference      uint64
	ScaleNumerator    uint16
	ScaleDenominator  uint16
}

func decodeNPTReference(r *field.Reader) *NPTReference {
	var v NPTReference
	v.PostDiscontinuity = r.Flag()
	v.ContentId = r.Bits8(7)
	r.Skip(7)
	v.STCReference = read33(r)
	r.Skip(31)
	v.NPTReference = read33(r)
	v.ScaleNumerator = r.U16()
	v.ScaleDenominator = r.U16()
	return &v
}

func (v *NPTReference) Name() string { return "NPT_reference" }

func (v *NPTReference) fill(rec *record.Record) {
	rec.Bool("post_discontinuity_indicator", v.PostDiscontinuity).
		Uint("content_id", uint64(v.ContentId)).
		Uint("STC_reference", v.STCReference).
		Uint("NPT_reference", v.NPTReference).
		Uint("scale_numerator", uint64(v.ScaleNumerator)).
		Uint("scale_denominator", uint64(v.ScaleDenominator))
}

// NPTEndpoint
//
// reserved                 [15b]
// startNPT                 [33b]
// reserved                 [31b]
// stopNPT                  [33b]
type NPTEndpoint struct {
	StartNPT uint64
	StopNPT  uint64
}

func decodeNPTEndpoint(r *field.Reader) *NPTEndpoint {
	var v NPTEndpoint
	r.Skip(15)
	v.StartNPT = read33(r)
	r.Skip(31)
	v.StopNPT = read33(r)
	return &v
}

func (v *NPTEndpoint) Name() string { return "NPT_endpoint" }

func (v *NPTEndpoint) fill(rec *record.Record) {
	rec.Uint("start_NPT", v.StartNPT).Uint("stop_NPT", v.StopNPT)
}

// StreamMode
//
// streamMode               [8b]
// reserved                 [8b]
type StreamMode struct {
	StreamMode uint8
}

func decodeStreamMode(r *field.Reader) *StreamMode {
	var v StreamMode
	v.StreamMode = r.U8()
	r.Skip(8)
	return &v
}

func (v *StreamMode) Name() string { return "stream_mode" }

func (v *StreamMode) fill(rec *record.Record) {
	rec.Uint("stream_mode", uint64(v.StreamMode)).Str("stream_mode_text", streamModeText(v.StreamMode))
}

func streamModeText(m uint8) string {
	switch m {
	case 0:
		return "Open"
	case 1:
		return "Pause"
	case 2:
		return "Transport"
	case 3:
		return "Transport Pause"
	case 4:
		return "Search Transport"
	case 5:
		return "Search Transport Pause"
	case 6:
		return "Pause Search Transport"
	case 7:
		return "End of Stream"
	case 8:
		return "Pre Search Transport"
	case 9:
		return "Pre Search Transport Pause"
	}
	return "ISO/IEC 13818-6 reserved"
}

// StreamEvent
//
// eventId                  [16b]
// reserved                 [31b]
// eventNPT                 [33b]
// privateDataByte
type StreamEvent struct {
	EventId     uint16
	EventNPT    uint64
	PrivateData []byte
}

func decodeStreamEvent(r *field.Reader) *StreamEvent {
	var v StreamEvent
	v.EventId = r.U16()
	r.Skip(31)
	v.EventNPT = read33(r)
	v.PrivateData = r.Bytes(r.Remaining())
	return &v
}

func (v *StreamEvent) Name() string { return "stream_event" }

func (v *StreamEvent) fill(rec *record.Record) {
	rec.Uint("event_id", uint64(v.EventId)).Uint("event_NPT", v.EventNPT)
	if len(v.PrivateData) != 0 {
		rec.Str("private_data", fmt.Sprintf("% x", v.PrivateData))
	}
}
