// Copyright 2020, Chef.  All rights reserved.
// https://github.com/q191201771/dvbinspect
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package psi

import (
	"github.com/q191201771/dvbinspect/pkg/descriptor"
	"github.com/q191201771/dvbinspect/pkg/field"
	"github.com/q191201771/dvbinspect/pkg/record"
)

// Pmt
//
// ----------------------------------------
// Program Map Table
// <iso13818-1.pdf> <2.4.4.8> <page 64/174>
// program_number           [16b] ** table_id_extension
// ...
// reserved                 [3b]
// PCR_PID                  [13b] **
// reserved                 [4b]
// program_info_length      [12b] **
// descriptor()
// -----loop-----
// stream_type              [8b]  *
// reserved                 [3b]
// elementary_PID           [13b] **
// reserved                 [4b]
// ES_info_length           [12b] **
// descriptor()
// --------------
// CRC32                    [32b] ****
// ----------------------------------------
type Pmt struct {
	ProgramNumber   uint16
	PcrPid          uint16
	ProgramInfo     []descriptor.Descriptor
	ProgramElements []PmtProgramElement
}

type PmtProgramElement struct {
	StreamType uint8
	Pid        uint16
	EsInfo     []descriptor.Descriptor
}

func parsePmt(s *Section, body []byte) Body {
	pmt := &Pmt{ProgramNumber: s.TableIdExtension}
	r := field.NewReader(body, "PMT")
	r.Skip(3)
	pmt.PcrPid = r.Bits16(13)
	r.Skip(4)
	pil := r.Bits16(12)
	pmt.ProgramInfo = s.decodeDescriptors(r.Bytes(int(pil)), descriptor.ContextPMT)

	for r.Remaining() > 0 {
		var ppe PmtProgramElement
		ppe.StreamType = r.U8()
		r.Skip(3)
		ppe.Pid = r.Bits16(13)
		r.Skip(4)
		eil := r.Bits16(12)
		if r.Err() != nil {
			break
		}
		ppe.EsInfo = s.decodeDescriptors(r.Bytes(int(eil)), descriptor.ContextPMT)
		pmt.ProgramElements = append(pmt.ProgramElements, ppe)
	}
	s.finish(r)
	return pmt
}

func (pmt *Pmt) Name() string { return "PMT" }

func (pmt *Pmt) SearchPid(pid uint16) *PmtProgramElement {
	for i := range pmt.ProgramElements {
		if pmt.ProgramElements[i].Pid == pid {
			return &pmt.ProgramElements[i]
		}
	}
	return nil
}

func (pmt *Pmt) fill(r *record.Record) {
	r.Uint("program_number", uint64(pmt.ProgramNumber)).
		Uint("PCR_PID", uint64(pmt.PcrPid))
	descriptorRecords(r, "program_info", pmt.ProgramInfo)
	for _, ppe := range pmt.ProgramElements {
		item := record.New("elementary_stream").
			Uint("stream_type", uint64(ppe.StreamType)).
			Str("stream_type_text", StreamTypeText(ppe.StreamType)).
			Uint("elementary_PID", uint64(ppe.Pid))
		descriptorRecords(item, "ES_info", ppe.EsInfo)
		r.Child("elementary_streams", item)
	}
}

// StreamType
//
// <iso13818-1.pdf> <Table 2-29 Stream type assignments>
const (
	StreamTypeMpeg1Video     = 0x01
	StreamTypeMpeg2Video     = 0x02
	StreamTypeMpeg1Audio     = 0x03
	StreamTypeMpeg2Audio     = 0x04
	StreamTypePrivateSection = 0x05
	StreamTypePrivatePes     = 0x06
	StreamTypeDsmccB         = 0x0b
	StreamTypeAdtsAac        = 0x0f
	StreamTypeLatmAac        = 0x11
	StreamTypeAvc            = 0x1b
	StreamTypeHevc           = 0x24
	StreamTypeAc3            = 0x81
	StreamTypeEac3           = 0x87
)

func StreamTypeText(t uint8) string {
	switch t {
	case StreamTypeMpeg1Video:
		return "ISO/IEC 11172-2 Video"
	case StreamTypeMpeg2Video:
		return "ITU-T Rec. H.262 | ISO/IEC 13818-2 Video"
	case StreamTypeMpeg1Audio:
		return "ISO/IEC 11172-3 Audio"
	case StreamTypeMpeg2Audio:
		return "ISO/IEC 13818-3 Audio"
	case StreamTypePrivateSection:
		return "private_sections"
	case StreamTypePrivatePes:
		return "PES packets containing private data"
	case StreamTypeDsmccB:
		return "ISO/IEC 13818-6 type B"
	case StreamTypeAdtsAac:
		return "ISO/IEC 13818-7 Audio with ADTS transport syntax"
	case StreamTypeLatmAac:
		return "ISO/IEC 14496-3 Audio with the LATM transport syntax"
	case StreamTypeAvc:
		return "AVC video stream"
	case StreamTypeHevc:
		return "HEVC video stream"
	case StreamTypeAc3:
		return "AC-3 (ATSC)"
	case StreamTypeEac3:
		return "E-AC-3 (ATSC)"
	}
	if t >= 0x80 {
		return "User Private"
	}
	return "reserved"
}
