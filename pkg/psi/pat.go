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

// ---------------------------------------------------------------------------------------------------
// Program association section
// <iso13818-1.pdf> <2.4.4.3> <page 61/174>
// transport_stream_id      [16b] ** table_id_extension
// ...
// -----loop-----
// program_number           [16b] **
// reserved                 [3b]
// program_map_PID          [13b] ** if program_number == 0 then network_PID else then program_map_PID
// --------------
// CRC_32                   [32b] ****
// ---------------------------------------------------------------------------------------------------
type Pat struct {
	TransportStreamId uint16
	Programs          []PatProgram
}

type PatProgram struct {
	ProgramNumber uint16
	Pid           uint16
}

func parsePat(s *Section, body []byte) Body {
	pat := &Pat{TransportStreamId: s.TableIdExtension}
	r := field.NewReader(body, "PAT")
	for r.Remaining() > 0 {
		var pp PatProgram
		pp.ProgramNumber = r.U16()
		r.Skip(3)
		pp.Pid = r.Bits16(13)
		if r.Err() != nil {
			break
		}
		pat.Programs = append(pat.Programs, pp)
	}
	s.finish(r)
	return pat
}

func (pat *Pat) Name() string { return "PAT" }

// NetworkPid program_number为0的条目，没有时返回0x10
func (pat *Pat) NetworkPid() uint16 {
	for _, pp := range pat.Programs {
		if pp.ProgramNumber == 0 {
			return pp.Pid
		}
	}
	return 0x10
}

// SearchPid 返回program_map_PID
func (pat *Pat) SearchPid(programNumber uint16) (uint16, bool) {
	for _, pp := range pat.Programs {
		if pp.ProgramNumber == programNumber && programNumber != 0 {
			return pp.Pid, true
		}
	}
	return 0, false
}

func (pat *Pat) fill(r *record.Record) {
	r.Uint("transport_stream_id", uint64(pat.TransportStreamId))
	for _, pp := range pat.Programs {
		item := record.New("program").Uint("program_number", uint64(pp.ProgramNumber))
		if pp.ProgramNumber == 0 {
			item.Uint("network_PID", uint64(pp.Pid))
		} else {
			item.Uint("program_map_PID", uint64(pp.Pid))
		}
		r.Child("programs", item)
	}
}

// ---------------------------------------------------------------------------------------------------
// Conditional access section
// <iso13818-1.pdf> <2.4.4.6>
// -----loop-----
// descriptor()
// --------------
// ---------------------------------------------------------------------------------------------------
type Cat struct {
	Descriptors []descriptor.Descriptor
}

func parseCat(s *Section, body []byte) Body {
	return &Cat{Descriptors: s.decodeDescriptors(body, descriptor.ContextSI)}
}

func (cat *Cat) Name() string { return "CAT" }

func (cat *Cat) fill(r *record.Record) {
	descriptorRecords(r, "descriptors", cat.Descriptors)
}
