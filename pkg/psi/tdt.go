// Copyright 2026, Chef.  All rights reserved.
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

// <ETSI EN 300 468> <5.2.5> Time and date section, 短格式，没有CRC
// UTC_time                 [40b]
//
// <ETSI EN 300 468> <5.2.6> Time offset section, 短格式，有CRC
// UTC_time                 [40b]
// reserved                 [4b]
// descriptors_loop_length  [12b]
// descriptor()
// CRC_32                   [32b]

type Tdt struct {
	UtcTime field.DateTime
}

func parseTdt(s *Section, body []byte) Body {
	r := field.NewReader(body, "TDT")
	tdt := &Tdt{UtcTime: r.UtcDateTime()}
	s.finish(r)
	return tdt
}

func (tdt *Tdt) Name() string { return "TDT" }

func (tdt *Tdt) fill(r *record.Record) {
	r.Str("UTC_time", tdt.UtcTime.String())
}

type Tot struct {
	UtcTime     field.DateTime
	Descriptors []descriptor.Descriptor
}

func parseTot(s *Section, body []byte) Body {
	r := field.NewReader(body, "TOT")
	tot := &Tot{UtcTime: r.UtcDateTime()}
	r.Skip(4)
	dll := r.Bits16(12)
	tot.Descriptors = s.decodeDescriptors(r.Bytes(int(dll)), descriptor.ContextSI)
	s.finish(r)
	return tot
}

func (tot *Tot) Name() string { return "TOT" }

func (tot *Tot) fill(r *record.Record) {
	r.Str("UTC_time", tot.UtcTime.String())
	descriptorRecords(r, "descriptors", tot.Descriptors)
}
