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
	"github.com/q191201771/dvbinspect/pkg/record"
)

// DsmccStream
//
// <iso13818-6.pdf> <9.2.7> table_id为0x3D的section携带stream descriptors
type DsmccStream struct {
	Descriptors []descriptor.Descriptor
}

func parseDsmccStream(s *Section, body []byte) Body {
	return &DsmccStream{Descriptors: s.decodeDescriptors(body, descriptor.ContextDSMCC)}
}

func (d *DsmccStream) Name() string { return "DSM-CC stream descriptors" }

func (d *DsmccStream) fill(r *record.Record) {
	descriptorRecords(r, "descriptors", d.Descriptors)
}
