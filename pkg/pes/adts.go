// Copyright 2026, Chef.  All rights reserved.
// https://github.com/q191201771/dvbinspect
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package pes

import (
	"github.com/q191201771/dvbinspect/pkg/aac"
	"github.com/q191201771/dvbinspect/pkg/record"
)

type AdtsFrame struct {
	aac.AdtsHeaderContext
}

// DecodeAdtsFrame aac_frame_length与同步字之间的距离不一致时，记为诊断信息
func DecodeAdtsFrame(frame []byte) (FrameBody, []error) {
	var v AdtsFrame
	if err := v.Unpack(frame); err != nil {
		return nil, []error{err}
	}
	if int(v.AdtsLength) != len(frame) {
		return &v, []error{frameLengthMismatch(int(v.AdtsLength), len(frame))}
	}
	return &v, nil
}

func (v *AdtsFrame) Name() string { return "ADTS frame" }

func (v *AdtsFrame) Fill(r *record.Record) {
	v.AdtsHeaderContext.Fill(r)
}
