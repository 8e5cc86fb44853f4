// Copyright 2026, Chef.  All rights reserved.
// https://github.com/q191201771/dvbinspect
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package descriptor

import (
	"github.com/q191201771/dvbinspect/pkg/field"
	"github.com/q191201771/dvbinspect/pkg/record"
)

// 逻辑频道号，EICTA E-Book / NorDig
//
// -----loop-----
// service_id               [16b]
// visible_service_flag     [1b]
// reserved                 [5b]
// logical_channel_number   [10b]
// --------------
//
// 0x83和0x88的布局一样，0x88用于HD simulcast

type LogicalChannelEntry struct {
	ServiceId uint16
	Visible   bool
	Number    uint16
}

func readLogicalChannels(r *field.Reader) []LogicalChannelEntry {
	var out []LogicalChannelEntry
	for r.Remaining() > 0 {
		var e LogicalChannelEntry
		e.ServiceId = r.U16()
		e.Visible = r.Flag()
		r.Skip(5)
		e.Number = r.Bits16(10)
		if r.Err() != nil {
			break
		}
		out = append(out, e)
	}
	return out
}

func fillLogicalChannels(rec *record.Record, l []LogicalChannelEntry) {
	for _, e := range l {
		rec.Child("channels", record.New("channel").
			Uint("service_id", uint64(e.ServiceId)).
			Bool("visible_service_flag", e.Visible).
			Uint("logical_channel_number", uint64(e.Number)))
	}
}

type LogicalChannel struct {
	Channels []LogicalChannelEntry
}

func decodeLogicalChannel(r *field.Reader) *LogicalChannel {
	return &LogicalChannel{Channels: readLogicalChannels(r)}
}

func (v *LogicalChannel) Name() string { return "logical_channel" }

func (v *LogicalChannel) fill(rec *record.Record) { fillLogicalChannels(rec, v.Channels) }

type HDSimulcastLogicalChannel struct {
	Channels []LogicalChannelEntry
}

func decodeHDSimulcastLogicalChannel(r *field.Reader) *HDSimulcastLogicalChannel {
	return &HDSimulcastLogicalChannel{Channels: readLogicalChannels(r)}
}

func (v *HDSimulcastLogicalChannel) Name() string { return "HD_simulcast_logical_channel" }

func (v *HDSimulcastLogicalChannel) fill(rec *record.Record) { fillLogicalChannels(rec, v.Channels) }
