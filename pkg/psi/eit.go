// Copyright 2026, Chef.  All rights reserved.
// https://github.com/q191201771/dvbinspect
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package psi

import (
	"time"

	"github.com/q191201771/dvbinspect/pkg/descriptor"
	"github.com/q191201771/dvbinspect/pkg/field"
	"github.com/q191201771/dvbinspect/pkg/record"
)

// Eit
//
// ----------------------------------------
// Event information section
// <ETSI EN 300 468> <5.2.4>
// service_id                  [16b] ** table_id_extension
// ...
// transport_stream_id         [16b]
// original_network_id         [16b]
// segment_last_section_number [8b]
// last_table_id               [8b]
// -----loop-----
// event_id                    [16b]
// start_time                  [40b]
// duration                    [24b]
// running_status              [3b]
// free_CA_mode                [1b]
// descriptors_loop_length     [12b]
// descriptor()
// --------------
// CRC_32                      [32b]
// ----------------------------------------
type Eit struct {
	ServiceId                uint16
	TransportStreamId        uint16
	OriginalNetworkId        uint16
	SegmentLastSectionNumber uint8
	LastTableId              uint8
	Events                   []EitEvent
}

type EitEvent struct {
	EventId       uint16
	StartTime     field.DateTime
	Duration      time.Duration
	RunningStatus uint8
	FreeCaMode    bool
	Descriptors   []descriptor.Descriptor
}

func parseEit(s *Section, body []byte) Body {
	eit := &Eit{ServiceId: s.TableIdExtension}
	r := field.NewReader(body, "EIT")
	eit.TransportStreamId = r.U16()
	eit.OriginalNetworkId = r.U16()
	eit.SegmentLastSectionNumber = r.U8()
	eit.LastTableId = r.U8()
	for r.Remaining() > 0 {
		var ev EitEvent
		ev.EventId = r.U16()
		ev.StartTime = r.UtcDateTime()
		ev.Duration = r.Duration(3)
		ev.RunningStatus = r.Bits8(3)
		ev.FreeCaMode = r.Flag()
		dll := r.Bits16(12)
		if r.Err() != nil {
			break
		}
		ev.Descriptors = s.decodeDescriptors(r.Bytes(int(dll)), descriptor.ContextSI)
		eit.Events = append(eit.Events, ev)
	}
	s.finish(r)
	return eit
}

func (eit *Eit) Name() string { return "EIT" }

func (eit *Eit) fill(r *record.Record) {
	r.Uint("service_id", uint64(eit.ServiceId)).
		Uint("transport_stream_id", uint64(eit.TransportStreamId)).
		Uint("original_network_id", uint64(eit.OriginalNetworkId)).
		Uint("segment_last_section_number", uint64(eit.SegmentLastSectionNumber)).
		Uint("last_table_id", uint64(eit.LastTableId))
	for _, ev := range eit.Events {
		item := record.New("event").
			Uint("event_id", uint64(ev.EventId)).
			Str("start_time", ev.StartTime.String()).
			Str("duration", ev.Duration.String()).
			Uint("running_status", uint64(ev.RunningStatus)).
			Str("running_status_text", RunningStatusText(ev.RunningStatus)).
			Bool("free_CA_mode", ev.FreeCaMode)
		if se, ok := descriptor.Find[*descriptor.ShortEvent](ev.Descriptors); ok {
			item.Str("event_name", se.EventName)
		}
		descriptorRecords(item, "descriptors", ev.Descriptors)
		r.Child("events", item)
	}
}
