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

// Sdt
//
// ----------------------------------------
// Service description section
// <ETSI EN 300 468> <5.2.3>
// transport_stream_id        [16b] ** table_id_extension
// ...
// original_network_id        [16b]
// reserved_future_use        [8b]
// -----loop-----
// service_id                 [16b]
// reserved_future_use        [6b]
// EIT_schedule_flag          [1b]
// EIT_present_following_flag [1b]
// running_status             [3b]
// free_CA_mode               [1b]
// descriptors_loop_length    [12b]
// descriptor()
// --------------
// CRC_32                     [32b]
// ----------------------------------------
type Sdt struct {
	TransportStreamId uint16
	OriginalNetworkId uint16
	Services          []SdtService
}

type SdtService struct {
	ServiceId     uint16
	EitSchedule   bool
	EitPf         bool
	RunningStatus uint8
	FreeCaMode    bool
	Descriptors   []descriptor.Descriptor
}

func parseSdt(s *Section, body []byte) Body {
	sdt := &Sdt{TransportStreamId: s.TableIdExtension}
	r := field.NewReader(body, "SDT")
	sdt.OriginalNetworkId = r.U16()
	r.Skip(8)
	for r.Remaining() > 0 {
		var svc SdtService
		svc.ServiceId = r.U16()
		r.Skip(6)
		svc.EitSchedule = r.Flag()
		svc.EitPf = r.Flag()
		svc.RunningStatus = r.Bits8(3)
		svc.FreeCaMode = r.Flag()
		dll := r.Bits16(12)
		if r.Err() != nil {
			break
		}
		svc.Descriptors = s.decodeDescriptors(r.Bytes(int(dll)), descriptor.ContextSI)
		sdt.Services = append(sdt.Services, svc)
	}
	s.finish(r)
	return sdt
}

func (sdt *Sdt) Name() string { return "SDT" }

func (sdt *Sdt) SearchService(serviceId uint16) *SdtService {
	for i := range sdt.Services {
		if sdt.Services[i].ServiceId == serviceId {
			return &sdt.Services[i]
		}
	}
	return nil
}

func (sdt *Sdt) fill(r *record.Record) {
	r.Uint("transport_stream_id", uint64(sdt.TransportStreamId)).
		Uint("original_network_id", uint64(sdt.OriginalNetworkId))
	for _, svc := range sdt.Services {
		item := record.New("service").
			Uint("service_id", uint64(svc.ServiceId)).
			Bool("EIT_schedule_flag", svc.EitSchedule).
			Bool("EIT_present_following_flag", svc.EitPf).
			Uint("running_status", uint64(svc.RunningStatus)).
			Str("running_status_text", RunningStatusText(svc.RunningStatus)).
			Bool("free_CA_mode", svc.FreeCaMode)
		descriptorRecords(item, "descriptors", svc.Descriptors)
		r.Child("services", item)
	}
}

// RunningStatusText <ETSI EN 300 468> <table 6>
func RunningStatusText(s uint8) string {
	switch s {
	case 0:
		return "undefined"
	case 1:
		return "not running"
	case 2:
		return "starts in a few seconds"
	case 3:
		return "pausing"
	case 4:
		return "running"
	case 5:
		return "service off-air"
	}
	return "reserved"
}
