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
)

// 跨表的查询，只看已经到达的section，不要求table完整

func (ts *Tables) nits(networkId uint16) []*Table {
	var out []*Table
	for _, tid := range []uint8{TableIdNitActual, TableIdNitOther} {
		if t := ts.Table(Key{TableId: tid, Id: networkId}); t != nil {
			out = append(out, t)
		}
	}
	return out
}

func (ts *Tables) eachNit(networkId uint16, fn func(nit *Nit) bool) {
	for _, t := range ts.nits(networkId) {
		for _, s := range t.Sections() {
			if s == nil {
				continue
			}
			if nit, ok := s.Body.(*Nit); ok && !fn(nit) {
				return
			}
		}
	}
}

// NetworkName network_name_descriptor，actual优先
func (ts *Tables) NetworkName(networkId uint16) (name string, ok bool) {
	ts.eachNit(networkId, func(nit *Nit) bool {
		if v, found := descriptor.Find[*descriptor.NetworkName](nit.NetworkDescriptors); found {
			name, ok = v.NetworkName, true
			return false
		}
		return true
	})
	return
}

// LCN logical_channel_descriptor中serviceId对应的逻辑频道号
func (ts *Tables) LCN(networkId, tsId, serviceId uint16) (lcn uint16, ok bool) {
	ts.eachNit(networkId, func(nit *Nit) bool {
		stream := nit.SearchTransportStream(tsId)
		if stream == nil {
			return true
		}
		for _, d := range descriptor.FindAll[*descriptor.LogicalChannel](stream.Descriptors) {
			for _, ch := range d.Channels {
				if ch.ServiceId == serviceId {
					lcn, ok = ch.Number, true
					return false
				}
			}
		}
		return true
	})
	return
}

// HDSimulcastLCN 同LCN，使用HD_simulcast_logical_channel_descriptor
func (ts *Tables) HDSimulcastLCN(networkId, tsId, serviceId uint16) (lcn uint16, ok bool) {
	ts.eachNit(networkId, func(nit *Nit) bool {
		stream := nit.SearchTransportStream(tsId)
		if stream == nil {
			return true
		}
		for _, d := range descriptor.FindAll[*descriptor.HDSimulcastLogicalChannel](stream.Descriptors) {
			for _, ch := range d.Channels {
				if ch.ServiceId == serviceId {
					lcn, ok = ch.Number, true
					return false
				}
			}
		}
		return true
	})
	return
}

// Exists NIT中指定network的第section个section是否已经到达
func (ts *Tables) Exists(networkId uint16, section uint8) bool {
	for _, t := range ts.nits(networkId) {
		sections := t.Sections()
		if int(section) < len(sections) && sections[section] != nil {
			return true
		}
	}
	return false
}

// ActualNetworkID table_id为0x40的NIT的network_id
func (ts *Tables) ActualNetworkID() (uint16, bool) {
	for _, t := range ts.ByTableId(TableIdNitActual) {
		f, _ := t.Filled()
		if f > 0 {
			return t.key.Id, true
		}
	}
	return 0, false
}

// NetworkDescriptors 所有已到达section的network descriptors，按section_number顺序
func (ts *Tables) NetworkDescriptors(networkId uint16) []descriptor.Descriptor {
	var out []descriptor.Descriptor
	ts.eachNit(networkId, func(nit *Nit) bool {
		out = append(out, nit.NetworkDescriptors...)
		return true
	})
	return out
}

// TransportStream NIT的transport_stream_loop中的一项
func (ts *Tables) TransportStream(networkId, tsId uint16) *TransportStream {
	var ret *TransportStream
	ts.eachNit(networkId, func(nit *Nit) bool {
		ret = nit.SearchTransportStream(tsId)
		return ret == nil
	})
	return ret
}

// BouquetName bouquet_name_descriptor
func (ts *Tables) BouquetName(bouquetId uint16) (string, bool) {
	t := ts.Table(Key{TableId: TableIdBat, Id: bouquetId})
	if t == nil {
		return "", false
	}
	for _, s := range t.Sections() {
		if s == nil {
			continue
		}
		if bat, ok := s.Body.(*Bat); ok {
			if v, found := descriptor.Find[*descriptor.BouquetName](bat.BouquetDescriptors); found {
				return v.BouquetName, true
			}
		}
	}
	return "", false
}

// ServiceName SDT中service_descriptor的service_name，actual优先
func (ts *Tables) ServiceName(onid, tsId, serviceId uint16) (string, bool) {
	for _, tid := range []uint8{TableIdSdtActual, TableIdSdtOther} {
		t := ts.Table(Key{TableId: tid, Id: tsId, OriginalNetworkId: onid})
		if t == nil {
			continue
		}
		for _, s := range t.Sections() {
			if s == nil {
				continue
			}
			sdt, ok := s.Body.(*Sdt)
			if !ok {
				continue
			}
			if svc := sdt.SearchService(serviceId); svc != nil {
				if v, found := descriptor.Find[*descriptor.Service](svc.Descriptors); found {
					return v.ServiceName, true
				}
			}
		}
	}
	return "", false
}

// PmtPid 在所有PAT中查找program_number对应的PMT PID
func (ts *Tables) PmtPid(programNumber uint16) (uint16, bool) {
	for _, t := range ts.ByTableId(TableIdPat) {
		for _, s := range t.Sections() {
			if s == nil {
				continue
			}
			if pat, ok := s.Body.(*Pat); ok {
				if pid, found := pat.SearchPid(programNumber); found {
					return pid, true
				}
			}
		}
	}
	return 0, false
}

// Pmt 已到达的program_number对应的PMT
func (ts *Tables) Pmt(programNumber uint16) *Pmt {
	t := ts.Table(Key{TableId: TableIdPmt, Id: programNumber})
	if t == nil {
		return nil
	}
	for _, s := range t.Sections() {
		if s == nil {
			continue
		}
		if pmt, ok := s.Body.(*Pmt); ok {
			return pmt
		}
	}
	return nil
}

// Pmts 所有已到达的PMT，按program_number排序
func (ts *Tables) Pmts() []*Pmt {
	var out []*Pmt
	for _, t := range ts.ByTableId(TableIdPmt) {
		t.Each(func(s *Section) {
			if pmt, ok := s.Body.(*Pmt); ok {
				out = append(out, pmt)
			}
		})
	}
	return out
}
