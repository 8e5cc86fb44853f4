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

// Nit
//
// ----------------------------------------
// Network information section
// <ETSI EN 300 468> <5.2.1>
// network_id                   [16b] ** table_id_extension
// ...
// reserved_future_use          [4b]
// network_descriptors_length   [12b]
// descriptor()
// reserved_future_use          [4b]
// transport_stream_loop_length [12b]
// -----loop-----
// transport_stream_id          [16b]
// original_network_id          [16b]
// reserved_future_use          [4b]
// transport_descriptors_length [12b]
// descriptor()
// --------------
// CRC_32                       [32b]
// ----------------------------------------
//
// BAT与NIT布局相同，bouquet_id代替network_id
type Nit struct {
	NetworkId          uint16
	NetworkDescriptors []descriptor.Descriptor
	TransportStreams   []TransportStream
}

type Bat struct {
	BouquetId          uint16
	BouquetDescriptors []descriptor.Descriptor
	TransportStreams   []TransportStream
}

type TransportStream struct {
	TransportStreamId uint16
	OriginalNetworkId uint16
	Descriptors       []descriptor.Descriptor
}

func parseNit(s *Section, body []byte) Body {
	nit := &Nit{NetworkId: s.TableIdExtension}
	nit.NetworkDescriptors, nit.TransportStreams = parseNetworkLoops(s, body, "NIT", descriptor.ContextNIT)
	return nit
}

func parseBat(s *Section, body []byte) Body {
	bat := &Bat{BouquetId: s.TableIdExtension}
	bat.BouquetDescriptors, bat.TransportStreams = parseNetworkLoops(s, body, "BAT", descriptor.ContextSI)
	return bat
}

func parseNetworkLoops(s *Section, body []byte, unit string, ctx descriptor.Context) ([]descriptor.Descriptor, []TransportStream) {
	r := field.NewReader(body, unit)
	r.Skip(4)
	ndl := r.Bits16(12)
	first := s.decodeDescriptors(r.Bytes(int(ndl)), ctx)
	r.Skip(4)
	tsll := r.Bits16(12)

	var streams []TransportStream
	lr := field.NewReader(r.Bytes(int(tsll)), unit+" transport_stream_loop")
	for lr.Remaining() > 0 {
		var ts TransportStream
		ts.TransportStreamId = lr.U16()
		ts.OriginalNetworkId = lr.U16()
		lr.Skip(4)
		tdl := lr.Bits16(12)
		if lr.Err() != nil {
			break
		}
		ts.Descriptors = s.decodeDescriptors(lr.Bytes(int(tdl)), ctx)
		streams = append(streams, ts)
	}
	s.finish(r)
	s.finish(lr)
	return first, streams
}

func (nit *Nit) Name() string { return "NIT" }

// SearchTransportStream
func (nit *Nit) SearchTransportStream(tsId uint16) *TransportStream {
	return searchTransportStream(nit.TransportStreams, tsId)
}

func (nit *Nit) fill(r *record.Record) {
	r.Uint("network_id", uint64(nit.NetworkId))
	descriptorRecords(r, "network_descriptors", nit.NetworkDescriptors)
	fillTransportStreams(r, nit.TransportStreams)
}

func (bat *Bat) Name() string { return "BAT" }

func (bat *Bat) SearchTransportStream(tsId uint16) *TransportStream {
	return searchTransportStream(bat.TransportStreams, tsId)
}

func (bat *Bat) fill(r *record.Record) {
	r.Uint("bouquet_id", uint64(bat.BouquetId))
	descriptorRecords(r, "bouquet_descriptors", bat.BouquetDescriptors)
	fillTransportStreams(r, bat.TransportStreams)
}

func searchTransportStream(l []TransportStream, tsId uint16) *TransportStream {
	for i := range l {
		if l[i].TransportStreamId == tsId {
			return &l[i]
		}
	}
	return nil
}

func fillTransportStreams(r *record.Record, l []TransportStream) {
	for _, ts := range l {
		item := record.New("transport_stream").
			Uint("transport_stream_id", uint64(ts.TransportStreamId)).
			Uint("original_network_id", uint64(ts.OriginalNetworkId))
		descriptorRecords(item, "transport_descriptors", ts.Descriptors)
		r.Child("transport_streams", item)
	}
}
