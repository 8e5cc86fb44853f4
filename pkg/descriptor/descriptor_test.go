// Copyright 2026, Chef.  All rights reserved.
// https://github.com/q191201771/dvbinspect
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package descriptor_test

import (
	"testing"

	"github.com/q191201771/dvbinspect/pkg/base"
	"github.com/q191201771/dvbinspect/pkg/descriptor"
	"github.com/q191201771/naza/pkg/assert"
)

func TestDecodeList(t *testing.T) {
	region := []byte{
		0x48, 0x08, 0x01, 0x02, 'A', 'B', 0x03, 'X', 'Y', 'Z', // service
		0xFE, 0x02, 0xAA, 0xBB, // unknown
		0x52, 0x03, 0x05, 0x00, 0x00, // stream_identifier, only 1 byte is used
		0x40, 0x02, 'N', 'N', // network_name
	}
	l, diags := descriptor.DecodeList(region, descriptor.ContextSI)
	assert.Equal(t, 0, len(diags))
	assert.Equal(t, 4, len(l))

	svc, ok := l[0].Value.(*descriptor.Service)
	assert.Equal(t, true, ok)
	assert.Equal(t, uint8(1), svc.ServiceType)
	assert.Equal(t, "AB", svc.ProviderName)
	assert.Equal(t, "XYZ", svc.ServiceName)

	op, ok := l[1].Value.(*descriptor.Opaque)
	assert.Equal(t, true, ok)
	assert.Equal(t, uint8(0xFE), op.Tag)
	assert.Equal(t, []byte{0xAA, 0xBB}, op.Data)

	si, ok := l[2].Value.(*descriptor.StreamIdentifier)
	assert.Equal(t, true, ok)
	assert.Equal(t, uint8(5), si.ComponentTag)
	assert.Equal(t, uint8(3), l[2].Length)

	nn, ok := descriptor.Find[*descriptor.NetworkName](l)
	assert.Equal(t, true, ok)
	assert.Equal(t, "NN", nn.NetworkName)

	consumed := 0
	for _, d := range l {
		consumed += 2 + int(d.Length)
	}
	assert.Equal(t, len(region), consumed)
}

func TestDecodeListTruncated(t *testing.T) {
	// 最后一个descriptor声明5字节，实际只有2字节
	l, diags := descriptor.DecodeList([]byte{0x52, 0x01, 0x07, 0x40, 0x05, 'a', 'b'}, descriptor.ContextSI)
	assert.Equal(t, 0, len(diags))
	assert.Equal(t, 2, len(l))
	nn, ok := l[1].Value.(*descriptor.NetworkName)
	assert.Equal(t, true, ok)
	assert.Equal(t, "ab", nn.NetworkName)
	assert.Equal(t, 1, len(l[1].Diagnostics))
	assert.Equal(t, 1, l[1].Diagnostics.Count(base.ErrTruncatedInput))

	// 末尾只剩1个字节，没有length
	l, diags = descriptor.DecodeList([]byte{0x52, 0x01, 0x07, 0x40}, descriptor.ContextSI)
	assert.Equal(t, 1, len(l))
	assert.Equal(t, 1, diags.Count(base.ErrTruncatedInput))
}

func TestShortPayload(t *testing.T) {
	// provider name声明5字节，但是descriptor只有2字节
	l, _ := descriptor.DecodeList([]byte{0x48, 0x02, 0x01, 0x05}, descriptor.ContextSI)
	assert.Equal(t, 1, len(l))
	svc := l[0].Value.(*descriptor.Service)
	assert.Equal(t, uint8(1), svc.ServiceType)
	assert.Equal(t, "", svc.ProviderName)
	assert.Equal(t, 1, l[0].Diagnostics.Count(base.ErrTruncatedInput))

	r := l[0].Record()
	assert.Equal(t, 1, r.DiagnosticCount())
	f, _ := r.Field("name")
	assert.Equal(t, "service", f.String)
}

func TestContext(t *testing.T) {
	lcn := []byte{0x83, 0x04, 0x00, 0x01, 0xFC, 0x0A}

	l, _ := descriptor.DecodeList(lcn, descriptor.ContextSI)
	_, ok := l[0].Value.(*descriptor.Opaque)
	assert.Equal(t, true, ok)

	l, _ = descriptor.DecodeList(lcn, descriptor.ContextNIT)
	v, ok := l[0].Value.(*descriptor.LogicalChannel)
	assert.Equal(t, true, ok)
	assert.Equal(t, 1, len(v.Channels))
	assert.Equal(t, uint16(1), v.Channels[0].ServiceId)
	assert.Equal(t, true, v.Channels[0].Visible)
	assert.Equal(t, uint16(10), v.Channels[0].Number)

	mode := []byte{0x19, 0x02, 0x02, 0xFF}
	l, _ = descriptor.DecodeList(mode, descriptor.ContextSI)
	_, ok = l[0].Value.(*descriptor.Opaque)
	assert.Equal(t, true, ok)
	l, _ = descriptor.DecodeList(mode, descriptor.ContextDSMCC)
	sm, ok := l[0].Value.(*descriptor.StreamMode)
	assert.Equal(t, true, ok)
	assert.Equal(t, uint8(2), sm.StreamMode)

	// 通用的tag在所有context中都有效
	l, _ = descriptor.DecodeList([]byte{0x52, 0x01, 0x07}, descriptor.ContextPMT)
	_, ok = l[0].Value.(*descriptor.StreamIdentifier)
	assert.Equal(t, true, ok)
}

func TestRegistry(t *testing.T) {
	r := descriptor.NewRegistry()
	l, _ := r.DecodeList([]byte{0x48, 0x01, 0x01}, descriptor.ContextSI)
	_, ok := l[0].Value.(*descriptor.Opaque)
	assert.Equal(t, true, ok)

	_, ok = descriptor.Default.Lookup(descriptor.ContextSI, descriptor.TagService)
	assert.Equal(t, true, ok)
	_, ok = descriptor.Default.Lookup(descriptor.ContextSI, descriptor.TagLogicalChannel)
	assert.Equal(t, false, ok)
}

func TestSubtitlingAndTeletext(t *testing.T) {
	region := []byte{
		0x59, 0x08, 'e', 'n', 'g', 0x10, 0x00, 0x01, 0x00, 0x02,
		0x56, 0x05, 'd', 'e', 'u', 0x10, 0x88,
	}
	l, _ := descriptor.DecodeList(region, descriptor.ContextPMT)
	sub, ok := descriptor.Find[*descriptor.Subtitling](l)
	assert.Equal(t, true, ok)
	assert.Equal(t, "eng", sub.Entries[0].Language)
	assert.Equal(t, uint8(0x10), sub.Entries[0].SubtitlingType)
	assert.Equal(t, uint16(1), sub.Entries[0].CompositionPageId)
	assert.Equal(t, uint16(2), sub.Entries[0].AncillaryPageId)

	tt, ok := descriptor.Find[*descriptor.Teletext](l)
	assert.Equal(t, true, ok)
	assert.Equal(t, uint8(2), tt.Pages[0].Type)
	assert.Equal(t, 888, tt.Pages[0].Page())
}

func TestAC3(t *testing.T) {
	// component_type + bsid
	l, _ := descriptor.DecodeList([]byte{0x6a, 0x03, 0xC0, 0x42, 0x08, 0x7a, 0x02, 0x08, 0x01}, descriptor.ContextPMT)
	ac3 := l[0].Value.(*descriptor.AC3)
	assert.Equal(t, uint8(0x42), *ac3.ComponentType)
	assert.Equal(t, uint8(0x08), *ac3.Bsid)
	assert.Equal(t, true, ac3.MainId == nil)

	eac3 := l[1].Value.(*descriptor.EnhancedAC3)
	assert.Equal(t, true, eac3.MixInfoExists)
	assert.Equal(t, true, eac3.ComponentType == nil)
	assert.Equal(t, []byte{0x01}, eac3.AdditionalInfo)
}

func TestLocalTimeOffset(t *testing.T) {
	payload := []byte{
		'G', 'B', 'R', 0x02, 0x01, 0x00, // +01:00
		0x9C, 0x40, 0x12, 0x00, 0x00,
		0x02, 0x00,
	}
	region := append([]byte{0x58, byte(len(payload))}, payload...)
	l, _ := descriptor.DecodeList(region, descriptor.ContextSI)
	lto := l[0].Value.(*descriptor.LocalTimeOffset)
	assert.Equal(t, 1, len(lto.Entries))
	assert.Equal(t, "GBR", lto.Entries[0].CountryCode)
	assert.Equal(t, false, lto.Entries[0].Negative)
	assert.Equal(t, "1h0m0s", lto.Entries[0].Offset.String())
	assert.Equal(t, "1968-05-24 12:00:00", lto.Entries[0].TimeOfChange.String())
	assert.Equal(t, "2h0m0s", lto.Entries[0].NextTimeOffset.String())
}
