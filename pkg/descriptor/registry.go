// Copyright 2026, Chef.  All rights reserved.
// https://github.com/q191201771/dvbinspect
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package descriptor

import (
	"github.com/q191201771/dvbinspect/pkg/base"
)

// Registry tag到解析函数的映射
//
// 构造完成后只读，可以被多个goroutine同时使用
type Registry struct {
	common  map[uint8]DecodeFunc
	context map[Context]map[uint8]DecodeFunc
}

func NewRegistry() *Registry {
	return &Registry{
		common:  make(map[uint8]DecodeFunc),
		context: make(map[Context]map[uint8]DecodeFunc),
	}
}

// Register 注册所有context通用的解析函数
func (r *Registry) Register(tag uint8, fn DecodeFunc) *Registry {
	r.common[tag] = fn
	return r
}

// RegisterContext 注册只在ctx中生效的解析函数，优先于通用的
func (r *Registry) RegisterContext(ctx Context, tag uint8, fn DecodeFunc) *Registry {
	m, ok := r.context[ctx]
	if !ok {
		m = make(map[uint8]DecodeFunc)
		r.context[ctx] = m
	}
	m[tag] = fn
	return r
}

func (r *Registry) Lookup(ctx Context, tag uint8) (DecodeFunc, bool) {
	if m, ok := r.context[ctx]; ok {
		if fn, ok := m[tag]; ok {
			return fn, true
		}
	}
	fn, ok := r.common[tag]
	return fn, ok
}

// DecodeList 解析descriptor loop
//
// 每个entry严格前进2+length字节，不管解析函数实际读取了多少。
// 最后一个entry的length超出region时，用实际存在的字节解析，并且带上ErrTruncatedInput
//
// @return diags: 列表级别的诊断信息，例如末尾只剩1个字节
func (r *Registry) DecodeList(region []byte, ctx Context) (list []Descriptor, diags base.Diagnostics) {
	pos := 0
	for pos < len(region) {
		if len(region)-pos < 2 {
			diags.Add("descriptor_loop", pos, base.NewErrTruncatedInput(2, len(region)-pos, "descriptor header"))
			break
		}
		tag := region[pos]
		length := int(region[pos+1])
		start := pos + 2
		end := start + length
		truncated := false
		if end > len(region) {
			end = len(region)
			truncated = true
		}

		d := r.decodeOne(ctx, tag, uint8(length), region[start:end:end], start)
		if truncated {
			d.Diagnostics.Add(d.Value.Name(), start, base.NewErrTruncatedInput(length, end-start, "descriptor"))
		}
		list = append(list, d)

		pos += 2 + length
	}
	return
}

func (r *Registry) decodeOne(ctx Context, tag uint8, length uint8, payload []byte, offset int) Descriptor {
	d := Descriptor{
		Tag:    tag,
		Length: length,
		Data:   payload,
	}
	fn, ok := r.Lookup(ctx, tag)
	if !ok {
		Log.Debugf("unknown descriptor. tag=0x%02x, length=%d, context=%s", tag, length, ctx)
		d.Value = &Opaque{Tag: tag, Data: payload}
		return d
	}

	v, errs := fn(payload)
	d.Value = v
	for _, err := range errs {
		// 末尾截断时由DecodeList统一报告
		if len(payload) < int(length) && base.IsTruncated(err) {
			continue
		}
		d.Diagnostics.Add(v.Name(), offset, err)
	}
	return d
}

// Default 包含本package实现的所有descriptor
var Default = newDefaultRegistry()

func DecodeList(region []byte, ctx Context) ([]Descriptor, base.Diagnostics) {
	return Default.DecodeList(region, ctx)
}

func newDefaultRegistry() *Registry {
	r := NewRegistry()

	// ISO/IEC 13818-1
	r.Register(TagRegistration, readerFunc("registration", decodeRegistration))
	r.Register(TagCA, readerFunc("CA", decodeCA))
	r.Register(TagISO639Language, readerFunc("ISO_639_language", decodeISO639Language))
	r.Register(TagMaximumBitrate, readerFunc("maximum_bitrate", decodeMaximumBitrate))
	r.Register(TagAVCVideo, readerFunc("AVC_video", decodeAVCVideo))

	// ETSI EN 300 468
	r.Register(TagNetworkName, readerFunc("network_name", decodeNetworkName))
	r.Register(TagServiceList, readerFunc("service_list", decodeServiceList))
	r.Register(TagSatelliteDelivery, readerFunc("satellite_delivery_system", decodeSatelliteDelivery))
	r.Register(TagCableDelivery, readerFunc("cable_delivery_system", decodeCableDelivery))
	r.Register(TagVBITeletext, readerFunc("VBI_teletext", decodeTeletext))
	r.Register(TagBouquetName, readerFunc("bouquet_name", decodeBouquetName))
	r.Register(TagService, readerFunc("service", decodeService))
	r.Register(TagShortEvent, readerFunc("short_event", decodeShortEvent))
	r.Register(TagExtendedEvent, readerFunc("extended_event", decodeExtendedEvent))
	r.Register(TagComponent, readerFunc("component", decodeComponent))
	r.Register(TagStreamIdentifier, readerFunc("stream_identifier", decodeStreamIdentifier))
	r.Register(TagCAIdentifier, readerFunc("CA_identifier", decodeCAIdentifier))
	r.Register(TagContent, readerFunc("content", decodeContent))
	r.Register(TagParentalRating, readerFunc("parental_rating", decodeParentalRating))
	r.Register(TagTeletext, readerFunc("teletext", decodeTeletext))
	r.Register(TagLocalTimeOffset, readerFunc("local_time_offset", decodeLocalTimeOffset))
	r.Register(TagSubtitling, readerFunc("subtitling", decodeSubtitling))
	r.Register(TagTerrestrialDelivery, readerFunc("terrestrial_delivery_system", decodeTerrestrialDelivery))
	r.Register(TagPrivateDataSpecifier, readerFunc("private_data_specifier", decodePrivateDataSpecifier))
	r.Register(TagDataBroadcastId, readerFunc("data_broadcast_id", decodeDataBroadcastId))
	r.Register(TagAC3, readerFunc("AC-3", decodeAC3))
	r.Register(TagEnhancedAC3, readerFunc("enhanced_AC-3", decodeEnhancedAC3))
	r.Register(TagExtension, readerFunc("extension", decodeExtension))

	// 私有的，只在NIT中出现
	r.RegisterContext(ContextNIT, TagLogicalChannel, readerFunc("logical_channel", decodeLogicalChannel))
	r.RegisterContext(ContextNIT, TagHDSimulcastLogicalChannel, readerFunc("HD_simulcast_logical_channel", decodeHDSimulcastLogicalChannel))

	// ISO/IEC 13818-6 stream descriptors，与MPEG的0x17 ~ 0x1A含义不同
	r.RegisterContext(ContextDSMCC, TagNPTReference, readerFunc("NPT_reference", decodeNPTReference))
	r.RegisterContext(ContextDSMCC, TagNPTEndpoint, readerFunc("NPT_endpoint", decodeNPTEndpoint))
	r.RegisterContext(ContextDSMCC, TagStreamMode, readerFunc("stream_mode", decodeStreamMode))
	r.RegisterContext(ContextDSMCC, TagStreamEvent, readerFunc("stream_event", decodeStreamEvent))

	return r
}
