// Copyright 2026, Chef.  All rights reserved.
// https://github.com/q191201771/dvbinspect
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package descriptor

import (
	"fmt"

	"github.com/q191201771/dvbinspect/pkg/base"
	"github.com/q191201771/dvbinspect/pkg/field"
	"github.com/q191201771/dvbinspect/pkg/record"
	"github.com/q191201771/naza/pkg/nazalog"
)

var Log = nazalog.GetGlobalLogger()

// Context 同一个tag在不同的表中含义不同，例如0x83在NIT中是私有的logical_channel_descriptor
type Context uint8

const (
	ContextSI Context = iota
	ContextNIT
	ContextDSMCC
	ContextPMT
)

func (c Context) String() string {
	switch c {
	case ContextSI:
		return "SI"
	case ContextNIT:
		return "NIT"
	case ContextDSMCC:
		return "DSMCC"
	case ContextPMT:
		return "PMT"
	}
	return fmt.Sprintf("Context(%d)", uint8(c))
}

// Variant 已解析的descriptor内容，集合是封闭的，未知tag使用Opaque
type Variant interface {
	Name() string

	fill(r *record.Record)
}

type Descriptor struct {
	Tag    uint8
	Length uint8

	// Data payload视图，不含tag和length，可能短于Length（末尾被截断）
	Data  []byte
	Value Variant

	Diagnostics base.Diagnostics
}

func (d *Descriptor) Record() *record.Record {
	r := record.New("descriptor").
		Uint("tag", uint64(d.Tag)).
		Uint("length", uint64(d.Length)).
		Str("name", d.Value.Name())
	d.Value.fill(r)
	r.Diag(d.Diagnostics.Strings()...)
	return r
}

// Find 返回列表中第一个指定类型的descriptor
func Find[T Variant](l []Descriptor) (T, bool) {
	for _, d := range l {
		if v, ok := d.Value.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// FindAll 返回列表中所有指定类型的descriptor
func FindAll[T Variant](l []Descriptor) []T {
	var out []T
	for _, d := range l {
		if v, ok := d.Value.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

// Opaque 未识别的tag，保留原始字节
type Opaque struct {
	Tag  uint8
	Data []byte
}

func (o *Opaque) Name() string { return "unknown" }

func (o *Opaque) fill(r *record.Record) {
	r.Str("data", fmt.Sprintf("% x", o.Data))
}

// DecodeFunc 解析descriptor payload
//
// 返回的Variant不能为nil。解析中途出错时返回已解出的部分以及错误（可以是多个）
type DecodeFunc func(payload []byte) (Variant, []error)

// readerFunc 大部分descriptor的写法：按字段顺序平铺读取，错误交给field.Reader统一收集
func readerFunc[T Variant](name string, fn func(r *field.Reader) T) DecodeFunc {
	return func(payload []byte) (Variant, []error) {
		r := field.NewReader(payload, name)
		v := fn(r)
		return v, r.Errors()
	}
}

func Records(l []Descriptor) []*record.Record {
	out := make([]*record.Record, 0, len(l))
	for i := range l {
		out = append(out, l[i].Record())
	}
	return out
}
