// Copyright 2026, Chef.  All rights reserved.
// https://github.com/q191201771/dvbinspect
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

// Package record 解码结果对外暴露的唯一形式
//
// 每个section、descriptor、segment、frame、nal unit都可以转换为一个Record:
// 一个kind标签，一组有名字有类型的字段（整数、字符串、布尔），以及有名字的子Record列表
// 字段顺序以及命名不是线上字节格式的一部分
package record

import (
	"fmt"
	"strings"
)

type FieldType uint8

const (
	FieldTypeUint FieldType = iota + 1
	FieldTypeInt
	FieldTypeString
	FieldTypeBool
)

type Field struct {
	Name string
	Type FieldType

	Uint   uint64
	Int    int64
	String string
	Bool   bool
}

func (f Field) Value() interface{} {
	switch f.Type {
	case FieldTypeUint:
		return f.Uint
	case FieldTypeInt:
		return f.Int
	case FieldTypeString:
		return f.String
	case FieldTypeBool:
		return f.Bool
	}
	return nil
}

type List struct {
	Name  string
	Items []*Record
}

type Record struct {
	Kind        string
	Fields      []Field
	Lists       []List
	Diagnostics []string
}

func New(kind string) *Record {
	return &Record{Kind: kind}
}

func (r *Record) Uint(name string, v uint64) *Record {
	r.Fields = append(r.Fields, Field{Name: name, Type: FieldTypeUint, Uint: v})
	return r
}

func (r *Record) Int(name string, v int64) *Record {
	r.Fields = append(r.Fields, Field{Name: name, Type: FieldTypeInt, Int: v})
	return r
}

func (r *Record) Str(name string, v string) *Record {
	r.Fields = append(r.Fields, Field{Name: name, Type: FieldTypeString, String: v})
	return r
}

func (r *Record) Bool(name string, v bool) *Record {
	r.Fields = append(r.Fields, Field{Name: name, Type: FieldTypeBool, Bool: v})
	return r
}

// Child appends items to the named list, creating it on first use. Nil items are dropped.
func (r *Record) Child(listName string, items ...*Record) *Record {
	idx := -1
	for i := range r.Lists {
		if r.Lists[i].Name == listName {
			idx = i
			break
		}
	}
	if idx == -1 {
		r.Lists = append(r.Lists, List{Name: listName})
		idx = len(r.Lists) - 1
	}
	for _, item := range items {
		if item != nil {
			r.Lists[idx].Items = append(r.Lists[idx].Items, item)
		}
	}
	return r
}

func (r *Record) Diag(msgs ...string) *Record {
	r.Diagnostics = append(r.Diagnostics, msgs...)
	return r
}

func (r *Record) Field(name string) (Field, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

func (r *Record) List(name string) []*Record {
	for _, l := range r.Lists {
		if l.Name == name {
			return l.Items
		}
	}
	return nil
}

// DiagnosticCount sums the diagnostics of this record and every descendant.
func (r *Record) DiagnosticCount() int {
	n := len(r.Diagnostics)
	for _, l := range r.Lists {
		for _, item := range l.Items {
			n += item.DiagnosticCount()
		}
	}
	return n
}

// Dump 缩进的文本形式，用于命令行以及调试
func (r *Record) Dump() string {
	var sb strings.Builder
	r.dump(&sb, 0)
	return sb.String()
}

func (r *Record) dump(sb *strings.Builder, depth int) {
	indent := strings.Repeat("  ", depth)
	sb.WriteString(indent)
	sb.WriteString(r.Kind)
	for _, f := range r.Fields {
		switch f.Type {
		case FieldTypeString:
			_, _ = fmt.Fprintf(sb, " %s=%q", f.Name, f.String)
		default:
			_, _ = fmt.Fprintf(sb, " %s=%v", f.Name, f.Value())
		}
	}
	sb.WriteString("\n")
	for _, d := range r.Diagnostics {
		_, _ = fmt.Fprintf(sb, "%s  ! %s\n", indent, d)
	}
	for _, l := range r.Lists {
		_, _ = fmt.Fprintf(sb, "%s  %s: %d entries\n", indent, l.Name, len(l.Items))
		for _, item := range l.Items {
			item.dump(sb, depth+2)
		}
	}
}
