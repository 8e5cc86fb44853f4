// Copyright 2026, Chef.  All rights reserved.
// https://github.com/q191201771/dvbinspect
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package psi

import (
	"bytes"
	"fmt"

	"github.com/q191201771/dvbinspect/pkg/base"
	"github.com/q191201771/dvbinspect/pkg/descriptor"
	"github.com/q191201771/dvbinspect/pkg/field"
	"github.com/q191201771/dvbinspect/pkg/record"
	"github.com/q191201771/naza/pkg/bele"
	"github.com/q191201771/naza/pkg/nazabits"
)

// Section
//
// ----------------------------------------
// <iso13818-1.pdf> <2.4.4.10> <page 65/174>
// table_id                 [8b]  *
// section_syntax_indicator [1b]
// private_indicator        [1b]
// reserved                 [2b]
// section_length           [12b] **
// ------ section_syntax_indicator == 1 ------
// table_id_extension       [16b] **
// reserved                 [2b]
// version_number           [5b]
// current_next_indicator   [1b]  *
// section_number           [8b]  *
// last_section_number      [8b]  *
// ------ ------
// body
// CRC_32                   [32b] **** 长格式以及TOT
// ----------------------------------------
type Section struct {
	TableId                uint8
	SectionSyntaxIndicator bool
	PrivateIndicator       bool
	SectionLength          uint16

	TableIdExtension  uint16
	Version           uint8
	CurrentNext       bool
	SectionNumber     uint8
	LastSectionNumber uint8

	HasCrc bool
	Crc    uint32

	// Truncated 声明的section_length超出了输入，Raw只是实际存在的部分
	Truncated bool

	// Raw 整个section的视图，从table_id开始，声明的长度超出输入时是实际存在的部分
	Raw  []byte
	Body Body

	Diagnostics base.Diagnostics
}

// Body 各个表的内容，集合是封闭的，未识别的table_id使用Unknown
type Body interface {
	Name() string

	fill(r *record.Record)
}

const sectionHeaderLen = 3
const longHeaderLen = 8

// ParseSection 解析一个完整的section，b从table_id开始
//
// section_number大于last_section_number的section直接拒绝，返回ErrMalformedSection。
// 其他问题（长度不足、字段错误）记录在Section.Diagnostics中，能解多少解多少
func ParseSection(b []byte) (*Section, error) {
	if len(b) < sectionHeaderLen {
		return nil, base.NewErrTruncatedInput(sectionHeaderLen, len(b), "section header")
	}

	s := &Section{}
	br := nazabits.NewBitReader(b)
	s.TableId, _ = br.ReadBits8(8)
	ssi, _ := br.ReadBits8(1)
	pi, _ := br.ReadBits8(1)
	_, _ = br.ReadBits8(2)
	s.SectionLength, _ = br.ReadBits16(12)
	s.SectionSyntaxIndicator = ssi == 1
	s.PrivateIndicator = pi == 1

	total := sectionHeaderLen + int(s.SectionLength)
	complete := true
	if total > len(b) {
		s.Diagnostics.Add(s.unit(), 0, base.NewErrTruncatedInput(total, len(b), "section"))
		total = len(b)
		complete = false
		s.Truncated = true
	}
	s.Raw = b[:total:total]

	bodyStart := sectionHeaderLen
	if s.SectionSyntaxIndicator {
		if total < longHeaderLen {
			return nil, fmt.Errorf("%w. table_id=0x%02x, long form header needs %d bytes, actual=%d",
				base.ErrMalformedSection, s.TableId, longHeaderLen, total)
		}
		s.TableIdExtension, _ = br.ReadBits16(16)
		_, _ = br.ReadBits8(2)
		s.Version, _ = br.ReadBits8(5)
		cni, _ := br.ReadBits8(1)
		s.CurrentNext = cni == 1
		s.SectionNumber, _ = br.ReadBits8(8)
		s.LastSectionNumber, _ = br.ReadBits8(8)
		if s.SectionNumber > s.LastSectionNumber {
			return nil, fmt.Errorf("%w. table_id=0x%02x, section_number=%d > last_section_number=%d",
				base.ErrMalformedSection, s.TableId, s.SectionNumber, s.LastSectionNumber)
		}
		bodyStart = longHeaderLen
	}

	// TDT是唯一没有CRC的
	bodyEnd := total
	if s.TableId != TableIdTdt && (s.SectionSyntaxIndicator || s.TableId == TableIdTot) {
		declaredEnd := sectionHeaderLen + int(s.SectionLength) - 4
		if declaredEnd < bodyStart {
			return nil, fmt.Errorf("%w. table_id=0x%02x, no room for CRC_32, section_length=%d",
				base.ErrMalformedSection, s.TableId, s.SectionLength)
		}
		if complete {
			bodyEnd = declaredEnd
			s.HasCrc = true
			s.Crc = bele.BeUint32(s.Raw[bodyEnd:])
		} else if declaredEnd < total {
			// 截断在CRC_32内部，body是完整的
			bodyEnd = declaredEnd
		}
	}

	s.Body = parseBody(s, s.Raw[bodyStart:bodyEnd:bodyEnd])
	return s, nil
}

func parseBody(s *Section, body []byte) Body {
	switch {
	case s.TableId == TableIdPat:
		return parsePat(s, body)
	case s.TableId == TableIdCat:
		return parseCat(s, body)
	case s.TableId == TableIdPmt:
		return parsePmt(s, body)
	case s.TableId == TableIdDsmccStream:
		return parseDsmccStream(s, body)
	case s.TableId == TableIdNitActual || s.TableId == TableIdNitOther:
		return parseNit(s, body)
	case s.TableId == TableIdSdtActual || s.TableId == TableIdSdtOther:
		return parseSdt(s, body)
	case s.TableId == TableIdBat:
		return parseBat(s, body)
	case IsEit(s.TableId):
		return parseEit(s, body)
	case s.TableId == TableIdTdt:
		return parseTdt(s, body)
	case s.TableId == TableIdTot:
		return parseTot(s, body)
	}
	return &Unknown{Data: body}
}

// CheckCrc 按MPEG-2 CRC32校验整个section，没有CRC的section返回true
func (s *Section) CheckCrc() bool {
	if !s.HasCrc {
		return true
	}
	return CalcCrc32(s.Raw) == 0
}

// Key 用于在Tables中归类
func (s *Section) Key() Key {
	k := Key{
		TableId: s.TableId,
		Id:      s.TableIdExtension,
	}
	switch v := s.Body.(type) {
	case *Cat:
		k.Id = 0
	case *Sdt:
		k.OriginalNetworkId = v.OriginalNetworkId
	case *Eit:
		k.TransportStreamId = v.TransportStreamId
		k.OriginalNetworkId = v.OriginalNetworkId
	}
	return k
}

// Same 内容是否逐字节相同
func (s *Section) Same(other *Section) bool {
	return bytes.Equal(s.Raw, other.Raw)
}

func (s *Section) Record() *record.Record {
	r := record.New("section").
		Uint("table_id", uint64(s.TableId)).
		Str("table_name", TableName(s.TableId)).
		Bool("section_syntax_indicator", s.SectionSyntaxIndicator).
		Uint("section_length", uint64(s.SectionLength))
	if s.SectionSyntaxIndicator {
		r.Uint("table_id_extension", uint64(s.TableIdExtension)).
			Uint("version_number", uint64(s.Version)).
			Bool("current_next_indicator", s.CurrentNext).
			Uint("section_number", uint64(s.SectionNumber)).
			Uint("last_section_number", uint64(s.LastSectionNumber))
	}
	if s.Truncated {
		r.Bool("truncated", true)
	}
	if s.HasCrc {
		r.Uint("CRC_32", uint64(s.Crc))
	}
	if s.Body != nil {
		r.Str("body", s.Body.Name())
		s.Body.fill(r)
	}
	r.Diag(s.Diagnostics.Strings()...)
	return r
}

func (s *Section) unit() string {
	return fmt.Sprintf("section 0x%02x/%d", s.TableId, s.SectionNumber)
}

// decodeDescriptors 解析body中的descriptor loop，诊断信息挂到descriptor或者section上
func (s *Section) decodeDescriptors(region []byte, ctx descriptor.Context) []descriptor.Descriptor {
	l, diags := descriptor.DecodeList(region, ctx)
	s.Diagnostics = append(s.Diagnostics, diags...)
	return l
}

// finish 把field.Reader中收集到的错误挂到section上
func (s *Section) finish(r *field.Reader) {
	for _, err := range r.Errors() {
		s.Diagnostics.Add(s.unit(), r.Offset(), err)
	}
}

// Unknown 未识别的table_id
type Unknown struct {
	Data []byte
}

func (u *Unknown) Name() string { return "unknown" }

func (u *Unknown) fill(r *record.Record) {
	r.Uint("body_length", uint64(len(u.Data)))
}

func descriptorRecords(r *record.Record, listName string, l []descriptor.Descriptor) {
	r.Child(listName, descriptor.Records(l)...)
}
