// Copyright 2026, Chef.  All rights reserved.
// https://github.com/q191201771/dvbinspect
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package psi_test

import (
	"errors"
	"testing"

	"github.com/q191201771/dvbinspect/pkg/base"
	"github.com/q191201771/dvbinspect/pkg/descriptor"
	"github.com/q191201771/dvbinspect/pkg/psi"
	"github.com/q191201771/naza/pkg/assert"
	"github.com/q191201771/naza/pkg/bele"
)

// buildSection 构造带CRC的长格式section
func buildSection(tableId uint8, ext uint16, version, sn, lsn uint8, body []byte) []byte {
	sl := 5 + len(body) + 4
	b := make([]byte, 3+sl)
	b[0] = tableId
	b[1] = 0xB0 | byte(sl>>8)
	b[2] = byte(sl)
	bele.BePutUint16(b[3:], ext)
	b[5] = 0xC0 | version<<1 | 1
	b[6] = sn
	b[7] = lsn
	copy(b[8:], body)
	bele.BePutUint32(b[len(b)-4:], psi.CalcCrc32(b[:len(b)-4]))
	return b
}

func mustParse(t *testing.T, b []byte) *psi.Section {
	s, err := psi.ParseSection(b)
	assert.Equal(t, nil, err)
	assert.IsNotNil(t, s)
	return s
}

var patBody = []byte{0x00, 0x00, 0xE0, 0x10, 0x00, 0x01, 0xE1, 0x00}

func TestParsePat(t *testing.T) {
	s := mustParse(t, buildSection(psi.TableIdPat, 0x0001, 3, 0, 0, patBody))
	assert.Equal(t, true, s.SectionSyntaxIndicator)
	assert.Equal(t, uint8(3), s.Version)
	assert.Equal(t, true, s.CurrentNext)
	assert.Equal(t, true, s.HasCrc)
	assert.Equal(t, true, s.CheckCrc())
	assert.Equal(t, 0, len(s.Diagnostics))

	pat := s.Body.(*psi.Pat)
	assert.Equal(t, uint16(1), pat.TransportStreamId)
	assert.Equal(t, 2, len(pat.Programs))
	assert.Equal(t, uint16(0x10), pat.NetworkPid())
	pid, ok := pat.SearchPid(1)
	assert.Equal(t, true, ok)
	assert.Equal(t, uint16(0x100), pid)

	assert.Equal(t, psi.Key{TableId: psi.TableIdPat, Id: 1}, s.Key())

	r := s.Record()
	f, _ := r.Field("table_name")
	assert.Equal(t, "PAT", f.String)
	assert.Equal(t, 2, len(r.List("programs")))

	// 改一个字节，CRC不再正确
	b := buildSection(psi.TableIdPat, 0x0001, 3, 0, 0, patBody)
	b[9] ^= 0xFF
	s = mustParse(t, b)
	assert.Equal(t, false, s.CheckCrc())
}

func TestParseSectionRejected(t *testing.T) {
	_, err := psi.ParseSection(buildSection(psi.TableIdPat, 1, 0, 2, 1, patBody))
	assert.Equal(t, true, errors.Is(err, base.ErrMalformedSection))

	_, err = psi.ParseSection([]byte{0x00, 0xB0})
	assert.Equal(t, true, errors.Is(err, base.ErrTruncatedInput))

	_, err = psi.ParseSection([]byte{0x00, 0xB0, 0x03, 0x00, 0x01})
	assert.Equal(t, true, errors.Is(err, base.ErrMalformedSection))
}

func TestParseSectionTruncated(t *testing.T) {
	b := buildSection(psi.TableIdPat, 0x0001, 3, 0, 0, patBody)
	// 少了CRC_32
	s := mustParse(t, b[:len(b)-4])
	assert.Equal(t, false, s.HasCrc)
	assert.Equal(t, 1, s.Diagnostics.Count(base.ErrTruncatedInput))
	assert.Equal(t, 2, len(s.Body.(*psi.Pat).Programs))

	// 截断在CRC_32内部，body完整
	s = mustParse(t, b[:len(b)-2])
	assert.Equal(t, true, s.Truncated)
	assert.Equal(t, false, s.HasCrc)
	assert.Equal(t, 1, len(s.Diagnostics))
	assert.Equal(t, 2, len(s.Body.(*psi.Pat).Programs))

	// 第二个program还差2字节
	s = mustParse(t, b[:len(b)-6])
	assert.Equal(t, 2, s.Diagnostics.Count(base.ErrTruncatedInput))
	assert.Equal(t, 1, len(s.Body.(*psi.Pat).Programs))
}

func TestParsePmt(t *testing.T) {
	body := []byte{
		0xE1, 0x00, 0xF0, 0x00,
		0x1B, 0xE1, 0x00, 0xF0, 0x00,
		0x06, 0xE1, 0x01, 0xF0, 0x0A, 0x59, 0x08, 'e', 'n', 'g', 0x10, 0x00, 0x01, 0x00, 0x02,
	}
	s := mustParse(t, buildSection(psi.TableIdPmt, 0x0001, 0, 0, 0, body))
	pmt := s.Body.(*psi.Pmt)
	assert.Equal(t, uint16(1), pmt.ProgramNumber)
	assert.Equal(t, uint16(0x100), pmt.PcrPid)
	assert.Equal(t, 2, len(pmt.ProgramElements))
	assert.Equal(t, uint8(psi.StreamTypeAvc), pmt.ProgramElements[0].StreamType)
	ppe := pmt.SearchPid(0x101)
	assert.IsNotNil(t, ppe)
	sub, ok := descriptor.Find[*descriptor.Subtitling](ppe.EsInfo)
	assert.Equal(t, true, ok)
	assert.Equal(t, "eng", sub.Entries[0].Language)
}

func TestParseTdtTot(t *testing.T) {
	s := mustParse(t, []byte{0x70, 0x70, 0x05, 0x9C, 0x40, 0x12, 0x00, 0x00})
	assert.Equal(t, false, s.HasCrc)
	tdt := s.Body.(*psi.Tdt)
	assert.Equal(t, "1968-05-24 12:00:00", tdt.UtcTime.String())

	tot := []byte{0x73, 0x70, 0x0B, 0x9C, 0x40, 0x12, 0x00, 0x00, 0xF0, 0x00, 0, 0, 0, 0}
	bele.BePutUint32(tot[len(tot)-4:], psi.CalcCrc32(tot[:len(tot)-4]))
	s = mustParse(t, tot)
	assert.Equal(t, true, s.HasCrc)
	assert.Equal(t, true, s.CheckCrc())
	assert.Equal(t, "1968-05-24 12:00:00", s.Body.(*psi.Tot).UtcTime.String())
}

func TestUnknownTable(t *testing.T) {
	s := mustParse(t, buildSection(0x90, 7, 0, 0, 0, []byte{1, 2, 3}))
	u, ok := s.Body.(*psi.Unknown)
	assert.Equal(t, true, ok)
	assert.Equal(t, []byte{1, 2, 3}, u.Data)
}

func TestVersionDistance(t *testing.T) {
	assert.Equal(t, uint8(1), psi.VersionDistance(4, 3))
	assert.Equal(t, uint8(1), psi.VersionDistance(0, 31))
	assert.Equal(t, uint8(31), psi.VersionDistance(3, 4))
	assert.Equal(t, uint8(16), psi.VersionDistance(20, 4))
}
