// Copyright 2026, Chef.  All rights reserved.
// https://github.com/q191201771/dvbinspect
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

// Package tsfeed 从TS流中重组出完整的section和PES包，作为inspect的输入
package tsfeed

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/asticode/go-astits"
	"github.com/q191201771/dvbinspect/pkg/base"
	"github.com/q191201771/dvbinspect/pkg/inspect"
	"github.com/q191201771/dvbinspect/pkg/psi"
	"github.com/q191201771/dvbinspect/pkg/record"
	"github.com/q191201771/naza/pkg/bele"
	"github.com/q191201771/naza/pkg/nazalog"
)

var Log = nazalog.GetGlobalLogger()

const (
	PacketSize  = 188
	SyncByte    = 0x47
	PidNull     = 0x1FFF
	maxSiPid    = 0x1F
	payloadSize = PacketSize - 4
)

type OnSection func(pid uint16, section []byte)
type OnPes func(pid uint16, pes []byte)

type Option struct {
	// PacketSize 188，192（M2TS），204，0表示自动检测
	PacketSize int
}

var defaultOption = Option{
	PacketSize: PacketSize,
}

type ModOption func(option *Option)

type Stat struct {
	Packets    int
	Ignored    int // 空包以及transport_error_indicator为1的包
	Sections   int
	CrcErrors  int
	PesPackets int
	CcErrors   int
}

// Feeder
//
// 0x0000~0x001F以及PAT中声明的PMT PID按section处理，其他PID根据第一个payload_unit_start_indicator为1的包判断，
// payload以00 00 01开头的按PES处理
//
// 不是并发安全的
type Feeder struct {
	option    Option
	onSection OnSection
	onPes     OnPes

	pids        map[uint16]*pidContext
	sectionPids map[uint16]struct{}
	index       int

	Stat        Stat
	Diagnostics base.Diagnostics
}

type pidKind uint8

const (
	pidKindUnknown pidKind = iota
	pidKindSection
	pidKindPes
)

type pidContext struct {
	kind   pidKind
	hasCc  bool
	lastCc uint8

	buf      []byte
	pesTotal int // 0表示PES_packet_length为0或者还不知道
}

func NewFeeder(onSection OnSection, onPes OnPes, modOptions ...ModOption) *Feeder {
	option := defaultOption
	for _, fn := range modOptions {
		fn(&option)
	}
	return &Feeder{
		option:      option,
		onSection:   onSection,
		onPes:       onPes,
		pids:        make(map[uint16]*pidContext),
		sectionPids: make(map[uint16]struct{}),
	}
}

// Run 读取r直到结束，结束时调用Flush
func (f *Feeder) Run(ctx context.Context, r io.Reader) error {
	dmx := astits.NewDemuxer(ctx, bufio.NewReader(r), astits.DemuxerOptPacketSize(f.option.PacketSize))
	for {
		p, err := dmx.NextPacket()
		if err != nil {
			if errors.Is(err, astits.ErrNoMorePackets) {
				f.Flush()
				return nil
			}
			return err
		}
		f.feedPacket(p)
	}
}

// Flush 输出各个PID上还没有结束的PES包，未完成的section丢弃
func (f *Feeder) Flush() {
	pids := make([]uint16, 0, len(f.pids))
	for pid := range f.pids {
		pids = append(pids, pid)
	}
	sort.Slice(pids, func(i, j int) bool { return pids[i] < pids[j] })
	for _, pid := range pids {
		pc := f.pids[pid]
		switch pc.kind {
		case pidKindPes:
			f.emitPes(pid, pc)
		case pidKindSection:
			if len(pc.buf) != 0 {
				f.Diagnostics.Add(f.unit(pid), f.index, base.NewErrTruncatedInput(sectionTotal(pc.buf), len(pc.buf), "section"))
				pc.buf = nil
			}
		}
	}
}

func (f *Feeder) feedPacket(p *astits.Packet) {
	idx := f.index
	f.index++
	f.Stat.Packets++

	pid := p.Header.PID
	if pid == PidNull || p.Header.TransportErrorIndicator {
		f.Stat.Ignored++
		return
	}
	if !p.Header.HasPayload {
		return
	}

	pc, ok := f.pids[pid]
	if !ok {
		pc = &pidContext{}
		f.pids[pid] = pc
	}

	cc := p.Header.ContinuityCounter
	if pc.hasCc {
		if cc == pc.lastCc {
			// 重复包
			return
		}
		if cc != (pc.lastCc+1)&0x0F {
			f.Stat.CcErrors++
			f.Diagnostics.Add(f.unit(pid), idx, fmt.Errorf("continuity counter discontinuity. expected=%d, actual=%d", (pc.lastCc+1)&0x0F, cc))
			Log.Debugf("cc discontinuity, drop pending unit. pid=0x%04x, pending=%d", pid, len(pc.buf))
			pc.buf = nil
			pc.pesTotal = 0
		}
	}
	pc.hasCc = true
	pc.lastCc = cc

	pusi := p.Header.PayloadUnitStartIndicator
	if pc.kind == pidKindUnknown {
		if !pusi {
			return
		}
		pc.kind = f.classify(pid, p.Payload)
	}

	switch pc.kind {
	case pidKindSection:
		f.feedSection(pid, pc, pusi, p.Payload)
	case pidKindPes:
		f.feedPes(pid, pc, pusi, p.Payload)
	}
}

func (f *Feeder) classify(pid uint16, payload []byte) pidKind {
	if pid <= maxSiPid {
		return pidKindSection
	}
	if _, ok := f.sectionPids[pid]; ok {
		return pidKindSection
	}
	if len(payload) >= 3 && payload[0] == 0x00 && payload[1] == 0x00 && payload[2] == 0x01 {
		return pidKindPes
	}
	return pidKindSection
}

func (f *Feeder) feedSection(pid uint16, pc *pidContext, pusi bool, payload []byte) {
	if !pusi {
		if pc.buf == nil {
			return
		}
		pc.buf = append(pc.buf, payload...)
		f.drainSections(pid, pc)
		return
	}

	if len(payload) == 0 {
		return
	}
	pointer := int(payload[0])
	payload = payload[1:]
	if pointer > len(payload) {
		f.Diagnostics.Add(f.unit(pid), f.index-1, base.NewErrTruncatedInput(pointer, len(payload), "pointer_field"))
		pc.buf = nil
		return
	}

	// pointer_field之前是上一个section的结尾
	if pc.buf != nil {
		pc.buf = append(pc.buf, payload[:pointer]...)
		f.drainSections(pid, pc)
		if len(pc.buf) != 0 {
			f.Diagnostics.Add(f.unit(pid), f.index-1, base.NewErrTruncatedInput(sectionTotal(pc.buf), len(pc.buf), "section"))
		}
	}
	pc.buf = append([]byte(nil), payload[pointer:]...)
	f.drainSections(pid, pc)
}

func (f *Feeder) drainSections(pid uint16, pc *pidContext) {
	for {
		// 0xFF之后都是填充
		if len(pc.buf) == 0 || pc.buf[0] == psi.TableIdForbidden {
			pc.buf = nil
			return
		}
		if len(pc.buf) < 3 {
			return
		}
		total := sectionTotal(pc.buf)
		if len(pc.buf) < total {
			return
		}
		f.emitSection(pid, pc.buf[:total])
		pc.buf = pc.buf[total:]
	}
}

func (f *Feeder) emitSection(pid uint16, b []byte) {
	tableId := b[0]
	longForm := b[1]&0x80 != 0
	if tableId != psi.TableIdTdt && (longForm || tableId == psi.TableIdTot) {
		if psi.CalcCrc32(b) != 0 {
			f.Stat.CrcErrors++
			err := fmt.Errorf("%w. pid=0x%04x, table_id=0x%02x, len=%d", base.ErrCrcMismatch, pid, tableId, len(b))
			f.Diagnostics.Add(f.unit(pid), f.index-1, err)
			Log.Warnf("%+v", err)
			return
		}
	}

	section := append([]byte(nil), b...)
	f.Stat.Sections++
	if tableId == psi.TableIdPat && pid == 0 {
		f.learnPat(section)
	}
	if f.onSection != nil {
		f.onSection(pid, section)
	}
}

// learnPat 记录PAT中的PMT PID
func (f *Feeder) learnPat(section []byte) {
	s, err := psi.ParseSection(section)
	if err != nil {
		return
	}
	pat, ok := s.Body.(*psi.Pat)
	if !ok {
		return
	}
	for _, ppe := range pat.Programs {
		if _, exist := f.sectionPids[ppe.Pid]; !exist {
			Log.Debugf("section pid from PAT. program_number=%d, pid=0x%04x", ppe.ProgramNumber, ppe.Pid)
			f.sectionPids[ppe.Pid] = struct{}{}
		}
	}
}

func (f *Feeder) feedPes(pid uint16, pc *pidContext, pusi bool, payload []byte) {
	if pusi {
		f.emitPes(pid, pc)
		pc.buf = append([]byte(nil), payload...)
	} else {
		if pc.buf == nil {
			return
		}
		pc.buf = append(pc.buf, payload...)
	}

	if pc.pesTotal == 0 && len(pc.buf) >= 6 {
		if l := int(bele.BeUint16(pc.buf[4:])); l != 0 {
			pc.pesTotal = 6 + l
		}
	}
	if pc.pesTotal != 0 && len(pc.buf) >= pc.pesTotal {
		pc.buf = pc.buf[:pc.pesTotal]
		f.emitPes(pid, pc)
	}
}

func (f *Feeder) emitPes(pid uint16, pc *pidContext) {
	b := pc.buf
	pc.buf = nil
	pc.pesTotal = 0
	if len(b) == 0 {
		return
	}
	f.Stat.PesPackets++
	if f.onPes != nil {
		f.onPes(pid, b)
	}
}

func (f *Feeder) unit(pid uint16) string {
	return fmt.Sprintf("ts pid=0x%04x", pid)
}

func sectionTotal(b []byte) int {
	if len(b) < 3 {
		return 3
	}
	return 3 + int(bele.BeUint16(b[1:])&0x0FFF)
}

// ---------------------------------------------------------------------------------------------------------------------

// Batch 整个TS流中的section和PES包，按到达顺序
type Batch struct {
	Sections []inspect.SectionInput
	Pes      []inspect.PesInput

	Stat        Stat
	Diagnostics base.Diagnostics
}

// Collect 读取r中的所有TS包，输出可以交给Inspector.DecodeBatch的输入
func Collect(ctx context.Context, r io.Reader, modOptions ...ModOption) (*Batch, error) {
	b := &Batch{}
	f := NewFeeder(func(pid uint16, section []byte) {
		b.Sections = append(b.Sections, inspect.SectionInput{Pid: pid, Data: section})
	}, func(pid uint16, pes []byte) {
		b.Pes = append(b.Pes, inspect.PesInput{Pid: pid, Data: pes})
	}, modOptions...)
	err := f.Run(ctx, r)
	b.Stat = f.Stat
	b.Diagnostics = f.Diagnostics
	return b, err
}

func (b *Batch) Record() *record.Record {
	r := record.New("ts_input").
		Int("packets", int64(b.Stat.Packets)).
		Int("ignored", int64(b.Stat.Ignored)).
		Int("sections", int64(b.Stat.Sections)).
		Int("crc_errors", int64(b.Stat.CrcErrors)).
		Int("pes_packets", int64(b.Stat.PesPackets)).
		Int("cc_errors", int64(b.Stat.CcErrors))
	r.Diag(b.Diagnostics.Strings()...)
	return r
}
