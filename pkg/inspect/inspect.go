// Copyright 2026, Chef.  All rights reserved.
// https://github.com/q191201771/dvbinspect
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package inspect

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/q191201771/dvbinspect/pkg/base"
	"github.com/q191201771/dvbinspect/pkg/pes"
	"github.com/q191201771/dvbinspect/pkg/psi"
	"github.com/q191201771/dvbinspect/pkg/record"
	"github.com/q191201771/naza/pkg/nazalog"
	"golang.org/x/sync/errgroup"
)

var Log = nazalog.GetGlobalLogger()

// SectionInput 一个完整的section，Data从table_id开始
type SectionInput struct {
	Pid  uint16
	Data []byte
}

// PesInput 一个完整的PES包，Data从packet_start_code_prefix开始
type PesInput struct {
	Pid  uint16
	Data []byte
}

// Inspector 把section和PES包分发给表集合以及每个PID的framer
//
// FeedSection、FeedPes可以在多个协程中调用，但同一个PID的输入需要按到达顺序串行输入。
// PMT到达之前，没有配置framer的PID的PES包先缓存起来，PMT到达后按顺序重放给选出的framer
type Inspector struct {
	config    Config
	overrides map[uint16]pes.FramerKind
	tables    *psi.Tables

	mu       sync.Mutex
	streams  map[uint16]*stream
	sections map[uint16]*sectionPid

	dumpMu   sync.Mutex
	logDump  base.LogDump
	dumpFile *base.DumpFile
}

type stream struct {
	mu      sync.Mutex
	pid     uint16
	framer  pes.Framer
	pending []*pes.Packet
	packets int

	Diagnostics base.Diagnostics
}

type sectionPid struct {
	mu       sync.Mutex
	pid      uint16
	count    int
	rejected int
	outcomes map[psi.Outcome]int

	Diagnostics base.Diagnostics
}

func NewInspector(config Config) (*Inspector, error) {
	overrides, err := config.FramerOverrides()
	if err != nil {
		return nil, err
	}
	insp := &Inspector{
		config:    config,
		overrides: overrides,
		tables:    psi.NewTables(),
		streams:   make(map[uint16]*stream),
		sections:  make(map[uint16]*sectionPid),
		logDump:   base.NewLogDump(Log, config.Dump.DebugMaxNum, config.Dump.MaxBytes),
	}
	if config.Dump.Filename != "" {
		insp.dumpFile = base.NewDumpFile()
		if err = insp.dumpFile.OpenToWrite(config.Dump.Filename); err != nil {
			return nil, err
		}
	}
	return insp, nil
}

// Close 只有配置了dump文件时才需要调用
func (insp *Inspector) Close() error {
	if insp.dumpFile == nil {
		return nil
	}
	return insp.dumpFile.Close()
}

func (insp *Inspector) Tables() *psi.Tables {
	return insp.tables
}

func (insp *Inspector) FeedSection(in SectionInput) {
	sp := insp.sectionPid(in.Pid)

	s, err := psi.ParseSection(in.Data)
	if err != nil {
		d := base.NewDiagnostic(fmt.Sprintf("section pid=0x%04x", in.Pid), 0, err)
		sp.mu.Lock()
		sp.count++
		sp.rejected++
		sp.Diagnostics = append(sp.Diagnostics, d)
		sp.mu.Unlock()
		insp.dump(d, base.DumpTypeSection, in.Pid, in.Data)
		return
	}

	outcome, err := insp.tables.Update(s)
	sp.mu.Lock()
	sp.count++
	sp.outcomes[outcome]++
	if err != nil {
		sp.Diagnostics.Add(fmt.Sprintf("section pid=0x%04x", in.Pid), 0, err)
	}
	sp.mu.Unlock()
	if err != nil {
		Log.Warnf("update table failed. pid=0x%04x, outcome=%s, err=%+v", in.Pid, outcome, err)
	}

	if outcome.Changed() {
		if pmt, ok := s.Body.(*psi.Pmt); ok {
			insp.onPmt(pmt)
		}
	}
}

func (insp *Inspector) FeedPes(in PesInput) {
	st := insp.stream(in.Pid)

	pkt, err := pes.ParsePacket(in.Data)

	st.mu.Lock()
	defer st.mu.Unlock()
	st.packets++
	if err != nil {
		d := base.NewDiagnostic(fmt.Sprintf("PES pid=0x%04x", in.Pid), 0, err)
		st.Diagnostics = append(st.Diagnostics, d)
		insp.dump(d, base.DumpTypePes, in.Pid, in.Data)
		return
	}
	if st.framer == nil {
		st.framer = insp.selectFramer(in.Pid)
	}
	if st.framer == nil {
		st.pending = append(st.pending, pkt)
		return
	}
	st.framer.Feed(pkt)
}

// DecodeBatch 按PID分组并发解析
//
// 先并发处理所有PID的section，再并发处理所有PID的PES包，同一个PID内保持输入顺序。
// 结果与按PID顺序依次调用FeedSection、FeedPes相同
func (insp *Inspector) DecodeBatch(ctx context.Context, sections []SectionInput, pesInputs []PesInput) error {
	err := runByPid(ctx, sections, func(in SectionInput) uint16 { return in.Pid }, insp.FeedSection)
	if err != nil {
		return err
	}
	return runByPid(ctx, pesInputs, func(in PesInput) uint16 { return in.Pid }, insp.FeedPes)
}

// Framer PID对应的framer，PID没有PES输入或者还在等待PMT时返回nil
func (insp *Inspector) Framer(pid uint16) pes.Framer {
	insp.mu.Lock()
	st, ok := insp.streams[pid]
	insp.mu.Unlock()
	if !ok {
		return nil
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.framer
}

// Records 表集合，每个section PID的统计，每个PES PID的解析结果，PID按从小到大排序
func (insp *Inspector) Records() []*record.Record {
	out := insp.tables.Records()
	for _, sp := range insp.sectionPids() {
		out = append(out, sp.record())
	}
	for _, st := range insp.pesStreams() {
		out = append(out, st.record())
	}
	return out
}

func (insp *Inspector) DiagnosticCount() int {
	n := 0
	for _, r := range insp.tables.Records() {
		n += r.DiagnosticCount()
	}
	for _, sp := range insp.sectionPids() {
		sp.mu.Lock()
		n += len(sp.Diagnostics)
		sp.mu.Unlock()
	}
	for _, st := range insp.pesStreams() {
		n += st.diagnosticCount()
	}
	return n
}

// ---------------------------------------------------------------------------------------------------------------------

func (insp *Inspector) onPmt(pmt *psi.Pmt) {
	for _, ppe := range pmt.ProgramElements {
		insp.mu.Lock()
		st, ok := insp.streams[ppe.Pid]
		insp.mu.Unlock()
		if !ok {
			continue
		}

		st.mu.Lock()
		if st.framer == nil {
			st.framer = insp.selectFramer(st.pid)
			if st.framer != nil {
				Log.Debugf("replay pending pes. pid=0x%04x, framer=%s, num=%d", st.pid, st.framer.Kind(), len(st.pending))
				for _, pkt := range st.pending {
					st.framer.Feed(pkt)
				}
				st.pending = nil
			}
		}
		st.mu.Unlock()
	}
}

// selectFramer 配置优先，其次是PMT，都没有时返回nil
func (insp *Inspector) selectFramer(pid uint16) pes.Framer {
	kind, ok := insp.overrides[pid]
	if !ok {
		for _, pmt := range insp.tables.Pmts() {
			if ppe := pmt.SearchPid(pid); ppe != nil {
				kind, ok = pes.SelectFramer(ppe.StreamType, ppe.EsInfo), true
				break
			}
		}
	}
	if !ok {
		return nil
	}

	f, err := pes.NewFramer(kind, insp.config.scannerOption)
	if err != nil {
		Log.Errorf("new framer failed. pid=0x%04x, kind=%s, err=%+v", pid, kind, err)
		return nil
	}
	return f
}

func (insp *Inspector) stream(pid uint16) *stream {
	insp.mu.Lock()
	defer insp.mu.Unlock()
	st, ok := insp.streams[pid]
	if !ok {
		st = &stream{pid: pid}
		insp.streams[pid] = st
	}
	return st
}

func (insp *Inspector) sectionPid(pid uint16) *sectionPid {
	insp.mu.Lock()
	defer insp.mu.Unlock()
	sp, ok := insp.sections[pid]
	if !ok {
		sp = &sectionPid{pid: pid, outcomes: make(map[psi.Outcome]int)}
		insp.sections[pid] = sp
	}
	return sp
}

func (insp *Inspector) pesStreams() []*stream {
	insp.mu.Lock()
	out := make([]*stream, 0, len(insp.streams))
	for _, st := range insp.streams {
		out = append(out, st)
	}
	insp.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].pid < out[j].pid })
	return out
}

func (insp *Inspector) sectionPids() []*sectionPid {
	insp.mu.Lock()
	out := make([]*sectionPid, 0, len(insp.sections))
	for _, sp := range insp.sections {
		out = append(out, sp)
	}
	insp.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].pid < out[j].pid })
	return out
}

func (insp *Inspector) dump(d base.Diagnostic, typ base.DumpType, pid uint16, raw []byte) {
	insp.dumpMu.Lock()
	insp.logDump.DumpUnit(d, raw)
	insp.dumpMu.Unlock()

	if insp.dumpFile != nil {
		if err := insp.dumpFile.Write(typ, pid, raw); err != nil {
			Log.Warnf("write dump file failed. err=%+v", err)
		}
	}
}

// ---------------------------------------------------------------------------------------------------------------------

func (st *stream) record() *record.Record {
	st.mu.Lock()
	defer st.mu.Unlock()

	r := record.New("pes_stream").
		Uint("PID", uint64(st.pid)).
		Int("pes_packets", int64(st.packets))
	if st.framer != nil {
		r.Str("framer", string(st.framer.Kind())).
			Child("units", st.framer.Records()...)
	} else {
		// 一直没有等到PMT，只输出PES头
		r.Str("framer", string(pes.FramerKindOpaque))
		for _, pkt := range st.pending {
			r.Child("units", pkt.Record())
		}
	}
	r.Diag(st.Diagnostics.Strings()...)
	return r
}

func (st *stream) diagnosticCount() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	n := len(st.Diagnostics)
	if st.framer != nil {
		return n + st.framer.DiagnosticCount()
	}
	for _, pkt := range st.pending {
		n += len(pkt.Diagnostics)
	}
	return n
}

func (sp *sectionPid) record() *record.Record {
	sp.mu.Lock()
	defer sp.mu.Unlock()

	r := record.New("section_pid").
		Uint("PID", uint64(sp.pid)).
		Int("sections", int64(sp.count)).
		Int("rejected", int64(sp.rejected))
	for o := psi.OutcomeStored; o <= psi.OutcomeRepaired; o++ {
		if n := sp.outcomes[o]; n > 0 {
			r.Int(o.String(), int64(n))
		}
	}
	r.Diag(sp.Diagnostics.Strings()...)
	return r
}

// ---------------------------------------------------------------------------------------------------------------------

func runByPid[T any](ctx context.Context, inputs []T, pidOf func(T) uint16, feed func(T)) error {
	groups := make(map[uint16][]T)
	var order []uint16
	for _, in := range inputs {
		pid := pidOf(in)
		if _, ok := groups[pid]; !ok {
			order = append(order, pid)
		}
		groups[pid] = append(groups[pid], in)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, pid := range order {
		group := groups[pid]
		g.Go(func() error {
			for _, in := range group {
				if err := gctx.Err(); err != nil {
					return err
				}
				feed(in)
			}
			return nil
		})
	}
	return g.Wait()
}
