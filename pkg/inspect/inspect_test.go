// Copyright 2026, Chef.  All rights reserved.
// https://github.com/q191201771/dvbinspect
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package inspect_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/q191201771/dvbinspect/pkg/base"
	"github.com/q191201771/dvbinspect/pkg/inspect"
	"github.com/q191201771/dvbinspect/pkg/pes"
	"github.com/q191201771/dvbinspect/pkg/psi"
	"github.com/q191201771/dvbinspect/pkg/record"
	"github.com/q191201771/naza/pkg/assert"
	"github.com/q191201771/naza/pkg/bele"
)

const (
	pmtPid   = 0x20
	videoPid = 0x100
	subPid   = 0x101
)

func buildSection(tableId uint8, ext uint16, version uint8, body []byte) []byte {
	sl := 5 + len(body) + 4
	b := make([]byte, 3+sl)
	b[0] = tableId
	b[1] = 0xB0 | byte(sl>>8)
	b[2] = byte(sl)
	bele.BePutUint16(b[3:], ext)
	b[5] = 0xC0 | version<<1 | 1
	copy(b[8:], body)
	bele.BePutUint32(b[len(b)-4:], psi.CalcCrc32(b[:len(b)-4]))
	return b
}

// buildPes 只带PTS
func buildPes(streamId uint8, payload []byte) []byte {
	b := []byte{0x00, 0x00, 0x01, streamId, 0x00, 0x00, 0x80, 0x80, 0x05, 0x21, 0x00, 0x01, 0x00, 0x01}
	b = append(b, payload...)
	n := len(b) - 6
	b[4], b[5] = byte(n>>8), byte(n)
	return b
}

var (
	pat = buildSection(psi.TableIdPat, 1, 0, []byte{0x00, 0x01, 0xE0, pmtPid})
	pmt = buildSection(psi.TableIdPmt, 1, 0, []byte{
		0xE1, 0x00, 0xF0, 0x00,
		0x1B, 0xE1, 0x00, 0xF0, 0x00,
		0x06, 0xE1, 0x01, 0xF0, 0x0A, 0x59, 0x08, 'e', 'n', 'g', 0x10, 0x00, 0x01, 0x00, 0x02,
	})

	// AUD，IDR
	videoPes = buildPes(0xE0, []byte{0x00, 0x00, 0x00, 0x01, 0x09, 0xF0, 0x00, 0x00, 0x00, 0x01, 0x65, 0x88, 0x80})
	// end of display set
	subPes = buildPes(0xBD, []byte{0x20, 0x00, 0x0F, 0x80, 0x00, 0x01, 0x00, 0x00, 0xFF})
)

func newInspector(t *testing.T, modConfig func(c *inspect.Config)) *inspect.Inspector {
	c := inspect.DefaultConfig()
	if modConfig != nil {
		modConfig(&c)
	}
	insp, err := inspect.NewInspector(c)
	assert.Equal(t, nil, err)
	return insp
}

func dump(records []*record.Record) string {
	var sb strings.Builder
	for _, r := range records {
		sb.WriteString(r.Dump())
	}
	return sb.String()
}

func findKind(records []*record.Record, kind string) []*record.Record {
	var out []*record.Record
	for _, r := range records {
		if r.Kind == kind {
			out = append(out, r)
		}
	}
	return out
}

func TestInspector(t *testing.T) {
	insp := newInspector(t, nil)
	insp.FeedSection(inspect.SectionInput{Pid: 0, Data: pat})
	insp.FeedSection(inspect.SectionInput{Pid: pmtPid, Data: pmt})
	insp.FeedPes(inspect.PesInput{Pid: videoPid, Data: videoPes})
	insp.FeedPes(inspect.PesInput{Pid: subPid, Data: subPes})
	insp.FeedPes(inspect.PesInput{Pid: videoPid, Data: videoPes})

	assert.Equal(t, pes.FramerKindH264, insp.Framer(videoPid).Kind())
	assert.Equal(t, pes.FramerKindDvbsub, insp.Framer(subPid).Kind())
	assert.Equal(t, nil, insp.Framer(0x1FFF))

	pid, ok := insp.Tables().PmtPid(1)
	assert.Equal(t, true, ok)
	assert.Equal(t, uint16(pmtPid), pid)

	records := insp.Records()
	assert.Equal(t, 2, len(findKind(records, "table")))
	assert.Equal(t, 2, len(findKind(records, "section_pid")))

	streams := findKind(records, "pes_stream")
	assert.Equal(t, 2, len(streams))
	f, _ := streams[0].Field("framer")
	assert.Equal(t, "h264", f.String)
	// 2个PES包，以及access unit统计
	assert.Equal(t, 3, len(streams[0].List("units")))
	f, _ = streams[1].Field("PID")
	assert.Equal(t, uint64(subPid), f.Uint)

	assert.Equal(t, 0, insp.DiagnosticCount())
}

func TestInspectorPending(t *testing.T) {
	insp := newInspector(t, nil)
	insp.FeedPes(inspect.PesInput{Pid: videoPid, Data: videoPes})
	assert.Equal(t, nil, insp.Framer(videoPid))

	// PMT一直没有到达，按opaque输出
	streams := findKind(insp.Records(), "pes_stream")
	f, _ := streams[0].Field("framer")
	assert.Equal(t, "opaque", f.String)
	assert.Equal(t, 1, len(streams[0].List("units")))

	insp.FeedSection(inspect.SectionInput{Pid: 0, Data: pat})
	insp.FeedSection(inspect.SectionInput{Pid: pmtPid, Data: pmt})
	framer := insp.Framer(videoPid)
	assert.IsNotNil(t, framer)
	assert.Equal(t, pes.FramerKindH264, framer.Kind())
	// 缓存的PES包已经重放
	assert.Equal(t, 2, len(framer.Records()))
}

func TestInspectorOverride(t *testing.T) {
	insp := newInspector(t, func(c *inspect.Config) {
		c.Framers = map[string]string{"0x101": "opaque", "258": "adts"}
	})
	insp.FeedSection(inspect.SectionInput{Pid: pmtPid, Data: pmt})
	insp.FeedPes(inspect.PesInput{Pid: subPid, Data: subPes})
	insp.FeedPes(inspect.PesInput{Pid: 0x102, Data: buildPes(0xC0, nil)})
	assert.Equal(t, pes.FramerKindOpaque, insp.Framer(subPid).Kind())
	assert.Equal(t, pes.FramerKindAdts, insp.Framer(0x102).Kind())

	_, err := inspect.NewInspector(inspect.Config{Framers: map[string]string{"0x100": "mp3"}})
	assert.IsNotNil(t, err)
	_, err = inspect.NewInspector(inspect.Config{Framers: map[string]string{"video": "h264"}})
	assert.IsNotNil(t, err)
}

func TestInspectorDiagnostics(t *testing.T) {
	insp := newInspector(t, nil)
	insp.FeedSection(inspect.SectionInput{Pid: 0, Data: []byte{0x00, 0xB0}})
	insp.FeedPes(inspect.PesInput{Pid: videoPid, Data: []byte{0x00, 0x00, 0x02, 0xE0, 0x00, 0x00}})
	assert.Equal(t, 2, insp.DiagnosticCount())

	records := insp.Records()
	sp := findKind(records, "section_pid")[0]
	f, _ := sp.Field("rejected")
	assert.Equal(t, int64(1), f.Int)
	assert.Equal(t, 1, len(sp.Diagnostics))

	// 同一版本内容不同
	other := buildSection(psi.TableIdPat, 1, 0, []byte{0x00, 0x01, 0xE0, 0x30})
	insp.FeedSection(inspect.SectionInput{Pid: 0, Data: pat})
	insp.FeedSection(inspect.SectionInput{Pid: 0, Data: other})
	assert.Equal(t, 3, insp.DiagnosticCount())
	f, _ = findKind(insp.Records(), "section_pid")[0].Field("conflict")
	assert.Equal(t, int64(1), f.Int)
}

func TestInspectorDumpFile(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "rejected.dvbdump")
	insp := newInspector(t, func(c *inspect.Config) {
		c.Dump.Filename = filename
	})
	insp.FeedSection(inspect.SectionInput{Pid: 0x11, Data: []byte{0x42, 0xF0}})
	insp.FeedSection(inspect.SectionInput{Pid: 0, Data: pat})
	assert.Equal(t, nil, insp.Close())

	df := base.NewDumpFile()
	assert.Equal(t, nil, df.OpenToRead(filename))
	defer df.Close()
	m, err := df.ReadOneMessage()
	assert.Equal(t, nil, err)
	assert.Equal(t, base.DumpTypeSection, m.Typ)
	assert.Equal(t, uint16(0x11), m.Pid)
	assert.Equal(t, []byte{0x42, 0xF0}, m.Body)
	_, err = df.ReadOneMessage()
	assert.Equal(t, io.EOF, err)
}

func TestDecodeBatch(t *testing.T) {
	sections := []inspect.SectionInput{
		{Pid: 0, Data: pat},
		{Pid: pmtPid, Data: pmt},
		{Pid: 0, Data: pat},
	}
	pesInputs := []inspect.PesInput{
		{Pid: videoPid, Data: videoPes},
		{Pid: subPid, Data: subPes},
		{Pid: videoPid, Data: videoPes},
		{Pid: 0x1FF, Data: buildPes(0xC0, nil)},
		{Pid: subPid, Data: subPes},
	}

	sequential := newInspector(t, nil)
	for _, in := range sections {
		sequential.FeedSection(in)
	}
	for _, in := range pesInputs {
		sequential.FeedPes(in)
	}

	batch := newInspector(t, nil)
	err := batch.DecodeBatch(context.Background(), sections, pesInputs)
	assert.Equal(t, nil, err)
	assert.Equal(t, dump(sequential.Records()), dump(batch.Records()))
	assert.Equal(t, sequential.DiagnosticCount(), batch.DiagnosticCount())

	// PES先于PMT到达，结果相同
	interleaved := newInspector(t, nil)
	interleaved.FeedPes(pesInputs[0])
	interleaved.FeedPes(pesInputs[1])
	for _, in := range sections {
		interleaved.FeedSection(in)
	}
	for _, in := range pesInputs[2:] {
		interleaved.FeedPes(in)
	}
	assert.Equal(t, dump(sequential.Records()), dump(interleaved.Records()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = newInspector(t, nil).DecodeBatch(ctx, sections, pesInputs)
	assert.Equal(t, true, errors.Is(err, context.Canceled))
}

func TestLoadConf(t *testing.T) {
	file := filepath.Join(t.TempDir(), "dvbinspect.conf.json")
	content := `{
  "log": {"level": 2},
  "scanner": {"max_frame_size": 4096},
  "framers": {"0x100": "h264"}
}`
	assert.Equal(t, nil, os.WriteFile(file, []byte(content), 0644))

	c, err := inspect.LoadConf(file)
	assert.Equal(t, nil, err)
	assert.Equal(t, 4096, c.Scanner.MaxFrameSize)
	assert.Equal(t, inspect.DefaultConfig().Scanner.InitBufferSize, c.Scanner.InitBufferSize)
	assert.Equal(t, 188, c.Input.PacketSize)
	assert.Equal(t, true, c.Log.IsToStdout)
	overrides, err := c.FramerOverrides()
	assert.Equal(t, nil, err)
	assert.Equal(t, pes.FramerKindH264, overrides[0x100])

	_, err = inspect.LoadConf(filepath.Join(t.TempDir(), "not_exist.json"))
	assert.IsNotNil(t, err)
}
