// Copyright 2022, Chef.  All rights reserved.
// https://github.com/q191201771/dvbinspect
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package base

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/q191201771/naza/pkg/bele"
	"github.com/q191201771/naza/pkg/nazabytes"
)

const dumpFileVersion = 1

const dumpFileHeaderLen = 16

// DumpType 被拒绝的单元的类型
type DumpType uint16

const (
	DumpTypeSection DumpType = 1
	DumpTypePes     DumpType = 2
)

// DumpFile 把解析失败的section、PES包原样保存下来，方便离线复现
//
// 每条消息是16字节头加原始数据：
// ver [4B]，typ [2B]，pid [2B]，len [4B]，timestamp [4B]，body
//
// Write可以在多个协程中调用
type DumpFile struct {
	mu   sync.Mutex
	file *os.File
}

type DumpFileMessage struct {
	Ver       uint32
	Typ       DumpType
	Pid       uint16
	Len       uint32
	Timestamp uint32
	Body      []byte
}

func NewDumpFile() *DumpFile {
	return &DumpFile{}
}

func (d *DumpFile) OpenToWrite(filename string) (err error) {
	dir := filepath.Dir(filename)
	if err = os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	d.file, err = os.Create(filename)
	return
}

func (d *DumpFile) OpenToRead(filename string) (err error) {
	d.file, err = os.Open(filename)
	return
}

func (d *DumpFile) Write(typ DumpType, pid uint16, b []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, err := d.file.Write(d.pack(typ, pid, b))
	return err
}

// ReadOneMessage 读完时返回io.EOF
func (d *DumpFile) ReadOneMessage() (m DumpFileMessage, err error) {
	header := make([]byte, dumpFileHeaderLen)
	if _, err = io.ReadFull(d.file, header); err != nil {
		return
	}
	m.Ver = bele.BeUint32(header)
	m.Typ = DumpType(bele.BeUint16(header[4:]))
	m.Pid = bele.BeUint16(header[6:])
	m.Len = bele.BeUint32(header[8:])
	m.Timestamp = bele.BeUint32(header[12:])
	if m.Ver != dumpFileVersion {
		err = fmt.Errorf("invalid dump file version. ver=%d", m.Ver)
		return
	}
	m.Body = make([]byte, m.Len)
	_, err = io.ReadFull(d.file, m.Body)
	return
}

func (d *DumpFile) Close() error {
	if d.file == nil {
		return nil
	}
	return d.file.Close()
}

// ---------------------------------------------------------------------------------------------------------------------

func (m *DumpFileMessage) DebugString() string {
	return fmt.Sprintf("ver: %d, typ: %d, pid: %d, len: %d, timestamp: %d, hex: %s",
		m.Ver, m.Typ, m.Pid, m.Len, m.Timestamp, hex.Dump(nazabytes.Prefix(m.Body, 16)))
}

// ---------------------------------------------------------------------------------------------------------------------

func (d *DumpFile) pack(typ DumpType, pid uint16, b []byte) []byte {
	ret := make([]byte, len(b)+dumpFileHeaderLen)
	bele.BePutUint32(ret, dumpFileVersion)                // Ver
	bele.BePutUint16(ret[4:], uint16(typ))                // Typ
	bele.BePutUint16(ret[6:], pid)                        // Pid
	bele.BePutUint32(ret[8:], uint32(len(b)))             // Len
	bele.BePutUint32(ret[12:], uint32(time.Now().Unix())) // Timestamp
	copy(ret[16:], b)
	return ret
}
