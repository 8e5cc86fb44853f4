// Copyright 2022, Chef.  All rights reserved.
// https://github.com/q191201771/dvbinspect
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package base_test

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/q191201771/dvbinspect/pkg/base"
	"github.com/q191201771/naza/pkg/assert"
)

func TestDumpFile(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "sub", "test.dvbdump")

	df := base.NewDumpFile()
	assert.Equal(t, nil, df.OpenToWrite(filename))
	assert.Equal(t, nil, df.Write(base.DumpTypeSection, 0x10, []byte{0x40, 0xF0}))
	assert.Equal(t, nil, df.Write(base.DumpTypePes, 0x100, []byte("hello")))
	assert.Equal(t, nil, df.Close())

	df = base.NewDumpFile()
	assert.Equal(t, nil, df.OpenToRead(filename))
	m, err := df.ReadOneMessage()
	assert.Equal(t, nil, err)
	assert.Equal(t, base.DumpTypeSection, m.Typ)
	assert.Equal(t, uint16(0x10), m.Pid)
	assert.Equal(t, []byte{0x40, 0xF0}, m.Body)

	m, err = df.ReadOneMessage()
	assert.Equal(t, nil, err)
	assert.Equal(t, base.DumpTypePes, m.Typ)
	assert.Equal(t, uint32(5), m.Len)
	assert.Equal(t, "hello", string(m.Body))

	_, err = df.ReadOneMessage()
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, nil, df.Close())
}
