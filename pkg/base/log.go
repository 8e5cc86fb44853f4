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

	"github.com/q191201771/naza/pkg/nazabytes"
	"github.com/q191201771/naza/pkg/nazalog"
)

// LogDump 用于打印出错单元的原始字节，避免在码流大量出错时刷屏
type LogDump struct {
	log         nazalog.Logger
	debugMaxNum int
	maxBytes    int

	debugCount int
}

// NewLogDump
//
// @param debugMaxNum: 日志最小级别为debug时，使用debug打印日志次数的阈值
// @param maxBytes:    每次最多dump的字节数
func NewLogDump(log nazalog.Logger, debugMaxNum int, maxBytes int) LogDump {
	return LogDump{
		log:         log,
		debugMaxNum: debugMaxNum,
		maxBytes:    maxBytes,
	}
}

func (ld *LogDump) ShouldDump() bool {
	switch ld.log.GetOption().Level {
	case nazalog.LevelTrace:
		return true
	case nazalog.LevelDebug:
		if ld.debugCount >= ld.debugMaxNum {
			return false
		}
		ld.debugCount++
		return true
	}
	return false
}

// Outf
//
// 调用之前需调用 ShouldDump
// 将 ShouldDump 独立出来的目的是避免不需要打印日志时， Outf 调用前构造实参的开销
func (ld *LogDump) Outf(format string, v ...interface{}) {
	ld.log.Out(ld.log.GetOption().Level, 3, fmt.Sprintf(format, v...))
}

// DumpUnit 打印诊断信息，以及出错单元开头的一部分字节
func (ld *LogDump) DumpUnit(d Diagnostic, raw []byte) {
	if !ld.ShouldDump() {
		return
	}
	ld.Outf("%s, len=%d\n%s", d.String(), len(raw), hex.Dump(nazabytes.Prefix(raw, ld.maxBytes)))
}
