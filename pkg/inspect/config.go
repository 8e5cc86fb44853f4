// Copyright 2026, Chef.  All rights reserved.
// https://github.com/q191201771/dvbinspect
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package inspect

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/q191201771/dvbinspect/pkg/base"
	"github.com/q191201771/dvbinspect/pkg/pes"
	"github.com/q191201771/naza/pkg/nazajson"
	"github.com/q191201771/naza/pkg/nazalog"
)

type Config struct {
	ConfVersion string `json:"conf_version"`

	Log     nazalog.Option `json:"log"`
	Scanner ScannerConfig  `json:"scanner"`
	Dump    DumpConfig     `json:"dump"`
	Input   InputConfig    `json:"input"`

	// Framers PID -> framer kind，PID可以写成十进制或者0x开头的十六进制
	//
	// 配置了的PID不再根据PMT选择framer
	Framers map[string]string `json:"framers"`
}

type ScannerConfig struct {
	MaxFrameSize   int `json:"max_frame_size"`
	InitBufferSize int `json:"init_buffer_size"`
}

type DumpConfig struct {
	DebugMaxNum int `json:"debug_max_num"`
	MaxBytes    int `json:"max_bytes"`

	// Filename 不为空时，解析失败的section、PES包原样写入该文件
	Filename string `json:"filename"`
}

type InputConfig struct {
	PacketSize int `json:"packet_size"`
}

func DefaultConfig() Config {
	return Config{
		ConfVersion: base.ConfVersion,
		Log: nazalog.Option{
			Level:         nazalog.LevelInfo,
			IsToStdout:    true,
			ShortFileFlag: true,
		},
		Scanner: ScannerConfig{
			MaxFrameSize:   8192,
			InitBufferSize: 16384,
		},
		Dump: DumpConfig{
			DebugMaxNum: 8,
			MaxBytes:    64,
		},
		Input: InputConfig{
			PacketSize: 188,
		},
	}
}

func LoadConf(confFile string) (*Config, error) {
	var config Config
	rawContent, err := os.ReadFile(confFile)
	if err != nil {
		return nil, err
	}
	if err = json.Unmarshal(rawContent, &config); err != nil {
		return nil, err
	}

	if config.ConfVersion != base.ConfVersion {
		Log.Warnf("config version mismatch. file=%s, expected=%s, actual=%s", confFile, base.ConfVersion, config.ConfVersion)
	}

	j, err := nazajson.New(rawContent)
	if err != nil {
		return nil, err
	}
	def := DefaultConfig()
	if !j.Exist("log.level") {
		config.Log.Level = def.Log.Level
	}
	if !j.Exist("log.is_to_stdout") {
		config.Log.IsToStdout = def.Log.IsToStdout
	}
	if !j.Exist("log.short_file_flag") {
		config.Log.ShortFileFlag = def.Log.ShortFileFlag
	}
	if !j.Exist("scanner.max_frame_size") {
		config.Scanner.MaxFrameSize = def.Scanner.MaxFrameSize
	}
	if !j.Exist("scanner.init_buffer_size") {
		config.Scanner.InitBufferSize = def.Scanner.InitBufferSize
	}
	if !j.Exist("dump.debug_max_num") {
		config.Dump.DebugMaxNum = def.Dump.DebugMaxNum
	}
	if !j.Exist("dump.max_bytes") {
		config.Dump.MaxBytes = def.Dump.MaxBytes
	}
	if !j.Exist("input.packet_size") {
		config.Input.PacketSize = def.Input.PacketSize
	}

	if _, err = config.FramerOverrides(); err != nil {
		return nil, err
	}
	return &config, nil
}

// FramerOverrides 把配置中的framers转换成PID -> FramerKind
func (c *Config) FramerOverrides() (map[uint16]pes.FramerKind, error) {
	ret := make(map[uint16]pes.FramerKind, len(c.Framers))
	for k, v := range c.Framers {
		pid, err := strconv.ParseUint(k, 0, 13)
		if err != nil {
			return nil, fmt.Errorf("invalid pid in framers. pid=%s, err=%+v", k, err)
		}
		kind := pes.FramerKind(v)
		if _, err = pes.NewFramer(kind); err != nil {
			return nil, err
		}
		ret[uint16(pid)] = kind
	}
	return ret, nil
}

func (c *Config) scannerOption(option *pes.SyncScannerOption) {
	if c.Scanner.MaxFrameSize > 0 {
		option.MaxFrameSize = c.Scanner.MaxFrameSize
	}
	if c.Scanner.InitBufferSize > 0 {
		option.InitBufferSize = c.Scanner.InitBufferSize
	}
}
