// Copyright 2020, Chef.  All rights reserved.
// https://github.com/q191201771/dvbinspect
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package tsfeed

import (
	"errors"
	"os"
)

var ErrFileWriter = errors.New("dvbinspect.tsfeed: file writer not created")

// FileWriter 把某个PID的section或者PES包重新打包后写入TS文件
type FileWriter struct {
	fp     *os.File
	packer *Packer
}

func (fw *FileWriter) Create(filename string, pid uint16) (err error) {
	fw.fp, err = os.Create(filename)
	fw.packer = NewPacker(pid)
	return
}

func (fw *FileWriter) WriteSection(section []byte) error {
	if fw.fp == nil {
		return ErrFileWriter
	}
	_, err := fw.fp.Write(fw.packer.PackSection(section))
	return err
}

func (fw *FileWriter) WritePes(pes []byte) error {
	if fw.fp == nil {
		return ErrFileWriter
	}
	_, err := fw.fp.Write(fw.packer.PackPes(pes))
	return err
}

func (fw *FileWriter) Dispose() error {
	if fw.fp == nil {
		return ErrFileWriter
	}
	return fw.fp.Close()
}

func (fw *FileWriter) Name() string {
	if fw.fp == nil {
		return ""
	}
	return fw.fp.Name()
}
